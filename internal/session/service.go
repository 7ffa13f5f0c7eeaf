package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"canvasbot/internal/domain"
)

// Canvases is the canvas persistence surface the session flow needs: the
// settings document, input blobs, render outputs, and the session status on
// the canvas record.
type Canvases interface {
	GetSettings(ctx context.Context, canvasID string) (*domain.CanvasSettings, error)
	PutSettings(ctx context.Context, settings *domain.CanvasSettings) error
	SavePhotoInput(ctx context.Context, canvasID, slotName string, data []byte) (string, error)
	SaveTextInput(ctx context.Context, canvasID, slotName, text string) error
	SavePreview(ctx context.Context, canvasID string, data []byte) (string, error)
	SaveFinal(ctx context.Context, canvasID string, data []byte) (string, error)
	Status(ctx context.Context, canvasID string) (domain.CanvasStatus, error)
	SetStatus(ctx context.Context, canvasID string, status domain.CanvasStatus) error
}

// Renderer composes a settings document into an encoded image.
type Renderer interface {
	Render(ctx context.Context, settings *domain.CanvasSettings) ([]byte, error)
}

// Inbound is one user message: photo bytes with an optional caption, or plain
// text (Photo nil).
type Inbound struct {
	Photo []byte
	Text  string
}

// OutcomeKind classifies what a turn produced.
type OutcomeKind string

const (
	// OutcomeReprompt: input accepted, more slots remain.
	OutcomeReprompt OutcomeKind = "reprompt"
	// OutcomeNoMatch: nothing in the message fit an unfilled slot.
	OutcomeNoMatch OutcomeKind = "no_match"
	// OutcomeNoPending: a message arrived with the queue already empty.
	OutcomeNoPending OutcomeKind = "no_pending"
	// OutcomePreview: the queue emptied and a preview was rendered.
	OutcomePreview OutcomeKind = "preview"
	// OutcomeRenderFailed: the queue emptied (or confirm ran) but the render
	// failed; the session stays in previewing.
	OutcomeRenderFailed OutcomeKind = "render_failed"
	// OutcomeFinal: confirm succeeded and the final image was produced.
	OutcomeFinal OutcomeKind = "final"
	// OutcomeCancelled: the session was cancelled.
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Outcome is the result of one turn, for the transport layer to present.
type Outcome struct {
	Kind      OutcomeKind
	State     domain.CanvasStatus
	Filled    []string
	Remaining []Entry
	Image     []byte
	RenderErr error
}

// Service runs the input-collection state machine. One turn per canvas at a
// time: each entry point takes the canvas key lock for its whole span.
type Service struct {
	canvases Canvases
	renderer Renderer
	locks    keyLocks
	logger   zerolog.Logger
}

// NewService wires the session flow to canvas persistence and the renderer.
func NewService(canvases Canvases, renderer Renderer, logger zerolog.Logger) *Service {
	return &Service{
		canvases: canvases,
		renderer: renderer,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Accept folds one inbound message into the canvas. A photo fills the first
// unfilled photo slot and the text (caption or body) the first unfilled text
// slot; a single message can fill one of each. The fill is atomic: the staged
// settings are published only after persistence succeeds.
func (s *Service) Accept(ctx context.Context, canvasID string, msg Inbound) (*Outcome, error) {
	if !s.locks.acquire(canvasID) {
		return nil, domain.ErrSessionBusy
	}
	defer s.locks.release(canvasID)

	status, err := s.canvases.Status(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if err := guard(status, ActionMessage); err != nil {
		return nil, err
	}

	settings, err := s.canvases.GetSettings(ctx, canvasID)
	if err != nil {
		return nil, err
	}

	queue := ComputeQueue(settings)
	if len(queue) == 0 {
		return &Outcome{Kind: OutcomeNoPending, State: status}, nil
	}

	staged := settings.Clone()
	var filled []string

	if len(msg.Photo) > 0 {
		if entry := firstOfKind(queue, SlotPhoto); entry != nil {
			ref, err := s.canvases.SavePhotoInput(ctx, canvasID, entry.SlotName, msg.Photo)
			if err != nil {
				return nil, err
			}
			staged.PhotoPlacements[entry.Index].PhotoRef = ref
			filled = append(filled, entry.SlotName)
		}
	}
	if msg.Text != "" {
		if entry := firstOfKind(queue, SlotText); entry != nil {
			if err := s.canvases.SaveTextInput(ctx, canvasID, entry.SlotName, msg.Text); err != nil {
				return nil, err
			}
			staged.TextPlacements[entry.Index].Text = msg.Text
			filled = append(filled, entry.SlotName)
		}
	}

	if len(filled) == 0 {
		// Guided re-prompt, not an error; the schema stays untouched.
		return &Outcome{Kind: OutcomeNoMatch, State: status, Remaining: queue}, nil
	}

	if err := s.canvases.PutSettings(ctx, staged); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaPersist, err)
	}

	remaining := ComputeQueue(staged)
	if len(remaining) > 0 {
		return &Outcome{
			Kind:      OutcomeReprompt,
			State:     domain.CanvasCollecting,
			Filled:    filled,
			Remaining: remaining,
		}, nil
	}

	if err := s.canvases.SetStatus(ctx, canvasID, domain.CanvasPreviewing); err != nil {
		return nil, err
	}
	outcome := s.preview(ctx, canvasID, staged)
	outcome.Filled = filled
	return outcome, nil
}

// preview renders the filled canvas and caches the result. Render failures
// are an outcome, not an error: the session stays in previewing and the user
// can retry via confirm or resend.
func (s *Service) preview(ctx context.Context, canvasID string, settings *domain.CanvasSettings) *Outcome {
	img, err := s.renderer.Render(ctx, settings)
	if err != nil {
		s.logger.Error().Err(err).Str("canvas_id", canvasID).Msg("preview render failed")
		return &Outcome{Kind: OutcomeRenderFailed, State: domain.CanvasPreviewing, RenderErr: err}
	}

	ref, err := s.canvases.SavePreview(ctx, canvasID, img)
	if err != nil {
		s.logger.Warn().Err(err).Str("canvas_id", canvasID).Msg("preview cache write failed")
	} else if ref != settings.PreviewRef {
		staged := settings.Clone()
		staged.PreviewRef = ref
		if err := s.canvases.PutSettings(ctx, staged); err != nil {
			s.logger.Warn().Err(err).Str("canvas_id", canvasID).Msg("preview ref write-back failed")
		}
	}

	return &Outcome{Kind: OutcomePreview, State: domain.CanvasPreviewing, Image: img}
}

// Confirm renders the final image and finishes the session. Confirming an
// already confirmed session re-renders; the render itself is deterministic,
// so repeating it has no further effect.
func (s *Service) Confirm(ctx context.Context, canvasID string) (*Outcome, error) {
	if !s.locks.acquire(canvasID) {
		return nil, domain.ErrSessionBusy
	}
	defer s.locks.release(canvasID)

	status, err := s.canvases.Status(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if err := guard(status, ActionConfirm); err != nil {
		return nil, err
	}

	settings, err := s.canvases.GetSettings(ctx, canvasID)
	if err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(ctx, settings)
	if err != nil {
		s.logger.Error().Err(err).Str("canvas_id", canvasID).Msg("final render failed")
		return &Outcome{Kind: OutcomeRenderFailed, State: status, RenderErr: err}, nil
	}
	if _, err := s.canvases.SaveFinal(ctx, canvasID, img); err != nil {
		return nil, err
	}
	if status != domain.CanvasConfirmed {
		if err := s.canvases.SetStatus(ctx, canvasID, domain.CanvasConfirmed); err != nil {
			return nil, err
		}
	}
	return &Outcome{Kind: OutcomeFinal, State: domain.CanvasConfirmed, Image: img}, nil
}

// Cancel ends the session without rendering. The settings document is left
// as-is for external cleanup.
func (s *Service) Cancel(ctx context.Context, canvasID string) (*Outcome, error) {
	if !s.locks.acquire(canvasID) {
		return nil, domain.ErrSessionBusy
	}
	defer s.locks.release(canvasID)

	status, err := s.canvases.Status(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if err := guard(status, ActionCancel); err != nil {
		return nil, err
	}

	if err := s.canvases.SetStatus(ctx, canvasID, domain.CanvasCancelled); err != nil {
		return nil, err
	}
	return &Outcome{Kind: OutcomeCancelled, State: domain.CanvasCancelled}, nil
}
