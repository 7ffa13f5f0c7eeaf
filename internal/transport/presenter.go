package transport

import (
	"context"

	"github.com/rs/zerolog"

	"canvasbot/internal/session"
)

// Messenger is the outbound chat surface. Implementations wrap a concrete
// bot API; message IDs let previews be edited in place.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, html string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) (int, error)
	EditPhoto(ctx context.Context, chatID int64, messageID int, photo []byte, caption string) error
}

// Thread tracks the per-chat delivery state: which message currently shows
// the preview, so a re-render edits it instead of flooding the chat.
type Thread struct {
	ChatID           int64
	PreviewMessageID int
}

// Presenter turns session outcomes into messenger calls.
type Presenter struct {
	messenger Messenger
	logger    zerolog.Logger
}

// NewPresenter constructs a presenter.
func NewPresenter(m Messenger, logger zerolog.Logger) *Presenter {
	return &Presenter{
		messenger: m,
		logger:    logger.With().Str("component", "transport").Logger(),
	}
}

// Present delivers one outcome to the chat. Image outcomes go out as photos;
// a preview re-render edits the previous preview message and falls back to a
// fresh send when the edit fails.
func (p *Presenter) Present(ctx context.Context, thread *Thread, out *session.Outcome) error {
	text := OutcomeText(out)

	switch out.Kind {
	case session.OutcomePreview:
		return p.deliverPreview(ctx, thread, out.Image, text)
	case session.OutcomeFinal:
		_, err := p.messenger.SendPhoto(ctx, thread.ChatID, out.Image, text)
		return err
	default:
		_, err := p.messenger.SendText(ctx, thread.ChatID, text)
		return err
	}
}

func (p *Presenter) deliverPreview(ctx context.Context, thread *Thread, image []byte, caption string) error {
	if thread.PreviewMessageID != 0 {
		err := p.messenger.EditPhoto(ctx, thread.ChatID, thread.PreviewMessageID, image, caption)
		if err == nil {
			return nil
		}
		p.logger.Warn().Err(err).Int64("chat_id", thread.ChatID).Msg("preview edit failed, sending fresh")
	}
	id, err := p.messenger.SendPhoto(ctx, thread.ChatID, image, caption)
	if err != nil {
		return err
	}
	thread.PreviewMessageID = id
	return nil
}
