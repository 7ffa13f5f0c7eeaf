// Package canvas manages the lifecycle of canvas instances: the relational
// record, the settings document in the object store, user input blobs, and
// cached render outputs.
package canvas

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"canvasbot/internal/domain"
	"canvasbot/internal/storage"
)

// Service implements canvas persistence over an object store and the canvas
// repository.
type Service struct {
	store  storage.ObjectStore
	repo   domain.CanvasRepository
	logger zerolog.Logger
}

// NewService constructs the canvas service.
func NewService(store storage.ObjectStore, repo domain.CanvasRepository, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		repo:   repo,
		logger: logger.With().Str("component", "canvas").Logger(),
	}
}

// Create instantiates a canvas from a template: a DB record plus a fresh
// settings document with every slot unfilled.
func (s *Service) Create(ctx context.Context, userID string, tpl *domain.Template, layout *domain.TemplateSettings) (*domain.Canvas, error) {
	record := &domain.Canvas{
		ID:         uuid.NewString(),
		UserID:     userID,
		TemplateID: tpl.ID,
		Status:     domain.CanvasCollecting,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("canvas: create record: %w", err)
	}

	settings := layout.Instantiate(record.ID, tpl.ID, tpl.Slug)
	if err := s.PutSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.logger.Info().Str("canvas_id", record.ID).Str("template", tpl.Slug).Msg("canvas created")
	return record, nil
}

// GetSettings loads the settings document for a canvas.
func (s *Service) GetSettings(ctx context.Context, canvasID string) (*domain.CanvasSettings, error) {
	var settings domain.CanvasSettings
	if err := storage.ReadJSON(ctx, s.store, storage.CanvasSettingsKey(canvasID), &settings); err != nil {
		return nil, fmt.Errorf("canvas: read settings %s: %w", canvasID, err)
	}
	return &settings, nil
}

// PutSettings rewrites the settings document wholesale.
func (s *Service) PutSettings(ctx context.Context, settings *domain.CanvasSettings) error {
	if err := storage.WriteJSON(ctx, s.store, storage.CanvasSettingsKey(settings.ID), settings); err != nil {
		return fmt.Errorf("canvas: write settings %s: %w", settings.ID, err)
	}
	return nil
}

// SavePhotoInput stores uploaded photo bytes under the canvas inputs prefix
// and returns the file name to record as the slot's PhotoRef. The extension
// is sniffed from the content.
func (s *Service) SavePhotoInput(ctx context.Context, canvasID, slotName string, data []byte) (string, error) {
	name := slotName + "." + sniffExtension(data)
	if _, err := s.store.Write(ctx, storage.CanvasInputKey(canvasID, name), data); err != nil {
		return "", fmt.Errorf("canvas: save photo input %s: %w", slotName, err)
	}
	return name, nil
}

// SaveTextInput records the raw text input alongside the photos so the inputs
// prefix is a complete audit of what the user supplied.
func (s *Service) SaveTextInput(ctx context.Context, canvasID, slotName, text string) error {
	key := storage.CanvasInputKey(canvasID, slotName+".txt")
	if _, err := s.store.Write(ctx, key, []byte(text)); err != nil {
		return fmt.Errorf("canvas: save text input %s: %w", slotName, err)
	}
	return nil
}

// SavePreview caches a preview render and returns its ref.
func (s *Service) SavePreview(ctx context.Context, canvasID string, data []byte) (string, error) {
	if _, err := s.store.Write(ctx, storage.CanvasPreviewKey(canvasID), data); err != nil {
		return "", fmt.Errorf("canvas: save preview: %w", err)
	}
	return "preview.png", nil
}

// SaveFinal stores the confirmed final render.
func (s *Service) SaveFinal(ctx context.Context, canvasID string, data []byte) (string, error) {
	if _, err := s.store.Write(ctx, storage.CanvasFinalKey(canvasID), data); err != nil {
		return "", fmt.Errorf("canvas: save final: %w", err)
	}
	return "final.png", nil
}

// Preview returns the cached preview bytes, if any.
func (s *Service) Preview(ctx context.Context, canvasID string) ([]byte, error) {
	return s.store.Read(ctx, storage.CanvasPreviewKey(canvasID))
}

// Final returns the final render bytes, if any.
func (s *Service) Final(ctx context.Context, canvasID string) ([]byte, error) {
	return s.store.Read(ctx, storage.CanvasFinalKey(canvasID))
}

// Status reads the session state off the canvas record.
func (s *Service) Status(ctx context.Context, canvasID string) (domain.CanvasStatus, error) {
	record, err := s.repo.GetByID(ctx, canvasID)
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// SetStatus advances the session state on the canvas record.
func (s *Service) SetStatus(ctx context.Context, canvasID string, status domain.CanvasStatus) error {
	return s.repo.UpdateStatus(ctx, canvasID, status)
}

// Delete removes a canvas entirely: every stored object and the DB record.
func (s *Service) Delete(ctx context.Context, canvasID string) error {
	if err := s.store.DeletePrefix(ctx, storage.CanvasPrefix(canvasID)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, canvasID)
}

// sniffExtension maps detected content types onto file extensions, defaulting
// to jpg for anything unrecognized.
func sniffExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
