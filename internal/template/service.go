// Package template serves the template catalogue: listing public templates
// for a user's geo, loading template settings documents, and syncing the
// catalogue database with what actually lives in the object store.
package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"canvasbot/internal/domain"
	"canvasbot/internal/storage"
)

// Service exposes the template catalogue.
type Service struct {
	store  storage.ObjectStore
	repo   domain.TemplateRepository
	logger zerolog.Logger
}

// NewService constructs the template service.
func NewService(store storage.ObjectStore, repo domain.TemplateRepository, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		repo:   repo,
		logger: logger.With().Str("component", "template").Logger(),
	}
}

// ListPublic returns the public templates visible in a geo, optionally
// filtered by category.
func (s *Service) ListPublic(ctx context.Context, geo domain.Geo, category domain.Category, limit, offset int) ([]domain.Template, error) {
	return s.repo.ListPublic(ctx, geo, category, limit, offset)
}

// Get returns one catalogue record.
func (s *Service) Get(ctx context.Context, id string) (*domain.Template, error) {
	return s.repo.GetByID(ctx, id)
}

// GetSettings loads a template's settings document from the store.
func (s *Service) GetSettings(ctx context.Context, slug string) (*domain.TemplateSettings, error) {
	var settings domain.TemplateSettings
	if err := storage.ReadJSON(ctx, s.store, storage.TemplateSettingsKey(slug), &settings); err != nil {
		return nil, fmt.Errorf("template: read settings %s: %w", slug, err)
	}
	return &settings, nil
}

// Preview returns the template's preview image bytes, if present.
func (s *Service) Preview(ctx context.Context, slug string) ([]byte, error) {
	return s.store.Read(ctx, storage.TemplatePreviewKey(slug))
}

// DisplayTitle returns a human-readable title for a template, falling back
// to a title-cased form of the slug when the settings carry none.
func DisplayTitle(tpl *domain.Template, settings *domain.TemplateSettings) string {
	if settings != nil && settings.Title != "" {
		return settings.Title
	}
	words := strings.ReplaceAll(tpl.Slug, "-", " ")
	return cases.Title(language.English).String(words)
}

// Sync reconciles the catalogue database with the object store. Every
// templates/{slug}/settings.json found is upserted; records whose settings
// document vanished from the store are pruned. Documents without an ID get
// one generated and written back, so the store stays the source of truth.
func (s *Service) Sync(ctx context.Context) error {
	keys, err := s.store.List(ctx, storage.TemplatesPrefix)
	if err != nil {
		return fmt.Errorf("template: list store: %w", err)
	}

	seen := map[string]bool{}
	for _, key := range keys {
		slug, ok := settingsSlug(key)
		if !ok {
			continue
		}
		if err := s.syncOne(ctx, slug); err != nil {
			s.logger.Error().Err(err).Str("slug", slug).Msg("template sync failed")
			continue
		}
		seen[slug] = true
	}

	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("template: list catalogue: %w", err)
	}
	for _, tpl := range existing {
		if seen[tpl.Slug] {
			continue
		}
		if err := s.repo.Delete(ctx, tpl.ID); err != nil {
			s.logger.Error().Err(err).Str("slug", tpl.Slug).Msg("prune failed")
			continue
		}
		s.logger.Info().Str("slug", tpl.Slug).Msg("template pruned")
	}
	return nil
}

func (s *Service) syncOne(ctx context.Context, slug string) error {
	settings, err := s.GetSettings(ctx, slug)
	if err != nil {
		return err
	}
	if err := settings.ValidateLayout(); err != nil {
		return err
	}

	if settings.ID == "" {
		settings.ID = uuid.NewString()
		if err := storage.WriteJSON(ctx, s.store, storage.TemplateSettingsKey(slug), settings); err != nil {
			return fmt.Errorf("template: write back id %s: %w", slug, err)
		}
	}

	previewRef := ""
	if ok, err := s.store.Exists(ctx, storage.TemplatePreviewKey(slug)); err == nil && ok {
		previewRef = "preview.png"
	}

	record := &domain.Template{
		ID:            settings.ID,
		Slug:          slug,
		Description:   settings.Description,
		SupportedGeos: settings.SupportedGeos,
		Categories:    settings.Categories,
		IsPublic:      true,
		Version:       settings.Version,
		PreviewRef:    previewRef,
	}

	_, err = s.repo.GetByID(ctx, settings.ID)
	switch {
	case err == nil:
		return s.repo.Update(ctx, record)
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Info().Str("slug", slug).Msg("template registered")
		return s.repo.Create(ctx, record)
	default:
		return err
	}
}

// settingsSlug extracts the slug from a templates/{slug}/settings.json key.
func settingsSlug(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, storage.TemplatesPrefix)
	if !ok {
		return "", false
	}
	slug, file, ok := strings.Cut(rest, "/")
	if !ok || file != "settings.json" || slug == "" {
		return "", false
	}
	return slug, true
}
