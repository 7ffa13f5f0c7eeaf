package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"canvasbot/internal/domain"
	"canvasbot/internal/middleware"
	"canvasbot/internal/template"
)

type templateResponse struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Categories  []domain.Category `json:"categories"`
	Version     string            `json:"version,omitempty"`
	HasPreview  bool              `json:"has_preview"`
}

// TemplatesList returns the public templates for the request's market.
func (a *App) TemplatesList(w http.ResponseWriter, r *http.Request) {
	geo := middleware.GeoFromContext(r.Context())
	category := domain.Category(r.URL.Query().Get("category"))
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	templates, err := a.Templates.ListPublic(r.Context(), geo, category, limit, offset)
	if err != nil {
		a.fail(w, err)
		return
	}

	out := make([]templateResponse, 0, len(templates))
	for i := range templates {
		tpl := &templates[i]
		settings, err := a.Templates.GetSettings(r.Context(), tpl.Slug)
		if err != nil {
			a.Logger.Warn().Err(err).Str("slug", tpl.Slug).Msg("settings unreadable, listing anyway")
			settings = nil
		}
		out = append(out, templateResponse{
			ID:          tpl.ID,
			Slug:        tpl.Slug,
			Title:       template.DisplayTitle(tpl, settings),
			Description: tpl.Description,
			Categories:  tpl.Categories,
			Version:     tpl.Version,
			HasPreview:  tpl.PreviewRef != "",
		})
	}
	a.json(w, http.StatusOK, map[string]any{"templates": out})
}

// TemplatePreview streams a template's preview image.
func (a *App) TemplatePreview(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.Templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	data, err := a.Templates.Preview(r.Context(), tpl.Slug)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// TemplatesSync reconciles the catalogue with the object store.
func (a *App) TemplatesSync(w http.ResponseWriter, r *http.Request) {
	if err := a.Templates.Sync(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "synced"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}
