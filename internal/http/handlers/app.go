package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"canvasbot/internal/canvas"
	"canvasbot/internal/domain"
	"canvasbot/internal/session"
	"canvasbot/internal/storage"
	"canvasbot/internal/template"
)

// App carries the services the HTTP handlers depend on.
type App struct {
	Templates     *template.Service
	Canvases      *canvas.Service
	Sessions      *session.Service
	Users         domain.UserRepository
	Logger        zerolog.Logger
	RenderTimeout time.Duration
}

func NewApp(templates *template.Service, canvases *canvas.Service, sessions *session.Service, users domain.UserRepository, logger zerolog.Logger, renderTimeout time.Duration) *App {
	return &App{
		Templates:     templates,
		Canvases:      canvases,
		Sessions:      sessions,
		Users:         users,
		Logger:        logger,
		RenderTimeout: renderTimeout,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrSessionBusy):
		a.error(w, http.StatusConflict, "session_busy", "another message is being processed")
	case errors.Is(err, domain.ErrSessionFinished):
		a.error(w, http.StatusConflict, "session_finished", "the session has already finished")
	case errors.Is(err, session.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", "the action is not allowed in the current state")
	case errors.Is(err, domain.ErrInvalidSchema):
		a.error(w, http.StatusUnprocessableEntity, "invalid_schema", "the settings document is not renderable")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
