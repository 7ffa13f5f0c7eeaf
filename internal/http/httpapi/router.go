package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"canvasbot/internal/domain"
	"canvasbot/internal/http/handlers"
	"canvasbot/internal/middleware"
)

// NewRouter assembles the HTTP API.
func NewRouter(app *handlers.App, defaultGeo domain.Geo, lookup middleware.MarketLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.Geo(defaultGeo, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/users", app.UserRegister)

	r.Route("/v1/templates", func(r chi.Router) {
		r.Get("/", app.TemplatesList)
		r.Post("/sync", app.TemplatesSync)
		r.Get("/{id}/preview", app.TemplatePreview)
	})

	r.Route("/v1/canvases", func(r chi.Router) {
		r.Post("/", app.CanvasCreate)
		r.Post("/{id}/message", app.CanvasMessage)
		r.Post("/{id}/confirm", app.CanvasConfirm)
		r.Post("/{id}/cancel", app.CanvasCancel)
		r.Get("/{id}/preview", app.CanvasPreview)
		r.Get("/{id}/final", app.CanvasFinal)
		r.Delete("/{id}", app.CanvasDelete)
	})

	return r
}
