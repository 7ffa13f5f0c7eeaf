package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"canvasbot/internal/session"
	"canvasbot/internal/transport"
)

// maxPhotoBytes bounds uploaded photo size.
const maxPhotoBytes = 10 << 20

type createCanvasRequest struct {
	TemplateID string `json:"template_id"`
	UserID     string `json:"user_id"`
}

type remainingSlot struct {
	Kind string `json:"kind"`
	Slot string `json:"slot"`
}

type outcomeResponse struct {
	Outcome   string          `json:"outcome"`
	State     string          `json:"state"`
	Filled    []string        `json:"filled,omitempty"`
	Remaining []remainingSlot `json:"remaining,omitempty"`
	Message   string          `json:"message"`
}

func toOutcomeResponse(out *session.Outcome) outcomeResponse {
	resp := outcomeResponse{
		Outcome: string(out.Kind),
		State:   string(out.State),
		Filled:  out.Filled,
		Message: transport.OutcomeText(out),
	}
	for _, e := range out.Remaining {
		resp.Remaining = append(resp.Remaining, remainingSlot{Kind: string(e.Kind), Slot: e.SlotName})
	}
	return resp
}

// CanvasCreate instantiates a canvas from a template.
func (a *App) CanvasCreate(w http.ResponseWriter, r *http.Request) {
	var req createCanvasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TemplateID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "template_id is required")
		return
	}

	tpl, err := a.Templates.Get(r.Context(), req.TemplateID)
	if err != nil {
		a.fail(w, err)
		return
	}
	layout, err := a.Templates.GetSettings(r.Context(), tpl.Slug)
	if err != nil {
		a.fail(w, err)
		return
	}
	record, err := a.Canvases.Create(r.Context(), req.UserID, tpl, layout)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]string{
		"id":       record.ID,
		"status":   string(record.Status),
		"template": tpl.Slug,
	})
}

// CanvasMessage folds one message into the canvas. Multipart requests carry
// a photo part with an optional text field; everything else is treated as a
// JSON text message.
func (a *App) CanvasMessage(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "id")

	photo, text, err := readInbound(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if len(photo) == 0 && text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message carries neither photo nor text")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.RenderTimeout)
	defer cancel()

	out, err := a.Sessions.Accept(ctx, canvasID, transport.MapInbound(photo, text))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toOutcomeResponse(out))
}

// CanvasConfirm finalizes the canvas and renders the final image.
func (a *App) CanvasConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.RenderTimeout)
	defer cancel()

	out, err := a.Sessions.Confirm(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toOutcomeResponse(out))
}

// CanvasCancel cancels the session.
func (a *App) CanvasCancel(w http.ResponseWriter, r *http.Request) {
	out, err := a.Sessions.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toOutcomeResponse(out))
}

// CanvasPreview streams the cached preview image.
func (a *App) CanvasPreview(w http.ResponseWriter, r *http.Request) {
	data, err := a.Canvases.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// CanvasFinal streams the final render.
func (a *App) CanvasFinal(w http.ResponseWriter, r *http.Request) {
	data, err := a.Canvases.Final(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// CanvasDelete removes the canvas and every stored object under it.
func (a *App) CanvasDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Canvases.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readInbound(r *http.Request) (photo []byte, text string, err error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			return nil, "", err
		}
		text = r.FormValue("text")
		file, _, ferr := r.FormFile("photo")
		if ferr == nil {
			defer file.Close()
			photo, err = io.ReadAll(io.LimitReader(file, maxPhotoBytes))
			if err != nil {
				return nil, "", err
			}
		}
		return photo, text, nil
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "", err
	}
	return nil, body.Text, nil
}
