package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"canvasbot/internal/canvas"
	"canvasbot/internal/domain"
	"canvasbot/internal/http/handlers"
	"canvasbot/internal/http/httpapi"
	"canvasbot/internal/render"
	"canvasbot/internal/session"
	"canvasbot/internal/storage"
	"canvasbot/internal/template"
)

type memTemplateRepo struct {
	records map[string]*domain.Template
}

func (r *memTemplateRepo) Create(_ context.Context, tpl *domain.Template) error {
	r.records[tpl.ID] = tpl
	return nil
}

func (r *memTemplateRepo) Update(_ context.Context, tpl *domain.Template) error {
	r.records[tpl.ID] = tpl
	return nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id string) error {
	delete(r.records, id)
	return nil
}

func (r *memTemplateRepo) GetByID(_ context.Context, id string) (*domain.Template, error) {
	tpl, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func (r *memTemplateRepo) ListAll(_ context.Context) ([]domain.Template, error) {
	var out []domain.Template
	for _, tpl := range r.records {
		out = append(out, *tpl)
	}
	return out, nil
}

func (r *memTemplateRepo) ListPublic(_ context.Context, geo domain.Geo, _ domain.Category, _, _ int) ([]domain.Template, error) {
	var out []domain.Template
	for _, tpl := range r.records {
		for _, g := range tpl.SupportedGeos {
			if g == geo && tpl.IsPublic {
				out = append(out, *tpl)
				break
			}
		}
	}
	return out, nil
}

type memCanvasRepo struct {
	records map[string]*domain.Canvas
}

func (r *memCanvasRepo) Create(_ context.Context, c *domain.Canvas) error {
	r.records[c.ID] = c
	return nil
}

func (r *memCanvasRepo) UpdateStatus(_ context.Context, id string, status domain.CanvasStatus) error {
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Status = status
	return nil
}

func (r *memCanvasRepo) GetByID(_ context.Context, id string) (*domain.Canvas, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (r *memCanvasRepo) Delete(_ context.Context, id string) error {
	delete(r.records, id)
	return nil
}

type memUserRepo struct {
	byChat map[int64]*domain.User
}

func (r *memUserRepo) UpsertByChatID(_ context.Context, user *domain.User) (*domain.User, error) {
	if existing, ok := r.byChat[user.ChatID]; ok {
		existing.SupportedGeos = user.SupportedGeos
		return existing, nil
	}
	r.byChat[user.ChatID] = user
	return user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byChat {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByChatID(_ context.Context, chatID int64) (*domain.User, error) {
	u, ok := r.byChat[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// testServer wires the full stack over a temp-dir store and in-memory repos.
func testServer(t *testing.T) (*httptest.Server, *memTemplateRepo) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	seedStoreTemplate(t, store)

	tplRepo := &memTemplateRepo{records: map[string]*domain.Template{}}
	cvsRepo := &memCanvasRepo{records: map[string]*domain.Canvas{}}

	logger := zerolog.Nop()
	templates := template.NewService(store, tplRepo, logger)
	canvases := canvas.NewService(store, cvsRepo, logger)
	engine := render.NewEngine(store, logger)
	sessions := session.NewService(canvases, engine, logger)

	if err := templates.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	users := &memUserRepo{byChat: map[int64]*domain.User{}}
	app := handlers.NewApp(templates, canvases, sessions, users, logger, 10*time.Second)
	srv := httptest.NewServer(httpapi.NewRouter(app, domain.GeoRU, nil))
	t.Cleanup(srv.Close)
	return srv, tplRepo
}

func seedStoreTemplate(t *testing.T, store storage.ObjectStore) {
	t.Helper()
	ctx := context.Background()

	settings := &domain.TemplateSettings{
		Title:         "Матч дня",
		Version:       "1",
		SupportedGeos: []domain.Geo{domain.GeoRU},
		Categories:    []domain.Category{domain.CategoryFootball},
		Width:         200,
		Height:        150,
		LayersOrder:   []string{"bg.png", "input_photo_1", "input_text_1"},
		TextPlacements: []domain.TextPlacement{
			{SlotName: "input_text_1", X: 10, Y: 100, MaxWidth: 180, FontSize: 14},
		},
		PhotoPlacements: []domain.PhotoPlacement{
			{SlotName: "input_photo_1", X: 20, Y: 20, Width: 60, Height: 60},
		},
	}
	if err := storage.WriteJSON(ctx, store, storage.TemplateSettingsKey("match-day"), settings); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	if _, err := store.Write(ctx, storage.TemplateAssetKey("match-day", "bg.png"), solidPNG(t, 200, 150, color.RGBA{32, 32, 32, 255})); err != nil {
		t.Fatalf("seed bg: %v", err)
	}
}

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func templateID(t *testing.T, repo *memTemplateRepo) string {
	t.Helper()
	for id := range repo.records {
		return id
	}
	t.Fatalf("no template registered")
	return ""
}

func createCanvas(t *testing.T, srv *httptest.Server, templateID string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"template_id": templateID, "user_id": "user-1"})
	resp, err := http.Post(srv.URL+"/v1/canvases", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create canvas: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create canvas status = %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out["id"]
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &body)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func postPhoto(t *testing.T, url string, photo []byte, text string) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", "photo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(photo); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if text != "" {
		_ = mw.WriteField("text", text)
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestTemplatesList(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/v1/templates/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		Templates []struct {
			Slug  string `json:"slug"`
			Title string `json:"title"`
		} `json:"templates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Templates) != 1 || out.Templates[0].Slug != "match-day" {
		t.Fatalf("templates = %+v", out.Templates)
	}
	if out.Templates[0].Title != "Матч дня" {
		t.Errorf("title = %q", out.Templates[0].Title)
	}
}

func TestCanvasFullFlow(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))
	base := srv.URL + "/v1/canvases/" + id

	// captioned photo fills both slots in one turn and yields a preview
	photo := solidPNG(t, 80, 80, color.RGBA{200, 40, 40, 255})
	resp, out := postPhoto(t, base+"/message", photo, "Тестовый текст!")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d (%v)", resp.StatusCode, out)
	}
	if out["outcome"] != string(session.OutcomePreview) {
		t.Fatalf("outcome = %v, want preview", out["outcome"])
	}
	if out["state"] != string(domain.CanvasPreviewing) {
		t.Errorf("state = %v", out["state"])
	}

	// the cached preview is now retrievable
	pv, err := http.Get(base + "/preview")
	if err != nil {
		t.Fatalf("GET preview: %v", err)
	}
	defer pv.Body.Close()
	if pv.StatusCode != http.StatusOK || pv.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("preview status = %d type = %q", pv.StatusCode, pv.Header.Get("Content-Type"))
	}

	// confirm renders and stores the final image
	resp, out = postJSON(t, base+"/confirm", nil)
	if resp.StatusCode != http.StatusOK || out["outcome"] != string(session.OutcomeFinal) {
		t.Fatalf("confirm = %d %v", resp.StatusCode, out)
	}

	fin, err := http.Get(base + "/final")
	if err != nil {
		t.Fatalf("GET final: %v", err)
	}
	defer fin.Body.Close()
	if fin.StatusCode != http.StatusOK {
		t.Fatalf("final status = %d", fin.StatusCode)
	}
}

func TestCanvasRepromptListsRemainingSlots(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))

	resp, out := postJSON(t, srv.URL+"/v1/canvases/"+id+"/message", map[string]string{"text": "Заголовок"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["outcome"] != string(session.OutcomeReprompt) {
		t.Fatalf("outcome = %v", out["outcome"])
	}
	msg, _ := out["message"].(string)
	if !strings.Contains(msg, "input_photo_1") {
		t.Errorf("reprompt message %q does not name the pending slot", msg)
	}
}

func TestCanvasConfirmBeforePreviewConflicts(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))

	resp, out := postJSON(t, srv.URL+"/v1/canvases/"+id+"/confirm", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d %v", resp.StatusCode, out)
	}
}

func TestCanvasCancelThenMessageConflicts(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))
	base := srv.URL + "/v1/canvases/" + id

	if resp, _ := postJSON(t, base+"/cancel", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}
	resp, _ := postJSON(t, base+"/message", map[string]string{"text": "late"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("message after cancel status = %d", resp.StatusCode)
	}
}

func TestCanvasMessageRejectsEmptyBody(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))

	resp, _ := postJSON(t, srv.URL+"/v1/canvases/"+id+"/message", map[string]string{"text": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCanvasDelete(t *testing.T) {
	srv, repo := testServer(t)
	id := createCanvas(t, srv, templateID(t, repo))

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/canvases/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	pv, err := http.Get(srv.URL + "/v1/canvases/" + id + "/preview")
	if err != nil {
		t.Fatalf("GET preview: %v", err)
	}
	defer pv.Body.Close()
	if pv.StatusCode != http.StatusNotFound {
		t.Fatalf("preview after delete = %d", pv.StatusCode)
	}
}

func TestUserRegisterRecordsResolvedGeo(t *testing.T) {
	srv, _ := testServer(t)

	body, _ := json.Marshal(map[string]int64{"chat_id": 777})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Geo", "KZ")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST users: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		ChatID        int64        `json:"chat_id"`
		Role          string       `json:"role"`
		SupportedGeos []domain.Geo `json:"supported_geos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ChatID != 777 || out.Role != string(domain.RoleUser) {
		t.Errorf("user = %+v", out)
	}
	if len(out.SupportedGeos) != 1 || out.SupportedGeos[0] != domain.GeoKZ {
		t.Errorf("geos = %v, want [KZ]", out.SupportedGeos)
	}
}

func TestUnknownCanvasIsNotFound(t *testing.T) {
	srv, _ := testServer(t)
	resp, _ := postJSON(t, srv.URL+"/v1/canvases/nope/confirm", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
