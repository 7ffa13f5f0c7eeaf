package canvas

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/rs/zerolog"

	"canvasbot/internal/domain"
	"canvasbot/internal/storage"
)

type fakeCanvasRepo struct {
	records map[string]*domain.Canvas
}

func newFakeCanvasRepo() *fakeCanvasRepo {
	return &fakeCanvasRepo{records: map[string]*domain.Canvas{}}
}

func (r *fakeCanvasRepo) Create(_ context.Context, c *domain.Canvas) error {
	r.records[c.ID] = c
	return nil
}

func (r *fakeCanvasRepo) UpdateStatus(_ context.Context, id string, status domain.CanvasStatus) error {
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Status = status
	return nil
}

func (r *fakeCanvasRepo) GetByID(_ context.Context, id string) (*domain.Canvas, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (r *fakeCanvasRepo) Delete(_ context.Context, id string) error {
	delete(r.records, id)
	return nil
}

func testService(t *testing.T) (*Service, *fakeCanvasRepo) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	repo := newFakeCanvasRepo()
	return NewService(store, repo, zerolog.Nop()), repo
}

func testTemplate() (*domain.Template, *domain.TemplateSettings) {
	tpl := &domain.Template{ID: "tpl-1", Slug: "match-day"}
	layout := &domain.TemplateSettings{
		Width:       600,
		Height:      400,
		LayersOrder: []string{"bg.png", "input_photo_1", "input_text_1"},
		TextPlacements: []domain.TextPlacement{
			{SlotName: "input_text_1", X: 20, Y: 300, MaxWidth: 560},
		},
		PhotoPlacements: []domain.PhotoPlacement{
			{SlotName: "input_photo_1", X: 50, Y: 80, Width: 200, Height: 180},
		},
	}
	return tpl, layout
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestCreateWritesRecordAndSettings(t *testing.T) {
	svc, repo := testService(t)
	tpl, layout := testTemplate()

	record, err := svc.Create(context.Background(), "user-1", tpl, layout)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Status != domain.CanvasCollecting {
		t.Fatalf("status = %s, want %s", record.Status, domain.CanvasCollecting)
	}
	if _, ok := repo.records[record.ID]; !ok {
		t.Fatalf("record not persisted")
	}

	settings, err := svc.GetSettings(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.TemplateSlug != "match-day" {
		t.Errorf("TemplateSlug = %q", settings.TemplateSlug)
	}
	if settings.ID != record.ID {
		t.Errorf("settings ID = %q, want %q", settings.ID, record.ID)
	}
	for _, tp := range settings.TextPlacements {
		if tp.Filled() {
			t.Errorf("slot %s instantiated filled", tp.SlotName)
		}
	}
}

func TestPutSettingsRoundTrip(t *testing.T) {
	svc, _ := testService(t)
	tpl, layout := testTemplate()
	record, err := svc.Create(context.Background(), "user-1", tpl, layout)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	settings, err := svc.GetSettings(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	settings.TextPlacements[0].Text = "hello"
	if err := svc.PutSettings(context.Background(), settings); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}

	reread, err := svc.GetSettings(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if reread.TextPlacements[0].Text != "hello" {
		t.Errorf("Text = %q, want hello", reread.TextPlacements[0].Text)
	}
}

func TestSavePhotoInputSniffsExtension(t *testing.T) {
	svc, _ := testService(t)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png payload", pngBytes(t), "input_photo_1.png"},
		{"unknown payload", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, "input_photo_1.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := svc.SavePhotoInput(context.Background(), "c1", "input_photo_1", tt.data)
			if err != nil {
				t.Fatalf("SavePhotoInput: %v", err)
			}
			if ref != tt.want {
				t.Errorf("ref = %q, want %q", ref, tt.want)
			}
			got, err := svc.store.Read(context.Background(), storage.CanvasInputKey("c1", ref))
			if err != nil {
				t.Fatalf("Read input: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("stored bytes differ")
			}
		})
	}
}

func TestSaveTextInputStoredUnderInputs(t *testing.T) {
	svc, _ := testService(t)
	if err := svc.SaveTextInput(context.Background(), "c1", "input_text_1", "Тестовый текст!"); err != nil {
		t.Fatalf("SaveTextInput: %v", err)
	}
	got, err := svc.store.Read(context.Background(), storage.CanvasInputKey("c1", "input_text_1.txt"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "Тестовый текст!" {
		t.Errorf("stored text = %q", got)
	}
}

func TestPreviewAndFinalRoundTrip(t *testing.T) {
	svc, _ := testService(t)
	img := pngBytes(t)

	ref, err := svc.SavePreview(context.Background(), "c1", img)
	if err != nil {
		t.Fatalf("SavePreview: %v", err)
	}
	if ref != "preview.png" {
		t.Errorf("preview ref = %q", ref)
	}
	got, err := svc.Preview(context.Background(), "c1")
	if err != nil || !bytes.Equal(got, img) {
		t.Fatalf("Preview round trip failed: %v", err)
	}

	if _, err := svc.SaveFinal(context.Background(), "c1", img); err != nil {
		t.Fatalf("SaveFinal: %v", err)
	}
	got, err = svc.Final(context.Background(), "c1")
	if err != nil || !bytes.Equal(got, img) {
		t.Fatalf("Final round trip failed: %v", err)
	}
}

func TestStatusTransitionsPersist(t *testing.T) {
	svc, _ := testService(t)
	tpl, layout := testTemplate()
	record, err := svc.Create(context.Background(), "user-1", tpl, layout)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetStatus(context.Background(), record.ID, domain.CanvasPreviewing); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	status, err := svc.Status(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != domain.CanvasPreviewing {
		t.Errorf("status = %s, want %s", status, domain.CanvasPreviewing)
	}
}

func TestDeleteRemovesObjectsAndRecord(t *testing.T) {
	svc, repo := testService(t)
	tpl, layout := testTemplate()
	record, err := svc.Create(context.Background(), "user-1", tpl, layout)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.SavePhotoInput(context.Background(), record.ID, "input_photo_1", pngBytes(t)); err != nil {
		t.Fatalf("SavePhotoInput: %v", err)
	}

	if err := svc.Delete(context.Background(), record.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.records[record.ID]; ok {
		t.Errorf("record survived delete")
	}
	if _, err := svc.GetSettings(context.Background(), record.ID); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("GetSettings after delete = %v, want ErrObjectNotFound", err)
	}
}
