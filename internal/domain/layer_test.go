package domain

import "testing"

func TestParseLayerRef(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LayerRef
	}{
		{"png asset", "bg.png", LayerRef{Kind: LayerStatic, Path: "bg.png"}},
		{"jpeg asset", "overlay.JPEG", LayerRef{Kind: LayerStatic, Path: "overlay.JPEG"}},
		{"webp asset", "frame.webp", LayerRef{Kind: LayerStatic, Path: "frame.webp"}},
		{"photo slot", "input_photo_1", LayerRef{Kind: LayerPhotoSlot, Slot: "input_photo_1"}},
		{"bare photo slot", "input_photo", LayerRef{Kind: LayerPhotoSlot, Slot: "input_photo"}},
		{"text slot", "input_text_title", LayerRef{Kind: LayerTextSlot, Slot: "input_text_title"}},
		{"unknown", "gradient", LayerRef{Kind: LayerUnknown, Path: "gradient"}},
		{"empty", "", LayerRef{Kind: LayerUnknown, Path: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLayerRef(tc.raw); got != tc.want {
				t.Fatalf("ParseLayerRef(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseLayersKeepsOrder(t *testing.T) {
	refs := ParseLayers([]string{"bg.png", "input_photo_1", "input_text_1"})
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	kinds := []LayerKind{LayerStatic, LayerPhotoSlot, LayerTextSlot}
	for i, want := range kinds {
		if refs[i].Kind != want {
			t.Fatalf("refs[%d].Kind = %v, want %v", i, refs[i].Kind, want)
		}
	}
}
