package domain

import "strings"

// LayerKind discriminates the parsed form of a LayersOrder entry.
type LayerKind int

const (
	LayerUnknown LayerKind = iota
	LayerStatic
	LayerPhotoSlot
	LayerTextSlot
)

const (
	photoSlotPrefix = "input_photo"
	textSlotPrefix  = "input_text"
)

var staticExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// LayerRef is a LayersOrder entry resolved into its kind once, at schema load,
// instead of re-sniffing the raw string at render time. Path is set for static
// layers, Slot for photo/text slots.
type LayerRef struct {
	Kind LayerKind
	Path string
	Slot string
}

// ParseLayerRef classifies a raw layer entry. References that are neither a
// known image extension nor a slot marker come back as LayerUnknown; the
// renderer logs and skips those.
func ParseLayerRef(raw string) LayerRef {
	lower := strings.ToLower(raw)
	for _, ext := range staticExtensions {
		if strings.HasSuffix(lower, ext) {
			return LayerRef{Kind: LayerStatic, Path: raw}
		}
	}
	if strings.HasPrefix(raw, photoSlotPrefix) {
		return LayerRef{Kind: LayerPhotoSlot, Slot: raw}
	}
	if strings.HasPrefix(raw, textSlotPrefix) {
		return LayerRef{Kind: LayerTextSlot, Slot: raw}
	}
	return LayerRef{Kind: LayerUnknown, Path: raw}
}

// ParseLayers classifies every entry of a LayersOrder list in order.
func ParseLayers(raw []string) []LayerRef {
	refs := make([]LayerRef, len(raw))
	for i, entry := range raw {
		refs[i] = ParseLayerRef(entry)
	}
	return refs
}
