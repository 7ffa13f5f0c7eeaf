package domain

// FitMode controls how a source photo is scaled into its placement box.
type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
)

// Align is the horizontal anchor for each rendered text line.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Baseline is the vertical anchor of a text block inside its placement box.
type Baseline string

const (
	BaselineTop    Baseline = "top"
	BaselineMiddle Baseline = "middle"
	BaselineBottom Baseline = "bottom"
)

// Anchor selects which part of an oversized photo survives a cover crop.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
)

// Shadow describes an optional drop shadow applied under text glyphs.
type Shadow struct {
	Color string  `json:"color,omitempty"`
	DX    float64 `json:"dx,omitempty"`
	DY    float64 `json:"dy,omitempty"`
	Blur  float64 `json:"blur,omitempty"`
}

// TextPlacement positions one text slot on the canvas. Text stays empty until
// the user fills the slot.
type TextPlacement struct {
	SlotName      string   `json:"slotName"`
	Text          string   `json:"text,omitempty"`
	X             int      `json:"x"`
	Y             int      `json:"y"`
	MaxWidth      int      `json:"maxWidth"`
	MaxHeight     int      `json:"maxHeight,omitempty"`
	Font          string   `json:"font"`
	FontSize      float64  `json:"fontSize"`
	FontColor     string   `json:"fontColor"`
	Align         Align    `json:"align,omitempty"`
	LineHeight    float64  `json:"lineHeight,omitempty"`
	LetterSpacing float64  `json:"letterSpacing,omitempty"`
	Baseline      Baseline `json:"textBaseline,omitempty"`
	Shadow        *Shadow  `json:"shadow,omitempty"`
}

// Filled reports whether the slot already carries user text.
func (p TextPlacement) Filled() bool { return p.Text != "" }

// PhotoPlacement positions one photo slot on the canvas. PhotoRef stays empty
// until the user fills the slot; once set it is the input file name under the
// canvas inputs prefix.
type PhotoPlacement struct {
	SlotName     string  `json:"slotName"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Fit          FitMode `json:"fit,omitempty"`
	Anchor       Anchor  `json:"anchor,omitempty"`
	BorderRadius float64 `json:"borderRadius,omitempty"`
	PhotoRef     string  `json:"photoRef,omitempty"`
}

// Filled reports whether the slot already carries an uploaded photo.
func (p PhotoPlacement) Filled() bool { return p.PhotoRef != "" }

// CanvasSettings is the per-canvas layout document stored at
// canvases/{id}/settings.json. It is the single source of truth for rendering
// and for the input-collection flow; callers replace it wholesale rather than
// mutating shared state.
type CanvasSettings struct {
	ID              string           `json:"id"`
	TemplateID      string           `json:"templateId"`
	TemplateSlug    string           `json:"templateSlug"`
	TemplateVersion string           `json:"templateVersion,omitempty"`
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	LayersOrder     []string         `json:"layersOrder"`
	TextPlacements  []TextPlacement  `json:"textPlacements"`
	PhotoPlacements []PhotoPlacement `json:"photoPlacements"`
	PreviewRef      string           `json:"previewRef,omitempty"`
}

// TextBySlot returns a pointer into TextPlacements for the named slot.
func (s *CanvasSettings) TextBySlot(name string) *TextPlacement {
	for i := range s.TextPlacements {
		if s.TextPlacements[i].SlotName == name {
			return &s.TextPlacements[i]
		}
	}
	return nil
}

// PhotoBySlot returns a pointer into PhotoPlacements for the named slot.
func (s *CanvasSettings) PhotoBySlot(name string) *PhotoPlacement {
	for i := range s.PhotoPlacements {
		if s.PhotoPlacements[i].SlotName == name {
			return &s.PhotoPlacements[i]
		}
	}
	return nil
}

// Validate checks the fields the composition engine depends on: positive
// dimensions, a layer list, and a placement entry for every slot marker
// referenced from LayersOrder. Placements that exist without being referenced
// are tolerated; they simply never render.
func (s *CanvasSettings) Validate() error {
	if s == nil || len(s.LayersOrder) == 0 || s.Width <= 0 || s.Height <= 0 {
		return ErrInvalidSchema
	}
	for _, ref := range ParseLayers(s.LayersOrder) {
		switch ref.Kind {
		case LayerPhotoSlot:
			if s.PhotoBySlot(ref.Slot) == nil {
				return ErrInvalidSchema
			}
		case LayerTextSlot:
			if s.TextBySlot(ref.Slot) == nil {
				return ErrInvalidSchema
			}
		}
	}
	return nil
}

// Clone returns a deep copy so a turn can stage mutations and only publish
// them after persistence succeeds.
func (s *CanvasSettings) Clone() *CanvasSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.LayersOrder = append([]string(nil), s.LayersOrder...)
	out.TextPlacements = make([]TextPlacement, len(s.TextPlacements))
	for i, tp := range s.TextPlacements {
		out.TextPlacements[i] = tp
		if tp.Shadow != nil {
			sh := *tp.Shadow
			out.TextPlacements[i].Shadow = &sh
		}
	}
	out.PhotoPlacements = append([]PhotoPlacement(nil), s.PhotoPlacements...)
	return &out
}
