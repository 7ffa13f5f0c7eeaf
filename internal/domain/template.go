package domain

import "time"

// Geo is an ISO-style market code a template is published for.
type Geo string

const (
	GeoRU Geo = "RU"
	GeoMD Geo = "MD"
	GeoKZ Geo = "KZ"
	GeoKG Geo = "KG"
	GeoTR Geo = "TR"
	GeoAZ Geo = "AZ"
	GeoTJ Geo = "TJ"
	GeoUZ Geo = "UZ"
)

// Category groups templates in the catalogue.
type Category string

const (
	CategoryFootball   Category = "FOOTBALL"
	CategoryHockey     Category = "HOCKEY"
	CategoryBasketball Category = "BASKETBALL"
	CategoryVolleyball Category = "VOLLEYBALL"
	CategoryTennis     Category = "TENNIS"
	CategoryEsports    Category = "ESPORTS"
	CategoryBoxing     Category = "BOXING"
	CategoryNews       Category = "NEWS"
	CategoryLottery    Category = "LOTTERY"
	CategoryOther      Category = "OTHER"
)

// Template is the relational record for a published design template. The
// layout itself lives in the object store at templates/{slug}/settings.json;
// the record carries catalogue metadata.
type Template struct {
	ID            string
	Slug          string
	Description   string
	SupportedGeos []Geo
	Categories    []Category
	IsPublic      bool
	Version       string
	PreviewRef    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TemplateSettings is the settings.json document of a template definition.
// Text placements here have no Text and photo placements no PhotoRef; those
// are filled per canvas instance.
type TemplateSettings struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title,omitempty"`
	Description     string           `json:"description,omitempty"`
	Version         string           `json:"version,omitempty"`
	SupportedGeos   []Geo            `json:"supportedGeos"`
	Categories      []Category       `json:"categories"`
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	LayersOrder     []string         `json:"layersOrder"`
	TextPlacements  []TextPlacement  `json:"textPlacements"`
	PhotoPlacements []PhotoPlacement `json:"photoPlacements"`
}

// ValidateLayout checks that the template layout would produce a renderable
// canvas: positive dimensions, a non-empty layer list, and a placement for
// every referenced slot.
func (t *TemplateSettings) ValidateLayout() error {
	if t == nil {
		return ErrInvalidSchema
	}
	return t.Instantiate("", "", "").Validate()
}

// Instantiate builds a fresh canvas document from the template layout with
// every slot unfilled.
func (t *TemplateSettings) Instantiate(canvasID, templateID, slug string) *CanvasSettings {
	settings := &CanvasSettings{
		ID:              canvasID,
		TemplateID:      templateID,
		TemplateSlug:    slug,
		TemplateVersion: t.Version,
		Width:           t.Width,
		Height:          t.Height,
		LayersOrder:     append([]string(nil), t.LayersOrder...),
		TextPlacements:  append([]TextPlacement(nil), t.TextPlacements...),
		PhotoPlacements: append([]PhotoPlacement(nil), t.PhotoPlacements...),
	}
	for i := range settings.TextPlacements {
		settings.TextPlacements[i].Text = ""
	}
	for i := range settings.PhotoPlacements {
		settings.PhotoPlacements[i].PhotoRef = ""
	}
	return settings
}
