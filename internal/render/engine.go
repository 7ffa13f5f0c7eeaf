// Package render turns a canvas settings document into a finished raster
// image: it resolves each layer reference, rasterizes text slots, scales photo
// slots, and composites the stack bottom-to-top onto a transparent canvas.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"canvasbot/internal/domain"
	"canvasbot/internal/storage"
)

// Engine composes canvases. It holds no per-render state beyond the parsed
// font cache; concurrent renders of different canvases are safe.
type Engine struct {
	store  storage.ObjectStore
	fonts  *fontCache
	logger zerolog.Logger
}

// NewEngine constructs a composition engine reading assets, photos, and fonts
// from the given object store.
func NewEngine(store storage.ObjectStore, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		fonts:  newFontCache(store),
		logger: logger.With().Str("component", "render").Logger(),
	}
}

// positioned is one resolved layer awaiting compositing.
type positioned struct {
	img image.Image
	x   int
	y   int
}

// Render resolves every layer of the settings document and returns the
// composed image encoded as PNG.
//
// Unfilled photo/text slots contribute nothing; that keeps one code path for
// both live previews and final renders. Fetch failures for static assets,
// filled photo slots, and fonts are fatal: a layer the template requires, or
// an input the user explicitly supplied, must never silently drop out of the
// output.
func (e *Engine) Render(ctx context.Context, settings *domain.CanvasSettings) ([]byte, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	layers := make([]positioned, 0, len(settings.LayersOrder))
	for _, ref := range domain.ParseLayers(settings.LayersOrder) {
		switch ref.Kind {
		case domain.LayerStatic:
			img, err := e.staticLayer(ctx, settings.TemplateSlug, ref.Path)
			if err != nil {
				return nil, err
			}
			layers = append(layers, positioned{img: img})

		case domain.LayerPhotoSlot:
			placement := settings.PhotoBySlot(ref.Slot)
			if !placement.Filled() {
				continue
			}
			data, err := e.store.Read(ctx, storage.CanvasInputKey(settings.ID, placement.PhotoRef))
			if err != nil {
				return nil, fmt.Errorf("%w: slot %s: %v", domain.ErrPhotoFetch, ref.Slot, err)
			}
			img, err := photoLayer(data, *placement)
			if err != nil {
				return nil, fmt.Errorf("%w: slot %s: %v", domain.ErrPhotoFetch, ref.Slot, err)
			}
			layers = append(layers, positioned{img: img, x: placement.X, y: placement.Y})

		case domain.LayerTextSlot:
			placement := settings.TextBySlot(ref.Slot)
			if !placement.Filled() {
				continue
			}
			fnt, err := e.fonts.fetch(ctx, settings.TemplateSlug, placement.Font)
			if err != nil {
				return nil, err
			}
			img, err := textLayer(*placement, fnt, e.fonts)
			if err != nil {
				return nil, err
			}
			layers = append(layers, positioned{img: img, x: placement.X, y: placement.Y})

		default:
			e.logger.Warn().Str("layer", ref.Path).Msg("unknown layer reference, skipping")
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, settings.Width, settings.Height))
	for _, layer := range layers {
		compose(canvas, layer.img, layer.x, layer.y)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// staticLayer fetches and decodes a template asset. Static layers are assumed
// pre-sized to the canvas and drawn at the origin without scaling.
func (e *Engine) staticLayer(ctx context.Context, templateSlug, layerName string) (image.Image, error) {
	key := storage.TemplateAssetKey(templateSlug, layerName)
	data, err := e.store.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrAssetFetch, key, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrAssetFetch, key, err)
	}
	return img, nil
}

// compose paints src over dst at (x, y) per the painter's algorithm.
func compose(dst *image.RGBA, src image.Image, x, y int) {
	bounds := src.Bounds()
	target := image.Rect(x, y, x+bounds.Dx(), y+bounds.Dy())
	draw.Draw(dst, target, src, bounds.Min, draw.Over)
}
