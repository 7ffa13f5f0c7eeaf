package render

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"canvasbot/internal/domain"
	"canvasbot/internal/storage"
)

// fontCache parses template fonts once per storage key and hands out faces at
// arbitrary sizes. Parsed fonts are immutable, so the cache is safe for
// concurrent renders.
type fontCache struct {
	store storage.ObjectStore
	dpi   float64

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

func newFontCache(store storage.ObjectStore) *fontCache {
	return &fontCache{
		store: store,
		dpi:   72,
		fonts: make(map[string]*opentype.Font),
	}
}

// fetch loads and parses the font file referenced by a text placement. A
// placement that names no font gets the bundled Go Regular face. Any other
// failure maps to domain.ErrFontUnavailable: a template that names a font the
// store cannot serve is not renderable.
func (c *fontCache) fetch(ctx context.Context, templateSlug, fontFile string) (*opentype.Font, error) {
	if fontFile == "" {
		return c.bundled()
	}
	key := storage.TemplateFontKey(templateSlug, fontFile)

	c.mu.Lock()
	cached, ok := c.fonts[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := c.store.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFontUnavailable, key, err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrFontUnavailable, key, err)
	}

	c.mu.Lock()
	c.fonts[key] = parsed
	c.mu.Unlock()
	return parsed, nil
}

// bundled parses the embedded Go Regular font, cached under an empty key.
func (c *fontCache) bundled() (*opentype.Font, error) {
	c.mu.Lock()
	cached, ok := c.fonts[""]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: parse bundled font: %v", domain.ErrFontUnavailable, err)
	}
	c.mu.Lock()
	c.fonts[""] = parsed
	c.mu.Unlock()
	return parsed, nil
}

// face builds a font.Face at the requested size. Faces are cheap relative to
// parsing and are not shared: font.Face is not safe for concurrent use.
func (c *fontCache) face(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: face at %.1fpx: %v", domain.ErrFontUnavailable, size, err)
	}
	return face, nil
}
