package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"canvasbot/internal/domain"
)

const (
	minFontSize       = 10.0
	fontSizeDecrement = 2.0
	defaultFontSize   = 20.0
	defaultLineHeight = 1.2
)

// textLayer rasterizes one text placement into a transparent buffer sized to
// the placement bounds, ready for compositing at the placement's (x, y).
// Overflow never fails: when maxHeight is set the font shrinks in fixed steps
// until the wrapped block fits or the size floor is reached.
func textLayer(placement domain.TextPlacement, fnt *opentype.Font, fonts *fontCache) (*image.RGBA, error) {
	size := placement.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	lineHeight := placement.LineHeight
	if lineHeight <= 0 {
		lineHeight = defaultLineHeight
	}

	var (
		face   font.Face
		lines  []string
		lineH  int
		blockH int
	)
	for {
		var err error
		face, err = fonts.face(fnt, size)
		if err != nil {
			return nil, err
		}
		lines = wrapText(placement.Text, placement.MaxWidth, face, placement.LetterSpacing)
		lineH = int(size * lineHeight)
		if lineH < 1 {
			lineH = 1
		}
		blockH = lineH * len(lines)
		if placement.MaxHeight <= 0 || blockH <= placement.MaxHeight || size-fontSizeDecrement < minFontSize {
			break
		}
		size -= fontSizeDecrement
	}

	width := placement.MaxWidth
	height := placement.MaxHeight
	if height <= 0 {
		height = blockH
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	metrics := face.Metrics()

	// First baseline offset by vertical anchor.
	blockTop := 0
	switch placement.Baseline {
	case domain.BaselineBottom:
		blockTop = height - blockH
	case domain.BaselineTop:
		blockTop = 0
	default:
		blockTop = (height - blockH) / 2
	}
	baseline := blockTop + metrics.Ascent.Ceil()

	textColor := parseHexColor(placement.FontColor, color.RGBA{A: 0xff})

	if sh := placement.Shadow; sh != nil {
		shadow := image.NewRGBA(out.Bounds())
		shadowColor := parseHexColor(sh.Color, color.RGBA{A: 0xff})
		drawLines(shadow, face, lines, placement, width, baseline+int(sh.DY), int(sh.DX), lineH, shadowColor)
		var blurred image.Image = shadow
		if sh.Blur > 0 {
			blurred = imaging.Blur(shadow, sh.Blur)
		}
		compose(out, blurred, 0, 0)
	}

	drawLines(out, face, lines, placement, width, baseline, 0, lineH, textColor)
	return out, nil
}

// drawLines paints every wrapped line, re-anchoring each line horizontally on
// its own measured width.
func drawLines(dst *image.RGBA, face font.Face, lines []string, placement domain.TextPlacement, width, baseline, dx, lineH int, col color.Color) {
	y := baseline
	for _, line := range lines {
		lineWidth := measureLine(face, line, placement.LetterSpacing)
		x := 0
		switch placement.Align {
		case domain.AlignCenter:
			x = (width - lineWidth) / 2
		case domain.AlignRight:
			x = width - lineWidth
		}
		drawLine(dst, face, line, x+dx, y, col, placement.LetterSpacing)
		y += lineH
	}
}

// wrapText greedily packs words into lines that fit maxWidth at the given
// face. Explicit newlines are respected; a single word wider than maxWidth is
// emitted on its own line without hyphenation.
func wrapText(text string, maxWidth int, face font.Face, letterSpacing float64) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if measureLine(face, candidate, letterSpacing) > maxWidth {
				lines = append(lines, current)
				current = word
			} else {
				current = candidate
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// measureLine returns the pixel advance of a line including letter spacing.
// Runes the face has no glyph for contribute nothing rather than failing.
func measureLine(face font.Face, line string, letterSpacing float64) int {
	var advance fixed.Int26_6
	runes := 0
	for _, r := range line {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		advance += adv
		runes++
	}
	width := advance.Ceil()
	if runes > 1 {
		width += int(letterSpacing * float64(runes-1))
	}
	return width
}

// drawLine draws one line at (x, y) baseline. With letter spacing the runes
// are placed one by one, advancing the dot manually between glyphs.
func drawLine(dst *image.RGBA, face font.Face, line string, x, y int, col color.Color, letterSpacing float64) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	if letterSpacing == 0 {
		drawer.DrawString(line)
		return
	}

	spacing := fixed.Int26_6(letterSpacing * 64)
	runes := []rune(line)
	for i, r := range runes {
		drawer.DrawString(string(r))
		if i < len(runes)-1 {
			drawer.Dot.X += spacing
		}
	}
}

// parseHexColor parses #rrggbb or #rrggbbaa, falling back when malformed.
func parseHexColor(hex string, fallback color.RGBA) color.RGBA {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return fallback
	}
	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return fallback
	}
	a := uint64(0xff)
	if len(hex) == 8 {
		parsed, err := strconv.ParseUint(hex[6:8], 16, 8)
		if err != nil {
			return fallback
		}
		a = parsed
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}
