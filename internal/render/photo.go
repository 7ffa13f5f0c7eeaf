package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"canvasbot/internal/domain"
)

// photoLayer decodes a user photo and scales it into the placement box.
// Cover crops to fill the box, contain letterboxes inside a transparent box,
// both honoring the placement anchor. A border radius rounds the corners of
// the finished layer.
func photoLayer(data []byte, placement domain.PhotoPlacement) (image.Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo %s: %w", placement.SlotName, err)
	}
	if placement.Width <= 0 || placement.Height <= 0 {
		// Placement without a target box keeps the source size.
		return src, nil
	}

	var fitted image.Image
	switch placement.Fit {
	case domain.FitContain:
		scaled := imaging.Fit(src, placement.Width, placement.Height, imaging.Lanczos)
		box := imaging.New(placement.Width, placement.Height, color.NRGBA{})
		fitted = imaging.Paste(box, scaled, anchorOffset(placement.Anchor, placement.Width, placement.Height, scaled.Bounds().Dx(), scaled.Bounds().Dy()))
	default:
		fitted = imaging.Fill(src, placement.Width, placement.Height, anchorPoint(placement.Anchor), imaging.Lanczos)
	}

	if placement.BorderRadius > 0 {
		fitted = roundCorners(fitted, placement.BorderRadius)
	}
	return fitted, nil
}

// anchorPoint maps a placement anchor onto the crop anchor used for cover.
func anchorPoint(anchor domain.Anchor) imaging.Anchor {
	switch anchor {
	case domain.AnchorTop:
		return imaging.Top
	case domain.AnchorBottom:
		return imaging.Bottom
	case domain.AnchorLeft:
		return imaging.Left
	case domain.AnchorRight:
		return imaging.Right
	default:
		return imaging.Center
	}
}

// anchorOffset positions a letterboxed image inside its placement box.
func anchorOffset(anchor domain.Anchor, boxW, boxH, imgW, imgH int) image.Point {
	x := (boxW - imgW) / 2
	y := (boxH - imgH) / 2
	switch anchor {
	case domain.AnchorTop:
		y = 0
	case domain.AnchorBottom:
		y = boxH - imgH
	case domain.AnchorLeft:
		x = 0
	case domain.AnchorRight:
		x = boxW - imgW
	}
	return image.Pt(x, y)
}

// roundCorners clips the image to a rounded rectangle over a transparent
// background.
func roundCorners(img image.Image, radius float64) image.Image {
	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawRoundedRectangle(0, 0, float64(bounds.Dx()), float64(bounds.Dy()), radius)
	dc.Clip()
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}
