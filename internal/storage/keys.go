package storage

import "fmt"

// Object key layout:
//
//	templates/{slug}/settings.json       template layout document
//	templates/{slug}/assets/{layer}      static layer images
//	templates/{slug}/fonts/{file}        font binaries
//	templates/{slug}/preview.png         template gallery preview
//	canvases/{id}/settings.json          per-instance layout document
//	canvases/{id}/inputs/{slot}.{ext}    user-supplied inputs
//	canvases/{id}/preview.png            cached preview render
//	canvases/{id}/final.png              confirmed final render

const TemplatesPrefix = "templates/"

func TemplateSettingsKey(slug string) string {
	return fmt.Sprintf("templates/%s/settings.json", slug)
}

func TemplateAssetKey(slug, layerName string) string {
	return fmt.Sprintf("templates/%s/assets/%s", slug, layerName)
}

func TemplateFontKey(slug, fontFile string) string {
	return fmt.Sprintf("templates/%s/fonts/%s", slug, fontFile)
}

func TemplatePreviewKey(slug string) string {
	return fmt.Sprintf("templates/%s/preview.png", slug)
}

func CanvasPrefix(canvasID string) string {
	return fmt.Sprintf("canvases/%s/", canvasID)
}

func CanvasSettingsKey(canvasID string) string {
	return fmt.Sprintf("canvases/%s/settings.json", canvasID)
}

func CanvasInputKey(canvasID, fileName string) string {
	return fmt.Sprintf("canvases/%s/inputs/%s", canvasID, fileName)
}

func CanvasPreviewKey(canvasID string) string {
	return fmt.Sprintf("canvases/%s/preview.png", canvasID)
}

func CanvasFinalKey(canvasID string) string {
	return fmt.Sprintf("canvases/%s/final.png", canvasID)
}
