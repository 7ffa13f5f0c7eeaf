// rendertool composes a canvas straight from an object-store directory,
// without the API or the database. Useful for checking a template locally:
//
//	rendertool -storage ./data -canvas <id> -out out.png
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"canvasbot/internal/domain"
	"canvasbot/internal/infra"
	"canvasbot/internal/render"
	"canvasbot/internal/storage"
)

func main() {
	var (
		storagePath  = flag.String("storage", "./data", "object store root directory")
		canvasID     = flag.String("canvas", "", "canvas id to render")
		settingsFile = flag.String("settings", "", "render from a settings file instead of a stored canvas")
		outFile      = flag.String("out", "out.png", "output file")
	)
	flag.Parse()

	logger := infra.NewLogger("development")

	if err := run(*storagePath, *canvasID, *settingsFile, *outFile); err != nil {
		logger.Fatal().Err(err).Msg("render failed")
	}
	logger.Info().Str("out", *outFile).Msg("rendered")
}

func run(storagePath, canvasID, settingsFile, outFile string) error {
	ctx := context.Background()

	store, err := storage.NewFileStore(storagePath)
	if err != nil {
		return err
	}

	var settings domain.CanvasSettings
	switch {
	case settingsFile != "":
		data, err := os.ReadFile(settingsFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("decode %s: %w", settingsFile, err)
		}
	case canvasID != "":
		if err := storage.ReadJSON(ctx, store, storage.CanvasSettingsKey(canvasID), &settings); err != nil {
			return err
		}
	default:
		return fmt.Errorf("either -canvas or -settings is required")
	}

	engine := render.NewEngine(store, infra.NewLogger("development"))
	img, err := engine.Render(ctx, &settings)
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, img, 0o644)
}
