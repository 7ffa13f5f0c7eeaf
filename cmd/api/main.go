package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"canvasbot/internal/adapter/repo"
	"canvasbot/internal/canvas"
	"canvasbot/internal/http/handlers"
	httpapi "canvasbot/internal/http/httpapi"
	"canvasbot/internal/infra"
	"canvasbot/internal/infra/geoip"
	"canvasbot/internal/middleware"
	"canvasbot/internal/render"
	"canvasbot/internal/session"
	"canvasbot/internal/storage"
	"canvasbot/internal/template"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open object store")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	var lookup middleware.MarketLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Market
	}

	templates := template.NewService(store, repo.NewTemplateRepository(dbpool), logger)
	canvases := canvas.NewService(store, repo.NewCanvasRepository(dbpool), logger)
	engine := render.NewEngine(store, logger)
	sessions := session.NewService(canvases, engine, logger)

	if err := templates.Sync(ctx); err != nil {
		logger.Error().Err(err).Msg("initial template sync failed")
	}

	users := repo.NewUserRepository(dbpool)
	app := handlers.NewApp(templates, canvases, sessions, users, logger, cfg.RenderTimeout)
	router := httpapi.NewRouter(app, cfg.DefaultGeo, lookup)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
