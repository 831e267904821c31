package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MerlinStacks/woodash-forecast/internal/alert"
	"github.com/MerlinStacks/woodash-forecast/internal/api"
	"github.com/MerlinStacks/woodash-forecast/internal/cache"
	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/forecast"
	"github.com/MerlinStacks/woodash-forecast/internal/repository/postgres"
	"github.com/MerlinStacks/woodash-forecast/internal/service"
	"github.com/MerlinStacks/woodash-forecast/internal/storage"
	"github.com/MerlinStacks/woodash-forecast/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	engine := forecast.NewEngine(catalogRepo, salesRepo, cfg.Forecast)

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, continuing without cache")
		forecastCache = cache.NewNoopForecastCache()
	}

	alertSink, err := alert.NewSink(cfg.Alert, cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("alert sink unavailable, continuing without alert publication")
		alertSink = alert.NewNoopSink()
	}

	var reportStore service.ReportStore
	if cfg.Export.Enabled {
		store, err := storage.NewMinioClient(cfg.Export)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("report storage unavailable, export disabled")
		} else {
			reportStore = store
		}
	}

	forecastService := service.NewForecastService(engine, forecastCache, alertSink, reportStore, cfg.Forecast)

	router := api.NewRouter(&api.Services{ForecastService: forecastService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
