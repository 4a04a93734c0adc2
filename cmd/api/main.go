package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/classdesk/classdesk-api/internal/config"
	"github.com/classdesk/classdesk-api/internal/handler"
	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/router"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/internal/storage"
	"github.com/classdesk/classdesk-api/pkg/upload"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.AppEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	store, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()

	uploader, err := newUploader(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize uploader")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	sanitizer := bluemonday.UGCPolicy()

	authService := service.NewAuthService(store, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	assignmentService := service.NewAssignmentService(store, validate, sanitizer, logger)
	submissionService := service.NewSubmissionService(store, validate, uploader, sanitizer, logger)
	dashboardService := service.NewDashboardService(store, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: cfg.MaxUploadMB * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, router.Dependencies{
		Config:     cfg,
		Auth:       handler.NewAuthHandler(authService, logger),
		Assignment: handler.NewAssignmentHandler(assignmentService, logger),
		Submission: handler.NewSubmissionHandler(submissionService, logger),
		Dashboard:  handler.NewDashboardHandler(dashboardService, logger),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("storage", cfg.StorageDriver).
		Str("environment", cfg.AppEnv).
		Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newUploader(cfg config.Config, logger zerolog.Logger) (upload.Uploader, error) {
	if cfg.UploadDriver == config.UploadCloudinary {
		return upload.NewCloudinary(upload.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	}

	return upload.NewDisk(cfg.UploadDir, logger)
}
