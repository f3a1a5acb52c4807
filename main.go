package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gocleanse/app"
	"gocleanse/internal/api"
	"gocleanse/internal/config"
	"gocleanse/internal/logging"
	"gocleanse/internal/upload"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.Setup(appConfig.Logging.Level, appConfig.Logging.Format)
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, closeStore, err := app.NewFromConfig(ctx, appConfig, logger)
	if err != nil {
		logger.Error("failed to initialize cleaning service", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	uploads := upload.NewLocalFileStorage(&upload.StorageConfig{
		BasePath:          appConfig.Server.UploadDir,
		MaxFileSize:       appConfig.Server.MaxUploadBytes,
		AllowedExtensions: upload.DefaultStorageConfig().AllowedExtensions,
	})

	server := api.NewServer(service, uploads, api.Options{
		Addr:            ":" + appConfig.Server.Port,
		MaxUploadBytes:  appConfig.Server.MaxUploadBytes,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout,
	}, logger)

	logger.Info("starting gocleanse server",
		"port", appConfig.Server.Port,
		"artifact_store", appConfig.Storage.Backend,
	)
	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
