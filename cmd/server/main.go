package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atomikkus/therapies-api/internal/config"
	httpserver "github.com/atomikkus/therapies-api/internal/http"
	"github.com/atomikkus/therapies-api/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.MistralAPIKey == "" {
		zlog.Warn("MISTRAL_API_KEY is not set; report processing will fail until it is configured")
	}

	srv, err := httpserver.NewServer(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to create server", zap.Error(err))
	}

	zlog.Info("starting medical report processing API", zap.String("port", cfg.Port))
	if err := srv.Run(); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}
