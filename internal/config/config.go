package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port           string
	MistralAPIKey  string
	MistralBaseURL string
	OCRModel       string
	ExtractModel   string
	MaxUploadBytes int64
	ScratchDir     string
	LogLevel       string
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8000")
	cfg.MistralAPIKey = os.Getenv("MISTRAL_API_KEY")
	cfg.MistralBaseURL = envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1")
	cfg.OCRModel = envOrDefault("MISTRAL_OCR_MODEL", "mistral-ocr-latest")
	cfg.ExtractModel = envOrDefault("MISTRAL_EXTRACT_MODEL", "mistral-medium-latest")
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * 1024 * 1024

	cfg.ScratchDir = envOrDefault("SCRATCH_DIR", os.TempDir())
	absScratchDir, err := filepath.Abs(cfg.ScratchDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve scratch dir: %w", err)
	}
	cfg.ScratchDir = absScratchDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
