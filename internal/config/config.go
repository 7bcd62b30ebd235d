package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port         string
	DatabaseFile string
	LogLevel     string

	// S3 archive of uploaded artifacts
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Inference endpoint (OpenRouter-compatible chat completions)
	InferenceAPIKey  string
	InferenceBaseURL string
	InferenceModel   string

	// Upload limits
	MaxFileSize int64
}

// Load reads configuration from the environment. The inference API key
// may come from INFERENCE_API_KEY directly or from a file named by
// INFERENCE_API_KEY_FILE; having neither is fatal.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseFile:      getEnv("DATABASE_FILE", "data/insights.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "uploads"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		InferenceAPIKey:   getEnv("INFERENCE_API_KEY", ""),
		InferenceBaseURL:  getEnv("INFERENCE_BASE_URL", "https://openrouter.ai/api/v1"),
		InferenceModel:    getEnv("INFERENCE_MODEL", "meta-llama/llama-3.1-8b-instruct"),
		MaxFileSize:       5 * 1024 * 1024,
	}

	if cfg.InferenceAPIKey == "" {
		if keyFile := os.Getenv("INFERENCE_API_KEY_FILE"); keyFile != "" {
			data, err := os.ReadFile(keyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read inference key file %s: %w", keyFile, err)
			}
			cfg.InferenceAPIKey = strings.TrimSpace(string(data))
		}
	}

	if cfg.InferenceAPIKey == "" {
		return nil, fmt.Errorf("INFERENCE_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
