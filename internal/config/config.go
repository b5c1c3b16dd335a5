package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	Environment string
	LogLevel    string

	DatabaseURL string
	RedisURL    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIORegion    string

	FFmpegPath      string
	WorkDir         string
	JobTimeout      time.Duration
	DownloadTimeout time.Duration

	TranscribeAPIURL string
	TranscribeAPIKey string
	TranscribeModel  string
	ImageEditAPIURL  string
	ImageEditAPIKey  string

	OutputURLTTL  time.Duration
	InpaintURLTTL time.Duration

	RenderRateLimit  int
	RenderRateWindow time.Duration

	TracingEnabled  bool
	OTLPEndpoint    string
	TraceSampleRate float64
}

func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Port = getEnvInt("PORT", 8080)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Redis is optional; the trigger rate limiter fails open without it.
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
	if cfg.MinIOEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required")
	}

	cfg.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	if cfg.MinIOAccessKey == "" {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY is required")
	}

	cfg.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
	if cfg.MinIOSecretKey == "" {
		return nil, fmt.Errorf("MINIO_SECRET_KEY is required")
	}

	cfg.MinIOBucket = getEnvString("MINIO_BUCKET", "render-artifacts")
	cfg.MinIOUseSSL = getEnvBool("MINIO_USE_SSL", false)
	cfg.MinIORegion = getEnvString("MINIO_REGION", "us-east-1")

	cfg.FFmpegPath = getEnvString("FFMPEG_PATH", "ffmpeg")
	cfg.WorkDir = getEnvString("WORK_DIR", os.TempDir())

	cfg.JobTimeout, err = getEnvDuration("JOB_TIMEOUT", "15m")
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	cfg.DownloadTimeout, err = getEnvDuration("DOWNLOAD_TIMEOUT", "2m")
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}

	cfg.TranscribeAPIURL = getEnvString("TRANSCRIBE_API_URL", "https://api.openai.com/v1/audio/transcriptions")
	cfg.TranscribeAPIKey = os.Getenv("TRANSCRIBE_API_KEY")
	cfg.TranscribeModel = getEnvString("TRANSCRIBE_MODEL", "whisper-1")
	cfg.ImageEditAPIURL = getEnvString("IMAGE_EDIT_API_URL", "https://api.openai.com/v1/images/edits")
	cfg.ImageEditAPIKey = os.Getenv("IMAGE_EDIT_API_KEY")

	cfg.OutputURLTTL, err = getEnvDuration("RENDER_OUTPUT_URL_TTL", "168h")
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_OUTPUT_URL_TTL: %w", err)
	}
	cfg.InpaintURLTTL, err = getEnvDuration("INPAINT_OUTPUT_URL_TTL", "720h")
	if err != nil {
		return nil, fmt.Errorf("invalid INPAINT_OUTPUT_URL_TTL: %w", err)
	}

	cfg.RenderRateLimit = getEnvInt("RENDER_RATE_LIMIT", 30)
	cfg.RenderRateWindow, err = getEnvDuration("RENDER_RATE_WINDOW", "1m")
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_RATE_WINDOW: %w", err)
	}

	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getEnvString("OTLP_ENDPOINT", "localhost:4317")
	cfg.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", 1.0)

	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return time.ParseDuration(value)
}
