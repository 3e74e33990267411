package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything resolved from the environment at process start.
// Nothing reads the environment after Load returns.
type Config struct {
	Port      string
	UploadDir string

	MongoURI string
	MongoDB  string

	AIAPIURL      string
	AIAPIKey      string
	AIModel       string
	AITimeout     time.Duration
	EnrichWorkers int
}

// Load reads configuration from environment variables, falling back to a local
// .env file if present. Values already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getenv("PORT", "3005"),
		UploadDir: getenv("UPLOAD_DIR", "uploads"),
		MongoURI:  getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "shipTracking"),
		AIAPIURL:  getenv("AI_API_URL", "https://api.deepseek.com/chat/completions"),
		AIAPIKey:  strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AIModel:   getenv("AI_MODEL", "deepseek-chat"),
	}

	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is required")
	}

	timeoutSec, err := intEnv("AI_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("AI_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.AITimeout = time.Duration(timeoutSec) * time.Second

	workers, err := intEnv("ENRICH_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("ENRICH_WORKERS must be at least 1")
	}
	cfg.EnrichWorkers = workers

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

// getenv returns env var value or default.
func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
