package catalog

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/entarch/archcat-go/internal/database"
	"github.com/entarch/archcat-go/internal/suggest"
)

// Config exposes a stable wrapper for catalog configuration in package mode.
type Config struct {
	URL       string
	AuthToken string

	// Suggestion engine tuning. Zero Weights fall back to the defaults.
	Weights   suggest.Weights
	TopN      int
	MinSignal float64
}

// LoadConfig reads configuration from the environment, honoring a local .env
// file when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	url := os.Getenv("LIBSQL_URL")
	if url == "" {
		url = "file:./archcat.db"
	}
	defaults := suggest.DefaultConfig()
	return &Config{
		URL:       url,
		AuthToken: os.Getenv("LIBSQL_AUTH_TOKEN"),
		Weights: suggest.Weights{
			TypeAffinity:       getEnvFloat("SUGGEST_WEIGHT_TYPE_AFFINITY", defaults.Weights.TypeAffinity),
			TagOverlap:         getEnvFloat("SUGGEST_WEIGHT_TAG_OVERLAP", defaults.Weights.TagOverlap),
			MetadataSimilarity: getEnvFloat("SUGGEST_WEIGHT_METADATA_SIMILARITY", defaults.Weights.MetadataSimilarity),
			Connectivity:       getEnvFloat("SUGGEST_WEIGHT_CONNECTIVITY", defaults.Weights.Connectivity),
		},
		TopN:      getEnvInt("SUGGEST_TOP_N", defaults.TopN),
		MinSignal: getEnvFloat("SUGGEST_MIN_SIGNAL", defaults.MinSignal),
	}
}

func (c *Config) toInternal() *database.Config {
	return &database.Config{
		URL:       c.URL,
		AuthToken: c.AuthToken,
	}
}

func (c *Config) suggestConfig() suggest.Config {
	cfg := suggest.Config{
		Weights:   c.Weights,
		TopN:      c.TopN,
		MinSignal: c.MinSignal,
	}
	defaults := suggest.DefaultConfig()
	if cfg.Weights == (suggest.Weights{}) {
		cfg.Weights = defaults.Weights
	}
	if cfg.TopN == 0 {
		cfg.TopN = defaults.TopN
	}
	return cfg
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
