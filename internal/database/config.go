package database

import (
	"os"
)

// Config holds the database configuration
type Config struct {
	URL       string
	AuthToken string
}

// NewConfig creates a new Config from environment variables
func NewConfig() *Config {
	url := os.Getenv("LIBSQL_URL")
	if url == "" {
		url = "file:./archcat.db"
	}

	return &Config{
		URL:       url,
		AuthToken: os.Getenv("LIBSQL_AUTH_TOKEN"),
	}
}
