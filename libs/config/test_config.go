package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from TEST_* variables.
// It returns a Config with an empty database section when the test database is not
// configured, which lets callers skip the tests.
func LoadTestConfig() (*Config, error) {
	// Optional .env at the project root
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if cfg.Database.Host == "" || dbPortStr == "" || cfg.Database.User == "" || cfg.Database.DBName == "" {
		return &Config{}, nil
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	cfg.JWT.Secret = stringEnv("TEST_JWT_SECRET", "integration-test-secret")
	if cfg.JWT.AccessTokenExpiry, err = durationEnv("TEST_JWT_ACCESS_TOKEN_EXPIRY", time.Hour); err != nil {
		return nil, err
	}

	cfg.Storage.Driver = "local"
	cfg.Storage.BasePath = os.Getenv("TEST_MEDIA_BASE_PATH")

	return cfg, nil
}

// IsDatabaseConfigured reports whether a database section was loaded
func (c *Config) IsDatabaseConfigured() bool {
	return c.Database.Host != ""
}
