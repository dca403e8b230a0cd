// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database      DatabaseConfig
	Redis         RedisConfig
	Server        ServerConfig
	Logging       LoggingConfig
	CORS          CORSConfig
	JWT           JWTConfig
	Storage       StorageConfig
	Kafka         KafkaConfig
	TTS           TTSConfig
	APIKey        string
	MaxUploadSize int64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// StorageConfig holds media storage settings.
// Driver is either "local" or "minio".
type StorageConfig struct {
	Driver         string
	BasePath       string
	BaseURL        string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// KafkaConfig holds domain event publishing settings.
// Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// TTSConfig holds text-to-speech engine settings
type TTSConfig struct {
	EngineURL       string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CleanupSchedule string
	MaxAudioAge     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Allow all origins when nothing valid is configured (development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	if cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour); err != nil {
		return nil, err
	}

	// Redis configuration (TTS cache)
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// Storage configuration
	cfg.Storage.Driver = stringEnv("STORAGE_DRIVER", "local")
	if cfg.Storage.Driver != "local" && cfg.Storage.Driver != "minio" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %s", cfg.Storage.Driver)
	}
	cfg.Storage.BasePath = stringEnv("MEDIA_BASE_PATH", "./media")
	cfg.Storage.BaseURL = strings.TrimRight(stringEnv("MEDIA_BASE_URL", fmt.Sprintf("http://localhost:%d/api/v1/media", cfg.Server.Port)), "/")
	cfg.Storage.MinioEndpoint = stringEnv("MINIO_ENDPOINT", "localhost:9000")
	cfg.Storage.MinioAccessKey = stringEnv("MINIO_ACCESS_KEY", "minioadmin")
	cfg.Storage.MinioSecretKey = stringEnv("MINIO_SECRET_KEY", "minioadmin")
	cfg.Storage.MinioBucket = stringEnv("MINIO_BUCKET", "roadsafety-media")
	cfg.Storage.MinioUseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	// Kafka configuration (optional)
	cfg.Kafka.Brokers = parseList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.TopicPrefix = stringEnv("KAFKA_TOPIC_PREFIX", "roadsafety")

	// TTS configuration
	cfg.TTS.EngineURL = strings.TrimRight(stringEnv("TTS_ENGINE_URL", "http://localhost:5002"), "/")
	if cfg.TTS.Timeout, err = durationEnv("TTS_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.TTS.CacheTTL, err = durationEnv("TTS_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.TTS.CleanupSchedule = stringEnv("TTS_CLEANUP_SCHEDULE", "@every 1h")
	if cfg.TTS.MaxAudioAge, err = durationEnv("TTS_MAX_AUDIO_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	// API key for machine callers such as external schedulers (optional)
	cfg.APIKey = os.Getenv("API_KEY")

	maxUpload, err := intEnv("MAX_UPLOAD_SIZE", 10*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(maxUpload)

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&time_zone=%%27%%2B00%%3A00%%27&charset=utf8mb4&multiStatements=true&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// parseList splits a comma-separated value, dropping empty entries
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
