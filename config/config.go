package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	ServerPort   int
	JWTSecretKey string

	AdminUser         string
	AdminPasswordHash string

	PlatformAPIBaseURL string
	PlatformBotToken   string

	DefaultRegistrationLimit int

	SnapshotInterval time.Duration
	R2AccountID      string
	R2AccessKeyID    string
	R2SecretAccessKey string
	R2BucketName     string
	R2PublicBaseURL  string
}

// Load загружает конфигурацию из переменных окружения. Опционально
// подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		AdminUser:          os.Getenv("ADMIN_USER"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		PlatformAPIBaseURL: getEnvOrDefault("PLATFORM_API_BASE_URL", "https://discord.com/api/v10"),
		PlatformBotToken:   os.Getenv("PLATFORM_BOT_TOKEN"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if cfg.AdminUser == "" || cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_USER and ADMIN_PASSWORD_HASH environment variables are not set")
	}
	if cfg.PlatformBotToken == "" {
		return nil, fmt.Errorf("PLATFORM_BOT_TOKEN environment variable is not set")
	}

	port, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	limit, err := parseIntEnv("DEFAULT_REGISTRATION_LIMIT", 250)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("DEFAULT_REGISTRATION_LIMIT must be positive, got %d", limit)
	}
	cfg.DefaultRegistrationLimit = limit

	intervalStr := getEnvOrDefault("SNAPSHOT_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL environment variable: %w", err)
	}
	cfg.SnapshotInterval = interval

	return cfg, nil
}

// SnapshotsEnabled: выгрузка срезов включается только при полной R2
// конфигурации.
func (c *Config) SnapshotsEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
