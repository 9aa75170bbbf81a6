package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API   APIConfig
	Cart  CartConfig
	Redis RedisConfig
	Log   LogConfig
}

type APIConfig struct {
	BaseURL string
	PushURL string
	Timeout time.Duration
}

type CartConfig struct {
	// MaxQuantity is the per-line quantity ceiling enforced client-side.
	MaxQuantity int
	// RefreshCron schedules background cart refreshes. Empty disables the
	// scheduler.
	RefreshCron string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
			PushURL: getEnv("API_PUSH_URL", ""),
			Timeout: parseDuration(getEnv("API_TIMEOUT", "30s")),
		},
		Cart: CartConfig{
			MaxQuantity: parseInt(getEnv("CART_MAX_QUANTITY", "10")),
			RefreshCron: getEnv("CART_REFRESH_CRON", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	return config, nil
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 30s", s)
		return 30 * time.Second
	}
	return duration
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using 0", s)
		return 0
	}
	return n
}
