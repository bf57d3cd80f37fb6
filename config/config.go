// Package config membaca konfigurasi dari environment (.env dimuat oleh main).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL string

	BookingHoldTTL time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string
	LogLevel       string
}

// Load reads the environment and applies defaults.
func Load() Config {
	port := getenv("APP_PORT", "")
	if port == "" {
		port = getenv("PORT", "8080")
	}
	return Config{
		Port:    port,
		GinMode: getenv("GIN_MODE", "debug"),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DBDSN:    os.Getenv("DB_DSN"),
		DBUser:   getenv("DB_USER", "root"),
		DBPass:   os.Getenv("DB_PASS"),
		DBHost:   getenv("DB_HOST", "127.0.0.1"),
		DBPort:   getenv("DB_PORT", "3306"),
		DBName:   getenv("DB_NAME", "venue_app"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       atoi(os.Getenv("REDIS_DB"), 0),
		CacheTTL:      parseDur(getenv("CACHE_TTL", "30s"), 30*time.Second),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		BookingHoldTTL: parseDur(getenv("BOOKING_HOLD_TTL", "30m"), 30*time.Minute),
		RateLimitRPS:   parseFloat(getenv("RATE_LIMIT_RPS", "50"), 50),
		RateLimitBurst: atoi(os.Getenv("RATE_LIMIT_BURST"), 10),
		CORSOrigin:     getenv("CORS_ORIGIN", "*"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
