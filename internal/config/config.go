package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ServiceName    = "perfume-pos"
	ServiceVersion = "1.0.0"
)

const (
	DefaultPort       = "3000"
	DefaultKafkaTopic = "pos.events"
	DefaultJWTTTL     = 24 * time.Hour
	TracesPath        = "/v1/traces"
)

type Config struct {
	Env  string
	Port string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	JWTSecret string
	JWTTTL    time.Duration

	Location *time.Location
	LogLevel string

	KafkaBrokers []string
	KafkaTopic   string

	OtelEndpoint string

	OwnerEmail    string
	OwnerPassword string
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", DefaultPort),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        getenv("DB_PORT", "5432"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        DefaultJWTTTL,
		LogLevel:      getenv("LOG_LEVEL", "info"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC", DefaultKafkaTopic),
		OtelEndpoint:  os.Getenv("OTEL_ENDPOINT"),
		OwnerEmail:    os.Getenv("OWNER_EMAIL"),
		OwnerPassword: os.Getenv("OWNER_PASSWORD"),
	}

	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("JWT_TTL_HOURS must be a positive integer, got %q", raw)
		}
		cfg.JWTTTL = time.Duration(hours) * time.Hour
	}

	loc, err := time.LoadLocation(getenv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DSN returns DATABASE_URL or builds a key/value DSN from the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.Location.String(),
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
