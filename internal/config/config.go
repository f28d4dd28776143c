package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = "8080"
	defaultDatabaseURL     = "file:vetward.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultClinicTimezone  = "UTC"
	defaultCORSOrigins     = "*"
	defaultReadTimeout     = "15s"
	defaultWriteTimeout    = "15s"
	defaultShutdownTimeout = "10s"
	defaultMetricsEnabled  = "true"
)

type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	GinMode            string
	LogLevel           string
	LogFormat          string
	ClinicTimezone     string
	Location           *time.Location
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	MetricsEnabled     bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.GinMode = strings.TrimSpace(getEnv("GIN_MODE", defaultGinMode(cfg.AppEnv)))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))
	cfg.ClinicTimezone = strings.TrimSpace(getEnv("CLINIC_TIMEZONE", defaultClinicTimezone))
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins))
	cfg.MetricsEnabled = parseBoolEnv("METRICS_ENABLED", defaultMetricsEnabled)

	var err error
	cfg.ReadTimeout, err = parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		return nil, err
	}

	cfg.WriteTimeout, err = parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT must be > 0")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: console, json")
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be one of: debug, release, test")
	}

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", cfg.ClinicTimezone, err)
	}
	cfg.Location = loc

	if isProdLike(cfg.AppEnv) {
		if cfg.DatabaseURL == defaultDatabaseURL {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
		for _, o := range cfg.CORSAllowedOrigins {
			if o == "*" {
				return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must not contain *")
			}
		}
	}

	return nil
}

func defaultGinMode(env string) string {
	if isProdLike(env) {
		return "release"
	}
	return "debug"
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
