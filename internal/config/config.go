package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development secret; production refuses to start with it
const DefaultJWTSecret = "your-secret-key-change-in-production"

const (
	minSecretLength = 32
	minJWTExpiry    = time.Minute
	maxJWTExpiry    = 30 * 24 * time.Hour
)

type Config struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	Environment string
	HTTPAddr    string
	LogLevel    string

	// DBDSN selects the PostgreSQL store; empty keeps everything in memory
	DBDSN     string
	UsersFile string
	DemoMode  bool

	NotifyWebhookURL string
	PublicBaseURL    string

	EnableMetrics bool
	EnableSwagger bool

	LoginRatePerMinute int
	ReminderSchedule   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment values win.
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{
		JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:   getEnv("JWT_ISS", "hardware-management-api"),
		JWTAudience: getEnv("JWT_AUD", "hardware-management-api"),
		JWTExpiry:   24 * time.Hour, // Default to 24 hours

		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDSN:     os.Getenv("DB_DSN"),
		UsersFile: os.Getenv("USERS_FILE"),
		DemoMode:  getBool("DEMO_MODE", true),

		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		EnableMetrics: getBool("ENABLE_METRICS", false),
		EnableSwagger: getBool("ENABLE_SWAGGER", false),

		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
	}

	// Parse JWT expiry from environment if provided
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// LoadAndValidate loads the configuration and rejects it when invalid
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate checks the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISS is required"))
	}
	if c.JWTAudience == "" {
		errs = append(errs, errors.New("JWT_AUD is required"))
	}
	if c.JWTExpiry < minJWTExpiry || c.JWTExpiry > maxJWTExpiry {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY must be between %s and %s", minJWTExpiry, maxJWTExpiry))
	}
	if !c.DemoMode && c.UsersFile == "" {
		errs = append(errs, errors.New("USERS_FILE is required when DEMO_MODE is off"))
	}
	if c.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE cannot be negative"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
