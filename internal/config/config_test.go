package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:          "valid-secret-that-is-long-enough-for-testing",
		JWTIssuer:          "test-issuer",
		JWTAudience:        "test-audience",
		JWTExpiry:          time.Hour,
		Environment:        "development",
		DemoMode:           true,
		LoginRatePerMinute: 10,
	}
}

func TestLoad(t *testing.T) {
	// Test default configuration
	for _, key := range []string{"JWT_SECRET", "JWT_ISS", "JWT_AUD", "JWT_EXPIRY", "DB_DSN", "DEMO_MODE", "PUBLIC_BASE_URL", "REMINDER_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	// Check defaults
	if cfg.JWTSecret != DefaultJWTSecret {
		t.Errorf("Expected default JWT_SECRET, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "hardware-management-api" {
		t.Errorf("Expected default JWT_ISS, got %s", cfg.JWTIssuer)
	}
	if cfg.JWTAudience != "hardware-management-api" {
		t.Errorf("Expected default JWT_AUD, got %s", cfg.JWTAudience)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("Expected default JWT_EXPIRY, got %v", cfg.JWTExpiry)
	}
	if cfg.DBDSN != "" {
		t.Errorf("Expected empty DB_DSN, got %s", cfg.DBDSN)
	}
	if !cfg.DemoMode {
		t.Error("Expected demo mode on by default")
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("Expected default PUBLIC_BASE_URL, got %s", cfg.PublicBaseURL)
	}
	if cfg.ReminderSchedule != "0 8 * * *" {
		t.Errorf("Expected default REMINDER_SCHEDULE, got %s", cfg.ReminderSchedule)
	}
}

func TestLoadWithEnvironment(t *testing.T) {
	// Test with environment variables
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_ISS", "test-issuer")
	t.Setenv("JWT_AUD", "test-audience")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("USERS_FILE", "/etc/hw/users.yaml")
	t.Setenv("PUBLIC_BASE_URL", "https://hw.example.com/")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "3")

	cfg := Load()

	// Check environment values
	if cfg.JWTSecret != "test-secret-key" {
		t.Errorf("Expected JWT_SECRET from env, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "test-issuer" {
		t.Errorf("Expected JWT_ISS from env, got %s", cfg.JWTIssuer)
	}
	if cfg.JWTAudience != "test-audience" {
		t.Errorf("Expected JWT_AUD from env, got %s", cfg.JWTAudience)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("Expected JWT_EXPIRY from env, got %v", cfg.JWTExpiry)
	}
	if cfg.DemoMode {
		t.Error("Expected DEMO_MODE=false to disable demo mode")
	}
	if cfg.UsersFile != "/etc/hw/users.yaml" {
		t.Errorf("Expected USERS_FILE from env, got %s", cfg.UsersFile)
	}
	if cfg.PublicBaseURL != "https://hw.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.PublicBaseURL)
	}
	if cfg.LoginRatePerMinute != 3 {
		t.Errorf("Expected LOGIN_RATE_PER_MINUTE from env, got %d", cfg.LoginRatePerMinute)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, expectError: false},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = "" }, expectError: true},
		{name: "secret too short", mutate: func(c *Config) { c.JWTSecret = "short" }, expectError: true},
		{name: "empty issuer", mutate: func(c *Config) { c.JWTIssuer = "" }, expectError: true},
		{name: "empty audience", mutate: func(c *Config) { c.JWTAudience = "" }, expectError: true},
		{name: "negative expiry", mutate: func(c *Config) { c.JWTExpiry = -time.Hour }, expectError: true},
		{name: "zero expiry", mutate: func(c *Config) { c.JWTExpiry = 0 }, expectError: true},
		{name: "expiry too short", mutate: func(c *Config) { c.JWTExpiry = 30 * time.Second }, expectError: true},
		{name: "expiry too long", mutate: func(c *Config) { c.JWTExpiry = 31 * 24 * time.Hour }, expectError: true},
		{name: "users file required without demo mode", mutate: func(c *Config) { c.DemoMode = false }, expectError: true},
		{
			name: "users file without demo mode",
			mutate: func(c *Config) {
				c.DemoMode = false
				c.UsersFile = "users.yaml"
			},
			expectError: false,
		},
		{name: "negative login rate", mutate: func(c *Config) { c.LoginRatePerMinute = -1 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestLoadAndValidate(t *testing.T) {
	// Test with valid configuration
	t.Setenv("JWT_SECRET", "test-secret-key-that-is-long-enough-for-testing")
	t.Setenv("JWT_ISS", "test-issuer")
	t.Setenv("JWT_AUD", "test-audience")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("DEMO_MODE", "true")

	cfg, err := LoadAndValidate()
	if err != nil {
		t.Errorf("LoadAndValidate() failed with valid config: %v", err)
	}
	if cfg == nil {
		t.Error("LoadAndValidate() returned nil config with valid config")
	}

	// Test with invalid configuration
	t.Setenv("JWT_SECRET", "short")

	_, err = LoadAndValidate()
	if err == nil {
		t.Error("LoadAndValidate() should fail with invalid config")
	}
}

func TestProductionSecretValidation(t *testing.T) {
	// Test production environment validation
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("DEMO_MODE", "true")

	cfg := Load()
	err := cfg.Validate()
	if err == nil {
		t.Error("Production validation should fail with default secret")
	}

	// Test with proper production secret
	t.Setenv("JWT_SECRET", "proper-production-secret-that-is-long-enough")

	cfg = Load()
	err = cfg.Validate()
	if err != nil {
		t.Errorf("Production validation should pass with proper secret: %v", err)
	}
}
