// Package config loads server configuration from SMARTFLEX_* environment
// variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Addr    string
	DBPath  string
	Env     string
	BaseURL string

	JWTSecret []byte
	CookieKey []byte
	CSRFKey   []byte
	TokenTTL  time.Duration

	// StrictRoles denies guarded views to sessions whose role is absent.
	StrictRoles bool

	ResendKey string
	EmailFrom string

	// Superadmin seeded on first start when both are set.
	AdminEmail    string
	AdminPassword string

	// RateLimit is requests per minute per client IP on auth endpoints.
	RateLimit   int
	SlowRequest time.Duration
	SlowQuery   time.Duration
	LogLevel    slog.Level
}

// IsProduction reports whether SMARTFLEX_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var (
	ErrMissingSecret = errors.New("secret is required in production")
	ErrBadKey        = errors.New("key must be hex encoded")
)

// Load reads configuration from environment variables with fallback defaults.
// Missing secrets are generated (with a warning) outside production.
// POST: Returns a complete Config or the first invalid setting
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          envOrDefault("SMARTFLEX_ADDR", ":8080"),
		DBPath:        envOrDefault("SMARTFLEX_DB", "smartflex.db"),
		Env:           envOrDefault("SMARTFLEX_ENV", "development"),
		ResendKey:     os.Getenv("SMARTFLEX_RESEND_KEY"),
		EmailFrom:     envOrDefault("SMARTFLEX_EMAIL_FROM", "SmartFlex <noreply@smartflex.in>"),
		AdminEmail:    os.Getenv("SMARTFLEX_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("SMARTFLEX_ADMIN_PASSWORD"),
	}

	var err error
	if cfg.TokenTTL, err = envDuration("SMARTFLEX_TOKEN_TTL", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StrictRoles, err = envBool("SMARTFLEX_STRICT_ROLES", false); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = envInt("SMARTFLEX_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	ms, err := envInt("SMARTFLEX_SLOW_REQUEST_MS", 500)
	if err != nil {
		return nil, err
	}
	cfg.SlowRequest = time.Duration(ms) * time.Millisecond
	if ms, err = envInt("SMARTFLEX_SLOW_QUERY_MS", 50); err != nil {
		return nil, err
	}
	cfg.SlowQuery = time.Duration(ms) * time.Millisecond
	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("SMARTFLEX_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("SMARTFLEX_LOG_LEVEL: %w", err)
	}

	if strings.HasPrefix(cfg.Addr, ":") {
		cfg.BaseURL = envOrDefault("SMARTFLEX_BASE_URL", "http://localhost"+cfg.Addr)
	} else {
		cfg.BaseURL = envOrDefault("SMARTFLEX_BASE_URL", "http://"+cfg.Addr)
	}

	if secret := os.Getenv("SMARTFLEX_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	}
	if cfg.CookieKey, err = hexKey("SMARTFLEX_COOKIE_KEY", 32, 64); err != nil {
		return nil, err
	}
	if cfg.CSRFKey, err = hexKey("SMARTFLEX_CSRF_KEY", 32); err != nil {
		return nil, err
	}
	if err := cfg.fillSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillSecrets() error {
	missing := map[string]*[]byte{
		"SMARTFLEX_JWT_SECRET": &c.JWTSecret,
		"SMARTFLEX_COOKIE_KEY": &c.CookieKey,
		"SMARTFLEX_CSRF_KEY":   &c.CSRFKey,
	}
	for name, dst := range missing {
		if len(*dst) > 0 {
			continue
		}
		if c.IsProduction() {
			return fmt.Errorf("%s: %w", name, ErrMissingSecret)
		}
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return err
		}
		*dst = key
		slog.Warn("config_generated_secret", "name", name, "note", "sessions will not survive a restart")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: expected a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: expected true or false, got %q", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: expected a positive duration like 60m, got %q", key, v)
	}
	return d, nil
}

// hexKey decodes a hex key from key whose length must be one of sizes.
// An unset variable returns nil.
func hexKey(key string, sizes ...int) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, ErrBadKey)
	}
	for _, n := range sizes {
		if len(b) == n {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%s: decoded key is %d bytes, want one of %v", key, len(b), sizes)
}
