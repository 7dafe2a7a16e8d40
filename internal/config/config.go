// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EmailJS holds the transactional email account settings.
type EmailJS struct {
	BaseURL         string
	ServiceID       string
	ContactTemplate string
	BookingTemplate string
	PublicKey       string
	PrivateKey      string
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	CMSBaseURL      string
	JWTBaseURL      string
	CMSTimeout      time.Duration
	CommentsPerPage int

	CacheTTL            time.Duration
	RedisURL            string
	MaintenanceInterval time.Duration
	FeedIdleTTL         time.Duration

	SecretKey     []byte // 32 bytes, or nil when sign-in is disabled.
	SecureCookies bool

	EmailJS EmailJS
}

// HasSecretKey reports whether a session encryption key is configured. Without
// one the login page reports sign-in as unavailable.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) == 32
}

// HasEmailJS reports whether the contact forms can be delivered.
func (c *Config) HasEmailJS() bool {
	return c.EmailJS.ServiceID != "" && c.EmailJS.PublicKey != "" &&
		c.EmailJS.ContactTemplate != "" && c.EmailJS.BookingTemplate != ""
}

// LoadDotenv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Load reads configuration from environment variables and returns a validated Config.
// AUTHORSITE_CMS_BASE_URL (the wp/v2 REST root) is required. The JWT endpoint
// defaults to the jwt-auth/v1 namespace beside it. Optional variables with
// defaults: AUTHORSITE_LISTEN_ADDR (127.0.0.1:8080), AUTHORSITE_DB_PATH
// (authorsite.db), AUTHORSITE_CMS_TIMEOUT (10s), AUTHORSITE_COMMENTS_PER_PAGE
// (10), AUTHORSITE_CACHE_TTL (24h), AUTHORSITE_MAINTENANCE_INTERVAL (15m),
// AUTHORSITE_FEED_IDLE_TTL (30m), AUTHORSITE_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:          envOr("AUTHORSITE_LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:              envOr("AUTHORSITE_DB_PATH", "authorsite.db"),
		RedisURL:            os.Getenv("AUTHORSITE_REDIS_URL"),
		CMSTimeout:          10 * time.Second,
		CommentsPerPage:     10,
		CacheTTL:            24 * time.Hour,
		MaintenanceInterval: 15 * time.Minute,
		FeedIdleTTL:         30 * time.Minute,
		LogLevel:            slog.LevelInfo,
		EmailJS: EmailJS{
			BaseURL:         envOr("AUTHORSITE_EMAILJS_BASE_URL", "https://api.emailjs.com"),
			ServiceID:       os.Getenv("AUTHORSITE_EMAILJS_SERVICE_ID"),
			ContactTemplate: os.Getenv("AUTHORSITE_EMAILJS_CONTACT_TEMPLATE"),
			BookingTemplate: os.Getenv("AUTHORSITE_EMAILJS_BOOKING_TEMPLATE"),
			PublicKey:       os.Getenv("AUTHORSITE_EMAILJS_PUBLIC_KEY"),
			PrivateKey:      os.Getenv("AUTHORSITE_EMAILJS_PRIVATE_KEY"),
		},
	}

	cms, ok := os.LookupEnv("AUTHORSITE_CMS_BASE_URL")
	if !ok || strings.TrimSpace(cms) == "" {
		return nil, errors.New("AUTHORSITE_CMS_BASE_URL is required")
	}
	if err := checkURL("AUTHORSITE_CMS_BASE_URL", cms); err != nil {
		return nil, err
	}
	cfg.CMSBaseURL = strings.TrimRight(cms, "/")

	cfg.JWTBaseURL = defaultJWTURL(cfg.CMSBaseURL)
	if v, ok := os.LookupEnv("AUTHORSITE_JWT_BASE_URL"); ok && v != "" {
		if err := checkURL("AUTHORSITE_JWT_BASE_URL", v); err != nil {
			return nil, err
		}
		cfg.JWTBaseURL = strings.TrimRight(v, "/")
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"AUTHORSITE_CMS_TIMEOUT", &cfg.CMSTimeout},
		{"AUTHORSITE_CACHE_TTL", &cfg.CacheTTL},
		{"AUTHORSITE_MAINTENANCE_INTERVAL", &cfg.MaintenanceInterval},
		{"AUTHORSITE_FEED_IDLE_TTL", &cfg.FeedIdleTTL},
	}
	for _, d := range durations {
		if err := parsePositiveDuration(d.key, d.dst); err != nil {
			return nil, err
		}
	}

	if v, ok := os.LookupEnv("AUTHORSITE_COMMENTS_PER_PAGE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("AUTHORSITE_COMMENTS_PER_PAGE must be an integer between 1 and 100, got %q", v)
		}
		cfg.CommentsPerPage = n
	}

	if v, ok := os.LookupEnv("AUTHORSITE_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("AUTHORSITE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("AUTHORSITE_SECURE_COOKIES"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("AUTHORSITE_SECURE_COOKIES has invalid boolean %q: %w", v, err)
		}
		cfg.SecureCookies = secure
	}

	if v, ok := os.LookupEnv("AUTHORSITE_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("AUTHORSITE_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("AUTHORSITE_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, v)
	}
	*dst = parsed
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

// defaultJWTURL maps https://host/wp-json/wp/v2 to https://host/wp-json/jwt-auth/v1.
func defaultJWTURL(cmsBase string) string {
	if root, ok := strings.CutSuffix(cmsBase, "/wp/v2"); ok {
		return root + "/jwt-auth/v1"
	}
	return cmsBase + "/jwt-auth/v1"
}
