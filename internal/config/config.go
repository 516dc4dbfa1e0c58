// Package config handles application configuration loading. Values come
// from environment variables, optionally layered over a YAML file named by
// REVISTA_CONFIG, and are exposed through a single flat Config struct.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection. DatabaseURL, when set, wins over the parts
	// (hosted databases usually hand out a full pooler URL).
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Supabase Auth
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	// Site
	SiteName      string
	DefaultLocale string
	Locales       []string
	DefaultBlogID string

	// S3-compatible storage for article covers
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BucketPublic string
	S3PublicURL    string

	// Outbound content webhook
	WebhookURL    string
	WebhookSecret string

	// Per-IP rate limit for public and auth routes
	RateLimitRPS   float64
	RateLimitBurst int
}

var defaults = map[string]any{
	"APP_HOST":          "0.0.0.0",
	"APP_PORT":          "8080",
	"APP_ENV":           "development",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "revista",
	"POSTGRES_PASSWORD": "changeme",
	"POSTGRES_DB":       "revista",
	"POSTGRES_SSLMODE":  "disable",
	"VALKEY_HOST":       "localhost",
	"VALKEY_PORT":       "6379",
	"SUPABASE_URL":      "http://localhost:54321",
	"SITE_NAME":         "Revista",
	"DEFAULT_LOCALE":    "pt",
	"LOCALES":           "pt,en,es",
	"S3_REGION":         "us-east-1",
	"S3_BUCKET_PUBLIC":  "revista-public",
	"RATE_LIMIT_RPS":    10.0,
	"RATE_LIMIT_BURST":  30,
}

// Load reads configuration from the environment (and the optional file
// named by REVISTA_CONFIG), applying development defaults. Returns an
// error if critical values are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := os.Getenv("REVISTA_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		DBHost:      v.GetString("POSTGRES_HOST"),
		DBPort:      v.GetString("POSTGRES_PORT"),
		DBUser:      v.GetString("POSTGRES_USER"),
		DBPassword:  v.GetString("POSTGRES_PASSWORD"),
		DBName:      v.GetString("POSTGRES_DB"),
		DBSSLMode:   v.GetString("POSTGRES_SSLMODE"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),

		SupabaseURL:       strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAnonKey:   v.GetString("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: v.GetString("SUPABASE_JWT_SECRET"),

		SiteName:      v.GetString("SITE_NAME"),
		DefaultLocale: strings.ToLower(v.GetString("DEFAULT_LOCALE")),
		Locales:       splitList(v.GetString("LOCALES")),
		DefaultBlogID: v.GetString("DEFAULT_BLOG_ID"),

		S3Endpoint:     v.GetString("S3_ENDPOINT"),
		S3Region:       v.GetString("S3_REGION"),
		S3AccessKey:    v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:    v.GetString("S3_SECRET_KEY"),
		S3BucketPublic: v.GetString("S3_BUCKET_PUBLIC"),
		S3PublicURL:    v.GetString("S3_PUBLIC_URL"),

		WebhookURL:    v.GetString("WEBHOOK_URL"),
		WebhookSecret: v.GetString("WEBHOOK_SECRET"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
	}

	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{cfg.DefaultLocale}
	}
	if !contains(cfg.Locales, cfg.DefaultLocale) {
		return nil, fmt.Errorf("DEFAULT_LOCALE %q is not listed in LOCALES %v", cfg.DefaultLocale, cfg.Locales)
	}

	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SupabaseJWTSecret == "" {
			return nil, fmt.Errorf("SUPABASE_JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether S3 credentials are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
