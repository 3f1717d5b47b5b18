// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Prismic repository
	PrismicEndpoint    string
	PrismicAccessToken string
	PrismicMaxRetries  int
	PrismicTimeout     time.Duration

	// Page generation
	Revalidate       time.Duration // ISR window for generated pages
	ListingPageSize  int
	StaticPathsLimit int
	FallbackWait     time.Duration // how long a lazy render may block before the placeholder

	// Presentation
	SiteURL      string // absolute base URL used in feed links
	Locale       string
	Timezone     string
	ReadingWPM   int  // 0 keeps the static reading-time figure
	SanitizeHTML bool // run rich text output through the sanitizer

	// Valkey (Redis-compatible cache). Empty host selects the in-memory store.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheCapacity  int

	// Load-more requests per minute per client.
	LoadMoreRate int
	// Proxies whose X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []netip.Prefix
}

// LoadEnvFile merges a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing or malformed.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "3000"),
		Env:  envOrDefault("APP_ENV", "development"),

		PrismicEndpoint:    os.Getenv("PRISMIC_ENDPOINT"),
		PrismicAccessToken: os.Getenv("PRISMIC_ACCESS_TOKEN"),

		SiteURL:  envOrDefault("SITE_URL", "http://localhost:3000"),
		Locale:   envOrDefault("SITE_LOCALE", "pt-BR"),
		Timezone: envOrDefault("SITE_TIMEZONE", "UTC"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	var err error
	if cfg.PrismicMaxRetries, err = envInt("PRISMIC_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.PrismicTimeout, err = envDuration("PRISMIC_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	revalidateSeconds, err := envInt("REVALIDATE_SECONDS", 60*60*24*7)
	if err != nil {
		return nil, err
	}
	cfg.Revalidate = time.Duration(revalidateSeconds) * time.Second
	if cfg.ListingPageSize, err = envInt("LISTING_PAGE_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.StaticPathsLimit, err = envInt("STATIC_PATHS_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.FallbackWait, err = envDuration("FALLBACK_WAIT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReadingWPM, err = envInt("READING_WPM", 0); err != nil {
		return nil, err
	}
	if cfg.SanitizeHTML, err = envBool("SANITIZE_HTML", true); err != nil {
		return nil, err
	}
	if cfg.CacheCapacity, err = envInt("CACHE_CAPACITY", 1024); err != nil {
		return nil, err
	}
	if cfg.LoadMoreRate, err = envInt("LOAD_MORE_RATE", 60); err != nil {
		return nil, err
	}
	if cfg.TrustedProxies, err = envPrefixes("TRUSTED_PROXIES"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations the site cannot be generated with.
func (c *Config) validate() error {
	if c.PrismicEndpoint == "" {
		return fmt.Errorf("PRISMIC_ENDPOINT must be set")
	}
	u, err := url.Parse(c.PrismicEndpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("PRISMIC_ENDPOINT is not a valid URL: %q", c.PrismicEndpoint)
	}
	if c.Env == "production" && u.Scheme != "https" {
		return fmt.Errorf("PRISMIC_ENDPOINT must use https in production")
	}
	if su, err := url.Parse(c.SiteURL); err != nil || su.Host == "" || (su.Scheme != "http" && su.Scheme != "https") {
		return fmt.Errorf("SITE_URL is not a valid URL: %q", c.SiteURL)
	}
	if c.Revalidate <= 0 {
		return fmt.Errorf("REVALIDATE_SECONDS must be positive")
	}
	if c.ListingPageSize < 1 || c.ListingPageSize > 100 {
		return fmt.Errorf("LISTING_PAGE_SIZE must be between 1 and 100")
	}
	if c.StaticPathsLimit < 0 || c.StaticPathsLimit > 100 {
		return fmt.Errorf("STATIC_PATHS_LIMIT must be between 0 and 100")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("SITE_TIMEZONE: %w", err)
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseValkey reports whether generated pages are kept in Valkey.
func (c *Config) UseValkey() bool {
	return c.ValkeyHost != ""
}

// Location returns the time zone dates are formatted in. validate has
// already checked the name, so the UTC fallback is never hit in practice.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
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
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// envPrefixes reads a comma-separated list of CIDRs or bare addresses.
func envPrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, field := range strings.Split(os.Getenv(key), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.Contains(field, "/") {
			p, err := netip.ParsePrefix(field)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
