package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds search core configuration.
type Config struct {
	ProviderBaseURL string
	ProviderName    string
	APIKey          string
	Timeout         time.Duration
	ProbeTimeout    time.Duration
	UserAgent       string

	ConfidenceThreshold float64

	EnrichContent    bool
	EnrichMinBodyLen int

	CacheSize int
	CacheTTL  time.Duration

	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns conservative defaults for the search core.
func DefaultConfig() *Config {
	return &Config{
		ProviderBaseURL:     "https://api.tavily.com/search",
		ProviderName:        "tavily",
		Timeout:             10 * time.Second,
		ProbeTimeout:        5 * time.Second,
		UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		ConfidenceThreshold: 0.5,
		EnrichContent:       false,
		EnrichMinBodyLen:    80,
		CacheSize:           128,
		CacheTTL:            15 * time.Minute,
		MetricsAddr:         "",
		Verbose:             false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.ProviderBaseURL == "" {
		return fmt.Errorf("provider base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.ProviderBaseURL)
	if err != nil {
		return fmt.Errorf("invalid provider base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("provider base URL must include a host")
	}

	if c.ProviderName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within [0,1]")
	}
	if c.EnrichMinBodyLen < 0 {
		return fmt.Errorf("enrich min body length cannot be negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	return nil
}

// EnvString reads a string from the environment. The second return value
// reports whether the variable was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	return value, ok
}

// EnvInt reads an integer from the environment.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}
