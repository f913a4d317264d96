package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty provider url",
			mutate: func(cfg *Config) {
				cfg.ProviderBaseURL = ""
			},
			wantErr: "provider base URL",
		},
		{
			name: "provider url without host",
			mutate: func(cfg *Config) {
				cfg.ProviderBaseURL = "http://"
			},
			wantErr: "provider base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "zero probe timeout",
			mutate: func(cfg *Config) {
				cfg.ProbeTimeout = 0
			},
			wantErr: "probe timeout",
		},
		{
			name: "threshold above one",
			mutate: func(cfg *Config) {
				cfg.ConfidenceThreshold = 1.5
			},
			wantErr: "confidence threshold",
		},
		{
			name: "negative threshold",
			mutate: func(cfg *Config) {
				cfg.ConfidenceThreshold = -0.1
			},
			wantErr: "confidence threshold",
		},
		{
			name: "zero cache size",
			mutate: func(cfg *Config) {
				cfg.CacheSize = 0
			},
			wantErr: "cache size",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("AUTOSEARCH_TEST_INT", "12")
	value, ok, err := EnvInt("AUTOSEARCH_TEST_INT")
	if err != nil || !ok || value != 12 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (12, true, nil)", value, ok, err)
	}

	t.Setenv("AUTOSEARCH_TEST_INT", "twelve")
	if _, _, err := EnvInt("AUTOSEARCH_TEST_INT"); err == nil {
		t.Fatalf("non-numeric value should error")
	}

	if _, ok, _ := EnvInt("AUTOSEARCH_TEST_INT_MISSING"); ok {
		t.Fatalf("missing variable should report not set")
	}
}
