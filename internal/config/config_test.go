package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EVENTDESK_DATA_DIR", dir)
	t.Setenv("EVENTDESK_API_URL", "")
	t.Setenv("EVENTDESK_CHAT_REFRESH", "")
	t.Setenv("EVENTDESK_DEBUG", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.ChatRefresh != 5*time.Second {
		t.Errorf("ChatRefresh = %v, want 5s", cfg.ChatRefresh)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EVENTDESK_DATA_DIR", t.TempDir())
	t.Setenv("EVENTDESK_API_URL", "https://events.example.com/api/")
	t.Setenv("EVENTDESK_CHAT_REFRESH", "250ms")
	t.Setenv("EVENTDESK_DEBUG", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIURL != "https://events.example.com/api" {
		t.Errorf("APIURL = %q, trailing slash should be trimmed", cfg.APIURL)
	}
	if cfg.ChatRefresh != 250*time.Millisecond {
		t.Errorf("ChatRefresh = %v", cfg.ChatRefresh)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("debug flag should force debug level, got %q", cfg.LogLevel)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "EVENTDESK_CHAT_REFRESH", "soon"},
		{"zero refresh", "EVENTDESK_CHAT_REFRESH", "0s"},
		{"bad scheme", "EVENTDESK_API_URL", "ftp://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EVENTDESK_DATA_DIR", t.TempDir())
			t.Setenv("EVENTDESK_API_URL", "")
			t.Setenv("EVENTDESK_CHAT_REFRESH", "")
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
