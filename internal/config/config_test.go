package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"DEBUG", "USERNAME", "ENABLE_ASSISTANT", "ASSISTANT_TRIGGER", "CREDENTIALS_PATH",
	"ASSISTANT_DEVICE_ID", "ASSISTANT_DEVICE_MODEL_ID", "ASSISTANT_LANGUAGE",
	"WHISPER_MODEL_PATH", "TRIGGER_SOUND_PATH", "WEATHER_INTERVAL", "NEWS_INTERVAL",
	"HTTP_TIMEOUT", "WEATHER_TABLE_PATH", "LATITUDE", "LONGITUDE",
	"WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY", "GEOCODER_API_KEY",
	"ENABLE_STATUS_API", "STATUS_PORT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/mirror")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Debug || !cfg.EnableAssistant || !cfg.AssistantTrigger {
		t.Fatalf("unexpected booleans: %+v", cfg)
	}
	if cfg.Username != "User!" {
		t.Fatalf("expected User!, got %q", cfg.Username)
	}
	wantCreds := filepath.Join("/home/mirror", ".config", "google-oauthlib-tool", "credentials.json")
	if cfg.CredentialsPath != wantCreds {
		t.Fatalf("expected %q, got %q", wantCreds, cfg.CredentialsPath)
	}
	if cfg.WeatherInterval != time.Hour || cfg.NewsInterval != 12*time.Hour {
		t.Fatalf("unexpected intervals %v / %v", cfg.WeatherInterval, cfg.NewsInterval)
	}
	if cfg.HasCoordinates() {
		t.Fatal("no coordinates expected")
	}
	if cfg.LogLevel != "info" || cfg.StatusPort != "8080" || cfg.EnableStatusAPI {
		t.Fatalf("unexpected status/log settings: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEBUG", "True")
	t.Setenv("USERNAME", "Grace")
	t.Setenv("ENABLE_ASSISTANT", "no")
	t.Setenv("CREDENTIALS_PATH", "None")
	t.Setenv("LATITUDE", "59.91")
	t.Setenv("LONGITUDE", "10.75")
	t.Setenv("WEATHER_INTERVAL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Debug || cfg.EnableAssistant {
		t.Fatalf("unexpected booleans: %+v", cfg)
	}
	if cfg.Username != "Grace!" {
		t.Fatalf("unexpected username %q", cfg.Username)
	}
	if !strings.HasSuffix(cfg.CredentialsPath, "credentials.json") {
		t.Fatalf("None should select the default path, got %q", cfg.CredentialsPath)
	}
	if !cfg.HasCoordinates() || *cfg.Latitude != 59.91 || *cfg.Longitude != 10.75 {
		t.Fatalf("unexpected coordinates")
	}
	if cfg.WeatherInterval != 30*time.Minute {
		t.Fatalf("unexpected weather interval %v", cfg.WeatherInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("DEBUG should default the log level to debug, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"bad bool":         {"DEBUG", "maybe"},
		"bad duration":     {"NEWS_INTERVAL", "twice a day"},
		"too frequent":     {"WEATHER_INTERVAL", "5s"},
		"bad latitude":     {"LATITUDE", "north"},
		"lonely latitude":  {"LATITUDE", "12.5"},
		"bad port":         {"STATUS_PORT", "http"},
		"bad log level":    {"LOG_LEVEL", "loud"},
		"bad language tag": {"ASSISTANT_LANGUAGE", "not a tag"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", kv[0], kv[1])
			}
		})
	}
}

func TestLoadRejectsOutOfRangeCoordinates(t *testing.T) {
	clearEnv(t)
	t.Setenv("LATITUDE", "123")
	t.Setenv("LONGITUDE", "10")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for latitude out of range")
	}
}
