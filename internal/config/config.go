package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AppConfig struct {
	Debug    bool
	Username string `validate:"required"`

	// Assistant.
	EnableAssistant        bool
	CredentialsPath        string `validate:"required_if=EnableAssistant true"`
	AssistantTrigger       bool
	AssistantDeviceID      string
	AssistantDeviceModelID string `validate:"required"`
	AssistantLanguage      string `validate:"required,bcp47_language_tag"`
	WhisperModelPath       string `validate:"required_if=AssistantTrigger true"`
	TriggerSoundPath       string

	// Refresh cadence.
	WeatherInterval time.Duration `validate:"gte=1m"`
	NewsInterval    time.Duration `validate:"gte=1m"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	// Optional replacement for the embedded weather code table.
	WeatherTablePath string

	// Location overrides. Without them the location comes from the public IP.
	Latitude        *float64 `validate:"omitempty,latitude"`
	Longitude       *float64 `validate:"omitempty,longitude"`
	LocationCity    string
	LocationCountry string
	GeocoderAPIKey  string

	EnableStatusAPI bool
	StatusPort      string `validate:"required,numeric"`

	LogLevel string `validate:"oneof=trace debug info warn error"`
}

// Load reads configuration from environment with sensible defaults.
// A .env file, if any, must already have been loaded into the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	if cfg.Debug, err = getenvBool("DEBUG", false); err != nil {
		return nil, err
	}
	cfg.Username = getenvDefault("USERNAME", "User") + "!"

	if cfg.EnableAssistant, err = getenvBool("ENABLE_ASSISTANT", true); err != nil {
		return nil, err
	}
	if cfg.AssistantTrigger, err = getenvBool("ASSISTANT_TRIGGER", true); err != nil {
		return nil, err
	}
	cfg.CredentialsPath = os.Getenv("CREDENTIALS_PATH")
	if cfg.CredentialsPath == "" || cfg.CredentialsPath == "None" {
		cfg.CredentialsPath = defaultCredentialsPath()
	}
	cfg.AssistantDeviceID = os.Getenv("ASSISTANT_DEVICE_ID")
	cfg.AssistantDeviceModelID = getenvDefault("ASSISTANT_DEVICE_MODEL_ID", "smart-mirror")
	cfg.AssistantLanguage = getenvDefault("ASSISTANT_LANGUAGE", "en-US")
	cfg.WhisperModelPath = getenvDefault("WHISPER_MODEL_PATH", "models/ggml-base.en.bin")
	cfg.TriggerSoundPath = getenvDefault("TRIGGER_SOUND_PATH", "resources/trigger_confirmation.mp3")

	if cfg.WeatherInterval, err = getenvDuration("WEATHER_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.NewsInterval, err = getenvDuration("NEWS_INTERVAL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.WeatherTablePath = os.Getenv("WEATHER_TABLE_PATH")

	if cfg.Latitude, err = getenvFloat("LATITUDE"); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = getenvFloat("LONGITUDE"); err != nil {
		return nil, err
	}
	if (cfg.Latitude == nil) != (cfg.Longitude == nil) {
		return nil, fmt.Errorf("LATITUDE and LONGITUDE must be set together")
	}
	cfg.LocationCity = os.Getenv("WEATHER_LOCATION_CITY")
	cfg.LocationCountry = os.Getenv("WEATHER_LOCATION_COUNTRY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.EnableStatusAPI, err = getenvBool("ENABLE_STATUS_API", false); err != nil {
		return nil, err
	}
	cfg.StatusPort = getenvDefault("STATUS_PORT", "8080")

	defaultLevel := "info"
	if cfg.Debug {
		defaultLevel = "debug"
	}
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", defaultLevel))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// HasCoordinates reports whether LATITUDE/LONGITUDE were given.
func (c *AppConfig) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "google-oauthlib-tool", "credentials.json")
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def, nil
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s: %q is not a boolean", key, v)
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string) (*float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &f, nil
}
