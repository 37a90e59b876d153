package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Compiled-in defaults, used when the config file is missing or a value
// fails validation.
const (
	DefaultBacklightTimeout = 30   // seconds
	DefaultFadeInTime       = 250  // milliseconds
	DefaultFadeOutTime      = 1000 // milliseconds
	DefaultBacklightLevel   = 255
)

// Config holds the keypad backlight tuning values.
type Config struct {
	// BacklightTimeout is how long the backlight stays lit without
	// activity, in seconds.
	BacklightTimeout int `toml:"backlight-timeout"`
	// FadeInTime is the fade-in duration in milliseconds.
	FadeInTime int `toml:"backlight-fade-in-time"`
	// FadeOutTime is the fade-out duration in milliseconds.
	FadeOutTime int `toml:"backlight-fade-out-time"`
	// BacklightLevel is the brightness (1-255) used when the backlight
	// is enabled.
	BacklightLevel int `toml:"backlight-level"`
}

// fileFormat is the on-disk layout: a single [keypad] table.
type fileFormat struct {
	Keypad Config `toml:"keypad"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		BacklightTimeout: DefaultBacklightTimeout,
		FadeInTime:       DefaultFadeInTime,
		FadeOutTime:      DefaultFadeOutTime,
		BacklightLevel:   DefaultBacklightLevel,
	}
}

// Load reads the TOML config file at path and returns a sanitized Config.
// A missing file is not an error: the defaults are returned. A parse error
// returns the defaults along with the error so the caller can log it and
// keep running.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileFormat
	raw.Keypad = Default()
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return sanitize(raw.Keypad), nil
}

// sanitize replaces invalid values with the compiled-in defaults.
// Invalid configuration is never an error.
func sanitize(cfg Config) Config {
	if cfg.BacklightTimeout <= 0 {
		cfg.BacklightTimeout = DefaultBacklightTimeout
	}

	// Fade times are only rejected when they are both not a multiple of
	// 125 and greater than 1000. A non-multiple below the cap passes
	// through unchanged; this matches the behaviour the LED engine was
	// tuned against.
	if (cfg.FadeInTime%125) != 0 && cfg.FadeInTime > 1000 {
		cfg.FadeInTime = DefaultFadeInTime
	}
	if (cfg.FadeOutTime%125) != 0 && cfg.FadeOutTime > 1000 {
		cfg.FadeOutTime = DefaultFadeOutTime
	}
	if cfg.FadeInTime < 0 {
		cfg.FadeInTime = DefaultFadeInTime
	}
	if cfg.FadeOutTime < 0 {
		cfg.FadeOutTime = DefaultFadeOutTime
	}

	if cfg.BacklightLevel < 1 || cfg.BacklightLevel > 255 {
		cfg.BacklightLevel = DefaultBacklightLevel
	}

	return cfg
}
