// Package config loads autosuggest settings and completion specs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// AppName names the config directory
const AppName = "autosuggest"

// SupportedSettingsNames contains settings file names (in order of preference)
var SupportedSettingsNames = []string{
	"settings.yml",
	"settings.yaml",
	"settings.toml",
	"settings.json",
}

// SupportedSpecNames contains completion spec file names (in order of preference)
var SupportedSpecNames = []string{
	"completions.yml",
	"completions.yaml",
	"completions.toml",
	"completions.json",
}

var defaultSettings = []byte(`{
  "log_level": "warn",
  "script_timeout_ms": 5000,
  "debounce_ms": 200
}`)

// Settings are user-level tunables
type Settings struct {
	LogLevel        string `koanf:"log_level"`
	ScriptTimeoutMs int    `koanf:"script_timeout_ms"`
	DebounceMs      int    `koanf:"debounce_ms"`
	// Spec overrides the completion spec location
	Spec string `koanf:"spec"`
}

// ScriptTimeout bounds every script generator
func (s *Settings) ScriptTimeout() time.Duration {
	return time.Duration(s.ScriptTimeoutMs) * time.Millisecond
}

// DebounceDefault is the delay of debounced generators without their own
func (s *Settings) DebounceDefault() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// DefaultSettings returns the built-in settings
func DefaultSettings() *Settings {
	s, err := LoadSettings("")
	if err != nil {
		panic(fmt.Sprintf("invalid built-in settings: %v", err))
	}
	return s
}

// LoadSettings reads settings from path over the defaults. An empty path
// returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultSettings), json.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, derrors.NewConfigurationError(path, "failed to load settings", err)
		}
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to unmarshal settings", err)
	}

	if s.ScriptTimeoutMs <= 0 {
		return nil, derrors.NewValidationError("script_timeout_ms", "must be positive", nil)
	}
	if s.DebounceMs < 0 {
		return nil, derrors.NewValidationError("debounce_ms", "must not be negative", nil)
	}
	return s, nil
}

// ConfigDir returns the autosuggest config directory
func ConfigDir() (string, error) {
	// Try XDG_CONFIG_HOME first
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName), nil
}

// FindSettings returns the first settings file present in the config dir, or ""
func FindSettings() string {
	return findIn(SupportedSettingsNames)
}

// FindSpec returns the first completion spec present in the config dir, or ""
func FindSpec() string {
	return findIn(SupportedSpecNames)
}

func findIn(names []string) string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// parserFor picks the koanf parser from the file extension
func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, derrors.NewConfigurationError(path, fmt.Sprintf("unsupported config format: %s", ext), nil)
	}
}
