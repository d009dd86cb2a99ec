package config

import (
	"os"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Spec is a completion spec file
type Spec struct {
	Commands map[string]CommandSpec `koanf:"commands"`
}

// CommandSpec describes a command or subcommand
type CommandSpec struct {
	Description string                 `koanf:"description"`
	Subcommands map[string]CommandSpec `koanf:"subcommands"`
	Options     []OptionSpec           `koanf:"options"`
	Args        []ArgSpec              `koanf:"args"`
	Variadic    bool                   `koanf:"variadic"`
}

// OptionSpec describes a flag
type OptionSpec struct {
	Names       []string  `koanf:"names"`
	Description string    `koanf:"description"`
	Args        []ArgSpec `koanf:"args"`
}

// ArgSpec describes one positional or option argument
type ArgSpec struct {
	Name        string          `koanf:"name"`
	Description string          `koanf:"description"`
	Debounce    bool            `koanf:"debounce"`
	Dangerous   bool            `koanf:"dangerous"`
	Generators  []GeneratorSpec `koanf:"generators"`
}

// GeneratorSpec describes one suggestion source. Exactly one of Script,
// Template, Text, Paths and Folders is set.
type GeneratorSpec struct {
	Name string `koanf:"name"`
	// Script is a command line string or an argv list
	Script interface{} `koanf:"script"`
	// Template is "filepaths", "folders" or a list of them
	Template interface{} `koanf:"template"`
	// Text is a sprig template producing one suggestion per line
	Text    string     `koanf:"text"`
	Paths   *PathsSpec `koanf:"paths"`
	Folders bool       `koanf:"folders"`
	// Trigger is a substring, or a map with "on" (change, threshold, match)
	Trigger    interface{} `koanf:"trigger"`
	SplitOn    string      `koanf:"split_on"`
	DebounceMs int         `koanf:"debounce_ms"`
	Cache      *CacheSpec  `koanf:"cache"`
}

// PathsSpec narrows a file path generator
type PathsSpec struct {
	Extensions  []string `koanf:"extensions"`
	Equals      []string `koanf:"equals"`
	Matches     string   `koanf:"matches"`
	ShowFolders string   `koanf:"show_folders"`
	Root        string   `koanf:"root"`
}

// CacheSpec enables script output caching
type CacheSpec struct {
	TTLMs       int  `koanf:"ttl_ms"`
	ByDirectory bool `koanf:"by_directory"`
}

// LoadSpec reads a completion spec file
func LoadSpec(path string) (*Spec, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, derrors.NewConfigurationError(path, "completion spec not found", err)
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	// Command names may contain dots, so keys are never split on them
	k := koanf.New("\x00")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to load completion spec", err)
	}

	spec := &Spec{Commands: make(map[string]CommandSpec)}
	if err := k.Unmarshal("", spec); err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to unmarshal completion spec", err)
	}
	return spec, nil
}
