package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// GetSchemaJSON returns the JSON Schema for completion specs
func GetSchemaJSON() string {
	return schemaJSON
}

// decodeDocument turns a spec file into the generic tree the schema checks.
// TOML goes through koanf since yaml.v3 and encoding/json cannot read it.
func decodeDocument(path string, content []byte) (doc interface{}, format string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return doc, "YAML", yaml.Unmarshal(content, &doc)
	case ".json":
		return doc, "JSON", json.Unmarshal(content, &doc)
	case ".toml":
		k := koanf.New("\x00")
		if err := k.Load(rawbytes.Provider(content), toml.Parser()); err != nil {
			return nil, "TOML", err
		}
		return k.Raw(), "TOML", nil
	default:
		return nil, "", fmt.Errorf("unsupported completion spec format: %s", filepath.Ext(path))
	}
}

// ValidateWithSchema validates a completion spec against the JSON Schema.
// Field paths use "/" like compile issues do, e.g. commands/git/args/0.
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}}

	doc, format, err := decodeDocument(path, content)
	if format == "" {
		return nil, err
	}
	if err != nil {
		result.fail("syntax", fmt.Sprintf("Invalid %s syntax: %v", format, err))
		return result, nil
	}

	checked, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	for _, issue := range checked.Errors() {
		result.fail(strings.ReplaceAll(issue.Field(), ".", "/"), issue.Description())
	}
	return result, nil
}
