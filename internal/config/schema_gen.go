//go:build ignore

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
)

// SchemaSpec represents the root of a completion spec for schema generation
type SchemaSpec struct {
	Commands map[string]Command `json:"commands" jsonschema:"required,description=Commands suggestions are known for, by name"`
}

// Command describes a command or subcommand
type Command struct {
	Description string             `json:"description,omitempty" jsonschema:"description=Shown next to the command name"`
	Subcommands map[string]Command `json:"subcommands,omitempty" jsonschema:"description=Nested commands, by name"`
	Options     []Option           `json:"options,omitempty" jsonschema:"description=Flags accepted by the command"`
	Args        []Arg              `json:"args,omitempty" jsonschema:"description=Positional arguments in order"`
	Variadic    bool               `json:"variadic,omitempty" jsonschema:"description=The last argument repeats,default=false"`
}

// Option describes a flag
type Option struct {
	Names       []string `json:"names" jsonschema:"required,minItems=1,description=Flag spellings (e.g. -m\\, --message)"`
	Description string   `json:"description,omitempty" jsonschema:"description=Shown next to the flag"`
	Args        []Arg    `json:"args,omitempty" jsonschema:"description=Arguments consumed by the flag"`
}

// Arg describes an argument
type Arg struct {
	Name        string      `json:"name,omitempty" jsonschema:"description=Argument name"`
	Description string      `json:"description,omitempty" jsonschema:"description=Argument description"`
	Debounce    bool        `json:"debounce,omitempty" jsonschema:"description=Defer generator runs until typing pauses,default=false"`
	Dangerous   bool        `json:"dangerous,omitempty" jsonschema:"description=Mark suggestions for this argument as dangerous,default=false"`
	Generators  []Generator `json:"generators,omitempty" jsonschema:"description=Suggestion sources"`
}

// Generator describes one suggestion source
type Generator struct {
	Name       string         `json:"name,omitempty" jsonschema:"description=Name used in logs and the status view"`
	Script     *ScriptValue   `json:"script,omitempty"`
	Template   *TemplateValue `json:"template,omitempty"`
	Text       string         `json:"text,omitempty" jsonschema:"minLength=1,description=Template text rendered with sprig functions\\, one suggestion per line"`
	Paths      *Paths         `json:"paths,omitempty"`
	Folders    bool           `json:"folders,omitempty" jsonschema:"description=List folders of the path being typed"`
	Trigger    *TriggerValue  `json:"trigger,omitempty"`
	SplitOn    string         `json:"split_on,omitempty" jsonschema:"description=Separator of script output entries (default newline)"`
	DebounceMs int            `json:"debounce_ms,omitempty" jsonschema:"minimum=0,description=Delay for debounced arguments (default from settings)"`
	Cache      *Cache         `json:"cache,omitempty"`
}

// Paths narrows a file path generator
type Paths struct {
	Extensions  []string `json:"extensions,omitempty" jsonschema:"description=Keep files with one of these extensions"`
	Equals      []string `json:"equals,omitempty" jsonschema:"description=Keep files with one of these names"`
	Matches     string   `json:"matches,omitempty" jsonschema:"description=Keep files whose name matches this regular expression"`
	ShowFolders string   `json:"show_folders,omitempty" jsonschema:"enum=always,enum=never,enum=only,default=always"`
	Root        string   `json:"root,omitempty" jsonschema:"description=List relative to this directory instead of the working directory"`
}

// TriggerConfig is the structured trigger form
type TriggerConfig struct {
	On     string       `json:"on" jsonschema:"required,enum=change,enum=threshold,enum=match,description=Trigger kind"`
	Length int          `json:"length,omitempty" jsonschema:"minimum=0,description=Threshold length"`
	String *StringValue `json:"string,omitempty" jsonschema:"description=Strings for the match trigger"`
}

// Cache enables script output caching
type Cache struct {
	TTLMs       int  `json:"ttl_ms,omitempty" jsonschema:"minimum=0,description=Cache lifetime; 0 keeps entries until caches are reset"`
	ByDirectory bool `json:"by_directory,omitempty" jsonschema:"description=Cache per working directory"`
}

// ScriptValue is a command line or an argv list
type ScriptValue struct{}

// TemplateValue is one built-in template name or a list of them
type TemplateValue struct{}

// TriggerValue is a substring or a TriggerConfig
type TriggerValue struct{}

// StringValue is a string or a list of strings
type StringValue struct{}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func stringArray(min uint64, items *jsonschema.Schema) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "array", Items: items}
	if min > 0 {
		s.MinItems = uint64Ptr(min)
	}
	return s
}

func templateEnum() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Enum: []interface{}{"filepaths", "folders"}}
}

// JSONSchema implements custom schema generation for ScriptValue
func (ScriptValue) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{
				Type:        "string",
				MinLength:   uint64Ptr(1),
				Description: "Command line; run through sh -c when it uses shell syntax or placeholders",
			},
			func() *jsonschema.Schema {
				s := stringArray(1, &jsonschema.Schema{Type: "string"})
				s.Description = "Command argv"
				return s
			}(),
		},
	}
}

// JSONSchema implements custom schema generation for TemplateValue
func (TemplateValue) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			templateEnum(),
			stringArray(1, templateEnum()),
		},
	}
}

// JSONSchema implements custom schema generation for TriggerValue
func (TriggerValue) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{
				Type:        "string",
				MinLength:   uint64Ptr(1),
				Description: "Re-run when the last occurrence of this substring moves",
			},
			{
				Ref: "#/$defs/TriggerConfig",
			},
		},
	}
}

// JSONSchema implements custom schema generation for StringValue
func (StringValue) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			stringArray(0, &jsonschema.Schema{Type: "string"}),
		},
	}
}

func main() {
	r := &jsonschema.Reflector{
		DoNotReference:             false,
		ExpandedStruct:             false,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&SchemaSpec{})

	// TriggerConfig is only referenced from a custom schema, so it is not reflected on its own
	triggerSchema := r.ReflectFromType(reflect.TypeOf(TriggerConfig{}))
	if def, ok := triggerSchema.Definitions["TriggerConfig"]; ok {
		schema.Definitions["TriggerConfig"] = def
	}

	// Use draft-07 for IDE compatibility
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.ID = "https://raw.githubusercontent.com/NikitaCOEUR/autosuggest/main/schema/autosuggest.schema.json"
	schema.Title = "Autosuggest Completion Spec"
	schema.Description = "Commands, arguments and suggestion generators for autosuggest"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}

	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Schema generated: %s\n", outputPath)
}
