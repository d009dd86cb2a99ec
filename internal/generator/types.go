// Package generator runs suggestion generators.
//
// A generator is one of three kinds: a declarative template (filesystem
// listings or a text template), an external script run under a timeout, or a
// custom Go function. The Executor runs any of them and always resolves to a
// list of suggestions; failures degrade to an empty list.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/trigger"
)

// Kind identifies how a generator produces suggestions
type Kind int

const (
	// KindTemplate expands a declarative template against the context
	KindTemplate Kind = iota
	// KindScript runs an external command
	KindScript
	// KindCustom calls a Go function
	KindCustom
)

// String returns the config name of the kind
func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindScript:
		return "script"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Built-in template names
const (
	TemplateFilepaths = "filepaths"
	TemplateFolders   = "folders"
	TemplateText      = "text"
)

// Annotation describes how the parser classified one token
type Annotation struct {
	Type string // "subcommand", "option" or "argument"
	Name string
}

// Context is the snapshot a generator runs against
type Context struct {
	WorkingDir  string
	ProcessName string
	Env         map[string]string
	// Tokens from the current command index onward; the last one is the search term
	Tokens      []string
	Annotations []Annotation
	SearchTerm  string
	// IsDangerous marks arguments the UI should flag; it never affects scheduling
	IsDangerous bool
}

// TemplateMeta marks a suggestion produced by a template expansion
type TemplateMeta struct {
	Template string // filepaths, folders or text
	// Dir is the directory portion of the search term the listing was made for
	Dir string
}

// Suggestion is a single completion candidate
type Suggestion struct {
	Name        string
	Insert      string
	Description string
	Type        string // file, folder, arg
	Template    *TemplateMeta
	// Generator is the descriptor that produced this suggestion
	Generator *Descriptor
}

// Template configures a template generator
type Template struct {
	// Builtins lists built-in templates to expand, in order (filepaths, folders)
	Builtins []string
	// Text is a Go text/template with sprig functions; each output line is a suggestion
	Text string
}

// CustomFunc produces suggestions for a custom generator
type CustomFunc func(ctx context.Context, gctx Context) ([]Suggestion, error)

// FilterFunc re-filters suggestions carrying template metadata
type FilterFunc func(suggestions []Suggestion) []Suggestion

// PostProcessFunc converts raw script output into suggestions
type PostProcessFunc func(output string, tokens []string) []Suggestion

// ScriptCache memoizes script output in the session cache registry
type ScriptCache struct {
	TTL              time.Duration
	CacheByDirectory bool
}

// Descriptor describes one generator. It is immutable once handed to a scheduler.
type Descriptor struct {
	Name    string
	Kind    Kind
	Trigger trigger.Policy
	// Debounce is the delay used when the owning argument is debounced; <= 0 means the default
	Debounce time.Duration

	Template *Template

	// Script is the argv to run; elements may contain {{ }} placeholders
	Script      []string
	SplitOn     string
	PostProcess PostProcessFunc
	Cache       *ScriptCache

	Custom                    CustomFunc
	FilterTemplateSuggestions bool
	TemplateFilter            FilterFunc
}

// Label returns a human readable identifier for logs
func (d *Descriptor) Label() string {
	if d == nil {
		return "<nil>"
	}
	if d.Name != "" {
		return d.Name
	}
	return d.Kind.String()
}
