package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/resolve"
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
	"github.com/NikitaCOEUR/autosuggest/internal/trigger"
	"github.com/google/shlex"
)

// shellMeta marks script strings that need a shell
const shellMeta = "|&;<>()$`*?[]{}~\"'\\"

// Compile turns a spec into the catalog used to resolve command lines
func (s *Spec) Compile() (*resolve.Catalog, error) {
	catalog, issues := s.compile()
	if len(issues) > 0 {
		return nil, derrors.NewValidationError(issues[0].Field, issues[0].Message, nil)
	}
	return catalog, nil
}

func (s *Spec) compile() (*resolve.Catalog, []ValidationError) {
	c := &compiler{}
	commands := make(map[string]*resolve.Command, len(s.Commands))
	for _, name := range sortedKeys(s.Commands) {
		commands[name] = c.command(name, s.Commands[name], "commands/"+name)
	}
	return resolve.NewCatalog(commands), c.issues
}

type compiler struct {
	issues []ValidationError
}

func (c *compiler) fail(field, format string, args ...interface{}) {
	c.issues = append(c.issues, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *compiler) command(name string, spec CommandSpec, field string) *resolve.Command {
	cmd := &resolve.Command{
		Name:        name,
		Description: spec.Description,
		Variadic:    spec.Variadic,
		Args:        c.args(spec.Args, field+"/args"),
	}

	for i, opt := range spec.Options {
		optField := fmt.Sprintf("%s/options/%d", field, i)
		if len(opt.Names) == 0 {
			c.fail(optField, "Option has no names")
		}
		for _, n := range opt.Names {
			if !strings.HasPrefix(n, "-") {
				c.fail(optField, "Option name %q must start with '-'", n)
			}
		}
		cmd.Options = append(cmd.Options, &resolve.Option{
			Names:       opt.Names,
			Description: opt.Description,
			Args:        c.args(opt.Args, optField+"/args"),
		})
	}

	if len(spec.Subcommands) > 0 {
		cmd.Subcommands = make(map[string]*resolve.Command, len(spec.Subcommands))
		for _, sub := range sortedKeys(spec.Subcommands) {
			cmd.Subcommands[sub] = c.command(sub, spec.Subcommands[sub], field+"/subcommands/"+sub)
		}
	}
	return cmd
}

func (c *compiler) args(specs []ArgSpec, field string) []*scheduler.Argument {
	var out []*scheduler.Argument
	for i, spec := range specs {
		argField := fmt.Sprintf("%s/%d", field, i)
		arg := &scheduler.Argument{
			Name:        spec.Name,
			Debounce:    spec.Debounce,
			IsDangerous: spec.Dangerous,
		}
		for j, g := range spec.Generators {
			if d := c.generator(g, fmt.Sprintf("%s/generators/%d", argField, j)); d != nil {
				arg.Generators = append(arg.Generators, d)
			}
		}
		out = append(out, arg)
	}
	return out
}

func (c *compiler) generator(spec GeneratorSpec, field string) *generator.Descriptor {
	var set []string
	if spec.Script != nil {
		set = append(set, "script")
	}
	if spec.Template != nil {
		set = append(set, "template")
	}
	if spec.Text != "" {
		set = append(set, "text")
	}
	if spec.Paths != nil {
		set = append(set, "paths")
	}
	if spec.Folders {
		set = append(set, "folders")
	}
	if len(set) != 1 {
		c.fail(field, "Generator must set exactly one of script, template, text, paths or folders (got %d)", len(set))
		return nil
	}

	var d *generator.Descriptor
	switch set[0] {
	case "script":
		argv, err := scriptArgv(spec.Script)
		if err != nil {
			c.fail(field+"/script", "%v", err)
			return nil
		}
		d = &generator.Descriptor{Kind: generator.KindScript, Script: argv, SplitOn: spec.SplitOn}
		if spec.Cache != nil {
			d.Cache = &generator.ScriptCache{
				TTL:              time.Duration(spec.Cache.TTLMs) * time.Millisecond,
				CacheByDirectory: spec.Cache.ByDirectory,
			}
		}
	case "template":
		builtins, err := templateNames(spec.Template)
		if err != nil {
			c.fail(field+"/template", "%v", err)
			return nil
		}
		d = &generator.Descriptor{Kind: generator.KindTemplate, Template: &generator.Template{Builtins: builtins}}
	case "text":
		d = &generator.Descriptor{Kind: generator.KindTemplate, Template: &generator.Template{Text: spec.Text}}
	case "paths":
		opts, err := pathOptions(spec.Paths)
		if err != nil {
			c.fail(field+"/paths", "%v", err)
			return nil
		}
		d = generator.FilePaths(opts)
	case "folders":
		d = generator.Folders()
	}

	if spec.Name != "" {
		d.Name = spec.Name
	}
	if spec.DebounceMs < 0 {
		c.fail(field+"/debounce_ms", "Debounce must not be negative")
	}
	d.Debounce = time.Duration(spec.DebounceMs) * time.Millisecond

	if spec.Trigger != nil {
		policy, err := trigger.Parse(spec.Trigger)
		if err != nil {
			var verr *derrors.ValidationError
			if errors.As(err, &verr) {
				c.fail(field+"/"+strings.ReplaceAll(verr.Field, ".", "/"), "%v", err)
			} else {
				c.fail(field+"/trigger", "%v", err)
			}
			return nil
		}
		d.Trigger = policy
	}
	return d
}

// scriptArgv accepts an argv list, or a command line that is split like a
// shell would, or handed to sh -c when it needs shell features or placeholders
func scriptArgv(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("script is empty")
		}
		if strings.ContainsAny(v, shellMeta) {
			return []string{"sh", "-c", v}, nil
		}
		argv, err := shlex.Split(v)
		if err != nil {
			return nil, fmt.Errorf("invalid script %q: %w", v, err)
		}
		return argv, nil
	case []interface{}:
		argv, err := stringList(v)
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 || argv[0] == "" {
			return nil, fmt.Errorf("script is empty")
		}
		return argv, nil
	default:
		return nil, fmt.Errorf("script must be a string or a list of strings, got %T", raw)
	}
}

func templateNames(raw interface{}) ([]string, error) {
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []interface{}:
		list, err := stringList(v)
		if err != nil {
			return nil, err
		}
		names = list
	default:
		return nil, fmt.Errorf("template must be a string or a list of strings, got %T", raw)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("template is empty")
	}
	for _, n := range names {
		if n != generator.TemplateFilepaths && n != generator.TemplateFolders {
			return nil, fmt.Errorf("unknown template %q (expected %s or %s)", n, generator.TemplateFilepaths, generator.TemplateFolders)
		}
	}
	return names, nil
}

func pathOptions(spec *PathsSpec) (generator.PathOptions, error) {
	opts := generator.PathOptions{
		Extensions:    spec.Extensions,
		Equals:        spec.Equals,
		ShowFolders:   spec.ShowFolders,
		RootDirectory: spec.Root,
	}

	switch spec.ShowFolders {
	case "", generator.ShowFoldersAlways, generator.ShowFoldersNever, generator.ShowFoldersOnly:
	default:
		return opts, fmt.Errorf("show_folders must be always, never or only, got %q", spec.ShowFolders)
	}

	if spec.Matches != "" {
		re, err := regexp.Compile(spec.Matches)
		if err != nil {
			return opts, fmt.Errorf("invalid matches pattern: %w", err)
		}
		opts.Matches = re
	}
	return opts, nil
}

func stringList(values []interface{}) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		out = append(out, s)
	}
	return out, nil
}

func sortedKeys(m map[string]CommandSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
