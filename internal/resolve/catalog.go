// Package resolve maps a command line onto the completion spec: which argument
// is being typed, with which tokens and search term.
package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
)

// Command is a compiled command or subcommand spec
type Command struct {
	Name        string
	Description string
	Subcommands map[string]*Command
	Options     []*Option
	Args        []*scheduler.Argument
	// Variadic makes the last argument repeat
	Variadic bool

	// built by Catalog; pointers stay stable so the scheduler sees the same argument
	firstArg   *scheduler.Argument
	optionsArg *scheduler.Argument
}

// Option is a flag with its own arguments
type Option struct {
	Names       []string
	Description string
	Args        []*scheduler.Argument
}

// Catalog is the set of commands suggestions are known for
type Catalog struct {
	Commands map[string]*Command

	commandArg *scheduler.Argument
}

// NewCatalog prepares commands for resolution
func NewCatalog(commands map[string]*Command) *Catalog {
	c := &Catalog{Commands: commands}
	if c.Commands == nil {
		c.Commands = make(map[string]*Command)
	}

	c.commandArg = &scheduler.Argument{
		Name:       "command",
		Generators: []*generator.Descriptor{listing("commands", commandSuggestions(c.Commands, "command"))},
	}
	for _, cmd := range c.Commands {
		prepare(cmd)
	}
	return c
}

// Names returns the top-level command names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Commands))
	for name := range c.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func prepare(cmd *Command) {
	if len(cmd.Subcommands) > 0 {
		subcommands := listing(cmd.Name+" subcommands", commandSuggestions(cmd.Subcommands, "subcommand"))
		first := &scheduler.Argument{Name: "subcommand", Generators: []*generator.Descriptor{subcommands}}
		if len(cmd.Args) > 0 {
			first.Name = cmd.Args[0].Name
			first.Debounce = cmd.Args[0].Debounce
			first.IsDangerous = cmd.Args[0].IsDangerous
			first.Generators = append(first.Generators, cmd.Args[0].Generators...)
		}
		cmd.firstArg = first
	}

	if len(cmd.Options) > 0 {
		cmd.optionsArg = &scheduler.Argument{
			Name:       "option",
			Generators: []*generator.Descriptor{listing(cmd.Name+" options", optionSuggestions(cmd.Options))},
		}
	}

	for _, sub := range cmd.Subcommands {
		prepare(sub)
	}
}

// listing wraps a fixed suggestion list in a custom generator that runs once per argument
func listing(name string, suggestions []generator.Suggestion) *generator.Descriptor {
	return &generator.Descriptor{
		Name: name,
		Kind: generator.KindCustom,
		Custom: func(context.Context, generator.Context) ([]generator.Suggestion, error) {
			return suggestions, nil
		},
	}
}

func commandSuggestions(commands map[string]*Command, kind string) []generator.Suggestion {
	out := make([]generator.Suggestion, 0, len(commands))
	for name, cmd := range commands {
		out = append(out, generator.Suggestion{Name: name, Insert: name, Description: cmd.Description, Type: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func optionSuggestions(options []*Option) []generator.Suggestion {
	var out []generator.Suggestion
	for _, opt := range options {
		for _, name := range opt.Names {
			out = append(out, generator.Suggestion{Name: name, Insert: name, Description: opt.Description, Type: "option"})
		}
	}
	return out
}

func (cmd *Command) option(token string) *Option {
	name := token
	if i := strings.Index(token, "="); i > 0 {
		name = token[:i]
	}
	for _, opt := range cmd.Options {
		for _, n := range opt.Names {
			if n == name {
				return opt
			}
		}
	}
	return nil
}
