package resolve

import (
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/generator"
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
	"github.com/google/shlex"
)

// Annotation types
const (
	AnnotationCommand    = "command"
	AnnotationSubcommand = "subcommand"
	AnnotationOption     = "option"
	AnnotationArgument   = "argument"
)

// Result describes where the cursor is in a command line
type Result struct {
	// Command is the deepest command matched, nil when typing the command name or an unknown command
	Command *Command
	// Argument is being typed; nil when nothing can be suggested
	Argument *scheduler.Argument
	// Tokens runs from the command index to the search term (included)
	Tokens      []string
	Annotations []generator.Annotation
	SearchTerm  string
	// CommandIndex is the position of the command token in the full line
	CommandIndex int
}

var separators = map[string]bool{"|": true, "||": true, "&&": true, ";": true, "&": true}

// Split tokenizes a command line. A trailing space starts a new empty token.
// Unbalanced quotes fall back to whitespace splitting.
func Split(line string) []string {
	tokens, err := shlex.Split(line)
	if err != nil {
		tokens = strings.Fields(line)
	}
	if len(tokens) == 0 || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		tokens = append(tokens, "")
	}
	return tokens
}

// Resolve locates the argument under the cursor, assumed at the end of line
func (c *Catalog) Resolve(line string) Result {
	all := Split(line)

	start := 0
	for i, tok := range all[:len(all)-1] {
		if separators[tok] {
			start = i + 1
		}
	}

	tokens := all[start:]
	res := Result{
		Tokens:       tokens,
		SearchTerm:   tokens[len(tokens)-1],
		CommandIndex: start,
	}

	if len(tokens) == 1 {
		res.Argument = c.commandArg
		return res
	}

	cmd, ok := c.Commands[tokens[0]]
	if !ok {
		return res
	}
	res.Command = cmd
	res.Annotations = append(res.Annotations, generator.Annotation{Type: AnnotationCommand, Name: tokens[0]})

	var (
		argIndex int
		pending  []*scheduler.Argument
	)
	for _, tok := range tokens[1 : len(tokens)-1] {
		switch {
		case len(pending) > 0:
			pending = pending[1:]
			res.Annotations = append(res.Annotations, generator.Annotation{Type: AnnotationArgument, Name: tok})
		case strings.HasPrefix(tok, "-") && cmd.option(tok) != nil:
			opt := cmd.option(tok)
			if !strings.Contains(tok, "=") {
				pending = opt.Args
			}
			res.Annotations = append(res.Annotations, generator.Annotation{Type: AnnotationOption, Name: tok})
		case argIndex == 0 && cmd.Subcommands[tok] != nil:
			cmd = cmd.Subcommands[tok]
			res.Command = cmd
			res.Annotations = append(res.Annotations, generator.Annotation{Type: AnnotationSubcommand, Name: tok})
		default:
			argIndex++
			res.Annotations = append(res.Annotations, generator.Annotation{Type: AnnotationArgument, Name: tok})
		}
	}

	res.Argument = cmd.argumentAt(argIndex, pending, res.SearchTerm)
	return res
}

func (cmd *Command) argumentAt(index int, pending []*scheduler.Argument, term string) *scheduler.Argument {
	switch {
	case len(pending) > 0:
		return pending[0]
	case strings.HasPrefix(term, "-") && cmd.optionsArg != nil:
		return cmd.optionsArg
	case index == 0 && cmd.firstArg != nil:
		return cmd.firstArg
	case index < len(cmd.Args):
		return cmd.Args[index]
	case cmd.Variadic && len(cmd.Args) > 0:
		return cmd.Args[len(cmd.Args)-1]
	default:
		return nil
	}
}

// Input builds the scheduler input for a resolution and a shell-state context
func (r Result) Input(base generator.Context) scheduler.Input {
	gctx := base
	gctx.Tokens = r.Tokens
	gctx.Annotations = r.Annotations
	gctx.SearchTerm = r.SearchTerm
	return scheduler.Input{Argument: r.Argument, Context: gctx}
}
