// Package main is the entry point for the autosuggest CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ascli "github.com/NikitaCOEUR/autosuggest/internal/cli"
	"github.com/NikitaCOEUR/autosuggest/internal/trace"
	"github.com/NikitaCOEUR/autosuggest/pkg/version"
	"github.com/urfave/cli/v3"
)

func main() {
	stopTrace := trace.Init()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stopTrace()
		os.Exit(1)
	}
	stopTrace()
}

// sessionParams reads the global flags shared by every session command
func sessionParams(cmd *cli.Command) ascli.SessionParams {
	return ascli.SessionParams{
		LogLevel:      cmd.String("log-level"),
		SettingsPath:  cmd.String("settings"),
		SpecPath:      cmd.String("spec"),
		ScriptTimeout: cmd.Duration("script-timeout"),
	}
}

func waitFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "wait",
		Value: 2 * time.Second,
		Usage: "How long to wait for generators before printing",
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "autosuggest",
		Usage:   "Spec-driven command line suggestions",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); overrides the settings file",
				Sources: cli.EnvVars("AUTOSUGGEST_LOG_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "script-timeout",
				Usage:   "Timeout of script generators; overrides the settings file",
				Sources: cli.EnvVars("AUTOSUGGEST_SCRIPT_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:  "spec",
				Usage: "Completion spec file (default: completions.yml in the config dir)",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "Settings file (default: settings.yml in the config dir)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "suggest",
				Usage:     "Print suggestions for a command line",
				ArgsUsage: "<command line>",
				Flags: []cli.Flag{
					waitFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Render generators and suggestions instead of plain lines",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("suggest requires a command line")
					}
					return ascli.Suggest(ctx, ascli.SuggestParams{
						SessionParams: sessionParams(cmd),
						Line:          strings.Join(cmd.Args().Slice(), " "),
						Wait:          cmd.Duration("wait"),
						Pretty:        cmd.Bool("pretty"),
					})
				},
			},
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Type a command line and watch suggestions update",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return ascli.Interactive(sessionParams(cmd))
				},
			},
			{
				Name:  "caches",
				Usage: "Inspect the session caches",
				Commands: []*cli.Command{
					{
						Name:      "list",
						Usage:     "List caches after evaluating the given command lines",
						ArgsUsage: "[command line...]",
						Flags:     []cli.Flag{waitFlag()},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return ascli.Caches(ctx, ascli.CachesParams{
								SessionParams: sessionParams(cmd),
								Lines:         cmd.Args().Slice(),
								Wait:          cmd.Duration("wait"),
							})
						},
					},
					{
						Name:      "reset",
						Usage:     "Reset every cache after evaluating the given command lines",
						ArgsUsage: "[command line...]",
						Flags:     []cli.Flag{waitFlag()},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return ascli.Caches(ctx, ascli.CachesParams{
								SessionParams: sessionParams(cmd),
								Lines:         cmd.Args().Slice(),
								Wait:          cmd.Duration("wait"),
								Reset:         true,
							})
						},
					},
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a completion spec file",
				ArgsUsage: "[spec file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					specPath := cmd.String("spec")
					if cmd.Args().Len() > 0 {
						specPath = cmd.Args().Get(0)
					}
					return ascli.Validate(specPath, nil)
				},
			},
			{
				Name:  "schema",
				Usage: "Display the JSON Schema of completion specs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write schema to file instead of stdout",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return ascli.Schema(outputPath, nil)
				},
			},
		},
	}
}
