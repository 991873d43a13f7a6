package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	cwd        string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// run builds the command tree and executes args. OS dependencies are
// parameters so tests can drive the CLI in-process.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "schemagen",
		Short: "Generate TypeScript types from TypeBox schema sources",
		Long: `schemagen reads TypeBox-style schema declarations (Type.Object, compose,
Type.Module tables) and writes flat TypeScript type declarations.

Targets are read from schemagen.yaml in the working directory, or given
ad hoc with --entry, --schema and --out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(g.stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "path to schemagen.yaml (default: search the working directory)")
	flags.StringVar(&g.cwd, "cwd", "", "working directory for aliases and relative paths (default: config directory)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debug output and report dropped fields")

	root.AddCommand(
		newGenerateCmd(g),
		newWatchCmd(g),
		newVersionCmd(g),
	)
	return root
}
