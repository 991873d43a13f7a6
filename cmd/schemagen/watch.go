package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsgonest/schemagen/internal/config"
	"github.com/tsgonest/schemagen/internal/diagnostic"
	"github.com/tsgonest/schemagen/internal/watcher"
)

type watchOptions struct {
	targets  targetFlags
	strict   bool
	debounce time.Duration
	interval time.Duration
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate targets whenever a .ts file under the working directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), g, opts)
		},
	}

	addTargetFlags(cmd, &opts.targets)
	flags := cmd.Flags()
	flags.BoolVar(&opts.strict, "strict", false, "treat dropped fields as errors")
	flags.DurationVar(&opts.debounce, "debounce", watcher.DefaultDebounce, "quiet period before regenerating")
	flags.DurationVar(&opts.interval, "poll-interval", watcher.DefaultPollInterval, "how often to poll for changes")
	return cmd
}

func runWatch(ctx context.Context, g *globalOptions, opts *watchOptions) error {
	cfg, err := loadProject(g, &opts.targets, true)
	if err != nil {
		return err
	}
	cwd, err := cfg.ResolvedCwd()
	if err != nil {
		return err
	}

	ignore := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		out, err := cfg.OutputPath(t)
		if err != nil {
			return err
		}
		ignore = append(ignore, out)
	}

	genOpts := &generateOptions{format: formatText, strict: opts.strict}
	regenerate := func() {
		if err := generateOnce(ctx, g, cfg, genOpts); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Error("generation failed", "err", err)
		}
	}

	regenerate()

	w := watcher.New(watcher.Options{
		Roots:        []string{cwd},
		Extensions:   []string{".ts"},
		Ignore:       ignore,
		Debounce:     opts.debounce,
		PollInterval: opts.interval,
	}, func(events []watcher.Event) {
		for _, e := range events {
			g.logger.Debug("change", "path", relativePath(e.Path, cwd), "op", string(e.Op))
		}
		g.logger.Info("regenerating", "changes", len(events))
		regenerate()
	})

	g.logger.Info("watching", "dir", cwd)
	return w.Run(ctx)
}

// generateOnce runs one pass over cfg with a fresh file system cache, so
// edits since the previous pass are seen.
func generateOnce(ctx context.Context, g *globalOptions, cfg *config.Config, opts *generateOptions) error {
	diags := diagnostic.NewCollector(opts.strict, !g.verbose)
	_, err := generateTargets(ctx, g, cfg, opts, diags)
	if diags.Len() > 0 {
		g.stderr.Write([]byte(diags.FormatAll()))
	}
	if err != nil {
		return err
	}
	if diags.HasErrors() {
		return errors.New(diags.Summary())
	}
	return nil
}
