package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/tsgonest/schemagen/internal/buildcache"
	"github.com/tsgonest/schemagen/internal/config"
	"github.com/tsgonest/schemagen/internal/diagnostic"
	"github.com/tsgonest/schemagen/internal/loader"
	"github.com/tsgonest/schemagen/internal/schema"
)

// Target outcomes.
const (
	statusWritten   = "written"
	statusUnchanged = "unchanged"
	statusCached    = "cached"
	statusPrinted   = "printed"
	statusStale     = "stale"
	statusFresh     = "fresh"
	statusFailed    = "failed"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type generateOptions struct {
	targets targetFlags

	stdout  bool
	check   bool
	format  string
	strict  bool
	noCache bool
}

// outcome is one target's result, printed with --format json.
type outcome struct {
	Target string `json:"target"`
	Path   string `json:"path,omitempty"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
}

func newGenerateCmd(g *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate type declarations for every configured target",
		Example: `  # Run every target in schemagen.yaml
  schemagen generate

  # Generate one schema ad hoc and print it
  schemagen generate --entry @/schemas/v3.1/strict/openapi-document.ts \
    --schema ContactObjectSchema=ContactObject --stdout

  # Fail when a committed output is out of date
  schemagen generate --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("invalid --format %q: want %s or %s", opts.format, formatText, formatJSON)
			}
			if opts.stdout && opts.check {
				return errors.New("--stdout and --check cannot be combined")
			}
			return runGenerate(cmd.Context(), g, opts)
		},
	}

	addTargetFlags(cmd, &opts.targets)
	flags := cmd.Flags()
	flags.BoolVar(&opts.stdout, "stdout", false, "print declarations instead of writing output files")
	flags.BoolVar(&opts.check, "check", false, "fail if any output file is missing or out of date; write nothing")
	flags.StringVar(&opts.format, "format", formatText, "report format: text or json")
	flags.BoolVar(&opts.strict, "strict", false, "treat dropped fields as errors")
	flags.BoolVar(&opts.noCache, "no-cache", false, "regenerate every target even when its inputs are unchanged")
	return cmd
}

func addTargetFlags(cmd *cobra.Command, f *targetFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.entry, "entry", "", "entry file of an ad-hoc target (alias, relative or absolute path)")
	flags.StringArrayVar(&f.schemas, "schema", nil, "schema to emit as SchemaName=TypeName (repeatable, in output order)")
	flags.StringVarP(&f.out, "out", "o", "", "output file of an ad-hoc target")
	flags.StringSliceVar(&f.only, "target", nil, "only run the configured targets with these names or outputs")
}

func runGenerate(ctx context.Context, g *globalOptions, opts *generateOptions) error {
	cfg, err := loadProject(g, &opts.targets, !opts.stdout)
	if err != nil {
		return err
	}

	diags := diagnostic.NewCollector(opts.strict, !g.verbose)
	outcomes, err := generateTargets(ctx, g, cfg, opts, diags)

	if diags.Len() > 0 {
		fmt.Fprint(g.stderr, diags.FormatAll())
	}
	if opts.format == formatJSON {
		if werr := json.MarshalWrite(g.stdout, outcomes, jsontext.WithIndent("  ")); werr != nil {
			return werr
		}
		fmt.Fprintln(g.stdout)
	}
	if err != nil {
		return err
	}
	if diags.HasErrors() {
		return fmt.Errorf("generation failed: %s", diags.Summary())
	}
	return nil
}

// generateTargets runs every target in cfg. Resolution errors abort the
// run; diagnostics are collected and reported by the caller.
func generateTargets(ctx context.Context, g *globalOptions, cfg *config.Config, opts *generateOptions, diags *diagnostic.Collector) ([]outcome, error) {
	cwd, err := cfg.ResolvedCwd()
	if err != nil {
		return nil, err
	}

	gen := schema.NewGenerator(schema.Options{
		FS:          loader.DefaultFS(),
		Cwd:         cwd,
		Paths:       cfg.Aliases,
		Diagnostics: diags,
	})

	useCache := !opts.noCache && !opts.stdout
	cachePath := buildcache.CachePath(cwd)
	cache := buildcache.New()
	if useCache {
		cache = buildcache.Load(cachePath)
	} else if opts.noCache && !opts.stdout {
		buildcache.Delete(cachePath)
	}
	cacheDirty := false

	outcomes := make([]outcome, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		o := outcome{Target: t.Label()}
		var outPath, key string
		if t.Output != "" {
			if outPath, err = cfg.OutputPath(t); err != nil {
				return outcomes, err
			}
			o.Path = relativePath(outPath, cwd)
			key = requestKey(cfg, cwd, t)
			if opts.strict {
				key = buildcache.RequestKey(key, "strict")
			}
		}

		if useCache && outPath != "" && cache.Fresh(outPath, key) {
			o.Status = statusCached
			if opts.check {
				o.Status = statusFresh
			}
			g.logger.Debug("up to date", "target", o.Target, "path", o.Path)
			outcomes = append(outcomes, o)
			continue
		}

		errorsBefore := diags.ErrorCount()
		res, err := gen.Run(t.Entry, requestFor(t))
		if err != nil {
			return outcomes, fmt.Errorf("target %s: %w", t.Label(), err)
		}
		g.logger.Debug("compiled", "target", o.Target, "files", len(res.Files))
		if diags.ErrorCount() > errorsBefore {
			o.Status = statusFailed
			if useCache && outPath != "" && cache.Forget(outPath) {
				cacheDirty = true
			}
			outcomes = append(outcomes, o)
			continue
		}

		content := res.Output + "\n"
		switch {
		case opts.stdout:
			o.Status = statusPrinted
			if opts.format == formatJSON {
				o.Output = res.Output
			} else {
				fmt.Fprint(g.stdout, content)
			}

		case opts.check:
			existing, err := os.ReadFile(outPath)
			if err != nil || string(existing) != content {
				o.Status = statusStale
				if useCache && cache.Forget(outPath) {
					cacheDirty = true
				}
				diags.ErrorWithHint(diagnostic.CategoryStaleOutput, outPath, 0,
					fmt.Sprintf("output of target %s is out of date", o.Target),
					"run schemagen generate")
			} else {
				o.Status = statusFresh
			}

		default:
			changed, err := writeIfChanged(outPath, content)
			if err != nil {
				return outcomes, err
			}
			o.Status = statusUnchanged
			if changed {
				o.Status = statusWritten
			}
			if useCache {
				cache.Record(outPath, key, res.Files, res.Missing, content)
				cacheDirty = true
			}
		}

		if opts.format == formatText && !opts.stdout {
			g.logger.Info("generated", "target", o.Target, "path", o.Path, "status", o.Status)
		}
		outcomes = append(outcomes, o)
	}

	if cacheDirty {
		if err := buildcache.Save(cachePath, cache); err != nil {
			g.logger.Warn("could not save cache", "path", cachePath, "err", err)
		}
	}
	return outcomes, nil
}

// writeIfChanged writes content to path unless the file already holds it.
func writeIfChanged(path, content string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func relativePath(path, base string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
