package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsgonest/schemagen/internal/buildcache"
	"github.com/tsgonest/schemagen/internal/config"
	"github.com/tsgonest/schemagen/internal/schema"
)

// targetFlags select what to generate: an ad-hoc target, or a subset of
// the configured ones.
type targetFlags struct {
	entry   string
	schemas []string // Schema=Type
	out     string
	only    []string // target labels
}

func (f *targetFlags) adHoc() bool {
	return f.entry != "" || len(f.schemas) > 0
}

// loadProject returns the config to run: built from flags for an ad-hoc
// target, otherwise loaded from --config or the working directory.
func loadProject(g *globalOptions, f *targetFlags, requireOutput bool) (*config.Config, error) {
	var cfg *config.Config
	if f.adHoc() {
		var err error
		if cfg, err = adHocConfig(f, requireOutput); err != nil {
			return nil, err
		}
	} else {
		path := g.configPath
		if path == "" {
			dir := g.cwd
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return nil, fmt.Errorf("could not get working directory: %w", err)
				}
				dir = wd
			}
			if path = config.Find(dir); path == "" {
				return nil, fmt.Errorf("no %s found in %s (use --config, or --entry and --schema)", config.FileNames[0], dir)
			}
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		g.logger.Debug("loaded config", "path", path)

		if cfg.Targets, err = selectTargets(cfg.Targets, f.only); err != nil {
			return nil, err
		}
	}

	if g.cwd != "" {
		abs, err := filepath.Abs(g.cwd)
		if err != nil {
			return nil, fmt.Errorf("resolving --cwd: %w", err)
		}
		cfg.Cwd = abs
	}
	return cfg, nil
}

func adHocConfig(f *targetFlags, requireOutput bool) (*config.Config, error) {
	if f.entry == "" {
		return nil, errors.New("--entry is required with --schema")
	}
	if len(f.schemas) == 0 {
		return nil, errors.New("at least one --schema is required with --entry")
	}
	if requireOutput && f.out == "" {
		return nil, errors.New("--out is required unless --stdout is set")
	}

	schemas := make(config.SchemaList, 0, len(f.schemas))
	for _, s := range f.schemas {
		m, err := parseSchemaFlag(s)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, m)
	}
	return &config.Config{
		Targets: []config.Target{{Entry: f.entry, Output: f.out, Schemas: schemas}},
	}, nil
}

// parseSchemaFlag parses "ContactObjectSchema=ContactObject". A bare name
// uses its base name as the type: "ContactObjectSchema" → ContactObject.
func parseSchemaFlag(s string) (config.SchemaMapping, error) {
	name, typeName, ok := strings.Cut(s, "=")
	name, typeName = strings.TrimSpace(name), strings.TrimSpace(typeName)
	if !ok {
		typeName = schema.BaseName(name)
	}
	if name == "" || typeName == "" {
		return config.SchemaMapping{}, fmt.Errorf("invalid --schema %q: want SchemaName=TypeName", s)
	}
	return config.SchemaMapping{Schema: name, Type: typeName}, nil
}

func selectTargets(targets []config.Target, only []string) ([]config.Target, error) {
	if len(only) == 0 {
		return targets, nil
	}
	want := make(map[string]bool, len(only))
	for _, label := range only {
		want[label] = true
	}
	var out []config.Target
	for _, t := range targets {
		if want[t.Label()] {
			out = append(out, t)
			delete(want, t.Label())
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for label := range want {
			missing = append(missing, label)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown target(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func requestFor(t config.Target) *schema.Request {
	req := schema.NewRequest()
	for _, m := range t.Schemas {
		req.Set(m.Schema, m.Type)
	}
	return req
}

// requestKey identifies everything besides source contents that affects
// a target's output.
func requestKey(cfg *config.Config, cwd string, t config.Target) string {
	parts := []string{version, cwd, t.Entry}

	patterns := make([]string, 0, len(cfg.Aliases))
	for p := range cfg.Aliases {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		parts = append(parts, p+"="+strings.Join(cfg.Aliases[p], ","))
	}
	for _, m := range t.Schemas {
		parts = append(parts, m.Schema+"="+m.Type)
	}
	return buildcache.RequestKey(parts...)
}
