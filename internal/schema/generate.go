// Package schema compiles TypeBox-style schema declarations into flat
// TypeScript type declarations.
//
// A Generate call loads an entry file, resolves each requested schema to
// one or more Type.Object shapes (directly, through compose(), or through a
// Type.Module name table), infers a type for every field and emits one
// `export type` block per schema in request order.
package schema

import (
	"fmt"
	"os"

	"github.com/microsoft/typescript-go/shim/vfs"

	"github.com/tsgonest/schemagen/internal/diagnostic"
	"github.com/tsgonest/schemagen/internal/loader"
	"github.com/tsgonest/schemagen/internal/pathalias"
)

// Options configures a Generator.
type Options struct {
	FS    vfs.FS              // nil means loader.DefaultFS()
	Cwd   string              // base for alias roots and bare entry paths
	Paths map[string][]string // alias table; nil means pathalias.DefaultPaths()

	// Diagnostics, when set, receives a warning for every field dropped
	// because its initializer has an unrecognized shape.
	Diagnostics *diagnostic.Collector
}

// Result is the output of one generate pass.
type Result struct {
	Output  string   // type declarations joined with "\n"
	Files   []string // every source file read, sorted
	Missing []string // alias candidates checked and found missing, sorted
}

// Generator compiles schema requests. It holds only immutable options and
// may be shared; each call gets its own file cache.
type Generator struct {
	opts     Options
	resolver *pathalias.Resolver
}

// NewGenerator creates a Generator from opts.
func NewGenerator(opts Options) *Generator {
	if opts.FS == nil {
		opts.FS = loader.DefaultFS()
	}
	return &Generator{
		opts: opts,
		resolver: pathalias.NewResolver(pathalias.Config{
			Cwd:   opts.Cwd,
			Paths: opts.Paths,
			FS:    opts.FS,
		}),
	}
}

// Generate compiles req against the file entry refers to and returns the
// declarations text.
func (g *Generator) Generate(entry string, req *Request) (string, error) {
	res, err := g.Run(entry, req)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Run is Generate that also reports which files were read.
func (g *Generator) Run(entry string, req *Request) (*Result, error) {
	c := &compilation{
		session: loader.NewSession(g.opts.FS, g.resolver),
		aliases: NewAliasTable(req),
		diags:   g.opts.Diagnostics,
		indexes: make(map[string]*fileIndex),
	}

	f, err := c.session.Load(entry, "")
	if err != nil {
		return nil, fmt.Errorf("loading entry %s: %w", entry, err)
	}

	e := NewEmitter()
	for _, item := range req.Entries() {
		d, err := c.resolveDeclaration(f, item.Schema)
		if err != nil {
			return nil, err
		}
		c.emitDeclaration(e, d, item.Type)
	}

	return &Result{
		Output:  e.String(),
		Files:   c.session.Loaded(),
		Missing: c.session.Missing(),
	}, nil
}

// Generate compiles req using the OS file system, the process working
// directory and the default alias table.
func Generate(entry string, req *Request) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return NewGenerator(Options{Cwd: cwd}).Generate(entry, req)
}

// compilation is the state of one Run: loaded files, per-file indexes and
// the alias table derived from the request.
type compilation struct {
	session *loader.Session
	aliases AliasTable
	diags   *diagnostic.Collector
	indexes map[string]*fileIndex
}

// resolveDeclaration finds the declaration schema names, starting in f.
func (c *compilation) resolveDeclaration(f *loader.File, schema string) (*Declaration, error) {
	return c.resolveIn(f, schema, schema, make(map[string]bool))
}

// resolveIn looks name up in f. A name bound by a named import rather than
// a local variable is followed to the file it is imported from; visited
// stops import cycles.
func (c *compilation) resolveIn(f *loader.File, schema, name string, visited map[string]bool) (*Declaration, error) {
	decls, err := c.declarations(f)
	if err != nil {
		return nil, err
	}
	if d, ok := decls[name]; ok {
		return d, nil
	}

	if node, ok := c.index(f).vars[name]; ok {
		if e := classify(node.AsVariableDeclaration().Initializer); e.kind == kindModuleImportCall {
			return c.resolveModuleImport(f, schema, e)
		}
		return nil, &ResolutionError{Code: ErrSchemaNotFound, Schema: schema, File: f.Path}
	}

	key := f.Path + "#" + name
	if !visited[key] {
		visited[key] = true
		if binding, ok := findImport(f, name); ok {
			target, err := c.session.Load(binding.module, f.Dir())
			if err != nil {
				return nil, err
			}
			return c.resolveIn(target, schema, binding.exported, visited)
		}
	}
	return nil, &ResolutionError{Code: ErrSchemaNotFound, Schema: schema, File: f.Path}
}
