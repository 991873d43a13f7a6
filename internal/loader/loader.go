// Package loader reads and parses schema source files.
//
// A Session is the compilation context of one generate pass: it owns the
// path → File cache, so every distinct resolved path is read and parsed at
// most once per pass, and nothing is shared between passes.
package loader

import (
	"fmt"
	"sort"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/parser"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/cachedvfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"

	"github.com/tsgonest/schemagen/internal/pathalias"
)

// File is a parsed schema source file. It is immutable once loaded.
type File struct {
	Path   string // resolved absolute path
	Text   string
	Source *ast.SourceFile
}

// Dir returns the directory containing the file, used as the base for
// relative imports found in it.
func (f *File) Dir() string {
	return tspath.GetDirectoryPath(f.Path)
}

// ReadError reports a file that could not be read.
type ReadError struct {
	Path string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read %s", e.Path)
}

// DefaultFS creates a filesystem backed by the OS with stat caching.
// Callers that watch for changes should create a fresh FS per pass.
func DefaultFS() vfs.FS {
	return cachedvfs.From(osvfs.FS())
}

// Session loads files for one compilation pass.
type Session struct {
	fs       vfs.FS
	resolver *pathalias.Resolver
	files    map[string]*File
	missing  map[string]bool // alias candidates checked and not found
}

// NewSession creates a session reading through fs and resolving module
// references with resolver.
func NewSession(fs vfs.FS, resolver *pathalias.Resolver) *Session {
	return &Session{
		fs:       fs,
		resolver: resolver,
		files:    make(map[string]*File),
		missing:  make(map[string]bool),
	}
}

// Load resolves ref (relative references against baseDir) and loads the
// resulting file.
func (s *Session) Load(ref string, baseDir string) (*File, error) {
	p, missing := s.resolver.ResolveWithMisses(ref, baseDir)
	for _, m := range missing {
		s.missing[m] = true
	}
	return s.LoadPath(p)
}

// LoadPath loads the file at an already resolved path.
func (s *Session) LoadPath(p string) (*File, error) {
	p = tspath.NormalizePath(p)
	if f, ok := s.files[p]; ok {
		return f, nil
	}

	text, ok := s.fs.ReadFile(p)
	if !ok {
		return nil, &ReadError{Path: p}
	}

	sf := parser.ParseSourceFile(ast.SourceFileParseOptions{
		FileName: p,
		Path:     tspath.ToPath(p, "", s.fs.UseCaseSensitiveFileNames()),
	}, text, core.ScriptKindTS)

	f := &File{Path: p, Text: text, Source: sf}
	s.files[p] = f
	return f, nil
}

// Loaded returns the sorted paths of every file loaded so far.
func (s *Session) Loaded() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Missing returns the sorted alias candidates that were checked during this
// session and did not exist. Any of them appearing later can change what a
// reference resolves to.
func (s *Session) Missing() []string {
	paths := make([]string, 0, len(s.missing))
	for p := range s.missing {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
