// Package testutil provides test utilities for schemagen, including a virtual
// filesystem overlay for serving inline TypeScript schema sources.
package testutil

import (
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// ProjectRoot is the virtual directory NewProjectFS places files under.
const ProjectRoot = "/project"

// OverlayVFS wraps a base filesystem with in-memory virtual files.
// Virtual files take precedence over the underlying filesystem and record
// how often they were read, so tests can assert on the loader's caching.
type OverlayVFS struct {
	fs           vfs.FS
	VirtualFiles map[string]string
	reads        map[string]int
}

var _ vfs.FS = (*OverlayVFS)(nil)

func (o *OverlayVFS) UseCaseSensitiveFileNames() bool {
	return o.fs.UseCaseSensitiveFileNames()
}

func (o *OverlayVFS) FileExists(path string) bool {
	if _, ok := o.VirtualFiles[path]; ok {
		return true
	}
	return o.fs.FileExists(path)
}

func (o *OverlayVFS) ReadFile(path string) (contents string, ok bool) {
	if src, ok := o.VirtualFiles[path]; ok {
		o.reads[path]++
		return src, true
	}
	return o.fs.ReadFile(path)
}

// Reads reports how many times the virtual file at path has been read.
func (o *OverlayVFS) Reads(path string) int {
	return o.reads[path]
}

// Paths returns the sorted virtual file paths.
func (o *OverlayVFS) Paths() []string {
	paths := make([]string, 0, len(o.VirtualFiles))
	for p := range o.VirtualFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (o *OverlayVFS) DirectoryExists(path string) bool {
	dir := dirPrefix(path)
	for virtualFilePath := range o.VirtualFiles {
		if strings.HasPrefix(virtualFilePath, dir) {
			return true
		}
	}
	return o.fs.DirectoryExists(path)
}

func (o *OverlayVFS) GetAccessibleEntries(path string) (result vfs.Entries) {
	result = o.fs.GetAccessibleEntries(path)

	dir := dirPrefix(path)
	seen := make(map[string]bool)
	for virtualFilePath := range o.VirtualFiles {
		withoutPrefix, found := strings.CutPrefix(virtualFilePath, dir)
		if !found {
			continue
		}
		if before, _, ok := strings.Cut(withoutPrefix, "/"); ok {
			if !seen[before] {
				seen[before] = true
				result.Directories = append(result.Directories, before)
			}
		} else {
			result.Files = append(result.Files, withoutPrefix)
		}
	}
	return result
}

func dirPrefix(path string) string {
	normalized := tspath.NormalizePath(path)
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return normalized
}

type overlayFileInfo struct {
	mode fs.FileMode
	name string
	size int64
}

var (
	_ fs.FileInfo = (*overlayFileInfo)(nil)
	_ fs.DirEntry = (*overlayFileInfo)(nil)
)

func (fi *overlayFileInfo) IsDir() bool                { return fi.mode.IsDir() }
func (fi *overlayFileInfo) ModTime() time.Time         { return time.Time{} }
func (fi *overlayFileInfo) Mode() fs.FileMode          { return fi.mode }
func (fi *overlayFileInfo) Name() string               { return fi.name }
func (fi *overlayFileInfo) Size() int64                { return fi.size }
func (fi *overlayFileInfo) Sys() any                   { return nil }
func (fi *overlayFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *overlayFileInfo) Type() fs.FileMode          { return fi.mode.Type() }

func (o *OverlayVFS) Stat(path string) vfs.FileInfo {
	if src, ok := o.VirtualFiles[path]; ok {
		return &overlayFileInfo{
			name: path,
			size: int64(len(src)),
		}
	}
	return o.fs.Stat(path)
}

func (o *OverlayVFS) WalkDir(root string, walkFn vfs.WalkDirFunc) error {
	return o.fs.WalkDir(root, walkFn)
}

func (o *OverlayVFS) Realpath(path string) string {
	if _, ok := o.VirtualFiles[path]; ok {
		return path
	}
	return o.fs.Realpath(path)
}

func (o *OverlayVFS) WriteFile(path string, data string, writeByteOrderMark bool) error {
	if _, ok := o.VirtualFiles[path]; ok {
		panic("cannot write to overlay virtual file")
	}
	return o.fs.WriteFile(path, data, writeByteOrderMark)
}

func (o *OverlayVFS) Remove(path string) error {
	if _, ok := o.VirtualFiles[path]; ok {
		panic("cannot remove overlay virtual file")
	}
	return o.fs.Remove(path)
}

func (o *OverlayVFS) Chtimes(path string, aTime time.Time, mTime time.Time) error {
	if _, ok := o.VirtualFiles[path]; ok {
		panic("cannot change times on overlay virtual file")
	}
	return o.fs.Chtimes(path, aTime, mTime)
}

// NewOverlayVFS creates an OverlayVFS with the given virtual files on top of a base FS.
// Keys must be absolute, normalized paths.
func NewOverlayVFS(baseFS vfs.FS, virtualFiles map[string]string) *OverlayVFS {
	return &OverlayVFS{fs: baseFS, VirtualFiles: virtualFiles, reads: make(map[string]int)}
}

// NewProjectFS places files (keyed by path relative to ProjectRoot) on top
// of the OS filesystem.
func NewProjectFS(files map[string]string) *OverlayVFS {
	virtual := make(map[string]string, len(files))
	for rel, src := range files {
		virtual[tspath.ResolvePath(ProjectRoot, rel)] = src
	}
	return NewOverlayVFS(osvfs.FS(), virtual)
}
