// Package buildcache records what each generation target was built from,
// so an unchanged target can be skipped on the next run.
//
// A target is fresh only when the request (entry, schema list, aliases)
// hashes the same, every source file it read still has the same content,
// no alias candidate that was missing has since appeared, and its output
// file is still exactly what was written. Any mismatch means the target is
// regenerated from scratch.
package buildcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/zeebo/xxh3"
)

// SchemaVersion is bumped when the cache format or the generated output
// format changes. A mismatch invalidates every target.
const SchemaVersion = 2

// FileName is the cache file name inside the working directory.
const FileName = ".schemagen-cache"

// Cache is the on-disk generation cache.
type Cache struct {
	V       int                `json:"v"`
	Targets map[string]*Target `json:"targets"` // keyed by absolute output path
}

// Target records one successful generation.
type Target struct {
	Request string            `json:"request"`          // RequestKey of the target's settings
	Inputs  map[string]string `json:"inputs"`           // source path → content hash
	Absent  []string          `json:"absent,omitempty"` // alias candidates that did not exist
	Output  string            `json:"output"`           // hash of the written output
}

// CachePath returns the cache file path for a working directory.
func CachePath(cwd string) string {
	return filepath.Join(cwd, FileName)
}

// New creates an empty cache with the current schema version.
func New() *Cache {
	return &Cache{V: SchemaVersion, Targets: make(map[string]*Target)}
}

// Load reads a cache file. A missing, unreadable or outdated file yields
// an empty cache, so callers never need to distinguish a miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil || c.V != SchemaVersion {
		return New()
	}
	if c.Targets == nil {
		c.Targets = make(map[string]*Target)
	}
	return &c
}

// Save writes the cache to disk atomically (write to temp, rename).
func Save(path string, cache *Cache) error {
	data, err := json.Marshal(cache, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// Fresh reports whether output can be left as is for request.
func (c *Cache) Fresh(output, request string) bool {
	if c == nil || c.V != SchemaVersion {
		return false
	}
	t, ok := c.Targets[output]
	if !ok || t.Request != request || len(t.Inputs) == 0 {
		return false
	}
	if HashFile(output) != t.Output {
		return false
	}
	for path, hash := range t.Inputs {
		if HashFile(path) != hash {
			return false
		}
	}
	for _, path := range t.Absent {
		if _, err := os.Stat(path); err == nil {
			return false
		}
	}
	return true
}

// Record stores a successful generation of output from inputs. absent
// lists the paths that were looked for and missing; the record goes stale
// as soon as one of them exists.
func (c *Cache) Record(output, request string, inputs, absent []string, content string) {
	t := &Target{
		Request: request,
		Inputs:  make(map[string]string, len(inputs)),
		Absent:  absent,
		Output:  HashString(content),
	}
	for _, p := range inputs {
		t.Inputs[p] = HashFile(p)
	}
	c.Targets[output] = t
}

// Forget drops output's record, so the next run regenerates it. It
// reports whether there was a record to drop.
func (c *Cache) Forget(output string) bool {
	if _, ok := c.Targets[output]; !ok {
		return false
	}
	delete(c.Targets, output)
	return true
}

// RequestKey hashes the settings that determine a target's output.
func RequestKey(parts ...string) string {
	return HashString(strings.Join(parts, "\x00"))
}

// HashString returns the hex xxh3 digest of s.
func HashString(s string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(s))
}

// HashFile returns the hex xxh3 digest of a file's contents, or "" when it
// can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
