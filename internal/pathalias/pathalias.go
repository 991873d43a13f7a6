// Package pathalias turns module references found in schema sources into
// concrete file paths.
//
// Alias matching follows TypeScript's tryLoadModuleUsingPaths():
//  1. Exact matches are checked first
//  2. Wildcard patterns are matched by longest prefix (ties broken by longest suffix)
//  3. The matched wildcard text is substituted into each target in order
//  4. The first target that exists wins; the last target is the fallback and
//     is returned without an existence check
package pathalias

import (
	"path"
	"strings"

	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
)

// DefaultExtension is appended to resolved paths that have no extension.
const DefaultExtension = ".ts"

// DefaultPaths returns the alias table used when none is configured:
// "@/" points at the package's src directory, falling back to the same
// directory inside the monorepo layout when run from the repository root.
func DefaultPaths() map[string][]string {
	return map[string][]string{
		"@/*": {"src/*", "packages/workspace-store/src/*"},
	}
}

// Resolver resolves module references against a working directory and a
// set of alias patterns.
type Resolver struct {
	cwd     string              // absolute, normalized working directory
	aliases map[string][]string // pattern → targets (e.g., "@/*" → ["src/*"])
	fs      vfs.FS
}

// Config holds the values needed to build a Resolver.
type Config struct {
	Cwd   string              // working directory; alias targets and bare paths resolve against it
	Paths map[string][]string // alias pattern → target paths; nil means DefaultPaths()
	FS    vfs.FS              // used for the primary/fallback existence check
}

// NewResolver creates a resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	paths := cfg.Paths
	if paths == nil {
		paths = DefaultPaths()
	}
	return &Resolver{
		cwd:     tspath.NormalizePath(cfg.Cwd),
		aliases: paths,
		fs:      cfg.FS,
	}
}

// Cwd returns the working directory the resolver was built with.
func (r *Resolver) Cwd() string {
	return r.cwd
}

// Resolve turns ref into a candidate file path. Relative references
// ("./", "../") resolve against baseDir, or the working directory when
// baseDir is empty. The returned path is not guaranteed to exist.
func (r *Resolver) Resolve(ref string, baseDir string) string {
	resolved, _ := r.ResolveWithMisses(ref, baseDir)
	return resolved
}

// ResolveWithMisses is Resolve that also returns the alias candidates that were
// checked and found missing before the returned path was chosen. Creating
// any of them later changes what ref resolves to.
func (r *Resolver) ResolveWithMisses(ref string, baseDir string) (string, []string) {
	if candidates := r.matchAlias(ref); len(candidates) > 0 {
		var missing []string
		for _, c := range candidates[:len(candidates)-1] {
			if r.fs != nil && r.fs.FileExists(c) {
				return c, missing
			}
			missing = append(missing, c)
		}
		return candidates[len(candidates)-1], missing
	}

	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		base := baseDir
		if base == "" {
			base = r.cwd
		}
		return ensureExtension(tspath.ResolvePath(base, ref)), nil
	}

	return ensureExtension(tspath.ResolvePath(r.cwd, ref)), nil
}

// matchAlias returns the candidate paths for ref in target order, or nil
// when no alias pattern matches.
func (r *Resolver) matchAlias(ref string) []string {
	if strings.HasPrefix(ref, ".") || strings.HasPrefix(ref, "/") {
		return nil
	}

	// Phase 1: exact matches (no wildcard)
	for key, targets := range r.aliases {
		if !strings.Contains(key, "*") && key == ref && len(targets) > 0 {
			return r.candidates(targets, "")
		}
	}

	// Phase 2: wildcard patterns, longest prefix wins
	longestPrefixLen := -1
	longestSuffixLen := -1
	var bestPrefix, bestSuffix string
	var bestTargets []string

	for key, targets := range r.aliases {
		starIdx := strings.IndexByte(key, '*')
		if starIdx < 0 || len(targets) == 0 {
			continue
		}
		prefix := key[:starIdx]
		suffix := key[starIdx+1:]

		if strings.HasPrefix(ref, prefix) && strings.HasSuffix(ref, suffix) &&
			len(ref) >= len(prefix)+len(suffix) {
			if len(prefix) > longestPrefixLen ||
				(len(prefix) == longestPrefixLen && len(suffix) > longestSuffixLen) {
				longestPrefixLen = len(prefix)
				longestSuffixLen = len(suffix)
				bestPrefix, bestSuffix, bestTargets = prefix, suffix, targets
			}
		}
	}

	if longestPrefixLen < 0 {
		return nil
	}
	matched := ref[len(bestPrefix) : len(ref)-len(bestSuffix)]
	return r.candidates(bestTargets, matched)
}

func (r *Resolver) candidates(targets []string, matched string) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		target = strings.TrimPrefix(target, "./")
		target = strings.Replace(target, "*", matched, 1)
		out = append(out, ensureExtension(tspath.ResolvePath(r.cwd, target)))
	}
	return out
}

// ensureExtension appends DefaultExtension when p has none.
func ensureExtension(p string) string {
	if path.Ext(p) != "" {
		return p
	}
	return p + DefaultExtension
}
