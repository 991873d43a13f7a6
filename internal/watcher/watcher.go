// Package watcher polls schema source directories and reports batches of
// changed files, so generate passes can be re-run on edit.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// Op is the kind of change observed for a file.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   Op
}

// Default timings.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultDebounce     = 200 * time.Millisecond
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
}

// Options configures a Watcher.
type Options struct {
	Roots        []string      // directories to poll recursively
	Extensions   []string      // e.g., [".ts"]
	Ignore       []string      // files never reported, such as generated outputs
	Debounce     time.Duration // quiet period before a batch is delivered
	PollInterval time.Duration
}

// Watcher watches directories for file changes using a polling approach.
// Batches are delivered on the goroutine running Run, one at a time, so
// onChange never overlaps itself.
type Watcher struct {
	roots        []string
	extensions   map[string]bool
	ignore       map[string]bool
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func(events []Event)
}

// New creates a new file watcher. Zero durations take the defaults.
func New(opts Options, onChange func(events []Event)) *Watcher {
	w := &Watcher{
		roots:        opts.Roots,
		extensions:   make(map[string]bool, len(opts.Extensions)),
		ignore:       make(map[string]bool, len(opts.Ignore)),
		debounce:     opts.Debounce,
		pollInterval: opts.PollInterval,
		onChange:     onChange,
	}
	for _, ext := range opts.Extensions {
		w.extensions[ext] = true
	}
	for _, p := range opts.Ignore {
		w.ignore[filepath.Clean(p)] = true
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	return w
}

// Run polls until ctx is done. Changes are accumulated until no new change
// has been seen for the debounce period, then delivered as one batch.
func (w *Watcher) Run(ctx context.Context) error {
	snapshot := w.buildSnapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var pending []Event
	var quietAt time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			next := w.buildSnapshot()
			if events := diff(snapshot, next); len(events) > 0 {
				pending = append(pending, events...)
				quietAt = now.Add(w.debounce)
			}
			snapshot = next

			if len(pending) > 0 && !now.Before(quietAt) {
				batch := coalesce(pending)
				pending = nil
				w.onChange(batch)
				// Files written by onChange are part of the next baseline.
				snapshot = w.buildSnapshot()
			}
		}
	}
}

type fileInfo struct {
	modTime time.Time
	size    int64
}

func (w *Watcher) buildSnapshot() map[string]fileInfo {
	snap := make(map[string]fileInfo)
	for _, root := range w.roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.extensions[filepath.Ext(path)] || w.ignore[filepath.Clean(path)] {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[path] = fileInfo{modTime: info.ModTime(), size: info.Size()}
			return nil
		})
	}
	return snap
}

// diff returns the changes between two snapshots, sorted by path.
func diff(old, new map[string]fileInfo) []Event {
	var events []Event

	for path, newInfo := range new {
		if oldInfo, ok := old[path]; ok {
			if !newInfo.modTime.Equal(oldInfo.modTime) || newInfo.size != oldInfo.size {
				events = append(events, Event{Path: path, Op: OpWrite})
			}
		} else {
			events = append(events, Event{Path: path, Op: OpCreate})
		}
	}

	for path := range old {
		if _, ok := new[path]; !ok {
			events = append(events, Event{Path: path, Op: OpRemove})
		}
	}

	sortEvents(events)
	return events
}

// coalesce keeps the latest event per path, sorted by path.
func coalesce(events []Event) []Event {
	latest := make(map[string]Op, len(events))
	for _, e := range events {
		latest[e.Path] = e.Op
	}
	out := make([]Event, 0, len(latest))
	for path, op := range latest {
		out = append(out, Event{Path: path, Op: op})
	}
	sortEvents(out)
	return out
}

func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
}
