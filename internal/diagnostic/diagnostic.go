// Package diagnostic collects non-fatal findings from a generate run.
//
// Fatal problems are returned as errors; diagnostics are for everything the
// generator recovers from, such as fields whose shape it does not recognize.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	// CategoryFieldDropped marks a field whose initializer is not a
	// recognized type shape and was left out of the generated type.
	CategoryFieldDropped Category = "field-dropped"
	// CategoryStaleOutput marks a generated file that differs from what
	// the sources produce (reported by --check).
	CategoryStaleOutput Category = "stale-output"
)

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string // source file path
	Line     int    // 1-based line number (0 = unknown)
	Message  string
	Hint     string // optional suggestion for fixing the issue
}

// String formats the diagnostic for display:
//
//	src/schemas/info.ts:12 - warning: [field-dropped] field "tags" ...
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&sb, ":%d", d.Line)
		}
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)

	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	return sb.String()
}

// Collector collects diagnostics during a run. A nil *Collector discards
// everything, so callers that don't care can pass nil.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

func (c *Collector) add(d Diagnostic) {
	if c == nil {
		return
	}
	if d.Severity == SeverityWarning && c.strict {
		d.Severity = SeverityError
	}
	if c.quiet && d.Severity != SeverityError {
		return
	}
	c.diagnostics = append(c.diagnostics, d)
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, file string, line int, message, hint string) {
	c.add(Diagnostic{Severity: SeverityWarning, Category: category, File: file, Line: line, Message: message, Hint: hint})
}

// ErrorWithHint adds an error with a suggestion.
func (c *Collector) ErrorWithHint(category Category, file string, line int, message, hint string) {
	c.add(Diagnostic{Severity: SeverityError, Category: category, File: file, Line: line, Message: message, Hint: hint})
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.Diagnostics())
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.count(SeverityError) > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

func (c *Collector) count(sev Severity) int {
	n := 0
	for _, d := range c.Diagnostics() {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	var sb strings.Builder
	for _, d := range c.Diagnostics() {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errors := c.ErrorCount()

	parts := []string{}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
