package schema

import (
	"fmt"
	"strings"
)

// Emitter builds type declaration text line by line with two-space
// indentation. Lines are joined with "\n" and no trailing newline.
type Emitter struct {
	lines  []string
	indent int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line writes a single line at the current indentation level.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		e.lines = append(e.lines, "")
		return
	}
	e.lines = append(e.lines, strings.Repeat(indentUnit, e.indent)+line)
}

// Doc writes a doc comment verbatim at the current indentation level.
// Continuation lines of a multi-line comment keep their source layout.
func (e *Emitter) Doc(doc string) {
	if doc == "" {
		return
	}
	e.lines = append(e.lines, strings.Repeat(indentUnit, e.indent)+doc)
}

// Block opens a block (appends " {" to the line and increases indent).
func (e *Emitter) Block(format string, args ...any) {
	e.Line(format+" {", args...)
	e.indent++
}

// EndBlock closes a block (decreases indent and writes "}").
func (e *Emitter) EndBlock() {
	if e.indent > 0 {
		e.indent--
	}
	e.Line("}")
}

// Len returns the number of lines written.
func (e *Emitter) Len() int {
	return len(e.lines)
}

// String returns the emitted text.
func (e *Emitter) String() string {
	return strings.Join(e.lines, "\n")
}

// emitDeclaration writes one `export type` block for d.
func (c *compilation) emitDeclaration(e *Emitter, d *Declaration, typeName string) {
	if d.Statement != nil {
		e.Doc(docComment(d.File, d.Statement, selectFirst))
	}
	e.Block("export type %s =", typeName)
	for _, shape := range d.Shapes {
		for _, fl := range c.fields(shape.File, shape.Object, e.indent) {
			e.Doc(fl.Doc)
			e.Line("%s", fl.Decl())
		}
	}
	e.EndBlock()
}
