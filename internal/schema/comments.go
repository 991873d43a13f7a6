package schema

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsgonest/schemagen/internal/loader"
)

// docSelect picks one comment out of a stacked run of JSDoc comments.
type docSelect int

const (
	// selectFirst picks the earliest comment. Used for schema-level docs.
	selectFirst docSelect = iota
	// selectLast picks the comment nearest the node. Used for field docs.
	selectLast
)

// docComment returns the raw, trimmed text of the selected /** */ comment
// preceding node, or "" when there is none.
func docComment(f *loader.File, node *ast.Node, which docSelect) string {
	if node == nil {
		return ""
	}
	jsdocs := node.JSDoc(f.Source)
	if len(jsdocs) == 0 {
		return ""
	}

	selected := jsdocs[len(jsdocs)-1]
	if which == selectFirst {
		selected = jsdocs[0]
	}

	pos, end := selected.Pos(), selected.End()
	if pos < 0 || end > len(f.Text) || pos >= end {
		return ""
	}
	return strings.TrimSpace(f.Text[pos:end])
}
