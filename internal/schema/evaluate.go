package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsgonest/schemagen/internal/diagnostic"
	"github.com/tsgonest/schemagen/internal/loader"
)

const indentUnit = "  "

// Field is one rendered property of a generated type.
type Field struct {
	Name     string // property name as written in the source, unquoted
	Type     string
	Optional bool
	Doc      string // nearest JSDoc comment, raw
}

// Decl renders the field as `name?: type`.
func (fl Field) Decl() string {
	var sb strings.Builder
	sb.WriteString(propertyKey(fl.Name))
	if fl.Optional {
		sb.WriteByte('?')
	}
	sb.WriteString(": ")
	sb.WriteString(fl.Type)
	return sb.String()
}

// fieldType is the evaluated type of one initializer.
type fieldType struct {
	text     string
	optional bool
}

// evaluate infers the type of a field initializer. depth is the
// indentation level of the line the field is rendered on, used to lay out
// inline objects. ok is false for shapes the compiler does not recognize.
func (c *compilation) evaluate(f *loader.File, node *ast.Node, depth int) (fieldType, bool) {
	e := classify(node)
	switch e.kind {
	case kindOptional:
		inner, ok := c.evaluate(f, e.inner, depth)
		if !ok {
			return fieldType{}, false
		}
		return fieldType{text: inner.text, optional: true}, true

	case kindArrayOf:
		// Optionality of the element does not carry over to the array.
		inner, ok := c.evaluate(f, e.inner, depth)
		if !ok {
			return fieldType{}, false
		}
		return fieldType{text: inner.text + "[]"}, true

	case kindPrimitive:
		return fieldType{text: e.primitive}, true

	case kindInlineObject:
		return fieldType{text: c.inlineObject(f, e.object, depth)}, true

	case kindReference:
		return fieldType{text: c.aliases.Resolve(e.name)}, true
	}
	return fieldType{}, false
}

// inlineObject renders a nested Type.Object as a brace block whose fields
// sit one level deeper than the line that opens it.
func (c *compilation) inlineObject(f *loader.File, obj *ast.Node, depth int) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for _, fl := range c.fields(f, obj, depth+1) {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(indentUnit, depth+1))
		sb.WriteString(fl.Decl())
	}
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(indentUnit, depth))
	sb.WriteByte('}')
	return sb.String()
}

// fields evaluates every property assignment of obj in source order.
// Properties with computed names, shorthand or spread properties, and
// initializers of unrecognized shape are left out.
func (c *compilation) fields(f *loader.File, obj *ast.Node, depth int) []Field {
	props := obj.AsObjectLiteralExpression().Properties
	if props == nil {
		return nil
	}

	var out []Field
	for _, prop := range props.Nodes {
		if prop.Kind != ast.KindPropertyAssignment {
			continue
		}
		pa := prop.AsPropertyAssignment()
		name, ok := propertyName(pa.Name())
		if !ok {
			continue
		}
		typ, ok := c.evaluate(f, pa.Initializer, depth)
		if !ok {
			c.dropField(f, pa, name)
			continue
		}
		out = append(out, Field{
			Name:     name,
			Type:     typ.text,
			Optional: typ.optional,
			Doc:      docComment(f, prop, selectLast),
		})
	}
	return out
}

func (c *compilation) dropField(f *loader.File, pa *ast.PropertyAssignment, name string) {
	if c.diags == nil {
		return
	}
	line := scanner.GetECMALineOfPosition(f.Source, pa.Name().End()) + 1
	c.diags.WarnWithHint(diagnostic.CategoryFieldDropped, f.Path, line,
		fmt.Sprintf("field %q has an unrecognized type shape and was omitted", name),
		"use Type.String/Number/Boolean/Null, Type.Object, Type.Array, Type.Optional or a ...Ref identifier")
}

// propertyName returns the text of an identifier, string or numeric
// property name.
func propertyName(name *ast.Node) (string, bool) {
	if name == nil {
		return "", false
	}
	switch name.Kind {
	case ast.KindIdentifier:
		return name.AsIdentifier().Text, true
	case ast.KindStringLiteral:
		return name.AsStringLiteral().Text, true
	case ast.KindNumericLiteral:
		return name.AsNumericLiteral().Text, true
	}
	return "", false
}

// propertyKey renders name as a property key, single-quoting it when it is
// neither a valid identifier nor a numeric literal naming the same key
// (e.g. 'x-scalar-sdk-installation', but 200 as is).
func propertyKey(name string) string {
	if isIdentifierName(name) || isNumericName(name) {
		return name
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(name) + "'"
}

func isIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// isNumericName reports whether name, written unquoted, is a numeric
// literal whose value prints back as name. "200" and "1.5" qualify; "007"
// and "1.50" would name a different key and do not.
func isNumericName(name string) bool {
	if name == "" || name[0] < '0' || name[0] > '9' {
		return false
	}
	v, err := strconv.ParseFloat(name, 64)
	return err == nil && strconv.FormatFloat(v, 'f', -1, 64) == name
}
