package schema

import "regexp"

// schemaSuffix is stripped from schema names to derive the base name that
// Ref identifiers point at: ContactObjectSchema and
// ContactObjectSchemaDefinition both have base ContactObject.
var schemaSuffix = regexp.MustCompile(`Schema(Definition)?$`)

// BaseName returns schemaName without a trailing "Schema" or
// "SchemaDefinition".
func BaseName(schemaName string) string {
	return schemaSuffix.ReplaceAllString(schemaName, "")
}

// AliasTable maps base names, and every public type name, to the public
// type name that references should render as.
type AliasTable map[string]string

// NewAliasTable builds the table for a whole request. Later entries win.
func NewAliasTable(req *Request) AliasTable {
	t := make(AliasTable, 2*req.Len())
	for _, e := range req.Entries() {
		t[BaseName(e.Schema)] = e.Type
		t[e.Type] = e.Type
	}
	return t
}

// Resolve returns the public name for base, or base itself when unknown.
func (t AliasTable) Resolve(base string) string {
	if name, ok := t[base]; ok {
		return name
	}
	return base
}
