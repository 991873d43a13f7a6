package schema

import (
	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsgonest/schemagen/internal/loader"
)

// ModuleMap is the key → identifier table a file publishes through
//
//	const module = Type.Module({ [REF_DEFINITIONS.ContactObject]: ContactObjectSchemaDefinition })
//
// Schemas elsewhere in the file select entries with module.Import('ContactObject').
type ModuleMap struct {
	Name    string            // variable the table is bound to
	Entries map[string]string // key → identifier
}

// moduleMap returns the first Type.Module table declared in f, or nil.
func (c *compilation) moduleMap(f *loader.File) *ModuleMap {
	idx := c.index(f)
	if idx.moduleScanned {
		return idx.module
	}
	idx.moduleScanned = true

	for _, node := range idx.varNodes {
		v := node.AsVariableDeclaration()
		e := classify(v.Initializer)
		if e.kind != kindModuleTable {
			continue
		}
		idx.module = &ModuleMap{
			Name:    v.Name().AsIdentifier().Text,
			Entries: moduleEntries(e.object),
		}
		break
	}
	return idx.module
}

// moduleEntries reads the table's properties. Keys may be identifiers,
// string literals, or computed property accesses ([X.Key] → "Key"); values
// must be plain identifiers.
func moduleEntries(obj *ast.Node) map[string]string {
	entries := make(map[string]string)
	props := obj.AsObjectLiteralExpression().Properties
	if props == nil {
		return entries
	}
	for _, prop := range props.Nodes {
		if prop.Kind != ast.KindPropertyAssignment {
			continue
		}
		pa := prop.AsPropertyAssignment()
		if pa.Initializer == nil || pa.Initializer.Kind != ast.KindIdentifier {
			continue
		}

		var key string
		switch name := pa.Name(); name.Kind {
		case ast.KindStringLiteral:
			key = name.AsStringLiteral().Text
		case ast.KindIdentifier:
			key = name.AsIdentifier().Text
		case ast.KindComputedPropertyName:
			expr := name.AsComputedPropertyName().Expression
			if expr.Kind == ast.KindPropertyAccessExpression {
				key = expr.AsPropertyAccessExpression().Name().Text()
			}
		}
		if key == "" {
			continue
		}
		entries[key] = pa.Initializer.AsIdentifier().Text
	}
	return entries
}

// resolveModuleImport dereferences `schema = module.Import('Key')` to the
// declaration the module table maps Key to, in f or in the file f imports
// it from.
func (c *compilation) resolveModuleImport(f *loader.File, schema string, e builderExpr) (*Declaration, error) {
	keyNode := e.args[0]
	if keyNode.Kind != ast.KindStringLiteral {
		return nil, &ResolutionError{Code: ErrModuleKeyNotString, Schema: schema, File: f.Path}
	}
	key := keyNode.AsStringLiteral().Text

	table := c.moduleMap(f)
	if table == nil || table.Name != e.name {
		return nil, &ResolutionError{Code: ErrModuleMissing, Schema: schema, Identifier: key, File: f.Path}
	}
	target, ok := table.Entries[key]
	if !ok {
		return nil, &ResolutionError{Code: ErrModuleKeyUnresolved, Schema: schema, Identifier: key, File: f.Path}
	}

	local, err := c.declarations(f)
	if err != nil {
		return nil, err
	}
	if d, ok := local[target]; ok {
		return d, nil
	}

	binding, ok := findImport(f, target)
	if !ok {
		return nil, &ResolutionError{Code: ErrImportNotFound, Schema: schema, Identifier: target, File: f.Path}
	}
	imported, err := c.session.Load(binding.module, f.Dir())
	if err != nil {
		return nil, err
	}
	remote, err := c.declarations(imported)
	if err != nil {
		return nil, err
	}
	d, ok := remote[binding.exported]
	if !ok {
		return nil, &ResolutionError{Code: ErrUnsupportedDefinition, Schema: schema, Identifier: binding.exported, File: imported.Path}
	}
	return d, nil
}
