package schema

import (
	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsgonest/schemagen/internal/loader"
)

// ObjectShape is one Type.Object({...}) literal and the file it lives in.
type ObjectShape struct {
	Object *ast.Node // ObjectLiteralExpression
	File   *loader.File
}

// Declaration is a schema binding that reduces to one or more object
// shapes. Composed declarations list their shapes in argument order; their
// fields are concatenated, not merged.
type Declaration struct {
	Name      string
	Shapes    []ObjectShape
	File      *loader.File
	Statement *ast.Node // enclosing VariableStatement, nil if none
}

// fileIndex holds what the compiler knows about one loaded file.
type fileIndex struct {
	file *loader.File

	varNodes []*ast.Node          // identifier-named VariableDeclarations in source order
	vars     map[string]*ast.Node // by name; later declarations win

	decls map[string]*Declaration // built on first use

	module        *ModuleMap
	moduleScanned bool
}

func newFileIndex(f *loader.File) *fileIndex {
	idx := &fileIndex{file: f, vars: make(map[string]*ast.Node)}
	idx.collect(f.Source.AsNode())
	return idx
}

func (idx *fileIndex) collect(node *ast.Node) {
	if node == nil {
		return
	}
	if node.Kind == ast.KindVariableDeclaration {
		if name := node.AsVariableDeclaration().Name(); name != nil && name.Kind == ast.KindIdentifier {
			idx.varNodes = append(idx.varNodes, node)
			idx.vars[name.AsIdentifier().Text] = node
		}
	}
	node.ForEachChild(func(child *ast.Node) bool {
		idx.collect(child)
		return false
	})
}

// index returns the cached index for f.
func (c *compilation) index(f *loader.File) *fileIndex {
	if idx, ok := c.indexes[f.Path]; ok {
		return idx
	}
	idx := newFileIndex(f)
	c.indexes[f.Path] = idx
	return idx
}

// declarations returns every object and compose declaration in f.
// Initializers of any other shape are skipped here; they only surface as
// errors when requested by name.
func (c *compilation) declarations(f *loader.File) (map[string]*Declaration, error) {
	idx := c.index(f)
	if idx.decls != nil {
		return idx.decls, nil
	}

	decls := make(map[string]*Declaration)
	for _, node := range idx.varNodes {
		v := node.AsVariableDeclaration()
		if v.Initializer == nil {
			continue
		}
		name := v.Name().AsIdentifier().Text

		var shapes []ObjectShape
		switch e := classify(v.Initializer); e.kind {
		case kindInlineObject:
			shapes = []ObjectShape{{Object: e.object, File: f}}
		case kindComposeCall:
			var err error
			if shapes, err = c.composeShapes(f, e.args); err != nil {
				return nil, err
			}
		}
		if len(shapes) == 0 {
			continue
		}
		decls[name] = &Declaration{
			Name:      name,
			Shapes:    shapes,
			File:      f,
			Statement: enclosingStatement(node),
		}
	}

	idx.decls = decls
	return decls, nil
}

// composeShapes flattens compose() arguments into object shapes. Each
// argument is an inline Type.Object or an identifier bound to one, either
// in f or in the file f imports it from. Anything else contributes nothing.
func (c *compilation) composeShapes(f *loader.File, args []*ast.Node) ([]ObjectShape, error) {
	var shapes []ObjectShape
	for _, arg := range args {
		if arg.Kind == ast.KindIdentifier {
			shape, ok, err := c.objectByIdentifier(f, arg.AsIdentifier().Text)
			if err != nil {
				return nil, err
			}
			if ok {
				shapes = append(shapes, shape)
			}
			continue
		}
		if e := classify(arg); e.kind == kindInlineObject {
			shapes = append(shapes, ObjectShape{Object: e.object, File: f})
		}
	}
	return shapes, nil
}

// objectByIdentifier finds the Type.Object bound to name, looking in f
// first and then following one named import.
func (c *compilation) objectByIdentifier(f *loader.File, name string) (ObjectShape, bool, error) {
	// vars keeps the last declaration of name, matching requested-schema lookup.
	if node, ok := c.index(f).vars[name]; ok {
		shape, ok := directObject(node, f)
		return shape, ok, nil
	}

	binding, ok := findImport(f, name)
	if !ok {
		return ObjectShape{}, false, nil
	}
	target, err := c.session.Load(binding.module, f.Dir())
	if err != nil {
		return ObjectShape{}, false, err
	}
	node, ok := c.index(target).vars[binding.exported]
	if !ok {
		return ObjectShape{}, false, nil
	}
	shape, ok := directObject(node, target)
	return shape, ok, nil
}

func directObject(node *ast.Node, f *loader.File) (ObjectShape, bool) {
	e := classify(node.AsVariableDeclaration().Initializer)
	if e.kind != kindInlineObject {
		return ObjectShape{}, false
	}
	return ObjectShape{Object: e.object, File: f}, true
}

// enclosingStatement returns the VariableStatement a VariableDeclaration
// belongs to (declaration → declaration list → statement).
func enclosingStatement(node *ast.Node) *ast.Node {
	list := node.Parent
	if list == nil || list.Parent == nil {
		return nil
	}
	if list.Parent.Kind != ast.KindVariableStatement {
		return nil
	}
	return list.Parent
}

// importBinding is a named import: `import { exported as local } from "module"`.
type importBinding struct {
	module   string
	exported string
}

// findImport looks name up among f's named imports, matching the local
// name first and the exported name second.
func findImport(f *loader.File, name string) (importBinding, bool) {
	var byExported *importBinding
	for _, stmt := range f.Source.Statements.Nodes {
		if stmt.Kind != ast.KindImportDeclaration {
			continue
		}
		decl := stmt.AsImportDeclaration()
		if decl.ModuleSpecifier == nil || decl.ModuleSpecifier.Kind != ast.KindStringLiteral {
			continue
		}
		if decl.ImportClause == nil {
			continue
		}
		clause := decl.ImportClause.AsImportClause()
		if clause.NamedBindings == nil || clause.NamedBindings.Kind != ast.KindNamedImports {
			continue
		}
		named := clause.NamedBindings.AsNamedImports()
		if named.Elements == nil {
			continue
		}
		module := decl.ModuleSpecifier.AsStringLiteral().Text
		for _, elem := range named.Elements.Nodes {
			spec := elem.AsImportSpecifier()
			local := spec.Name().Text()
			exported := local
			if spec.PropertyName != nil {
				exported = spec.PropertyName.Text()
			}
			if local == name {
				return importBinding{module: module, exported: exported}, true
			}
			if exported == name && byExported == nil {
				byExported = &importBinding{module: module, exported: exported}
			}
		}
	}
	if byExported != nil {
		return *byExported, true
	}
	return importBinding{}, false
}
