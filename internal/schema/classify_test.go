package schema

import (
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/schemagen/internal/loader"
	"github.com/tsgonest/schemagen/internal/pathalias"
	"github.com/tsgonest/schemagen/internal/testutil"
)

// parseSource loads src as /project/src/test.ts.
func parseSource(t *testing.T, src string) *loader.File {
	t.Helper()
	fs := testutil.NewProjectFS(map[string]string{"src/test.ts": src})
	session := loader.NewSession(fs, pathalias.NewResolver(pathalias.Config{Cwd: testutil.ProjectRoot, FS: fs}))
	f, err := session.LoadPath(testutil.ProjectRoot + "/src/test.ts")
	require.NoError(t, err)
	return f
}

// initializer returns the initializer of the variable called name.
func initializer(t *testing.T, f *loader.File, name string) *ast.Node {
	t.Helper()
	node, ok := newFileIndex(f).vars[name]
	require.True(t, ok, "variable %s not found", name)
	return node.AsVariableDeclaration().Initializer
}

func TestClassify(t *testing.T) {
	f := parseSource(t, `
const str = Type.String()
const num = Type.Number()
const bool = Type.Boolean()
const nul = Type.Null()
const opt = Type.Optional(Type.String())
const arr = Type.Array(Type.Number())
const obj = Type.Object({ a: Type.String() })
const objNoLiteral = Type.Object(shape)
const ref = ContactObjectRef
const bareRef = Ref
const plain = ContactObject
const composed = compose(A, B)
const other = merge(A, B)
const imported = module.Import('Contact')
const importTwo = module.Import('A', 'B')
const table = Type.Module({ A: ADef })
const tableSatisfies = Type.Module({ A: ADef } satisfies Record<string, unknown>)
const tableAs = Type.Module({ A: ADef } as const)
const literal = Type.Literal('x')
const optTooMany = Type.Optional(Type.String(), Type.String())
const notType = Schema.String()
const str2 = 'text'
`)

	tests := []struct {
		name string
		kind exprKind
	}{
		{"str", kindPrimitive},
		{"num", kindPrimitive},
		{"bool", kindPrimitive},
		{"nul", kindPrimitive},
		{"opt", kindOptional},
		{"arr", kindArrayOf},
		{"obj", kindInlineObject},
		{"objNoLiteral", kindUnrecognized},
		{"ref", kindReference},
		{"bareRef", kindUnrecognized},
		{"plain", kindUnrecognized},
		{"composed", kindComposeCall},
		{"other", kindUnrecognized},
		{"imported", kindModuleImportCall},
		{"importTwo", kindUnrecognized},
		{"table", kindModuleTable},
		{"tableSatisfies", kindModuleTable},
		{"tableAs", kindModuleTable},
		{"literal", kindUnrecognized},
		{"optTooMany", kindUnrecognized},
		{"notType", kindUnrecognized},
		{"str2", kindUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := classify(initializer(t, f, tt.name))
			assert.Equal(t, tt.kind, e.kind, "got %s", e.kind)
		})
	}

	t.Run("payloads", func(t *testing.T) {
		assert.Equal(t, "null", classify(initializer(t, f, "nul")).primitive)
		assert.Equal(t, "ContactObject", classify(initializer(t, f, "ref")).name)
		assert.Equal(t, "module", classify(initializer(t, f, "imported")).name)
		assert.Len(t, classify(initializer(t, f, "composed")).args, 2)
		assert.Equal(t, ast.KindCallExpression, classify(initializer(t, f, "opt")).inner.Kind)
	})

	t.Run("nil node", func(t *testing.T) {
		assert.Equal(t, kindUnrecognized, classify(nil).kind)
	})
}

func TestModuleEntries(t *testing.T) {
	f := parseSource(t, `
const module = Type.Module({
  Plain: PlainDef,
  'Quoted': QuotedDef,
  [REF_DEFINITIONS.Computed]: ComputedDef,
  [dynamic]: DynamicDef,
  Called: make(),
  Shorthand,
})
`)
	e := classify(initializer(t, f, "module"))
	require.Equal(t, kindModuleTable, e.kind)

	assert.Equal(t, map[string]string{
		"Plain":    "PlainDef",
		"Quoted":   "QuotedDef",
		"Computed": "ComputedDef",
	}, moduleEntries(e.object))
}

func TestDocComment(t *testing.T) {
	f := parseSource(t, `
/** one */
/** two */
const a = 1

// not a doc
const b = 2

/**
 * Multi
 * line
 */
const c = 3
`)
	idx := newFileIndex(f)
	stmt := func(name string) *ast.Node { return enclosingStatement(idx.vars[name]) }

	assert.Equal(t, "/** one */", docComment(f, stmt("a"), selectFirst))
	assert.Equal(t, "/** two */", docComment(f, stmt("a"), selectLast))
	assert.Empty(t, docComment(f, stmt("b"), selectFirst))
	assert.Equal(t, "/**\n * Multi\n * line\n */", docComment(f, stmt("c"), selectLast))
	assert.Empty(t, docComment(f, nil, selectLast))
}

func TestFindImport(t *testing.T) {
	f := parseSource(t, `
import { A, B as LocalB } from './ab'
import { C } from '@/c'
import * as ns from './ns'
import D from './d'
`)
	tests := []struct {
		name string
		want importBinding
		ok   bool
	}{
		{"A", importBinding{module: "./ab", exported: "A"}, true},
		{"LocalB", importBinding{module: "./ab", exported: "B"}, true},
		{"B", importBinding{module: "./ab", exported: "B"}, true},
		{"C", importBinding{module: "@/c", exported: "C"}, true},
		{"ns", importBinding{}, false},
		{"D", importBinding{}, false},
		{"Missing", importBinding{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findImport(f, tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileIndex_LastDeclarationWins(t *testing.T) {
	f := parseSource(t, `
var X = Type.String()
var X = Type.Number()
const { destructured } = obj
`)
	idx := newFileIndex(f)
	assert.Len(t, idx.varNodes, 2)
	assert.Equal(t, "number", classify(idx.vars["X"].AsVariableDeclaration().Initializer).primitive)
}
