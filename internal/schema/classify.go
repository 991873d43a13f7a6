package schema

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
)

// Builder vocabulary recognized in schema sources.
const (
	builderNamespace = "Type"    // receiver of Type.Object(...), Type.String(), ...
	composeFunc      = "compose" // compose(A, B, ...)
	importMethod     = "Import"  // module.Import('Key')

	// refSuffix marks an identifier as a reference to another schema,
	// e.g. ContactObjectRef → ContactObject.
	refSuffix = "Ref"
)

// exprKind is the closed set of expression shapes the compiler understands.
type exprKind int

const (
	kindUnrecognized exprKind = iota
	kindPrimitive
	kindOptional
	kindArrayOf
	kindInlineObject
	kindReference
	kindComposeCall
	kindModuleImportCall
	kindModuleTable
)

func (k exprKind) String() string {
	switch k {
	case kindPrimitive:
		return "primitive"
	case kindOptional:
		return "optional"
	case kindArrayOf:
		return "array"
	case kindInlineObject:
		return "object"
	case kindReference:
		return "reference"
	case kindComposeCall:
		return "compose"
	case kindModuleImportCall:
		return "module-import"
	case kindModuleTable:
		return "module"
	default:
		return "unrecognized"
	}
}

// primitiveTypes maps Type.<Name>() constructors to their scalar type.
var primitiveTypes = map[string]string{
	"String":  "string",
	"Number":  "number",
	"Boolean": "boolean",
	"Null":    "null",
}

// builderExpr is the classification of one expression node. Only the
// fields relevant to kind are set.
type builderExpr struct {
	kind exprKind

	primitive string      // kindPrimitive: scalar type name
	inner     *ast.Node   // kindOptional, kindArrayOf: wrapped expression
	object    *ast.Node   // kindInlineObject, kindModuleTable: ObjectLiteralExpression
	name      string      // kindReference: base name; kindModuleImportCall: receiver
	args      []*ast.Node // kindComposeCall: arguments; kindModuleImportCall: the key
}

// classify inspects node once and returns its shape.
func classify(node *ast.Node) builderExpr {
	if node == nil {
		return builderExpr{}
	}

	switch node.Kind {
	case ast.KindIdentifier:
		name := node.AsIdentifier().Text
		if base, ok := strings.CutSuffix(name, refSuffix); ok && base != "" {
			return builderExpr{kind: kindReference, name: base}
		}
		return builderExpr{}

	case ast.KindCallExpression:
		return classifyCall(node.AsCallExpression())
	}

	return builderExpr{}
}

func classifyCall(call *ast.CallExpression) builderExpr {
	args := callArguments(call)
	callee := call.Expression

	if callee.Kind == ast.KindIdentifier {
		if callee.AsIdentifier().Text == composeFunc {
			return builderExpr{kind: kindComposeCall, args: args}
		}
		return builderExpr{}
	}

	if callee.Kind != ast.KindPropertyAccessExpression {
		return builderExpr{}
	}
	pa := callee.AsPropertyAccessExpression()
	if pa.Expression.Kind != ast.KindIdentifier {
		return builderExpr{}
	}
	receiver := pa.Expression.AsIdentifier().Text
	member := pa.Name().Text()

	if receiver != builderNamespace {
		if member == importMethod && len(args) == 1 {
			return builderExpr{kind: kindModuleImportCall, name: receiver, args: args}
		}
		return builderExpr{}
	}

	switch member {
	case "Optional":
		if len(args) == 1 {
			return builderExpr{kind: kindOptional, inner: args[0]}
		}
	case "Array":
		if len(args) == 1 {
			return builderExpr{kind: kindArrayOf, inner: args[0]}
		}
	case "Object":
		if len(args) > 0 && args[0].Kind == ast.KindObjectLiteralExpression {
			return builderExpr{kind: kindInlineObject, object: args[0]}
		}
	case "Module":
		if len(args) > 0 {
			if obj := unwrapAssertion(args[0]); obj.Kind == ast.KindObjectLiteralExpression {
				return builderExpr{kind: kindModuleTable, object: obj}
			}
		}
	default:
		if scalar, ok := primitiveTypes[member]; ok {
			return builderExpr{kind: kindPrimitive, primitive: scalar}
		}
	}
	return builderExpr{}
}

// unwrapAssertion strips `x satisfies T` and `x as T` wrappers.
func unwrapAssertion(node *ast.Node) *ast.Node {
	for {
		switch node.Kind {
		case ast.KindSatisfiesExpression:
			node = node.AsSatisfiesExpression().Expression
		case ast.KindAsExpression:
			node = node.AsAsExpression().Expression
		default:
			return node
		}
	}
}

func callArguments(call *ast.CallExpression) []*ast.Node {
	if call.Arguments == nil {
		return nil
	}
	return call.Arguments.Nodes
}
