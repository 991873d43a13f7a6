package schema

import "fmt"

// ErrorCode classifies a resolution failure.
type ErrorCode string

const (
	// ErrSchemaNotFound indicates the requested name is not bound to an
	// object or compose declaration, nor to a module import.
	ErrSchemaNotFound ErrorCode = "schema-not-found"
	// ErrModuleKeyNotString indicates a module.Import call whose key is not a string literal.
	ErrModuleKeyNotString ErrorCode = "module-key-not-string"
	// ErrModuleMissing indicates a module.Import in a file without a matching Type.Module table.
	ErrModuleMissing ErrorCode = "module-missing"
	// ErrModuleKeyUnresolved indicates the module table has no entry for the key.
	ErrModuleKeyUnresolved ErrorCode = "module-key-unresolved"
	// ErrImportNotFound indicates no named import binds the identifier the module table points at.
	ErrImportNotFound ErrorCode = "import-not-found"
	// ErrUnsupportedDefinition indicates the definition was found but is not an object or compose shape.
	ErrUnsupportedDefinition ErrorCode = "unsupported-definition"
)

// ResolutionError is returned when a requested schema cannot be resolved
// to an object shape. It aborts the whole Generate call.
type ResolutionError struct {
	Code       ErrorCode
	Schema     string // requested schema name
	Identifier string // module key or target identifier, when relevant
	File       string // file in which resolution failed
}

func (e *ResolutionError) Error() string {
	var detail string
	switch e.Code {
	case ErrSchemaNotFound:
		detail = "not found or not a Type.Object"
	case ErrModuleKeyNotString:
		detail = "is a module import but its key is not a string"
	case ErrModuleMissing:
		detail = fmt.Sprintf("could not find Type.Module definition to resolve %s", e.Identifier)
	case ErrModuleKeyUnresolved:
		detail = fmt.Sprintf("could not resolve definition for %s from Type.Module", e.Identifier)
	case ErrImportNotFound:
		detail = fmt.Sprintf("could not find import path for %s", e.Identifier)
	case ErrUnsupportedDefinition:
		detail = fmt.Sprintf("definition %s is not a Type.Object", e.Identifier)
	default:
		detail = string(e.Code)
	}
	return fmt.Sprintf("schema %s: %s in %s", e.Schema, detail, e.File)
}
