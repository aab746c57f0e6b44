package openapi

import (
	"errors"
	"fmt"
)

// Synthesis errors. All of them are fatal for the document being assembled.
var (
	// ErrConflict is returned when two different definitions are registered
	// under the same component name.
	ErrConflict = errors.New("openapi: conflicting component definitions")

	// ErrMissingDescription is returned when an error status has neither an
	// explicit description nor a canonical default.
	ErrMissingDescription = errors.New("openapi: error status has no description")

	// ErrInvalidStatus is returned for status codes outside 100-599 and for
	// error code overrides that are not numeric.
	ErrInvalidStatus = errors.New("openapi: invalid status code")

	// ErrMultipleRequestBodies is returned when more than one body parameter
	// exposes a schema.
	ErrMultipleRequestBodies = errors.New("openapi: more than one request body")

	// ErrInvalidSchema is returned by a validating registry when a component
	// schema does not compile as a standalone JSON Schema.
	ErrInvalidSchema = errors.New("openapi: invalid component schema")

	// ErrUnnamedSecurityScheme is returned when a security source has no name
	// and no declared scope binds it to one.
	ErrUnnamedSecurityScheme = errors.New("openapi: security scheme has no name")

	// ErrMissingSecurityScheme is returned when a security source provides
	// no definition.
	ErrMissingSecurityScheme = errors.New("openapi: security source has no definition")
)

// Assembly errors.
var (
	// ErrDuplicateOperation is returned when two operations are bound to the
	// same method and path.
	ErrDuplicateOperation = errors.New("openapi: duplicate operation for method and path")

	// ErrDuplicateOperationID is returned when two operations share an
	// operationId within one document.
	ErrDuplicateOperationID = errors.New("openapi: duplicate operationId")

	// ErrUnknownMethod is returned when an operation is bound to a method
	// the Path Item Object has no field for.
	ErrUnknownMethod = errors.New("openapi: unknown HTTP method")

	// ErrInvalidRoute is returned when a router route bound to an operation
	// has no usable path template or no methods.
	ErrInvalidRoute = errors.New("openapi: route has no path or methods")
)

// ConflictError describes a component name registered twice with different
// definitions. It unwraps to ErrConflict.
type ConflictError struct {
	// Section is the components section: "schemas" or "securitySchemes".
	Section string
	Name    string

	// Existing and Incoming identify who registered each definition,
	// usually an operationId.
	Existing string
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s/%s registered by %q differs from %q",
		ErrConflict, e.Section, e.Name, e.Existing, e.Incoming)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
