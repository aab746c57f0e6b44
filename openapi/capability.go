package openapi

// The four capability contracts below are independent. A handler parameter
// may implement any combination of them, or none.

// SchemaSource provides a named, self-contained JSON Schema. An empty name
// means the schema cannot be registered as a component and is used inline.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
type SchemaSource interface {
	SchemaComponent() (string, *Schema)
}

// ResponseKind describes the success wrapper of a handler.
type ResponseKind interface {
	ResponseShape() ResponseShape
}

// ErrorSource lists the error statuses a handler may answer with, in
// declaration order.
type ErrorSource interface {
	ErrorStatuses() []ErrorStatus
}

// SecuritySource provides a security scheme definition together with its
// default name.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-scheme-object
type SecuritySource interface {
	SecurityScheme() (string, *SecurityScheme)
}

// ResponseShape is what a ResponseKind unwraps to.
type ResponseShape struct {
	Kind WrapperKind

	// Status is the default status code of the wrapper.
	Status int

	// NoContent reports a response without a body.
	NoContent bool

	// Payload is the body schema, nil when the wrapper carries none.
	Payload SchemaSource

	// ContentType of the body, "application/json" when empty.
	ContentType string
}

// ErrorStatus is one declared error response. An empty Description falls
// back to the canonical status text.
type ErrorStatus struct {
	Code        int    `json:"code" yaml:"code"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ErrorSet is an ErrorSource backed by a fixed list.
type ErrorSet []ErrorStatus

// Errors builds an ErrorSet.
func Errors(statuses ...ErrorStatus) ErrorSet {
	return ErrorSet(statuses)
}

// ErrorStatuses implements ErrorSource.
func (s ErrorSet) ErrorStatuses() []ErrorStatus {
	return s
}

// NamedSchema is a SchemaSource backed by an explicit schema.
type NamedSchema struct {
	Name   string
	Schema *Schema
}

// SchemaComponent implements SchemaSource.
func (n NamedSchema) SchemaComponent() (string, *Schema) {
	return n.Name, n.Schema
}

// NamedSecurityScheme is a SecuritySource backed by an explicit definition.
type NamedSecurityScheme struct {
	Name   string
	Scheme *SecurityScheme
}

// SecurityScheme implements SecuritySource.
func (n NamedSecurityScheme) SecurityScheme() (string, *SecurityScheme) {
	return n.Name, n.Scheme
}
