// Package openapi synthesizes OpenAPI v3.1.0 Operation Objects and their
// reusable components from structured metadata about HTTP handlers.
//
// A front end (hand-written builder calls, the manifest package, or a code
// generator) describes each handler: its parameters, its success wrapper, the
// errors it may return, its security requirements and its doc comment. The
// OperationBuilder turns that description into one Operation and the set of
// schema and security scheme components it references. A Registry collects
// those components for a whole document, deduplicating identical definitions
// and rejecting conflicting ones.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
// See: https://spec.openapis.org/oas/v3.1.0#components-object
//
// # Describing a Handler
//
//	type Pet struct {
//	    Name string `json:"name"`
//	}
//
//	op := openapi.NewOperation("addPet").
//	    Doc("Add a new pet to the store", "Add a new pet to the store", "Plop").
//	    Tags("pet").
//	    Body(openapi.SchemaOf[Pet]()).
//	    Returns(openapi.JSON[Pet]{}).
//	    Errors(openapi.Errors(openapi.ErrorStatus{Code: 405, Description: "Invalid input"}))
//
//	reg := openapi.NewRegistry()
//	operation, err := op.Build(reg)
//
// # Capabilities
//
// Parameters and wrappers expose metadata through four independent
// interfaces: SchemaSource, ResponseKind, ErrorSource and SecuritySource. A
// type may implement any of them. SchemaOf and Reflect derive a SchemaSource
// from a Go type using its `json` and `openapi` struct tags.
//
// # Success Wrappers
//
// The success wrapper decides the default status and the response shape:
//
//	JSON[T]      200  content/application/json/schema -> $ref
//	NoContent    204  description only
//	Created[T]   201  bare $ref to the component
//	Accepted[T]  202  bare $ref to the component
//
// # Error Statuses
//
// Error statuses without an explicit description use the canonical HTTP
// status text for 4xx and 5xx codes. ErrorCodes restricts the documented
// statuses; responses are always emitted in ascending status order.
//
// # Doc Comments
//
// The first non-empty doc line is the summary. The description is made of the
// following lines joined by a backslash and a newline. DescriptionPolicy
// selects whether a summary line that is not repeated also starts the
// description.
//
// # Assembling a Document
//
// Spec binds builders to methods and paths and builds a Document. Operations
// are synthesized concurrently and merged in registration order:
//
//	spec := openapi.NewSpec(openapi.Info{Title: "Petstore", Version: "1.0.0"})
//	spec.Operation(http.MethodPost, "/pets", op)
//	doc, err := spec.Build(ctx)
//
// Routes of the mux router can be bound directly; the path and method come
// from the route:
//
//	r := mux.NewRouter()
//	spec.Route(r.HandleFunc("/pets/{id:int}", getPet).Methods(http.MethodGet), op)
//
// Handle serves the built document as JSON and YAML along with a Swagger UI
// page on the same router:
//
//	spec.Handle(r, "/swagger", nil)
package openapi
