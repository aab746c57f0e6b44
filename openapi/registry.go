package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

const (
	sectionSchemas         = "schemas"
	sectionSecuritySchemes = "securitySchemes"
)

// Component is a named schema registered for reuse across a document.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
type Component struct {
	Name   string
	Schema *Schema

	// Source identifies the registrant in conflict reports.
	Source string
}

// Registry accumulates the schema and security scheme components of one
// document. Entries keep their registration order. Registering a name twice
// is a no-op when both definitions are structurally identical and a
// *ConflictError otherwise; nothing is ever overwritten.
//
// A Registry is safe for concurrent use, but concurrent writers decide the
// order of new entries. Callers that need a deterministic order register
// from a single goroutine or merge per-operation registries in a fixed order.
type Registry struct {
	mu              sync.Mutex
	schemas         *sequencedmap.Map[string, *Schema]
	securitySchemes *sequencedmap.Map[string, *SecurityScheme]
	sources         map[string]string // section/name -> first registrant
	validate        bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:         sequencedmap.New[string, *Schema](),
		securitySchemes: sequencedmap.New[string, *SecurityScheme](),
		sources:         make(map[string]string),
	}
}

// ValidateSchemas makes the registry compile every new schema as a
// standalone JSON Schema document. Schemas that reference other components
// or are otherwise malformed are rejected with ErrInvalidSchema.
func (r *Registry) ValidateSchemas() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validate = true
	return r
}

// Register adds a schema component.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSchema(c); err != nil {
		return err
	}
	r.putSchema(c)
	return nil
}

// RegisterSecurityScheme adds a security scheme component under name.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (securitySchemes)
func (r *Registry) RegisterSecurityScheme(name string, scheme *SecurityScheme, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSecurityScheme(name, scheme, source); err != nil {
		return err
	}
	r.putSecurityScheme(name, scheme, source)
	return nil
}

// Merge registers every entry of other, in other's order. Either all
// entries are merged or, on the first conflict, none is.
func (r *Registry) Merge(other *Registry) error {
	if other == nil || other == r {
		return nil
	}

	schemas, schemes := other.snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range schemas {
		if err := r.checkSchema(c); err != nil {
			return err
		}
	}
	for _, s := range schemes {
		if err := r.checkSecurityScheme(s.name, s.scheme, s.source); err != nil {
			return err
		}
	}

	for _, c := range schemas {
		r.putSchema(c)
	}
	for _, s := range schemes {
		r.putSecurityScheme(s.name, s.scheme, s.source)
	}
	return nil
}

// Len returns the number of schema components.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schemas.Len()
}

// Names returns schema component names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Collect(r.schemas.Keys())
}

// Schema returns the schema registered under name.
func (r *Registry) Schema(name string) (*Schema, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schemas.Get(name)
}

// SecuritySchemeNames returns security scheme names in registration order.
func (r *Registry) SecuritySchemeNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Collect(r.securitySchemes.Keys())
}

// Components packages the registry for embedding: an empty slice when
// nothing is registered, otherwise a single element holding all schemas and,
// when present, all security schemes.
func (r *Registry) Components() []Components {
	c := r.components()
	if c == nil {
		return []Components{}
	}
	return []Components{*c}
}

// components returns a detached copy of the registry contents, nil when the
// registry is empty.
func (r *Registry) components() *Components {
	schemas, schemes := r.snapshot()
	if len(schemas) == 0 && len(schemes) == 0 {
		return nil
	}

	c := &Components{Schemas: sequencedmap.New[string, *Schema]()}
	for _, s := range schemas {
		c.Schemas.Set(s.Name, s.Schema)
	}
	if len(schemes) > 0 {
		c.SecuritySchemes = sequencedmap.New[string, *SecurityScheme]()
		for _, s := range schemes {
			c.SecuritySchemes.Set(s.name, s.scheme)
		}
	}
	return c
}

type securityEntry struct {
	name   string
	scheme *SecurityScheme
	source string
}

func (r *Registry) snapshot() ([]Component, []securityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	schemas := make([]Component, 0, r.schemas.Len())
	for name, schema := range r.schemas.All() {
		schemas = append(schemas, Component{
			Name:   name,
			Schema: schema,
			Source: r.sources[sectionSchemas+"/"+name],
		})
	}

	schemes := make([]securityEntry, 0, r.securitySchemes.Len())
	for name, scheme := range r.securitySchemes.All() {
		schemes = append(schemes, securityEntry{
			name:   name,
			scheme: scheme,
			source: r.sources[sectionSecuritySchemes+"/"+name],
		})
	}
	return schemas, schemes
}

// checkSchema must be called with r.mu held.
func (r *Registry) checkSchema(c Component) error {
	if existing, ok := r.schemas.Get(c.Name); ok {
		if sameJSON(existing, c.Schema) {
			return nil
		}
		return &ConflictError{
			Section:  sectionSchemas,
			Name:     c.Name,
			Existing: r.sources[sectionSchemas+"/"+c.Name],
			Incoming: c.Source,
		}
	}
	if r.validate {
		return compileSchema(c.Name, c.Schema)
	}
	return nil
}

// putSchema must be called with r.mu held, after checkSchema.
func (r *Registry) putSchema(c Component) {
	if r.schemas.Has(c.Name) {
		return
	}
	r.schemas.Set(c.Name, c.Schema)
	r.sources[sectionSchemas+"/"+c.Name] = c.Source
}

// checkSecurityScheme must be called with r.mu held.
func (r *Registry) checkSecurityScheme(name string, scheme *SecurityScheme, source string) error {
	if name == "" {
		return fmt.Errorf("%w: registered by %q", ErrUnnamedSecurityScheme, source)
	}
	if scheme == nil {
		return fmt.Errorf("%w: %q registered by %q", ErrMissingSecurityScheme, name, source)
	}
	existing, ok := r.securitySchemes.Get(name)
	if !ok || sameJSON(existing, scheme) {
		return nil
	}
	return &ConflictError{
		Section:  sectionSecuritySchemes,
		Name:     name,
		Existing: r.sources[sectionSecuritySchemes+"/"+name],
		Incoming: source,
	}
}

// putSecurityScheme must be called with r.mu held, after checkSecurityScheme.
func (r *Registry) putSecurityScheme(name string, scheme *SecurityScheme, source string) {
	if r.securitySchemes.Has(name) {
		return
	}
	r.securitySchemes.Set(name, scheme)
	r.sources[sectionSecuritySchemes+"/"+name] = source
}

// sameJSON compares two values by their canonical JSON encoding.
// encoding/json sorts map keys, so equal structures encode identically.
func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// compileSchema checks that schema is a valid, self-contained JSON Schema.
// References to other components are left dangling and fail to compile.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core
func compileSchema(name string, schema *Schema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}

	// The component is compiled as its own resource, so a recursive
	// reference to itself points at the resource root.
	self, _ := json.Marshal(componentRef(name))
	data = bytes.ReplaceAll(data, self, []byte(`"#"`))

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}

	loc := "https://apigen.local/components/schemas/" + url.PathEscape(name) + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}
	if _, err := c.Compile(loc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}
	return nil
}
