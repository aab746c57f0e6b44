package openapi

import (
	"fmt"
	"slices"
)

const defaultContentType = "application/json"

// ParamIn is where a handler parameter is read from.
type ParamIn string

// Parameter locations. InBody is the only location that produces a request
// body; the others only contribute their schemas to the component registry.
const (
	InBody   ParamIn = "body"
	InQuery  ParamIn = "query"
	InPath   ParamIn = "path"
	InHeader ParamIn = "header"
	InCookie ParamIn = "cookie"
)

// Param describes one handler parameter. Source may implement SchemaSource,
// SecuritySource, both, or neither.
type Param struct {
	Name   string
	In     ParamIn
	Source any

	// ContentType of a body parameter, "application/json" when empty.
	ContentType string
}

// Config is the per-handler configuration.
type Config struct {
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Skip       bool     `json:"skip,omitempty" yaml:"skip,omitempty"`

	// ErrorCodes restricts documented error statuses to the listed codes.
	// Order is irrelevant; responses are always sorted by status.
	ErrorCodes []string `json:"errorCodes,omitempty" yaml:"errorCodes,omitempty"`

	SecurityScopes []SecurityScope `json:"securityScopes,omitempty" yaml:"securityScopes,omitempty"`
}

// operationMeta stores metadata collected via the fluent builder
// before the operation is synthesized.
type operationMeta struct {
	name              string
	doc               []string
	params            []Param
	returns           ResponseKind
	errors            ErrorSource
	config            Config
	handlerDeprecated bool
	policy            DescriptionPolicy
}

// OperationBuilder collects what is known about one handler and synthesizes
// its Operation Object and the components it references.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	meta *operationMeta
}

// NewOperation starts a builder for the handler called name. The name
// becomes the operationId; keeping it unique is up to the caller.
func NewOperation(name string) *OperationBuilder {
	return &OperationBuilder{meta: &operationMeta{name: name}}
}

// Name returns the handler name.
func (b *OperationBuilder) Name() string {
	return b.meta.name
}

// Doc appends doc-comment lines. The first non-empty line is the summary.
func (b *OperationBuilder) Doc(lines ...string) *OperationBuilder {
	b.meta.doc = append(b.meta.doc, lines...)
	return b
}

// DescriptionPolicy selects how doc lines map to the description.
func (b *OperationBuilder) DescriptionPolicy(p DescriptionPolicy) *OperationBuilder {
	b.meta.policy = p
	return b
}

// Param adds a handler parameter.
func (b *OperationBuilder) Param(p Param) *OperationBuilder {
	b.meta.params = append(b.meta.params, p)
	return b
}

// Body adds a request body parameter. It is a shortcut for Param with InBody.
func (b *OperationBuilder) Body(src SchemaSource) *OperationBuilder {
	return b.Param(Param{Name: "body", In: InBody, Source: src})
}

// Returns sets the success wrapper.
func (b *OperationBuilder) Returns(kind ResponseKind) *OperationBuilder {
	b.meta.returns = kind
	return b
}

// Errors sets the error descriptor.
func (b *OperationBuilder) Errors(src ErrorSource) *OperationBuilder {
	b.meta.errors = src
	return b
}

// Configure replaces the handler configuration.
func (b *OperationBuilder) Configure(cfg Config) *OperationBuilder {
	b.meta.config = cfg
	return b
}

// Config returns a copy of the handler configuration.
func (b *OperationBuilder) Config() Config {
	cfg := b.meta.config
	cfg.Tags = slices.Clone(cfg.Tags)
	cfg.ErrorCodes = slices.Clone(cfg.ErrorCodes)
	cfg.SecurityScopes = slices.Clone(cfg.SecurityScopes)
	return cfg
}

// Tags adds one or more tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.meta.config.Tags = append(b.meta.config.Tags, tags...)
	return b
}

// Deprecated sets the configuration deprecation flag.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.meta.config.Deprecated = true
	return b
}

// HandlerDeprecated records that the handler itself is marked deprecated.
// It is independent of the configuration flag; either one deprecates the
// operation.
func (b *OperationBuilder) HandlerDeprecated() *OperationBuilder {
	b.meta.handlerDeprecated = true
	return b
}

// Skip excludes the handler from documentation.
func (b *OperationBuilder) Skip() *OperationBuilder {
	b.meta.config.Skip = true
	return b
}

// ErrorCodes restricts documented error statuses to codes.
func (b *OperationBuilder) ErrorCodes(codes ...string) *OperationBuilder {
	b.meta.config.ErrorCodes = append(b.meta.config.ErrorCodes, codes...)
	return b
}

// SecurityScope requires scope under scheme.
func (b *OperationBuilder) SecurityScope(scheme, scope string) *OperationBuilder {
	b.meta.config.SecurityScopes = append(b.meta.config.SecurityScopes, SecurityScope{Scheme: scheme, Scope: scope})
	return b
}

// Synthesize builds the operation and returns it with its own component set.
func (b *OperationBuilder) Synthesize() (*Operation, *Registry, error) {
	reg := NewRegistry()
	op, err := b.synthesize(reg)
	if err != nil {
		return nil, nil, err
	}
	return op, reg, nil
}

// Build synthesizes the operation and merges its components into reg. On
// error reg is left unchanged.
func (b *OperationBuilder) Build(reg *Registry) (*Operation, error) {
	op, local, err := b.Synthesize()
	if err != nil {
		return nil, err
	}
	if err := reg.Merge(local); err != nil {
		return nil, err
	}
	return op, nil
}

func (b *OperationBuilder) synthesize(reg *Registry) (*Operation, error) {
	m := b.meta
	if m.config.Skip {
		return &Operation{Responses: Responses{}, Skipped: true}, nil
	}

	op := &Operation{
		OperationID: m.name,
		Tags:        slices.Clone(m.config.Tags),
		Deprecated:  m.config.Deprecated || m.handlerDeprecated,
	}
	op.Summary, op.Description = splitDoc(m.doc, m.policy)

	var securitySources []SecuritySource
	for _, p := range m.params {
		if sec, ok := p.Source.(SecuritySource); ok {
			securitySources = append(securitySources, sec)
		}

		src, ok := p.Source.(SchemaSource)
		if !ok {
			continue
		}
		schema, err := b.registerSchema(reg, src)
		if err != nil {
			return nil, err
		}
		if schema == nil || p.In != InBody {
			continue
		}
		if op.RequestBody != nil {
			return nil, fmt.Errorf("%w: operation %q, parameter %q", ErrMultipleRequestBodies, m.name, p.Name)
		}
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  map[string]*MediaType{contentType(p.ContentType): {Schema: schema}},
		}
	}

	responses, err := errorResponses(m.errors, m.config.ErrorCodes)
	if err != nil {
		return nil, fmt.Errorf("operation %q: %w", m.name, err)
	}
	if responses == nil {
		responses = make(Responses)
	}

	if m.returns != nil {
		code, resp, err := b.successResponse(reg)
		if err != nil {
			return nil, err
		}
		// Success wins over an error declared with the same status.
		responses[code] = resp
	}
	op.Responses = responses

	op.Security, err = aggregateSecurity(m.config.SecurityScopes, securitySources, reg, m.name)
	if err != nil {
		return nil, err
	}

	return op, nil
}

// successResponse builds the response of the success wrapper.
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object
func (b *OperationBuilder) successResponse(reg *Registry) (int, *Response, error) {
	shape := b.meta.returns.ResponseShape()
	if !validStatus(shape.Status) {
		return 0, nil, fmt.Errorf("%w: operation %q: %d", ErrInvalidStatus, b.meta.name, shape.Status)
	}

	resp := &Response{}
	if shape.NoContent || shape.Payload == nil {
		return shape.Status, resp, nil
	}

	schema, err := b.registerSchema(reg, shape.Payload)
	if err != nil {
		return 0, nil, err
	}
	if schema == nil {
		return shape.Status, resp, nil
	}

	if shape.Kind.RefOnly() && schema.Ref != "" {
		resp.Ref = schema.Ref
		return shape.Status, resp, nil
	}
	resp.Content = map[string]*MediaType{contentType(shape.ContentType): {Schema: schema}}
	return shape.Status, resp, nil
}

// registerSchema registers a named schema and returns a reference to it.
// Unnamed schemas are returned as is, to be used inline.
func (b *OperationBuilder) registerSchema(reg *Registry, src SchemaSource) (*Schema, error) {
	name, schema := src.SchemaComponent()
	if schema == nil {
		return nil, nil
	}
	if name == "" {
		return schema, nil
	}
	if err := reg.Register(Component{Name: name, Schema: schema, Source: b.meta.name}); err != nil {
		return nil, err
	}
	return &Schema{Ref: componentRef(name)}, nil
}

func contentType(ct string) string {
	if ct == "" {
		return defaultContentType
	}
	return ct
}
