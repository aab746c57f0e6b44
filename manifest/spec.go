package manifest

import (
	"fmt"
	"slices"

	"github.com/vitalvas/apigen/openapi"
)

var kinds = map[string]openapi.WrapperKind{
	openapi.KindPlain.String():     openapi.KindPlain,
	openapi.KindNoContent.String(): openapi.KindNoContent,
	openapi.KindCreated.String():   openapi.KindCreated,
	openapi.KindAccepted.String():  openapi.KindAccepted,
}

var policies = map[string]openapi.DescriptionPolicy{
	"":             openapi.DescriptionAfterSummary,
	"afterSummary": openapi.DescriptionAfterSummary,
	"foldRepeated": openapi.DescriptionFoldRepeated,
}

var locations = map[string]openapi.ParamIn{
	"":       openapi.InQuery,
	"body":   openapi.InBody,
	"query":  openapi.InQuery,
	"path":   openapi.InPath,
	"header": openapi.InHeader,
	"cookie": openapi.InCookie,
}

// Spec assembles a document from the manifest. Security schemes that no
// parameter of a documented operation references are added at document
// level so that operations can still require them by name.
func (m *Manifest) Spec() (*openapi.Spec, error) {
	spec := openapi.NewSpec(m.Info)
	for _, server := range m.Servers {
		spec.AddServer(server)
	}
	for _, tag := range m.Tags {
		spec.AddTag(tag)
	}

	bound := make(map[string]bool)
	for _, op := range m.Operations {
		if op.Skip {
			continue
		}
		for _, p := range op.Params {
			if p.Security != "" {
				bound[p.Security] = true
			}
		}
	}
	for _, entry := range m.SecuritySchemes {
		if !bound[entry.name] {
			spec.AddSecurityScheme(entry.name, m.securitySchemes[entry.name])
		}
	}

	for i := range m.Operations {
		op := &m.Operations[i]
		b, err := m.builder(op)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", op.Name, err)
		}
		spec.Operation(op.Method, op.Path, b)
	}
	return spec, nil
}

// Builder returns the operation builder for the handler called name.
func (m *Manifest) Builder(name string) (*openapi.OperationBuilder, error) {
	for i := range m.Operations {
		if m.Operations[i].Name == name {
			return m.builder(&m.Operations[i])
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// OperationNames lists the handlers in manifest order.
func (m *Manifest) OperationNames() []string {
	names := make([]string, len(m.Operations))
	for i, op := range m.Operations {
		names[i] = op.Name
	}
	return names
}

func (m *Manifest) builder(op *Operation) (*openapi.OperationBuilder, error) {
	policy, ok := policies[op.DescriptionPolicy]
	if !ok {
		return nil, fmt.Errorf("%w: description policy %q", ErrInvalidManifest, op.DescriptionPolicy)
	}

	b := openapi.NewOperation(op.Name).
		Doc(op.Doc...).
		DescriptionPolicy(policy).
		Configure(cloneConfig(op.Config))
	if op.HandlerDeprecated {
		b.HandlerDeprecated()
	}

	for _, p := range op.Params {
		param, err := m.param(p)
		if err != nil {
			return nil, err
		}
		b.Param(param)
	}

	if op.Returns != nil {
		kind, err := m.returns(op.Returns)
		if err != nil {
			return nil, err
		}
		b.Returns(kind)
	}

	if op.Errors != "" {
		set, ok := m.Errors[op.Errors]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownErrorSet, op.Errors)
		}
		b.Errors(openapi.Errors(set...))
	}
	return b, nil
}

// schemaAndScheme is a parameter source carrying both capabilities.
type schemaAndScheme struct {
	openapi.NamedSchema
	openapi.NamedSecurityScheme
}

func (m *Manifest) param(p Param) (openapi.Param, error) {
	in, ok := locations[p.In]
	if !ok {
		return openapi.Param{}, fmt.Errorf("%w: parameter %q is in %q", ErrInvalidManifest, p.Name, p.In)
	}

	var (
		schema *openapi.NamedSchema
		scheme *openapi.NamedSecurityScheme
	)
	if p.Schema != "" {
		s, err := m.schema(p.Schema)
		if err != nil {
			return openapi.Param{}, err
		}
		schema = &s
	}
	if p.Security != "" {
		def, ok := m.securitySchemes[p.Security]
		if !ok {
			return openapi.Param{}, fmt.Errorf("%w: %q", ErrUnknownSecurityScheme, p.Security)
		}
		scheme = &openapi.NamedSecurityScheme{Name: p.Security, Scheme: def}
	}

	param := openapi.Param{Name: p.Name, In: in, ContentType: p.ContentType}
	switch {
	case schema != nil && scheme != nil:
		param.Source = schemaAndScheme{NamedSchema: *schema, NamedSecurityScheme: *scheme}
	case schema != nil:
		param.Source = *schema
	case scheme != nil:
		param.Source = *scheme
	}
	return param, nil
}

func (m *Manifest) returns(r *Return) (openapi.ResponseKind, error) {
	kind, ok := kinds[r.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}

	var payload openapi.SchemaSource
	if r.Schema != "" {
		s, err := m.schema(r.Schema)
		if err != nil {
			return nil, err
		}
		payload = s
	}

	w := openapi.Wrap(kind, payload)
	if r.Status != 0 {
		w = w.Status(r.Status)
	}
	if r.ContentType != "" {
		w = w.ContentType(r.ContentType)
	}
	return w, nil
}

func (m *Manifest) schema(name string) (openapi.NamedSchema, error) {
	s, ok := m.schemas[name]
	if !ok {
		return openapi.NamedSchema{}, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return openapi.NamedSchema{Name: name, Schema: s}, nil
}

// cloneConfig detaches the builder from the manifest's slices.
func cloneConfig(cfg openapi.Config) openapi.Config {
	cfg.Tags = slices.Clone(cfg.Tags)
	cfg.ErrorCodes = slices.Clone(cfg.ErrorCodes)
	cfg.SecurityScopes = slices.Clone(cfg.SecurityScopes)
	return cfg
}
