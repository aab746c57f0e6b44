package openapi

import (
	"fmt"
	"slices"
)

// SecurityScope declares that an operation requires scope under scheme.
type SecurityScope struct {
	Scheme string `json:"scheme" yaml:"scheme"`
	Scope  string `json:"scope" yaml:"scope"`
}

type boundSource struct {
	name   string
	scheme *SecurityScheme
	bound  bool
}

// aggregateSecurity registers the security schemes of an operation and
// returns its requirements, one per scheme, in first-declared order.
//
// Declared schemes bind to security sources by name first, then in order to
// the sources left over. Sources that bind to nothing are registered under
// their own name and required without scopes.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-requirement-object
func aggregateSecurity(declared []SecurityScope, sources []SecuritySource, reg *Registry, registrant string) ([]SecurityRequirement, error) {
	var order []string
	scopes := make(map[string][]string)
	for _, s := range declared {
		if s.Scheme == "" {
			return nil, fmt.Errorf("%w: operation %q declares scope %q", ErrUnnamedSecurityScheme, registrant, s.Scope)
		}
		if _, ok := scopes[s.Scheme]; !ok {
			order = append(order, s.Scheme)
			scopes[s.Scheme] = []string{}
		}
		if s.Scope != "" && !slices.Contains(scopes[s.Scheme], s.Scope) {
			scopes[s.Scheme] = append(scopes[s.Scheme], s.Scope)
		}
	}

	bound := make([]*boundSource, 0, len(sources))
	for _, src := range sources {
		name, scheme := src.SecurityScheme()
		if scheme == nil {
			return nil, fmt.Errorf("%w: operation %q, scheme %q", ErrMissingSecurityScheme, registrant, name)
		}
		bound = append(bound, &boundSource{name: name, scheme: scheme})
	}

	definitions := make(map[string]*SecurityScheme)
	for _, name := range order {
		for _, b := range bound {
			if !b.bound && b.name == name {
				b.bound = true
				definitions[name] = b.scheme
				break
			}
		}
	}
	for _, name := range order {
		if _, ok := definitions[name]; ok {
			continue
		}
		for _, b := range bound {
			if !b.bound && scopes[b.name] == nil {
				b.bound = true
				definitions[name] = b.scheme
				break
			}
		}
	}

	for _, name := range order {
		if scheme, ok := definitions[name]; ok {
			if err := reg.RegisterSecurityScheme(name, scheme, registrant); err != nil {
				return nil, err
			}
		}
	}

	for _, b := range bound {
		if b.bound {
			continue
		}
		if b.name == "" {
			return nil, fmt.Errorf("%w: operation %q", ErrUnnamedSecurityScheme, registrant)
		}
		if err := reg.RegisterSecurityScheme(b.name, b.scheme, registrant); err != nil {
			return nil, err
		}
		if _, ok := scopes[b.name]; !ok {
			order = append(order, b.name)
			scopes[b.name] = []string{}
		}
	}

	if len(order) == 0 {
		return nil, nil
	}

	reqs := make([]SecurityRequirement, 0, len(order))
	for _, name := range order {
		reqs = append(reqs, SecurityRequirement{name: scopes[name]})
	}
	return reqs, nil
}
