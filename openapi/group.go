package openapi

import (
	"slices"

	"github.com/vitalvas/apigen/mux"
)

// groupDefaults holds the default configuration that a RouteGroup applies
// to every OperationBuilder registered through it.
type groupDefaults struct {
	tags           []string
	deprecated     bool
	errorCodes     []string
	securityScopes []SecurityScope
}

// RouteGroup provides shared defaults for a logical group of operations.
// Defaults are applied when an operation is registered through the group.
type RouteGroup struct {
	spec     *Spec
	defaults groupDefaults
}

// Tags appends tags to the group defaults. Group tags come before the
// operation's own tags.
func (g *RouteGroup) Tags(tags ...string) *RouteGroup {
	g.defaults.tags = append(g.defaults.tags, tags...)
	return g
}

// Deprecated marks all operations in this group as deprecated. This is a
// one-way latch: individual operations cannot undo group deprecation.
func (g *RouteGroup) Deprecated() *RouteGroup {
	g.defaults.deprecated = true
	return g
}

// ErrorCodes sets the error code overrides for operations that declare none
// of their own.
func (g *RouteGroup) ErrorCodes(codes ...string) *RouteGroup {
	g.defaults.errorCodes = append(g.defaults.errorCodes, codes...)
	return g
}

// SecurityScope requires scope under scheme for every operation in the
// group, ahead of the operation's own scopes.
func (g *RouteGroup) SecurityScope(scheme, scope string) *RouteGroup {
	g.defaults.securityScopes = append(g.defaults.securityScopes, SecurityScope{Scheme: scheme, Scope: scope})
	return g
}

// Operation applies the group defaults to b and binds it to method and path.
func (g *RouteGroup) Operation(method, path string, b *OperationBuilder) *OperationBuilder {
	return g.spec.Operation(method, path, g.apply(b))
}

// Route applies the group defaults to b and binds it to a router route.
func (g *RouteGroup) Route(route *mux.Route, b *OperationBuilder) *OperationBuilder {
	return g.spec.Route(route, g.apply(b))
}

func (g *RouteGroup) apply(b *OperationBuilder) *OperationBuilder {
	cfg := b.Config()
	cfg.Tags = append(slices.Clone(g.defaults.tags), cfg.Tags...)
	cfg.Deprecated = cfg.Deprecated || g.defaults.deprecated
	if len(cfg.ErrorCodes) == 0 {
		cfg.ErrorCodes = slices.Clone(g.defaults.errorCodes)
	}
	cfg.SecurityScopes = append(slices.Clone(g.defaults.securityScopes), cfg.SecurityScopes...)
	return b.Configure(cfg)
}
