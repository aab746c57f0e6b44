package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bearerScheme = &SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"}
	basicScheme  = &SecurityScheme{Type: "http", Scheme: "basic"}
)

func TestAggregateSecurity(t *testing.T) {
	t.Run("nothing declared", func(t *testing.T) {
		reg := NewRegistry()
		reqs, err := aggregateSecurity(nil, nil, reg, "op")
		require.NoError(t, err)
		assert.Nil(t, reqs)
		assert.Empty(t, reg.SecuritySchemeNames())
	})

	t.Run("scopes of one scheme merge into one requirement", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{
			{Scheme: "oauth", Scope: "read:pets"},
			{Scheme: "oauth", Scope: "write:pets"},
			{Scheme: "oauth", Scope: "read:pets"},
		}
		reqs, err := aggregateSecurity(declared, nil, reg, "op")
		require.NoError(t, err)
		assert.Equal(t, []SecurityRequirement{{"oauth": {"read:pets", "write:pets"}}}, reqs)
	})

	t.Run("one requirement per scheme in declaration order", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{
			{Scheme: "oauth", Scope: "read"},
			{Scheme: "key"},
			{Scheme: "oauth", Scope: "write"},
		}
		reqs, err := aggregateSecurity(declared, nil, reg, "op")
		require.NoError(t, err)

		data, err := json.Marshal(reqs)
		require.NoError(t, err)
		assert.Equal(t, `[{"oauth":["read","write"]},{"key":[]}]`, string(data))
	})

	t.Run("binds by name before position", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{
			{Scheme: "token", Scope: "a"},
			{Scheme: "basic"},
		}
		sources := []SecuritySource{
			NamedSecurityScheme{Name: "Anonymous", Scheme: bearerScheme},
			NamedSecurityScheme{Name: "basic", Scheme: basicScheme},
		}
		_, err := aggregateSecurity(declared, sources, reg, "op")
		require.NoError(t, err)

		comps := reg.components()
		require.NotNil(t, comps)
		token, ok := comps.SecuritySchemes.Get("token")
		require.True(t, ok)
		assert.Equal(t, bearerScheme, token)
		basic, ok := comps.SecuritySchemes.Get("basic")
		require.True(t, ok)
		assert.Equal(t, basicScheme, basic)
		assert.Equal(t, []string{"token", "basic"}, reg.SecuritySchemeNames())
	})

	t.Run("unbound source is required without scopes", func(t *testing.T) {
		reg := NewRegistry()
		sources := []SecuritySource{NamedSecurityScheme{Name: "bearer", Scheme: bearerScheme}}
		reqs, err := aggregateSecurity(nil, sources, reg, "op")
		require.NoError(t, err)
		assert.Equal(t, []SecurityRequirement{{"bearer": {}}}, reqs)
		assert.Equal(t, []string{"bearer"}, reg.SecuritySchemeNames())
	})

	t.Run("undeclared source binds by position", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{{Scheme: "oauth", Scope: "read"}}
		sources := []SecuritySource{NamedSecurityScheme{Name: "basic", Scheme: basicScheme}}
		reqs, err := aggregateSecurity(declared, sources, reg, "op")
		require.NoError(t, err)

		assert.Equal(t, []SecurityRequirement{{"oauth": {"read"}}}, reqs)
		assert.Equal(t, []string{"oauth"}, reg.SecuritySchemeNames())
	})

	t.Run("declared scheme without a source", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{{Scheme: "external", Scope: "read"}}
		reqs, err := aggregateSecurity(declared, nil, reg, "op")
		require.NoError(t, err)
		assert.Equal(t, []SecurityRequirement{{"external": {"read"}}}, reqs)
		assert.Empty(t, reg.SecuritySchemeNames())
	})

	t.Run("unnamed source without a declaration", func(t *testing.T) {
		reg := NewRegistry()
		sources := []SecuritySource{NamedSecurityScheme{Scheme: basicScheme}}
		_, err := aggregateSecurity(nil, sources, reg, "op")
		assert.ErrorIs(t, err, ErrUnnamedSecurityScheme)
	})

	t.Run("unnamed source bound to a declaration", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{{Scheme: "basic"}}
		sources := []SecuritySource{NamedSecurityScheme{Scheme: basicScheme}}
		reqs, err := aggregateSecurity(declared, sources, reg, "op")
		require.NoError(t, err)
		assert.Equal(t, []SecurityRequirement{{"basic": {}}}, reqs)
		assert.Equal(t, []string{"basic"}, reg.SecuritySchemeNames())
	})

	t.Run("scope without a scheme name", func(t *testing.T) {
		reg := NewRegistry()
		_, err := aggregateSecurity([]SecurityScope{{Scope: "read"}}, nil, reg, "op")
		assert.ErrorIs(t, err, ErrUnnamedSecurityScheme)
	})

	t.Run("source without a definition", func(t *testing.T) {
		reg := NewRegistry()
		sources := []SecuritySource{NamedSecurityScheme{Name: "bearer"}}
		_, err := aggregateSecurity([]SecurityScope{{Scheme: "bearer"}}, sources, reg, "op")
		assert.ErrorIs(t, err, ErrMissingSecurityScheme)
		assert.Empty(t, reg.SecuritySchemeNames())
	})

	t.Run("conflicting definitions", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.RegisterSecurityScheme("auth", basicScheme, "first"))

		sources := []SecuritySource{NamedSecurityScheme{Name: "auth", Scheme: bearerScheme}}
		_, err := aggregateSecurity([]SecurityScope{{Scheme: "auth"}}, sources, reg, "second")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("source named after a declared scheme only binds by name", func(t *testing.T) {
		reg := NewRegistry()
		declared := []SecurityScope{{Scheme: "auth"}, {Scheme: "auth2"}}
		sources := []SecuritySource{
			NamedSecurityScheme{Name: "auth", Scheme: basicScheme},
			NamedSecurityScheme{Name: "auth", Scheme: bearerScheme},
		}
		_, err := aggregateSecurity(declared, sources, reg, "op")
		assert.ErrorIs(t, err, ErrConflict)
	})
}
