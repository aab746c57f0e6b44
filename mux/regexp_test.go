package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteRegexp(t *testing.T) {
	tests := []struct {
		name   string
		tpl    string
		prefix bool
		path   string
		match  bool
		vars   map[string]string
	}{
		{"static", "/items", false, "/items", true, nil},
		{"static mismatch", "/items", false, "/items/1", false, nil},
		{"default pattern", "/items/{id}", false, "/items/abc", true, map[string]string{"id": "abc"}},
		{"default pattern stops at slash", "/items/{id}", false, "/items/a/b", false, nil},
		{"custom pattern", "/items/{id:[0-9]+}", false, "/items/42", true, map[string]string{"id": "42"}},
		{"custom pattern mismatch", "/items/{id:[0-9]+}", false, "/items/x", false, nil},
		{"nested braces", "/codes/{code:[A-Z]{3}}", false, "/codes/ABC", true, map[string]string{"code": "ABC"}},
		{"capturing group in pattern", "/{kind:(a|b)}/{id}", false, "/b/7", true, map[string]string{"kind": "b", "id": "7"}},
		{"int macro", "/n/{n:int}", false, "/n/10", true, map[string]string{"n": "10"}},
		{"date macro", "/d/{day:date}", false, "/d/2024-01-31", true, map[string]string{"day": "2024-01-31"}},
		{"slug macro", "/s/{s:slug}", false, "/s/hello-world", true, map[string]string{"s": "hello-world"}},
		{"literal meta characters", "/a.b/{x}", false, "/aXb/1", false, nil},
		{"prefix", "/api", true, "/api/items", true, nil},
		{"prefix with var", "/orgs/{org}", true, "/orgs/acme/repos", true, map[string]string{"org": "acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := newRouteRegexp(tt.tpl, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.tpl, rr.template)
			assert.Equal(t, tt.match, rr.Match(tt.path))
			if tt.match {
				assert.Equal(t, tt.vars, rr.vars(tt.path))
			}
		})
	}
}

func TestNewRouteRegexpErrors(t *testing.T) {
	for _, tpl := range []string{
		"/{id",
		"/id}",
		"/{}",
		"/{:[0-9]+}",
		"/{a}/{a}",
		"/{id:[0-9}",
	} {
		t.Run(tpl, func(t *testing.T) {
			_, err := newRouteRegexp(tpl, false)
			assert.Error(t, err)
		})
	}
}

func TestExpandMacro(t *testing.T) {
	assert.Equal(t, patternMacros["uuid"], expandMacro("uuid"))
	assert.Equal(t, "[a-z]+", expandMacro("[a-z]+"))
}

func TestCompileRegexpCache(t *testing.T) {
	a, err := compileRegexp("^cache-[0-9]+$")
	require.NoError(t, err)
	b, err := compileRegexp("^cache-[0-9]+$")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = compileRegexp("(")
	assert.Error(t, err)
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":         "/",
		"a":        "/a",
		"/a/../b":  "/b",
		"/a/./b/":  "/a/b/",
		"//a":      "/a",
		"/":        "/",
		"/a/b/../": "/a/",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, cleanPath(in))
		})
	}
}
