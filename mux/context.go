package mux

import (
	"context"
	"errors"
	"net/http"
)

type routeContextKey struct{}

var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted variables.
type routeContext struct {
	route *Route
	vars  map[string]string
}

// Vars returns the route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and whether
// the variable exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.vars != nil {
		val, exists := rc.vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// SetURLVars sets the route variables of r. It is intended for testing
// handlers without a router.
func SetURLVars(r *http.Request, vars map[string]string) *http.Request {
	return setRouteContext(r, CurrentRoute(r), vars)
}

func setRouteContext(r *http.Request, route *Route, vars map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, &routeContext{route: route, vars: vars})
	return r.WithContext(ctx)
}

// RouteMatch stores information about a matched route.
type RouteMatch struct {
	Route   *Route
	Handler http.Handler
	Vars    map[string]string

	// MatchErr is ErrMethodMismatch when the path matched but the method
	// did not, and ErrNotFound when nothing matched.
	MatchErr error
}

// MiddlewareFunc wraps a matched handler.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to be applied like an interface value.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

var (
	// ErrMethodMismatch is set when a route path matches but its methods
	// do not include the request method.
	ErrMethodMismatch = errors.New("method is not allowed")

	// ErrNotFound is set when no route matches.
	ErrNotFound = errors.New("no matching route was found")
)
