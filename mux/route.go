package mux

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

// Route matches a path template and a set of methods.
type Route struct {
	parent  *Router
	handler http.Handler
	path    *routeRegexp
	methods []string
	name    string
	err     error
}

// Match matches this route against the request.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil {
		return false
	}
	if r.path != nil && !r.path.Match(req.URL.Path) {
		return false
	}
	if len(r.methods) > 0 && !slices.Contains(r.methods, req.Method) {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	if router, ok := r.handler.(*Router); ok {
		return router.Match(req, match)
	}

	match.Route = r
	match.Handler = r.handler
	if r.path != nil {
		match.Vars = r.path.vars(req.URL.Path)
	}
	return true
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// Path sets the path template of the route. Inside a subrouter the
// template is appended to the parent route's template.
func (r *Route) Path(tpl string) *Route {
	return r.setPath(tpl, false)
}

// PathPrefix sets a template that matches the beginning of the path.
func (r *Route) PathPrefix(tpl string) *Route {
	return r.setPath(tpl, true)
}

func (r *Route) setPath(tpl string, prefix bool) *Route {
	if r.err != nil {
		return r
	}
	if r.parent != nil && r.parent.parent != nil && r.parent.parent.path != nil {
		tpl = strings.TrimRight(r.parent.parent.path.template, "/") + tpl
	}
	r.path, r.err = newRouteRegexp(tpl, prefix)
	return r
}

// Methods restricts the route to the given methods. Calling it again
// replaces the previous set.
func (r *Route) Methods(methods ...string) *Route {
	r.methods = make([]string, len(methods))
	for i, m := range methods {
		r.methods[i] = strings.ToUpper(m)
	}
	return r
}

// Name sets the name of the route.
func (r *Route) Name(name string) *Route {
	r.name = name
	return r
}

// GetName returns the name of the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// Subrouter creates a router whose routes are nested under this route.
func (r *Route) Subrouter() *Router {
	router := &Router{parent: r}
	r.handler = router
	return router
}

// GetPathTemplate returns the full template of the route path.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.path == nil {
		return "", errors.New("mux: route doesn't have a path")
	}
	return r.path.template, nil
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.methods) == 0 {
		return nil, errors.New("mux: route doesn't have methods")
	}
	return slices.Clone(r.methods), nil
}

// GetVarNames returns the variable names of the route path.
func (r *Route) GetVarNames() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.path == nil {
		return nil, nil
	}
	return slices.Clone(r.path.varsN), nil
}

// GetError returns any error that was set on the route.
func (r *Route) GetError() error {
	return r.err
}
