// Package mux is a small request router used to serve generated OpenAPI
// documents next to the API they describe.
//
// Routes are matched by path template and method. Templates hold variables
// in curly braces, optionally constrained by a pattern or a named macro:
//
//	r := mux.NewRouter()
//	api := r.PathPrefix("/api/v1").Subrouter()
//	api.HandleFunc("/items/{id:uuid}", getItem).Methods(http.MethodGet)
//
// Variables are read from the request context:
//
//	id, ok := mux.VarGet(r, "id")
//
// A path that matches with the wrong method gets 405 Method Not Allowed with
// an Allow header listing the methods that would match.
//
// BindJSON and ResponseJSON cover the JSON request and response bodies of
// such handlers.
package mux
