package openapi

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/vitalvas/apigen/mux"
)

// HandleConfig configures the endpoints served by Spec.Handle and
// Spec.Handler.
type HandleConfig struct {
	// Title overrides the HTML page title (default: spec info.title).
	Title string

	// JSONFilename is the path of the JSON document (default:
	// "openapi.json"). Set to "-" to disable.
	JSONFilename string

	// YAMLFilename is the path of the YAML document (default:
	// "openapi.yaml"). Set to "-" to disable.
	YAMLFilename string

	// DisableDocs disables the Swagger UI page served at "/".
	DisableDocs bool
}

// jsonFilename returns the configured JSON filename, defaulting to "openapi.json".
func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "openapi.json"
	}
	return cfg.JSONFilename
}

// yamlFilename returns the configured YAML filename, defaulting to "openapi.yaml".
func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "openapi.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the route path of a filename. Absolute filenames are
// returned as-is; relative ones are joined under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return basePath + "/" + filename
}

// Handle registers the document endpoints under basePath on r:
//
//	<basePath>/            - Swagger UI (unless DisableDocs)
//	<JSONFilename path>    - document as JSON (unless JSONFilename is "-")
//	<YAMLFilename path>    - document as YAML (unless YAMLFilename is "-")
//
// Filenames are relative to basePath unless they start with "/". Both
// <basePath> and <basePath>/ serve the UI. The endpoints answer GET and HEAD.
//
//	r := mux.NewRouter()
//	spec.Handle(r, "/swagger", nil)
//
// The document is built once, on the first request, and cached together with
// any build error.
func (s *Spec) Handle(r *mux.Router, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")
	doc := &cachedDocument{spec: s}

	var specURL string
	if name := cfg.yamlFilename(); name != "-" {
		specURL = s.docsURL(basePath, name)
		r.HandleFunc(resolvePath(basePath, name), doc.serve("application/x-yaml", (*Document).YAML)).
			Methods(http.MethodGet, http.MethodHead)
	}
	if name := cfg.jsonFilename(); name != "-" {
		specURL = s.docsURL(basePath, name)
		r.HandleFunc(resolvePath(basePath, name), doc.serve("application/json", (*Document).JSON)).
			Methods(http.MethodGet, http.MethodHead)
	}

	if cfg.DisableDocs || specURL == "" {
		return
	}

	title := cfg.Title
	if title == "" {
		title = s.info.Title
	}
	page := []byte(swaggerUITemplate(title, specURL))
	docs := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}
	if basePath != "" {
		r.HandleFunc(basePath, docs).Methods(http.MethodGet, http.MethodHead)
	}
	r.HandleFunc(basePath+"/", docs).Methods(http.MethodGet, http.MethodHead)
}

// docsURL is the document URL the UI page loads. Without a base path the
// handler may be mounted anywhere, so relative filenames stay relative.
func (s *Spec) docsURL(basePath, filename string) string {
	if basePath == "" && !strings.HasPrefix(filename, "/") {
		return filename
	}
	return resolvePath(basePath, filename)
}

// Handler returns an http.Handler serving the document endpoints at the
// root. Use http.StripPrefix to mount it under another path:
//
//	http.Handle("/docs/", http.StripPrefix("/docs", spec.Handler(nil)))
func (s *Spec) Handler(cfg *HandleConfig) http.Handler {
	r := mux.NewRouter()
	s.Handle(r, "", cfg)
	return r
}

// cachedDocument builds the document at most once.
type cachedDocument struct {
	spec *Spec
	once sync.Once
	doc  *Document
	err  error
}

func (c *cachedDocument) get() (*Document, error) {
	c.once.Do(func() {
		c.doc, c.err = c.spec.Build(context.Background())
	})
	return c.doc, c.err
}

func (c *cachedDocument) serve(contentType string, encode func(*Document) ([]byte, error)) http.HandlerFunc {
	var (
		once    sync.Once
		data    []byte
		dataErr error
	)
	return func(w http.ResponseWriter, _ *http.Request) {
		once.Do(func() {
			doc, err := c.get()
			if err != nil {
				dataErr = err
				return
			}
			data, dataErr = encode(doc)
		})
		if dataErr != nil {
			http.Error(w, "failed to build OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func swaggerUITemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"});
</script>
</body>
</html>`, html.EscapeString(title), specPath)
}
