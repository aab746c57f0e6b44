package openapi

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"

	"github.com/vitalvas/apigen/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const specSource = "spec"

// Spec binds operation builders to paths and methods and assembles them into
// a complete Document.
type Spec struct {
	info            Info
	servers         []Server
	tags            []Tag
	securitySchemes []NamedSecurityScheme
	entries         []*specEntry

	logger      *zap.Logger
	concurrency int
	validate    bool
}

// specEntry is one bound operation. seq is its registration order, which is
// also the order its components are merged in.
type specEntry struct {
	seq     int
	method  string
	path    string
	builder *OperationBuilder
	err     error
}

// NewSpec creates a new spec builder with the given API info.
func NewSpec(info Info) *Spec {
	return &Spec{
		info:        info,
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// AddServer adds a server to the spec.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag adds a user-defined tag with an optional description.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// AddSecurityScheme registers a document-level security scheme. Operations
// may register the same name again only with an identical definition.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) *Spec {
	s.securitySchemes = append(s.securitySchemes, NamedSecurityScheme{Name: name, Scheme: scheme})
	return s
}

// WithLogger sets the logger used during Build. A nil logger disables logging.
func (s *Spec) WithLogger(logger *zap.Logger) *Spec {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
	return s
}

// Concurrency limits how many operations are synthesized in parallel.
// Values below 1 mean one at a time.
func (s *Spec) Concurrency(n int) *Spec {
	s.concurrency = max(n, 1)
	return s
}

// ValidateSchemas compiles every component schema as a standalone JSON
// Schema during Build.
func (s *Spec) ValidateSchemas() *Spec {
	s.validate = true
	return s
}

// Group creates a RouteGroup that applies shared defaults to the operations
// registered through it.
func (s *Spec) Group() *RouteGroup {
	return &RouteGroup{spec: s}
}

// Operation binds b to method and path. Path uses OpenAPI templating
// (e.g. "/pets/{id}"). It returns b for further configuration.
func (s *Spec) Operation(method, path string, b *OperationBuilder) *OperationBuilder {
	s.entries = append(s.entries, &specEntry{
		seq:     len(s.entries),
		method:  strings.ToUpper(method),
		path:    path,
		builder: b,
	})
	return b
}

// Route binds b to the path template and methods of a router route. Route
// variables are documented without their patterns, so "/items/{id:uuid}"
// becomes "/items/{id}". A route with several methods binds b once per
// method; the shared operationId is then rejected by Build unless b is
// skipped.
func (s *Spec) Route(route *mux.Route, b *OperationBuilder) *OperationBuilder {
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return s.invalidRoute(b, err)
	}
	methods, err := route.GetMethods()
	if err != nil {
		return s.invalidRoute(b, err)
	}

	path := templatePath(tpl)
	for _, method := range methods {
		s.Operation(method, path, b)
	}
	return b
}

func (s *Spec) invalidRoute(b *OperationBuilder, err error) *OperationBuilder {
	s.entries = append(s.entries, &specEntry{
		seq:     len(s.entries),
		builder: b,
		err:     fmt.Errorf("%w: operation %q: %v", ErrInvalidRoute, b.Name(), err),
	})
	return b
}

// templatePath strips variable patterns from a router path template.
func templatePath(tpl string) string {
	var (
		sb    strings.Builder
		level int
		skip  bool
	)
	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '{':
			level++
			if level == 1 {
				sb.WriteByte(c)
				continue
			}
		case c == '}':
			level--
			if level == 0 {
				skip = false
				sb.WriteByte(c)
				continue
			}
		case c == ':' && level == 1:
			skip = true
			continue
		}
		if !skip {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Build synthesizes every bound operation and assembles the Document.
//
// Operations are synthesized concurrently, then merged one by one in
// registration order, so the output does not depend on scheduling. Skipped
// operations are left out of paths. The first error aborts the build.
func (s *Spec) Build(ctx context.Context) (*Document, error) {
	if err := s.checkEntries(); err != nil {
		return nil, err
	}

	type result struct {
		op    *Operation
		comps *Registry
	}
	results := make([]result, len(s.entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, e := range s.entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			op, comps, err := e.builder.Synthesize()
			if err != nil {
				return fmt.Errorf("%s %s: %w", e.method, e.path, err)
			}
			results[e.seq] = result{op: op, comps: comps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	if s.validate {
		reg.ValidateSchemas()
	}
	for _, sch := range s.securitySchemes {
		if err := reg.RegisterSecurityScheme(sch.Name, sch.Scheme, specSource); err != nil {
			return nil, err
		}
	}

	doc := &Document{
		OpenAPI: "3.1.0",
		Info:    s.info,
		Servers: s.servers,
		Paths:   make(map[string]*PathItem),
	}

	for _, e := range s.entries {
		res := results[e.seq]
		log := s.logger.With(
			zap.Int("seq", e.seq),
			zap.String("method", e.method),
			zap.String("path", e.path),
			zap.String("operation", e.builder.Name()),
		)

		if res.op.Skipped {
			log.Debug("operation skipped")
			continue
		}

		if err := reg.Merge(res.comps); err != nil {
			return nil, fmt.Errorf("%s %s: %w", e.method, e.path, err)
		}

		pathItem, ok := doc.Paths[e.path]
		if !ok {
			pathItem = &PathItem{}
			doc.Paths[e.path] = pathItem
		}
		assignOperation(pathItem, e.method, res.op)

		log.Debug("operation added",
			zap.Int("responses", len(res.op.Responses)),
			zap.Int("components", res.comps.Len()),
		)
	}

	doc.Components = reg.components()
	doc.Tags = s.mergeTags(doc.Paths)

	s.logger.Info("document built",
		zap.Int("operations", len(s.entries)),
		zap.Int("paths", len(doc.Paths)),
		zap.Int("schemas", reg.Len()),
	)
	return doc, nil
}

// checkEntries rejects invalid routes, unknown methods, duplicate
// method+path bindings and duplicate operationIds among documented
// operations.
func (s *Spec) checkEntries() error {
	routes := make(map[string]bool, len(s.entries))
	ids := make(map[string]bool, len(s.entries))

	for _, e := range s.entries {
		if e.err != nil {
			return e.err
		}
		if !knownMethod(e.method) {
			return fmt.Errorf("%w: %q", ErrUnknownMethod, e.method)
		}

		route := e.method + " " + e.path
		if routes[route] {
			return fmt.Errorf("%w: %s", ErrDuplicateOperation, route)
		}
		routes[route] = true

		if e.builder.meta.config.Skip {
			continue
		}
		id := e.builder.Name()
		if ids[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateOperationID, id)
		}
		ids[id] = true
	}
	return nil
}

// mergeTags combines auto-collected tags from operations with user-defined tags.
// User-defined tags take precedence (their description is kept).
// Tags not seen in operations but defined by the user are still included.
// The result is sorted alphabetically.
func (s *Spec) mergeTags(paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		if userTag, ok := userTags[name]; ok {
			tags = append(tags, userTag)
		} else {
			tags = append(tags, Tag{Name: name})
		}
	}

	for _, pathItem := range paths {
		for _, op := range pathItem.operations() {
			for _, name := range op.Tags {
				add(name)
			}
		}
	}
	for _, tag := range s.tags {
		add(tag.Name)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// operations returns the non-nil operations of the path item.
func (p *PathItem) operations() []*Operation {
	var ops []*Operation
	for _, op := range []*Operation{p.Get, p.Put, p.Post, p.Delete, p.Options, p.Head, p.Patch, p.Trace} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

func knownMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
		http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodTrace:
		return true
	}
	return false
}

// assignOperation assigns an operation to the correct HTTP method field
// on the path item.
func assignOperation(pathItem *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}
