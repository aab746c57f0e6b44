package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler can be implemented by types to provide an example value
// for the generated JSON Schema. The returned value is set as the "example"
// field on the component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-9.5
type Exampler interface {
	OpenAPIExample() any
}

// TypeSchema is a SchemaSource that derives a self-contained JSON Schema
// from a Go type via reflection. Named struct types become components named
// after the type and titled with that name; nested structs are inlined so the
// component never points at another component.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
type TypeSchema struct {
	t reflect.Type
}

// SchemaOf returns the TypeSchema of T.
func SchemaOf[T any]() TypeSchema {
	return TypeSchema{t: reflect.TypeFor[T]()}
}

// Reflect returns the TypeSchema of the dynamic type of v.
func Reflect(v any) TypeSchema {
	return TypeSchema{t: reflect.TypeOf(v)}
}

// SchemaComponent implements SchemaSource.
func (s TypeSchema) SchemaComponent() (string, *Schema) {
	if s.t == nil {
		return "", nil
	}

	t := s.t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	g := &schemaGenerator{
		root:     t,
		rootName: componentName(t),
		active:   make(map[reflect.Type]bool),
	}

	schema := g.generateInlineType(t)
	if schema == nil || g.rootName == "" {
		return "", schema
	}

	schema.Title = g.rootName
	if ex, ok := reflect.New(t).Interface().(Exampler); ok {
		schema.Example = ex.OpenAPIExample()
	}
	return g.rootName, schema
}

// schemaGenerator expands one root type. The active set guards against
// recursive types: a recursive reference to the root becomes a $ref to the
// root component, any other cycle degrades to an unconstrained schema.
type schemaGenerator struct {
	root     reflect.Type
	rootName string
	active   map[reflect.Type]bool
}

func (g *schemaGenerator) generateType(t reflect.Type) *Schema {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	schema := g.generateInlineType(t)
	if schema == nil || !nullable {
		return schema
	}

	if schema.Ref != "" {
		return &Schema{AnyOf: []*Schema{schema, {Type: TypeString("null")}}}
	}
	applyNullable(schema)
	return schema
}

// generateInlineType maps Go primitive and composite types to JSON Schema types.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.1.1
func (g *schemaGenerator) generateInlineType(t reflect.Type) *Schema {
	if t == reflect.TypeFor[time.Time]() {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{Type: TypeString("array"), Items: g.generateType(t.Elem())}

	case reflect.Array:
		return &Schema{Type: TypeString("array"), Items: g.generateType(t.Elem())}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: TypeString("object")}
		}
		return &Schema{Type: TypeString("object"), AdditionalProperties: g.generateType(t.Elem())}

	case reflect.Struct:
		return g.generateStructSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

// generateStructSchema builds an object schema from struct fields.
//
// See: https://json-schema.org/draft/2020-12/json-schema-core#section-10.3.2 (properties)
// See: https://json-schema.org/draft/2020-12/json-schema-validation#section-6.5.3 (required)
func (g *schemaGenerator) generateStructSchema(t reflect.Type) *Schema {
	if g.active[t] {
		if t == g.root && g.rootName != "" {
			return &Schema{Ref: componentRef(g.rootName)}
		}
		return &Schema{}
	}
	g.active[t] = true
	defer delete(g.active, t)

	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}
	g.collectFields(t, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}
	return schema
}

// collectFields walks exported fields the way encoding/json sees them.
// Fields of pointer-embedded structs are optional because the pointer may
// be nil.
func (g *schemaGenerator) collectFields(t reflect.Type, schema *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)

		if field.Anonymous && name == "" {
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				g.collectFields(ft, schema, allOptional || isPtr)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}

		fieldSchema := g.generateType(field.Type)
		if fieldSchema == nil {
			continue
		}

		applyOpenAPITag(fieldSchema, field.Tag.Get("openapi"))
		if opts.stringEncode && fieldSchema.Ref == "" && len(fieldSchema.AnyOf) == 0 {
			applyStringEncoding(fieldSchema)
		}

		schema.Properties[name] = fieldSchema
		if !opts.omitempty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool // encoding/json ",string" option
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	var opts jsonTagOpts
	for opt := range strings.SplitSeq(rest, ",") {
		switch opt {
		case "omitempty", "omitzero":
			opts.omitempty = true
		case "string":
			opts.stringEncode = true
		}
	}
	return name, opts
}

// openapiTagSetters maps `openapi` struct tag keys to schema keywords.
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation
var openapiTagSetters = map[string]func(*Schema, string){
	"description":      func(s *Schema, v string) { s.Description = v },
	"format":           func(s *Schema, v string) { s.Format = v },
	"pattern":          func(s *Schema, v string) { s.Pattern = v },
	"title":            func(s *Schema, v string) { s.Title = v },
	"example":          func(s *Schema, v string) { s.Example = parseExampleValue(s, v) },
	"const":            func(s *Schema, v string) { s.Const = parseExampleValue(s, v) },
	"deprecated":       func(s *Schema, _ string) { s.Deprecated = true },
	"readOnly":         func(s *Schema, _ string) { s.ReadOnly = true },
	"writeOnly":        func(s *Schema, _ string) { s.WriteOnly = true },
	"uniqueItems":      func(s *Schema, _ string) { s.UniqueItems = true },
	"minimum":          func(s *Schema, v string) { s.Minimum = parseFloat(v) },
	"maximum":          func(s *Schema, v string) { s.Maximum = parseFloat(v) },
	"exclusiveMinimum": func(s *Schema, v string) { s.ExclusiveMinimum = parseFloat(v) },
	"exclusiveMaximum": func(s *Schema, v string) { s.ExclusiveMaximum = parseFloat(v) },
	"multipleOf":       func(s *Schema, v string) { s.MultipleOf = parseFloat(v) },
	"minLength":        func(s *Schema, v string) { s.MinLength = parseInt(v) },
	"maxLength":        func(s *Schema, v string) { s.MaxLength = parseInt(v) },
	"minItems":         func(s *Schema, v string) { s.MinItems = parseInt(v) },
	"maxItems":         func(s *Schema, v string) { s.MaxItems = parseInt(v) },
	"minProperties":    func(s *Schema, v string) { s.MinProperties = parseInt(v) },
	"maxProperties":    func(s *Schema, v string) { s.MaxProperties = parseInt(v) },
	"enum": func(s *Schema, v string) {
		values := strings.Split(v, "|")
		s.Enum = make([]any, len(values))
		for i, value := range values {
			s.Enum[i] = value
		}
	},
}

// applyOpenAPITag parses the `openapi` struct tag, e.g.
// `openapi:"description=User name,minLength=1"`. Unknown keys are ignored.
func applyOpenAPITag(schema *Schema, tag string) {
	if tag == "" {
		return
	}
	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		if set, ok := openapiTagSetters[strings.TrimSpace(key)]; ok {
			set(schema, strings.TrimSpace(value))
		}
	}
}

func parseFloat(value string) *float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(value string) *int {
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &v
}

// parseExampleValue converts a tag value to the Go type matching the
// schema's first type.
func parseExampleValue(schema *Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// componentName returns the component name for named struct types and ""
// for everything else.
func componentName(t reflect.Type) string {
	if t.Kind() != reflect.Struct || t.PkgPath() == "" || t == reflect.TypeFor[time.Time]() {
		return ""
	}
	return sanitizeSchemaName(t.Name())
}

// componentRef returns the local pointer to a schema component.
func componentRef(name string) string {
	return "#/components/schemas/" + name
}

// sanitizeSchemaName cleans up Go type names for use as component keys.
// Type arguments are named recursively and appended to the base name:
// "Page[User]" becomes "PageUser", "Page[[]User]" becomes "PageUserList",
// "Pair[string,int]" becomes "PairStringInt" and "Page[Wrap[User]]" becomes
// "PageWrapUser". The result only holds characters valid in component keys.
func sanitizeSchemaName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return -1
	}, typeArgName(name))
}

// typeArgName names one type expression as printed by reflect.
func typeArgName(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "*"):
		return typeArgName(s[1:])
	case strings.HasPrefix(s, "map["):
		end := closingBracket(s, len("map"))
		if end < 0 {
			return s
		}
		return "Map" + upperFirst(typeArgName(s[len("map["):end])) + upperFirst(typeArgName(s[end+1:]))
	case strings.HasPrefix(s, "["):
		end := closingBracket(s, 0)
		if end < 0 {
			return s
		}
		return typeArgName(s[end+1:]) + "List"
	}

	open := strings.IndexByte(s, '[')
	if open < 0 {
		return stripPackage(s)
	}
	end := closingBracket(s, open)
	if end < 0 {
		return stripPackage(s)
	}

	var b strings.Builder
	b.WriteString(stripPackage(s[:open]))
	for _, arg := range splitTypeArgs(s[open+1 : end]) {
		b.WriteString(upperFirst(typeArgName(arg)))
	}
	return b.String()
}

// closingBracket returns the index of the bracket matching the one at open,
// or -1.
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTypeArgs splits a type argument list on its top-level commas.
func splitTypeArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

// stripPackage drops the import path of a qualified type name.
func stripPackage(s string) string {
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		s = s[slash+1:]
	}
	if dot := strings.LastIndexByte(s, '.'); dot >= 0 {
		s = s[dot+1:]
	}
	return s
}

func upperFirst(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// applyNullable widens the type to include "null", the Draft 2020-12 form
// of the OpenAPI 3.0 nullable keyword.
func applyNullable(schema *Schema) {
	types := schema.Type.Values()
	if len(types) > 0 {
		schema.Type = TypeArray(append(types, "null")...)
	}
}

// applyStringEncoding mirrors the encoding/json ",string" option, keeping a
// "null" variant if present.
func applyStringEncoding(schema *Schema) {
	types := schema.Type.Values()
	if len(types) == 0 {
		return
	}
	for _, t := range types {
		if t == "null" {
			schema.Type = TypeArray("string", "null")
			return
		}
	}
	schema.Type = TypeString("string")
}
