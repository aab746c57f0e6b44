// Package manifest describes handlers in a YAML file instead of Go types.
//
// A manifest lists reusable schemas, security schemes and named error sets,
// then the operations referencing them by name:
//
//	info:
//	  title: Petstore
//	  version: 1.0.0
//	schemas:
//	  Pet:
//	    type: object
//	    properties:
//	      name: {type: string}
//	errors:
//	  common:
//	    - code: 404
//	operations:
//	  - name: getPet
//	    method: GET
//	    path: /pets/{id}
//	    returns: {kind: plain, schema: Pet}
//	    errors: common
//
// Every name is resolved when the manifest is loaded, so a manifest that
// loads without error always yields a Spec.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vitalvas/apigen/openapi"
	"gopkg.in/yaml.v3"
)

// Manifest is a decoded manifest file.
type Manifest struct {
	Info            openapi.Info                     `yaml:"info"`
	Servers         []openapi.Server                 `yaml:"servers,omitempty"`
	Tags            []openapi.Tag                    `yaml:"tags,omitempty"`
	Schemas         namedNodes                       `yaml:"schemas,omitempty"`
	SecuritySchemes namedNodes                       `yaml:"securitySchemes,omitempty"`
	Errors          map[string][]openapi.ErrorStatus `yaml:"errors,omitempty"`
	Operations      []Operation                      `yaml:"operations"`

	schemas         map[string]*openapi.Schema
	securitySchemes map[string]*openapi.SecurityScheme
}

// Operation is one handler of the manifest.
type Operation struct {
	Name              string  `yaml:"name"`
	Method            string  `yaml:"method"`
	Path              string  `yaml:"path"`
	Doc               Doc     `yaml:"doc,omitempty"`
	DescriptionPolicy string  `yaml:"descriptionPolicy,omitempty"`
	HandlerDeprecated bool    `yaml:"handlerDeprecated,omitempty"`
	Params            []Param `yaml:"params,omitempty"`
	Returns           *Return `yaml:"returns,omitempty"`

	// Errors names an entry of the manifest's error sets.
	Errors string `yaml:"errors,omitempty"`

	openapi.Config `yaml:",inline"`
}

// Param is one handler parameter. Schema and Security name entries of the
// manifest; either, both or neither may be set.
type Param struct {
	Name        string `yaml:"name"`
	In          string `yaml:"in,omitempty"`
	Schema      string `yaml:"schema,omitempty"`
	Security    string `yaml:"security,omitempty"`
	ContentType string `yaml:"contentType,omitempty"`
}

// Return is the success wrapper of a handler.
type Return struct {
	Kind        string `yaml:"kind"`
	Schema      string `yaml:"schema,omitempty"`
	Status      int    `yaml:"status,omitempty"`
	ContentType string `yaml:"contentType,omitempty"`
}

// Doc holds doc comment lines. It decodes from a list of lines or from a
// single multi-line string.
type Doc []string

func (d *Doc) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*d = strings.Split(strings.TrimRight(value.Value, "\n"), "\n")
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := value.Decode(&lines); err != nil {
			return err
		}
		*d = lines
		return nil
	}
	return fmt.Errorf("line %d: doc must be a string or a list of strings", value.Line)
}

type namedNode struct {
	name string
	node *yaml.Node
}

// namedNodes is a mapping decoded lazily, in document order.
type namedNodes []namedNode

func (n *namedNodes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	out := make(namedNodes, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		out = append(out, namedNode{name: value.Content[i].Value, node: value.Content[i+1]})
	}
	*n = out
	return nil
}

// Load decodes a manifest and resolves every name it references.
func Load(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if err := m.resolve(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and loads the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) resolve() error {
	m.schemas = make(map[string]*openapi.Schema, len(m.Schemas))
	for _, entry := range m.Schemas {
		var schema openapi.Schema
		if err := decodeJSON(entry.node, &schema); err != nil {
			return fmt.Errorf("%w: schema %q: %w", ErrInvalidManifest, entry.name, err)
		}
		if schema.Title == "" {
			schema.Title = entry.name
		}
		m.schemas[entry.name] = &schema
	}

	m.securitySchemes = make(map[string]*openapi.SecurityScheme, len(m.SecuritySchemes))
	for _, entry := range m.SecuritySchemes {
		var scheme openapi.SecurityScheme
		if err := decodeJSON(entry.node, &scheme); err != nil {
			return fmt.Errorf("%w: security scheme %q: %w", ErrInvalidManifest, entry.name, err)
		}
		m.securitySchemes[entry.name] = &scheme
	}

	names := make(map[string]struct{}, len(m.Operations))
	for i := range m.Operations {
		op := &m.Operations[i]
		if op.Name == "" {
			return fmt.Errorf("%w: operation %d has no name", ErrInvalidManifest, i)
		}
		if _, ok := names[op.Name]; ok {
			return fmt.Errorf("%w: operation %q is listed twice", ErrInvalidManifest, op.Name)
		}
		names[op.Name] = struct{}{}

		if _, err := m.builder(op); err != nil {
			return fmt.Errorf("operation %q: %w", op.Name, err)
		}
	}
	return nil
}

// decodeJSON converts a YAML node into v through its JSON form, so the
// json tags of the document model apply.
func decodeJSON(node *yaml.Node, v any) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
