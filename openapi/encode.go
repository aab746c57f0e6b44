package openapi

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// JSON returns the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML returns the document as YAML with the same key order as JSON.
func (d *Document) YAML() ([]byte, error) {
	return MarshalYAML(d)
}

// MarshalYAML encodes v as block-style YAML. The value is encoded to JSON
// first, so JSON tags and custom JSON marshalers decide the field names and
// the key order.
func MarshalYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert JSON to YAML: %w", err)
	}
	blockStyle(&node)

	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles the JSON input left on the
// nodes. The encoder still quotes strings that would otherwise change type.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
