package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDocumentYAML(t *testing.T) {
	doc, err := petstoreSpec().Build(context.Background())
	require.NoError(t, err)

	out, err := doc.YAML()
	require.NoError(t, err)
	s := string(out)

	t.Run("top level key order", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(s, "openapi: 3.1.0\ninfo:\n"))
		assert.Less(t, strings.Index(s, "\npaths:\n"), strings.Index(s, "\ncomponents:\n"))
		assert.Less(t, strings.Index(s, "\ncomponents:\n"), strings.Index(s, "\ntags:\n"))
	})

	t.Run("component registration order", func(t *testing.T) {
		assert.Less(t, strings.Index(s, "Pet:"), strings.Index(s, "Order:"))
	})

	t.Run("block style", func(t *testing.T) {
		assert.NotContains(t, s, `{"`)
		assert.NotContains(t, s, `"openapi"`)
	})

	t.Run("status codes stay strings", func(t *testing.T) {
		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(out, &decoded))

		paths := decoded["paths"].(map[string]any)
		pets := paths["/pets"].(map[string]any)
		post := pets["post"].(map[string]any)
		responses := post["responses"].(map[string]any)
		assert.Contains(t, responses, "201")
		assert.Contains(t, responses, "405")
		assert.Equal(t, false, post["deprecated"])
	})
}

func TestMarshalYAML(t *testing.T) {
	t.Run("json tags decide names", func(t *testing.T) {
		out, err := MarshalYAML(ErrorStatus{Code: 404, Description: "Not Found"})
		require.NoError(t, err)
		assert.Equal(t, "code: 404\ndescription: Not Found\n", string(out))
	})

	t.Run("ambiguous strings are quoted", func(t *testing.T) {
		out, err := MarshalYAML(map[string]string{"a": "true", "b": "12"})
		require.NoError(t, err)
		assert.Equal(t, "a: \"true\"\nb: \"12\"\n", string(out))
	})

	t.Run("unsupported value", func(t *testing.T) {
		_, err := MarshalYAML(make(chan int))
		assert.Error(t, err)
	})
}
