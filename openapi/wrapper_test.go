package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapperKind(t *testing.T) {
	tests := []struct {
		kind    WrapperKind
		name    string
		status  int
		refOnly bool
	}{
		{KindPlain, "plain", 200, false},
		{KindNoContent, "noContent", 204, false},
		{KindCreated, "created", 201, true},
		{KindAccepted, "accepted", 202, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.status, tt.kind.DefaultStatus())
			assert.Equal(t, tt.refOnly, tt.kind.RefOnly())
			assert.Equal(t, tt.kind == KindNoContent, tt.kind.ContentLess())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", WrapperKind(42).String())
	})
}

func TestWrapper(t *testing.T) {
	payload := NamedSchema{Name: "Test", Schema: &Schema{Type: TypeString("object")}}

	t.Run("default status", func(t *testing.T) {
		shape := Wrap(KindCreated, payload).ResponseShape()
		assert.Equal(t, KindCreated, shape.Kind)
		assert.Equal(t, 201, shape.Status)
		assert.Equal(t, payload, shape.Payload)
		assert.False(t, shape.NoContent)
	})

	t.Run("explicit status", func(t *testing.T) {
		shape := Wrap(KindPlain, payload).Status(206).ResponseShape()
		assert.Equal(t, 206, shape.Status)
	})

	t.Run("content type", func(t *testing.T) {
		shape := Wrap(KindPlain, payload).ContentType("application/xml").ResponseShape()
		assert.Equal(t, "application/xml", shape.ContentType)
	})

	t.Run("no content drops payload", func(t *testing.T) {
		shape := Wrap(KindNoContent, payload).ResponseShape()
		assert.True(t, shape.NoContent)
		assert.Nil(t, shape.Payload)
		assert.Equal(t, 204, shape.Status)
	})

	t.Run("generic wrappers", func(t *testing.T) {
		shape := JSON[SimpleStruct]{}.ResponseShape()
		assert.Equal(t, KindPlain, shape.Kind)
		require.NotNil(t, shape.Payload)
		name, _ := shape.Payload.SchemaComponent()
		assert.Equal(t, "SimpleStruct", name)

		assert.Equal(t, 201, Created[SimpleStruct]{}.ResponseShape().Status)
		assert.Equal(t, 202, Accepted[SimpleStruct]{}.ResponseShape().Status)
		assert.Equal(t, 204, NoContent{}.ResponseShape().Status)
	})
}
