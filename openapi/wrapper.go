package openapi

import "net/http"

// WrapperKind is the success envelope of a handler. It fixes the default
// status code and how the response body is shaped.
type WrapperKind int

const (
	// KindPlain nests the payload under content/<type>/schema. Default 200.
	KindPlain WrapperKind = iota
	// KindNoContent has no body. Default 204.
	KindNoContent
	// KindCreated points the response directly at the payload component.
	// Default 201.
	KindCreated
	// KindAccepted is shaped like KindCreated. Default 202.
	KindAccepted
)

// String returns the manifest name of the kind.
func (k WrapperKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindNoContent:
		return "noContent"
	case KindCreated:
		return "created"
	case KindAccepted:
		return "accepted"
	}
	return "unknown"
}

// DefaultStatus returns the status code used when none is set explicitly.
func (k WrapperKind) DefaultStatus() int {
	switch k {
	case KindNoContent:
		return http.StatusNoContent
	case KindCreated:
		return http.StatusCreated
	case KindAccepted:
		return http.StatusAccepted
	}
	return http.StatusOK
}

// ContentLess reports whether the kind never carries a body.
func (k WrapperKind) ContentLess() bool {
	return k == KindNoContent
}

// RefOnly reports whether the response is written as a bare $ref to the
// payload component instead of a content map.
func (k WrapperKind) RefOnly() bool {
	return k == KindCreated || k == KindAccepted
}

// Wrapper is an untyped ResponseKind, used by front ends that do not know
// payload types at compile time.
type Wrapper struct {
	kind        WrapperKind
	status      int
	payload     SchemaSource
	contentType string
}

// Wrap returns a Wrapper of the given kind around payload. payload may be nil.
func Wrap(kind WrapperKind, payload SchemaSource) Wrapper {
	return Wrapper{kind: kind, payload: payload}
}

// Status overrides the default status code of the wrapper.
func (w Wrapper) Status(code int) Wrapper {
	w.status = code
	return w
}

// ContentType overrides the body content type of the wrapper.
func (w Wrapper) ContentType(contentType string) Wrapper {
	w.contentType = contentType
	return w
}

// ResponseShape implements ResponseKind.
func (w Wrapper) ResponseShape() ResponseShape {
	status := w.status
	if status == 0 {
		status = w.kind.DefaultStatus()
	}
	shape := ResponseShape{
		Kind:        w.kind,
		Status:      status,
		NoContent:   w.kind.ContentLess(),
		ContentType: w.contentType,
	}
	if !shape.NoContent {
		shape.Payload = w.payload
	}
	return shape
}

// JSON is the plain success wrapper around T.
type JSON[T any] struct{}

// ResponseShape implements ResponseKind.
func (JSON[T]) ResponseShape() ResponseShape {
	return Wrap(KindPlain, SchemaOf[T]()).ResponseShape()
}

// Created is the 201 success wrapper around T.
type Created[T any] struct{}

// ResponseShape implements ResponseKind.
func (Created[T]) ResponseShape() ResponseShape {
	return Wrap(KindCreated, SchemaOf[T]()).ResponseShape()
}

// Accepted is the 202 success wrapper around T.
type Accepted[T any] struct{}

// ResponseShape implements ResponseKind.
func (Accepted[T]) ResponseShape() ResponseShape {
	return Wrap(KindAccepted, SchemaOf[T]()).ResponseShape()
}

// NoContent is the 204 success marker.
type NoContent struct{}

// ResponseShape implements ResponseKind.
func (NoContent) ResponseShape() ResponseShape {
	return Wrap(KindNoContent, nil).ResponseShape()
}
