package openapi

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Test struct {
	Test string `json:"test"`
}

type APIKey struct{}

func (APIKey) SecurityScheme() (string, *SecurityScheme) {
	return "ApiKey", &SecurityScheme{
		Type: "oauth2",
		Flows: &OAuthFlows{
			Implicit: &OAuthFlow{
				AuthorizationURL: "https://authorize.com",
				RefreshURL:       "https://refresh.com",
				Scopes: map[string]string{
					"all:read":  "Read all the things",
					"all:write": "Write all the things",
				},
			},
		},
	}
}

var (
	invalidInput   = Errors(ErrorStatus{Code: 405, Description: "Invalid input"})
	multipleErrors = Errors(
		ErrorStatus{Code: 401},
		ErrorStatus{Code: 403},
		ErrorStatus{Code: 404},
		ErrorStatus{Code: 405},
	)
)

const testComponents = `[{"schemas":{"Test":{"properties":{"test":{"type":"string"}},"required":["test"],"title":"Test","type":"object"}}}]`

func petOperation(name string) *OperationBuilder {
	return NewOperation(name).
		Doc("Add a new pet to the store", "Add a new pet to the store", "Plop").
		Body(SchemaOf[Test]())
}

func synthesizeJSON(t *testing.T, b *OperationBuilder) (string, string) {
	t.Helper()
	op, reg, err := b.Synthesize()
	require.NoError(t, err)

	opJSON, err := json.Marshal(op)
	require.NoError(t, err)
	compJSON, err := json.Marshal(reg.Components())
	require.NoError(t, err)
	return string(opJSON), string(compJSON)
}

func TestOperationFixtures(t *testing.T) {
	const requestBody = `"requestBody":{"content":{"application/json":{"schema":{"$ref":"#/components/schemas/Test"}}},"required":true}`
	const docFields = `"description":"Add a new pet to the store\\\nPlop","summary":"Add a new pet to the store"`

	t.Run("plain", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Returns(JSON[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Test"}}}, "description": ""},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("no content", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Returns(NoContent{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"204": {"description": ""},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("created", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Returns(Created[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"201": {"$ref": "#/components/schemas/Test"},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("accepted", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Returns(Accepted[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"202": {"$ref": "#/components/schemas/Test"},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("deprecated by configuration", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Deprecated().Returns(Created[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": true,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"201": {"$ref": "#/components/schemas/Test"},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("deprecated handler", func(t *testing.T) {
		b := petOperation("test2").Tags("pet").HandlerDeprecated().Returns(Created[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": true,
			"operationId": "test2",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"201": {"$ref": "#/components/schemas/Test"},
				"405": {"description": "Invalid input"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("skip", func(t *testing.T) {
		b := petOperation("test").Tags("pet").Skip().Returns(Created[Test]{}).Errors(invalidInput)
		op, comps := synthesizeJSON(t, b)

		assert.Equal(t, `[]`, comps)
		assert.JSONEq(t, `{"responses": {}}`, op)
	})

	t.Run("error code overrides", func(t *testing.T) {
		b := petOperation("test").Tags("pet").ErrorCodes("404", "401").Returns(Created[Test]{}).Errors(multipleErrors)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, testComponents, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"201": {"$ref": "#/components/schemas/Test"},
				"401": {"description": "Unauthorized"},
				"404": {"description": "Not Found"}
			},
			"tags": ["pet"]
		}`, op)
	})

	t.Run("security", func(t *testing.T) {
		b := petOperation("test").
			Param(Param{Name: "key", In: InHeader, Source: APIKey{}}).
			SecurityScope("api_key", "read:pets").
			Returns(Created[Test]{}).
			Errors(multipleErrors)
		op, comps := synthesizeJSON(t, b)

		assert.JSONEq(t, `[{
			"schemas": {"Test": {"properties": {"test": {"type": "string"}}, "required": ["test"], "title": "Test", "type": "object"}},
			"securitySchemes": {
				"api_key": {
					"flows": {
						"implicit": {
							"authorizationUrl": "https://authorize.com",
							"refreshUrl": "https://refresh.com",
							"scopes": {"all:read": "Read all the things", "all:write": "Write all the things"}
						}
					},
					"type": "oauth2"
				}
			}
		}]`, comps)
		assert.JSONEq(t, `{
			"deprecated": false,
			"operationId": "test",
			`+docFields+`,
			`+requestBody+`,
			"responses": {
				"201": {"$ref": "#/components/schemas/Test"},
				"401": {"description": "Unauthorized"},
				"403": {"description": "Forbidden"},
				"404": {"description": "Not Found"},
				"405": {"description": "Method Not Allowed"}
			},
			"security": [{"api_key": ["read:pets"]}]
		}`, op)
	})
}

func TestOperationResponses(t *testing.T) {
	t.Run("ascending status order", func(t *testing.T) {
		b := NewOperation("op").
			Returns(Created[Test]{}).
			Errors(Errors(
				ErrorStatus{Code: 500},
				ErrorStatus{Code: 404},
				ErrorStatus{Code: 400},
			))
		op, _, err := b.Synthesize()
		require.NoError(t, err)

		data, err := json.Marshal(op.Responses)
		require.NoError(t, err)
		s := string(data)
		assert.Less(t, strings.Index(s, `"201"`), strings.Index(s, `"400"`))
		assert.Less(t, strings.Index(s, `"400"`), strings.Index(s, `"404"`))
		assert.Less(t, strings.Index(s, `"404"`), strings.Index(s, `"500"`))
	})

	t.Run("success wins over an error with the same status", func(t *testing.T) {
		b := NewOperation("op").
			Returns(Wrap(KindPlain, SchemaOf[Test]()).Status(409)).
			Errors(Errors(ErrorStatus{Code: 409, Description: "Conflict"}))
		op, _, err := b.Synthesize()
		require.NoError(t, err)

		require.Contains(t, op.Responses, 409)
		assert.Empty(t, op.Responses[409].Description)
		assert.Contains(t, op.Responses[409].Content, "application/json")
	})

	t.Run("no success wrapper", func(t *testing.T) {
		op, _, err := NewOperation("op").Errors(invalidInput).Synthesize()
		require.NoError(t, err)
		assert.Equal(t, []int{405}, op.Responses.Codes())
	})

	t.Run("empty responses are an empty object", func(t *testing.T) {
		op, _, err := NewOperation("op").Synthesize()
		require.NoError(t, err)

		data, err := json.Marshal(op)
		require.NoError(t, err)
		assert.JSONEq(t, `{"operationId":"op","responses":{},"deprecated":false}`, string(data))
	})

	t.Run("unnamed payload is inline", func(t *testing.T) {
		op, reg, err := NewOperation("op").Returns(Created[[]string]{}).Synthesize()
		require.NoError(t, err)

		resp := op.Responses[201]
		require.NotNil(t, resp)
		assert.Empty(t, resp.Ref)
		require.Contains(t, resp.Content, "application/json")
		assert.Equal(t, TypeString("array"), resp.Content["application/json"].Schema.Type)
		assert.Zero(t, reg.Len())
	})

	t.Run("custom content type", func(t *testing.T) {
		op, _, err := NewOperation("op").
			Returns(Wrap(KindPlain, SchemaOf[Test]()).ContentType("application/xml")).
			Synthesize()
		require.NoError(t, err)
		assert.Contains(t, op.Responses[200].Content, "application/xml")
	})

	t.Run("wrapper without payload", func(t *testing.T) {
		op, _, err := NewOperation("op").Returns(Wrap(KindCreated, nil)).Synthesize()
		require.NoError(t, err)

		data, err := json.Marshal(op.Responses)
		require.NoError(t, err)
		assert.JSONEq(t, `{"201":{"description":""}}`, string(data))
	})

	t.Run("invalid success status", func(t *testing.T) {
		_, _, err := NewOperation("op").Returns(Wrap(KindPlain, nil).Status(99)).Synthesize()
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("invalid error status", func(t *testing.T) {
		_, _, err := NewOperation("op").Errors(Errors(ErrorStatus{Code: 700, Description: "x"})).Synthesize()
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("invalid override", func(t *testing.T) {
		_, _, err := NewOperation("op").Errors(multipleErrors).ErrorCodes("four-oh-four").Synthesize()
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing description", func(t *testing.T) {
		_, _, err := NewOperation("op").Errors(Errors(ErrorStatus{Code: 302})).Synthesize()
		assert.ErrorIs(t, err, ErrMissingDescription)
		assert.Contains(t, err.Error(), `"op"`)
	})
}

func TestOperationParams(t *testing.T) {
	t.Run("multiple bodies", func(t *testing.T) {
		_, _, err := NewOperation("op").
			Body(SchemaOf[Test]()).
			Body(SchemaOf[SimpleStruct]()).
			Synthesize()
		assert.ErrorIs(t, err, ErrMultipleRequestBodies)
	})

	t.Run("non-body params register components only", func(t *testing.T) {
		op, reg, err := NewOperation("op").
			Param(Param{Name: "filter", In: InQuery, Source: SchemaOf[SimpleStruct]()}).
			Synthesize()
		require.NoError(t, err)
		assert.Nil(t, op.RequestBody)
		assert.Equal(t, []string{"SimpleStruct"}, reg.Names())
	})

	t.Run("params without capabilities are ignored", func(t *testing.T) {
		op, reg, err := NewOperation("op").
			Param(Param{Name: "ctx", Source: struct{}{}}).
			Param(Param{Name: "nil"}).
			Synthesize()
		require.NoError(t, err)
		assert.Nil(t, op.RequestBody)
		assert.Zero(t, reg.Len())
	})

	t.Run("body content type", func(t *testing.T) {
		op, _, err := NewOperation("op").
			Param(Param{Name: "body", In: InBody, Source: SchemaOf[Test](), ContentType: "application/x-www-form-urlencoded"}).
			Synthesize()
		require.NoError(t, err)
		require.NotNil(t, op.RequestBody)
		assert.Contains(t, op.RequestBody.Content, "application/x-www-form-urlencoded")
	})

	t.Run("unnamed body is inline", func(t *testing.T) {
		op, reg, err := NewOperation("op").Body(SchemaOf[map[string]string]()).Synthesize()
		require.NoError(t, err)
		require.NotNil(t, op.RequestBody)
		assert.Equal(t, TypeString("object"), op.RequestBody.Content["application/json"].Schema.Type)
		assert.Zero(t, reg.Len())
	})

	t.Run("body registered before response", func(t *testing.T) {
		_, reg, err := NewOperation("op").
			Body(SchemaOf[SimpleStruct]()).
			Returns(JSON[Test]{}).
			Synthesize()
		require.NoError(t, err)
		assert.Equal(t, []string{"SimpleStruct", "Test"}, reg.Names())
	})

	t.Run("conflicting schemas within one operation", func(t *testing.T) {
		_, _, err := NewOperation("op").
			Body(NamedSchema{Name: "Test", Schema: objectSchema("a")}).
			Returns(JSON[Test]{}).
			Synthesize()
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "op", conflict.Existing)
		assert.Equal(t, "op", conflict.Incoming)
	})
}

func TestOperationBuild(t *testing.T) {
	t.Run("shares components", func(t *testing.T) {
		reg := NewRegistry()
		_, err := petOperation("addPet").Returns(Created[Test]{}).Build(reg)
		require.NoError(t, err)
		_, err = petOperation("updatePet").Returns(JSON[Test]{}).Build(reg)
		require.NoError(t, err)
		assert.Equal(t, []string{"Test"}, reg.Names())
	})

	t.Run("conflict names both operations", func(t *testing.T) {
		reg := NewRegistry()
		_, err := NewOperation("addPet").Body(NamedSchema{Name: "Pet", Schema: objectSchema("name")}).Build(reg)
		require.NoError(t, err)

		_, err = NewOperation("getPet").Returns(Wrap(KindPlain, NamedSchema{Name: "Pet", Schema: objectSchema("id")})).Build(reg)
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "addPet", conflict.Existing)
		assert.Equal(t, "getPet", conflict.Incoming)
	})

	t.Run("failed build leaves the registry unchanged", func(t *testing.T) {
		reg := NewRegistry()
		_, err := NewOperation("bad").
			Body(SchemaOf[Test]()).
			Errors(Errors(ErrorStatus{Code: 302})).
			Build(reg)
		require.Error(t, err)
		assert.Zero(t, reg.Len())
	})

	t.Run("failed merge leaves the registry unchanged", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(Component{Name: "Test", Schema: objectSchema("other")}))

		_, err := NewOperation("op").
			Body(SchemaOf[SimpleStruct]()).
			Returns(JSON[Test]{}).
			Build(reg)
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, []string{"Test"}, reg.Names())
	})

	t.Run("skipped operation registers nothing", func(t *testing.T) {
		reg := NewRegistry()
		op, err := petOperation("op").Skip().Build(reg)
		require.NoError(t, err)
		assert.True(t, op.Skipped)
		assert.Zero(t, reg.Len())
	})
}

func TestOperationBuilderConfig(t *testing.T) {
	t.Run("config is a copy", func(t *testing.T) {
		b := NewOperation("op").Tags("a")
		cfg := b.Config()
		cfg.Tags[0] = "changed"
		assert.Equal(t, []string{"a"}, b.Config().Tags)
	})

	t.Run("configure replaces", func(t *testing.T) {
		b := NewOperation("op").Tags("a").Configure(Config{Tags: []string{"b"}, Deprecated: true})
		op, _, err := b.Synthesize()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, op.Tags)
		assert.True(t, op.Deprecated)
	})

	t.Run("tags are chained", func(t *testing.T) {
		op, _, err := NewOperation("op").Tags("users").Tags("admin").Synthesize()
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "admin"}, op.Tags)
	})

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "listPets", NewOperation("listPets").Name())
	})

	t.Run("description policy", func(t *testing.T) {
		op, _, err := NewOperation("op").
			Doc("List pets", "All of them").
			DescriptionPolicy(DescriptionFoldRepeated).
			Synthesize()
		require.NoError(t, err)
		assert.Equal(t, "List pets", op.Summary)
		assert.Equal(t, "List pets\\\nAll of them", op.Description)
	})
}
