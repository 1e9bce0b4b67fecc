package apidesc

import (
	"testing"
)

// must fails the test if err is non-nil and returns v otherwise.
func must[T any](v T, err error) func(t *testing.T) T {
	return func(t *testing.T) T {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return v
	}
}

func userSchema(t *testing.T) *Schema {
	t.Helper()
	return must(NewSchema().Schema(map[string]any{
		"type":        "object",
		"description": "i18n:api#user",
		"properties": map[string]any{
			"id":   map[string]any{"type": "string"},
			"name": map[string]any{"type": "string", "title": "Name"},
		},
	}).Build())(t)
}

func notFound(t *testing.T) *Error {
	t.Helper()
	return must(NewError().Code(404).Description("i18n:api#not_found").Build())(t)
}

func newDescription(t *testing.T) *APIDescription {
	t.Helper()
	return must(NewAPIDescription().ID("frapi:test").Version("1.0").Build())(t)
}
