package jsonfield

import (
	"reflect"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag        string
		wantName   string
		wantString bool
		wantSkip   bool
	}{
		{"", "Field", false, false},
		{"name", "name", false, false},
		{"name,omitempty", "name", false, false},
		{",omitempty", "Field", false, false},
		{"count,string", "count", true, false},
		{"-", "", false, true},
		{"-,", "-", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			name, str, skip := ParseTag(tt.tag, "Field")
			if name != tt.wantName || str != tt.wantString || skip != tt.wantSkip {
				t.Errorf("ParseTag(%q) = %q, %v, %v; want %q, %v, %v",
					tt.tag, name, str, skip, tt.wantName, tt.wantString, tt.wantSkip)
			}
		})
	}
}

func TestHasRule(t *testing.T) {
	if !HasRule("required,min=1", "required") {
		t.Error("expected required rule")
	}
	if HasRule("required_if=Kind a", "required") {
		t.Error("required_if is not required")
	}
	if HasRule("", "required") {
		t.Error("empty tag has no rules")
	}
}

func TestResolve(t *testing.T) {
	outer := map[string]any{"description": "outer"}
	inner := map[string]any{"description": "inner"}
	tagged := map[string]any{"description": "tagged"}

	tests := []struct {
		name         string
		fields       []Field
		wantProps    map[string]any
		wantRequired []string
	}{
		{
			name: "shallower field wins regardless of order",
			fields: []Field{
				{Name: "name", Depth: 1, Schema: inner, Required: true},
				{Name: "name", Depth: 0, Schema: outer},
			},
			wantProps: map[string]any{"name": outer},
		},
		{
			name: "tagged field wins at equal depth",
			fields: []Field{
				{Name: "name", Depth: 1, Schema: inner},
				{Name: "name", Depth: 1, Tagged: true, Schema: tagged},
			},
			wantProps: map[string]any{"name": tagged},
		},
		{
			name: "ambiguous name is dropped",
			fields: []Field{
				{Name: "name", Depth: 1, Schema: inner},
				{Name: "name", Depth: 1, Schema: outer},
				{Name: "id", Depth: 0, Schema: outer, Required: true},
			},
			wantProps:    map[string]any{"id": outer},
			wantRequired: []string{"id"},
		},
		{
			name: "required sorted",
			fields: []Field{
				{Name: "b", Schema: outer, Required: true},
				{Name: "a", Schema: outer, Required: true},
			},
			wantProps:    map[string]any{"a": outer, "b": outer},
			wantRequired: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, required := Resolve(tt.fields)
			if !reflect.DeepEqual(props, tt.wantProps) {
				t.Errorf("properties = %v, want %v", props, tt.wantProps)
			}
			if len(required) != len(tt.wantRequired) || (len(required) > 0 && !reflect.DeepEqual(required, tt.wantRequired)) {
				t.Errorf("required = %v, want %v", required, tt.wantRequired)
			}
		})
	}
}
