package apidesc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefinitionsPrefix prefixes references into APIDescription.Definitions.
	DefinitionsPrefix = "#/definitions/"

	// ErrorsPrefix prefixes references into APIDescription.Errors.
	ErrorsPrefix = "#/errors/"
)

// Reference is a symbolic pointer into a table owned by an APIDescription.
// It is a lookup key; resolve it with APIDescription.ResolveSchema or
// APIDescription.ResolveError.
type Reference struct {
	value string
}

// Ref returns a reference with the given value, e.g. "#/definitions/user".
func Ref(value string) Reference {
	return Reference{value: value}
}

// DefinitionRef returns a reference to the named schema definition.
func DefinitionRef(name string) Reference {
	return Reference{value: DefinitionsPrefix + name}
}

// ErrorRef returns a reference to the named error.
func ErrorRef(name string) Reference {
	return Reference{value: ErrorsPrefix + name}
}

// Value returns the reference string.
func (r Reference) Value() string {
	return r.value
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r.value == ""
}

// Name returns the table entry name for references created by DefinitionRef
// or ErrorRef, or the full value otherwise.
func (r Reference) Name() string {
	switch {
	case strings.HasPrefix(r.value, DefinitionsPrefix):
		return strings.TrimPrefix(r.value, DefinitionsPrefix)
	case strings.HasPrefix(r.value, ErrorsPrefix):
		return strings.TrimPrefix(r.value, ErrorsPrefix)
	default:
		return r.value
	}
}

func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ref string `json:"$ref"`
	}{r.value})
}

// Schema is either an inline JSON-schema-like value or a Reference to a
// shared definition.
type Schema struct {
	ref       Reference
	value     map[string]any
	canonical []byte
}

// SchemaBuilder assembles a Schema.
type SchemaBuilder struct {
	ref   Reference
	value map[string]any
	raw   []byte
}

// NewSchema starts a Schema.
func NewSchema() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Schema sets the inline value.
func (b *SchemaBuilder) Schema(v map[string]any) *SchemaBuilder {
	b.value = v
	b.raw = nil
	return b
}

// JSON sets the inline value from a JSON object.
func (b *SchemaBuilder) JSON(raw []byte) *SchemaBuilder {
	b.raw = raw
	b.value = nil
	return b
}

// Reference makes the schema a reference instead of an inline value.
func (b *SchemaBuilder) Reference(r Reference) *SchemaBuilder {
	b.ref = r
	return b
}

// Build validates and returns the Schema. Exactly one of an inline value or a
// reference must be set.
func (b *SchemaBuilder) Build() (*Schema, error) {
	hasValue := b.value != nil || b.raw != nil
	switch {
	case hasValue && !b.ref.IsZero():
		return nil, invalid("Schema", "schema and reference are mutually exclusive")
	case !b.ref.IsZero():
		return &Schema{ref: b.ref}, nil
	case !hasValue:
		return nil, invalid("Schema", "schema or reference is required")
	}

	raw := b.raw
	if raw == nil {
		var err error
		if raw, err = json.Marshal(b.value); err != nil {
			return nil, invalid("Schema", "schema is not JSON-encodable: %v", err)
		}
	}
	return inlineSchema(raw)
}

// inlineSchema decodes raw into an owned copy and records its canonical form.
func inlineSchema(raw []byte) (*Schema, error) {
	var value map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, invalid("Schema", "schema must be a JSON object: %v", err)
	}
	if value == nil {
		return nil, invalid("Schema", "schema must be a JSON object")
	}
	canonical, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return &Schema{value: value, canonical: canonical}, nil
}

// SchemaRef returns a schema that refers to a shared definition.
func SchemaRef(r Reference) *Schema {
	return &Schema{ref: r}
}

// IsReference reports whether the schema is a reference.
func (s *Schema) IsReference() bool {
	return !s.ref.IsZero()
}

// Reference returns the reference, or the zero Reference for inline schemas.
func (s *Schema) Reference() Reference {
	return s.ref
}

// Value returns a copy of the inline value, or nil for references.
func (s *Schema) Value() map[string]any {
	if s.IsReference() {
		return nil
	}
	var v map[string]any
	dec := json.NewDecoder(bytes.NewReader(s.canonical))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Equal reports structural equality: equal references, or inline values with
// identical canonical JSON encodings.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.IsReference() || other.IsReference() {
		return s.ref == other.ref
	}
	return bytes.Equal(s.canonical, other.canonical)
}
