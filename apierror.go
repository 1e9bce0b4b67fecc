package apidesc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/broady/apidesc/i18n"
)

// Error declares an error an operation may return. Like Schema it is either
// inline or a Reference into APIDescription.Errors.
type Error struct {
	ref         Reference
	code        int
	description i18n.Text
	schema      *Schema
}

// ErrorBuilder assembles an Error.
type ErrorBuilder struct {
	ref         Reference
	code        int
	description string
	schema      *Schema
}

// NewError starts an Error.
func NewError() *ErrorBuilder {
	return &ErrorBuilder{}
}

// Code sets the error code, usually an HTTP status.
func (b *ErrorBuilder) Code(code int) *ErrorBuilder {
	b.code = code
	return b
}

// Description sets the description. It may be a translation key.
func (b *ErrorBuilder) Description(d string) *ErrorBuilder {
	b.description = d
	return b
}

// Schema sets the schema of the error's detail payload.
func (b *ErrorBuilder) Schema(s *Schema) *ErrorBuilder {
	b.schema = s
	return b
}

// Reference makes the error a reference instead of an inline value.
func (b *ErrorBuilder) Reference(r Reference) *ErrorBuilder {
	b.ref = r
	return b
}

// Build validates and returns the Error. Inline errors require a non-zero
// code and a description.
func (b *ErrorBuilder) Build() (*Error, error) {
	if !b.ref.IsZero() {
		if b.code != 0 || b.description != "" || b.schema != nil {
			return nil, invalid("Error", "reference and inline fields are mutually exclusive")
		}
		return &Error{ref: b.ref}, nil
	}

	fields := struct {
		Code        int    `validate:"required"`
		Description string `validate:"required"`
	}{b.code, b.description}
	if err := check("Error", fields); err != nil {
		return nil, err
	}

	return &Error{
		code:        b.code,
		description: i18n.Wrap(b.description),
		schema:      b.schema,
	}, nil
}

// ErrorReference returns an error that refers to a shared declaration.
func ErrorReference(r Reference) *Error {
	return &Error{ref: r}
}

// IsReference reports whether the error is a reference.
func (e *Error) IsReference() bool {
	return !e.ref.IsZero()
}

// Reference returns the reference, or the zero Reference for inline errors.
func (e *Error) Reference() Reference {
	return e.ref
}

// Code returns the error code.
func (e *Error) Code() int {
	return e.code
}

// Description returns the (possibly keyed) description.
func (e *Error) Description() i18n.Text {
	return e.description
}

// Schema returns the detail schema, or nil.
func (e *Error) Schema() *Schema {
	return e.schema
}

// Equal reports structural equality.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.IsReference() || other.IsReference() {
		return e.ref == other.ref
	}
	return bytes.Equal(e.canonical(), other.canonical())
}

// canonical encodes the untranslated content of an inline error.
func (e *Error) canonical() []byte {
	var schema json.RawMessage
	if e.schema != nil {
		if e.schema.IsReference() {
			schema, _ = json.Marshal(e.schema.ref)
		} else {
			schema = e.schema.canonical
		}
	}
	b, err := json.Marshal(struct {
		Code        int             `json:"code"`
		Description string          `json:"description"`
		Schema      json.RawMessage `json:"schema,omitempty"`
	}{e.code, e.description.Raw(), schema})
	if err != nil {
		panic(fmt.Sprintf("apidesc: encode error: %v", err))
	}
	return b
}

// Parameter declares an operation parameter.
type Parameter struct {
	name         string
	typ          string
	description  i18n.Text
	defaultValue string
	enumValues   []string
	source       ParameterSource
	required     bool
}

// ParameterBuilder assembles a Parameter.
type ParameterBuilder struct {
	name         string
	typ          string
	description  string
	defaultValue string
	enumValues   []string
	source       ParameterSource
	required     bool
}

// NewParameter starts a Parameter with the given name and type, e.g. "string".
func NewParameter(name, typ string) *ParameterBuilder {
	return &ParameterBuilder{name: name, typ: typ}
}

// Description sets the description. It may be a translation key.
func (b *ParameterBuilder) Description(d string) *ParameterBuilder {
	b.description = d
	return b
}

// DefaultValue sets the value used when the parameter is omitted.
func (b *ParameterBuilder) DefaultValue(v string) *ParameterBuilder {
	b.defaultValue = v
	return b
}

// EnumValues restricts the parameter to the given values.
func (b *ParameterBuilder) EnumValues(values ...string) *ParameterBuilder {
	b.enumValues = append(b.enumValues, values...)
	return b
}

// Source sets where the parameter is read from. Default is ADDITIONAL.
func (b *ParameterBuilder) Source(s ParameterSource) *ParameterBuilder {
	b.source = s
	return b
}

// Required marks the parameter as mandatory.
func (b *ParameterBuilder) Required(required bool) *ParameterBuilder {
	b.required = required
	return b
}

// Build validates and returns the Parameter.
func (b *ParameterBuilder) Build() (*Parameter, error) {
	fields := struct {
		Name   string          `validate:"required"`
		Type   string          `validate:"required"`
		Source ParameterSource `validate:"omitempty,oneof=PATH ADDITIONAL"`
	}{b.name, b.typ, b.source}
	if err := check("Parameter", fields); err != nil {
		return nil, err
	}

	source := b.source
	if source == "" {
		source = ParameterSourceAdditional
	}
	return &Parameter{
		name:         b.name,
		typ:          b.typ,
		description:  i18n.Wrap(b.description),
		defaultValue: b.defaultValue,
		enumValues:   append([]string(nil), b.enumValues...),
		source:       source,
		required:     b.required,
	}, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Type returns the parameter's declared type, e.g. "string".
func (p *Parameter) Type() string {
	return p.typ
}

func (p *Parameter) Description() i18n.Text {
	return p.description
}

func (p *Parameter) DefaultValue() string {
	return p.defaultValue
}

func (p *Parameter) EnumValues() []string {
	return append([]string(nil), p.enumValues...)
}

func (p *Parameter) Source() ParameterSource {
	return p.source
}

func (p *Parameter) Required() bool {
	return p.required
}

// Equal reports whether two parameters declare the same thing.
func (p *Parameter) Equal(other *Parameter) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.name == other.name &&
		p.typ == other.typ &&
		p.description == other.description &&
		p.defaultValue == other.defaultValue &&
		sameOrder(p.enumValues, other.enumValues) &&
		p.source == other.source &&
		p.required == other.required
}
