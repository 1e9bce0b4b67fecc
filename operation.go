package apidesc

import (
	"slices"

	"golang.org/x/text/language"

	"github.com/broady/apidesc/i18n"
)

// Operation holds the fields shared by every operation variant.
// Variants embed it, so its accessors are available on Create, Read, etc.
type Operation struct {
	description       i18n.Text
	parameters        []*Parameter
	errors            []*Error
	supportedLocales  []string
	supportedContexts []string
	stability         Stability
}

// Operator is implemented by the operation variants: *Create, *Read,
// *Update, *Delete, *Patch, *Action and *Query.
type Operator interface {
	// Kind returns the operation variant.
	Kind() OperationKind

	// Common returns the fields shared by all variants.
	Common() *Operation
}

// Description returns the (possibly keyed) description.
func (o *Operation) Description() i18n.Text {
	return o.description
}

// Parameters returns the declared parameters in insertion order.
func (o *Operation) Parameters() []*Parameter {
	return slices.Clone(o.parameters)
}

// Errors returns the declared errors in insertion order. Each is either
// inline or a reference into APIDescription.Errors.
func (o *Operation) Errors() []*Error {
	return slices.Clone(o.errors)
}

// SupportedLocales returns the locale tags the operation supports.
func (o *Operation) SupportedLocales() []string {
	return slices.Clone(o.supportedLocales)
}

// SupportedContexts returns the request-context capabilities the operation
// supports, e.g. "security".
func (o *Operation) SupportedContexts() []string {
	return slices.Clone(o.supportedContexts)
}

// Stability returns the declared stability. Default is STABLE.
func (o *Operation) Stability() Stability {
	return o.stability
}

// Common implements Operator.
func (o *Operation) Common() *Operation {
	return o
}

// equal compares common fields. Set-valued fields ignore order.
func (o *Operation) equal(other *Operation) bool {
	return o.description == other.description &&
		o.stability == other.stability &&
		sameSet(o.supportedLocales, other.supportedLocales) &&
		sameSet(o.supportedContexts, other.supportedContexts) &&
		sameElements(o.parameters, other.parameters, (*Parameter).Equal) &&
		sameElements(o.errors, other.errors, (*Error).Equal)
}

// OperationBuilder collects the common fields of an operation. It is embedded
// in each variant builder; B is the variant builder type so that chained calls
// keep their concrete type.
type OperationBuilder[B any] struct {
	self        B
	description string
	parameters  []*Parameter
	errors      []*Error
	locales     []string
	contexts    []string
	stability   Stability
}

// Description sets the description. It may be a translation key.
func (b *OperationBuilder[B]) Description(d string) B {
	b.description = d
	return b.self
}

// Parameter adds a parameter.
func (b *OperationBuilder[B]) Parameter(p *Parameter) B {
	b.parameters = append(b.parameters, p)
	return b.self
}

// Parameters adds parameters.
func (b *OperationBuilder[B]) Parameters(ps ...*Parameter) B {
	b.parameters = append(b.parameters, ps...)
	return b.self
}

// Error adds a declared error.
func (b *OperationBuilder[B]) Error(e *Error) B {
	b.errors = append(b.errors, e)
	return b.self
}

// Errors adds declared errors.
func (b *OperationBuilder[B]) Errors(es ...*Error) B {
	b.errors = append(b.errors, es...)
	return b.self
}

// SupportedLocale adds a supported locale tag such as "en-GB".
func (b *OperationBuilder[B]) SupportedLocale(tag string) B {
	b.locales = append(b.locales, tag)
	return b.self
}

// SupportedLocales adds supported locale tags.
func (b *OperationBuilder[B]) SupportedLocales(tags ...string) B {
	b.locales = append(b.locales, tags...)
	return b.self
}

// SupportedContext adds a supported request-context capability name.
func (b *OperationBuilder[B]) SupportedContext(name string) B {
	b.contexts = append(b.contexts, name)
	return b.self
}

// SupportedContexts adds supported request-context capability names.
func (b *OperationBuilder[B]) SupportedContexts(names ...string) B {
	b.contexts = append(b.contexts, names...)
	return b.self
}

// Stability sets the stability level.
func (b *OperationBuilder[B]) Stability(s Stability) B {
	b.stability = s
	return b.self
}

// buildOperation validates and freezes the common fields.
func (b *OperationBuilder[B]) buildOperation(object string) (Operation, error) {
	fields := struct {
		Stability Stability `validate:"omitempty,oneof=STABLE EVOLVING INTERNAL DEPRECATED REMOVED"`
		Contexts  []string  `validate:"dive,required"`
	}{b.stability, b.contexts}
	if err := check(object, fields); err != nil {
		return Operation{}, err
	}

	for _, p := range b.parameters {
		if p == nil {
			return Operation{}, invalid(object, "nil parameter")
		}
	}
	for _, e := range b.errors {
		if e == nil {
			return Operation{}, invalid(object, "nil error")
		}
	}
	for _, tag := range b.locales {
		if _, err := language.Parse(tag); err != nil {
			return Operation{}, &ValidationError{
				Object:  object,
				Message: "invalid locale " + tag,
				Fields:  map[string]string{"SupportedLocales": "invalid locale " + tag},
			}
		}
	}

	stability := b.stability
	if stability == "" {
		stability = StabilityStable
	}
	return Operation{
		description:       i18n.Wrap(b.description),
		parameters:        slices.Clone(b.parameters),
		errors:            slices.Clone(b.errors),
		supportedLocales:  slices.Clone(b.locales),
		supportedContexts: slices.Clone(b.contexts),
		stability:         stability,
	}, nil
}

// sameSet reports whether a and b hold the same strings, ignoring order.
func sameSet[T ~string](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// sameOrder reports whether a and b hold the same strings in the same order.
func sameOrder[T ~string](a, b []T) bool {
	return slices.Equal(a, b)
}

// sameElements reports whether a and b hold pairwise-equal elements,
// ignoring order.
func sameElements[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && eq(x, y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}
