// Package i18n implements translatable text for API descriptors.
//
// A Text stores the raw string it was constructed with. Raw strings that start
// with [KeyPrefix] are translation keys:
//
//	i18n:api-dictionary#description_test   key "description_test" in bundle "api-dictionary"
//	i18n:description_test                  key "description_test" in the default bundle
//
// Keys are resolved against a [Dictionary] only when a descriptor is
// serialized, for the locale chosen by the caller. Any other string is a
// literal and resolves to itself.
package i18n

import "strings"

// KeyPrefix marks a raw string as a translation key.
const KeyPrefix = "i18n:"

// DefaultBundle is the bundle used by keys without an explicit "bundle#" part.
const DefaultBundle = "default"

// Text is a human-readable string that may be a translation key.
// The zero value is the empty literal.
type Text struct {
	raw string
}

// Wrap stores raw unchanged.
func Wrap(raw string) Text {
	return Text{raw: raw}
}

// Raw returns the string Text was constructed with.
func (t Text) Raw() string {
	return t.raw
}

// IsZero reports whether the text is empty.
func (t Text) IsZero() bool {
	return t.raw == ""
}

// IsKeyed reports whether the text is a translation key.
func (t Text) IsKeyed() bool {
	return strings.HasPrefix(t.raw, KeyPrefix)
}

// Key splits a keyed text into its bundle and key.
// ok is false for literals.
func (t Text) Key() (bundle, key string, ok bool) {
	if !t.IsKeyed() {
		return "", "", false
	}
	rest := strings.TrimPrefix(t.raw, KeyPrefix)
	if b, k, found := strings.Cut(rest, "#"); found && b != "" {
		return b, k, true
	}
	return DefaultBundle, rest, true
}

// Fallback is the value used when a key has no translation: the raw string
// with the prefix removed. Literals fall back to themselves.
func (t Text) Fallback() string {
	return strings.TrimPrefix(t.raw, KeyPrefix)
}

// String returns the raw value.
func (t Text) String() string {
	return t.raw
}
