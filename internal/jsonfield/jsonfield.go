// Package jsonfield holds the struct-tag and field-visibility rules shared by
// the reflect and go/types schema builders.
package jsonfield

import (
	"slices"
	"strings"
)

// ParseTag returns the JSON name for a field and whether it is encoded as a
// string or skipped.
func ParseTag(tag, fieldName string) (name string, stringEncoded, skip bool) {
	if tag == "" {
		return fieldName, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	name = parts[0]
	if name == "" {
		name = fieldName
	}
	for _, opt := range parts[1:] {
		if opt == "string" {
			stringEncoded = true
		}
	}
	return name, stringEncoded, false
}

// HasRule reports whether a validate tag contains rule at the top level.
func HasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}

// Field is a candidate property found while walking a struct and its
// embedded structs.
type Field struct {
	Name     string
	Depth    int
	Tagged   bool
	Schema   map[string]any
	Required bool
}

// Resolve picks the visible field for every name the way encoding/json does:
// the shallowest field wins, a tagged field wins among equally shallow ones,
// and names that stay ambiguous are dropped. Required names are sorted.
func Resolve(fields []Field) (properties map[string]any, required []string) {
	byName := make(map[string][]Field)
	for _, f := range fields {
		byName[f.Name] = append(byName[f.Name], f)
	}

	properties = make(map[string]any, len(byName))
	for name, candidates := range byName {
		f, ok := dominant(candidates)
		if !ok {
			continue
		}
		properties[name] = f.Schema
		if f.Required {
			required = append(required, name)
		}
	}
	slices.Sort(required)
	return properties, required
}

func dominant(fields []Field) (Field, bool) {
	depth := fields[0].Depth
	for _, f := range fields[1:] {
		depth = min(depth, f.Depth)
	}

	var shallow, tagged []Field
	for _, f := range fields {
		if f.Depth != depth {
			continue
		}
		shallow = append(shallow, f)
		if f.Tagged {
			tagged = append(tagged, f)
		}
	}
	switch {
	case len(shallow) == 1:
		return shallow[0], true
	case len(tagged) == 1:
		return tagged[0], true
	}
	return Field{}, false
}
