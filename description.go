package apidesc

import (
	"slices"

	"github.com/broady/apidesc/i18n"
)

// APIDescription is the root of a description tree. It owns the
// Definitions and Errors tables that References point into, and the Paths
// table mapping resource paths to Resources.
//
// An APIDescription is built fresh for each generation run and must not be
// shared between concurrent builds.
type APIDescription struct {
	id          string
	version     string
	description i18n.Text
	definitions *Definitions
	errors      *Errors
	paths       map[string]*Resource
	pathOrder   []string
}

// APIDescriptionBuilder assembles an APIDescription.
type APIDescriptionBuilder struct {
	id          string
	version     string
	description string
}

// NewAPIDescription starts an APIDescription.
func NewAPIDescription() *APIDescriptionBuilder {
	return &APIDescriptionBuilder{}
}

// ID sets the identifier. Required.
func (b *APIDescriptionBuilder) ID(id string) *APIDescriptionBuilder {
	b.id = id
	return b
}

// Version sets the API version.
func (b *APIDescriptionBuilder) Version(v string) *APIDescriptionBuilder {
	b.version = v
	return b
}

// Description sets the description. It may be a translation key.
func (b *APIDescriptionBuilder) Description(d string) *APIDescriptionBuilder {
	b.description = d
	return b
}

// Build validates and returns an APIDescription with empty tables.
func (b *APIDescriptionBuilder) Build() (*APIDescription, error) {
	fields := struct {
		ID string `validate:"required"`
	}{b.id}
	if err := check("APIDescription", fields); err != nil {
		return nil, err
	}
	return &APIDescription{
		id:          b.id,
		version:     b.version,
		description: i18n.Wrap(b.description),
		definitions: newDefinitions(),
		errors:      newErrors(),
		paths:       make(map[string]*Resource),
	}, nil
}

func (d *APIDescription) ID() string {
	return d.id
}

func (d *APIDescription) Version() string {
	return d.version
}

// Description returns the (possibly keyed) description.
func (d *APIDescription) Description() i18n.Text {
	return d.description
}

// Definitions returns the shared schema table.
func (d *APIDescription) Definitions() *Definitions {
	return d.definitions
}

// Errors returns the shared error table.
func (d *APIDescription) Errors() *Errors {
	return d.errors
}

// CheckResource reports the error AddResource would return for path and r,
// without binding anything.
func (d *APIDescription) CheckResource(path string, r *Resource) error {
	if path == "" {
		return Configurationf("resource path is empty")
	}
	if r == nil {
		return Configurationf("resource for path %q is nil", path)
	}
	if cur, ok := d.paths[path]; ok && !cur.Equal(r) {
		return &ConflictError{Table: "path", Name: path}
	}
	return nil
}

// AddResource binds r to path. Adding an equal resource under the same path
// again is a no-op; a different one is a *ConflictError.
func (d *APIDescription) AddResource(path string, r *Resource) error {
	if err := d.CheckResource(path, r); err != nil {
		return err
	}
	if _, ok := d.paths[path]; ok {
		return nil
	}
	d.paths[path] = r
	d.pathOrder = append(d.pathOrder, path)
	return nil
}

// Paths returns the resource paths in insertion order.
func (d *APIDescription) Paths() []string {
	return slices.Clone(d.pathOrder)
}

// Resource returns the resource bound to path.
func (d *APIDescription) Resource(path string) (*Resource, bool) {
	r, ok := d.paths[path]
	return r, ok
}

// ResolveSchema follows s if it is a reference into the definitions table.
// Inline schemas are returned unchanged.
func (d *APIDescription) ResolveSchema(s *Schema) (*Schema, error) {
	if s == nil || !s.IsReference() {
		return s, nil
	}
	v, ok := d.definitions.Get(s.ref.Name())
	if !ok || s.ref != DefinitionRef(s.ref.Name()) {
		return nil, Configurationf("unresolved schema reference %q", s.ref.Value())
	}
	return v, nil
}

// ResolveError follows e if it is a reference into the errors table.
// Inline errors are returned unchanged.
func (d *APIDescription) ResolveError(e *Error) (*Error, error) {
	if e == nil || !e.IsReference() {
		return e, nil
	}
	v, ok := d.errors.Get(e.ref.Name())
	if !ok || e.ref != ErrorRef(e.ref.Name()) {
		return nil, Configurationf("unresolved error reference %q", e.ref.Value())
	}
	return v, nil
}
