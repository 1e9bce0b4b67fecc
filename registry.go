package apidesc

import "slices"

// table is an append-only, insertion-ordered name → value map.
// It is owned by one APIDescription and is not safe for concurrent use.
type table[T any] struct {
	name    string
	prefix  string
	entries map[string]T
	order   []string
	equal   func(a, b T) bool
	isRef   func(v T) bool
}

func newTable[T any](name, prefix string, equal func(a, b T) bool, isRef func(v T) bool) table[T] {
	return table[T]{
		name:    name,
		prefix:  prefix,
		entries: make(map[string]T),
		equal:   equal,
		isRef:   isRef,
	}
}

// check reports whether v may be registered under name without inserting it.
// It returns true when an equal value is already present.
func (t *table[T]) check(name string, v T) (exists bool, err error) {
	if name == "" {
		return false, Configurationf("%s: empty name", t.name)
	}
	if t.isRef(v) {
		return false, Configurationf("%s %q: cannot register a reference", t.name, name)
	}
	cur, ok := t.entries[name]
	if !ok {
		return false, nil
	}
	if !t.equal(cur, v) {
		return true, &ConflictError{Table: t.name, Name: name}
	}
	return true, nil
}

func (t *table[T]) register(name string, v T) (Reference, error) {
	exists, err := t.check(name, v)
	if err != nil {
		return Reference{}, err
	}
	if !exists {
		t.entries[name] = v
		t.order = append(t.order, name)
	}
	return Reference{value: t.prefix + name}, nil
}

func (t *table[T]) get(name string) (T, bool) {
	v, ok := t.entries[name]
	return v, ok
}

// Definitions is the schema table of an APIDescription.
type Definitions struct {
	t table[*Schema]
}

func newDefinitions() *Definitions {
	return &Definitions{t: newTable("definition", DefinitionsPrefix, (*Schema).Equal, func(s *Schema) bool {
		return s == nil || s.IsReference()
	})}
}

// Register inserts s under name if absent and returns a reference to it.
// Registering an equal schema again returns the same reference; a different
// schema under the same name is a *ConflictError. Registering a reference,
// a nil schema or an empty name is a *ConfigurationError.
func (d *Definitions) Register(name string, s *Schema) (Reference, error) {
	return d.t.register(name, s)
}

// Check performs Register's collision test without inserting.
func (d *Definitions) Check(name string, s *Schema) error {
	_, err := d.t.check(name, s)
	return err
}

// Get returns the schema registered under name.
func (d *Definitions) Get(name string) (*Schema, bool) {
	return d.t.get(name)
}

// Names returns the registered names in insertion order.
func (d *Definitions) Names() []string {
	return slices.Clone(d.t.order)
}

// Len returns the number of registered schemas.
func (d *Definitions) Len() int {
	return len(d.t.order)
}

// Errors is the shared error table of an APIDescription.
type Errors struct {
	t table[*Error]
}

func newErrors() *Errors {
	return &Errors{t: newTable("error", ErrorsPrefix, (*Error).Equal, func(e *Error) bool {
		return e == nil || e.IsReference()
	})}
}

// Register inserts e under name if absent and returns a reference to it,
// with the same collision rules as Definitions.Register.
func (r *Errors) Register(name string, e *Error) (Reference, error) {
	return r.t.register(name, e)
}

// Check performs Register's collision test without inserting.
func (r *Errors) Check(name string, e *Error) error {
	_, err := r.t.check(name, e)
	return err
}

// Get returns the error registered under name.
func (r *Errors) Get(name string) (*Error, bool) {
	return r.t.get(name)
}

// Names returns the registered names in insertion order.
func (r *Errors) Names() []string {
	return slices.Clone(r.t.order)
}

// Len returns the number of registered errors.
func (r *Errors) Len() int {
	return len(r.t.order)
}
