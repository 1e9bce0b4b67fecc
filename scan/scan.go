// Package scan builds apidesc Resources from handler annotations.
//
// The scanner is a pure function of an [annotation.Handler] and the
// destination description: it builds every operation, promotes schemas and
// errors that carry a shared ID into the description's tables, and assembles
// the Resource. Registrations are staged and only committed once the
// Resource has been built, so a failed scan leaves the description
// untouched.
package scan

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/broady/apidesc"
	"github.com/broady/apidesc/annotation"
)

// Scanner converts handler annotations into Resources.
type Scanner struct {
	logger *slog.Logger
}

// New returns a Scanner.
func New() *Scanner {
	return &Scanner{}
}

// WithLogger sets the logger used to report discovered operations.
// If not set, slog.Default() will be used.
func (s *Scanner) WithLogger(logger *slog.Logger) *Scanner {
	s.logger = logger
	return s
}

func (s *Scanner) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// FromHandler scans h with a default Scanner.
func FromHandler(h annotation.Handler, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	return New().FromHandler(h, desc)
}

// FromType scans v with a default Scanner.
func FromType(v any, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	return New().FromType(v, desc)
}

// FromType scans a value implementing annotation.Annotated. Every method
// named in its annotations must exist in the value's method set.
func (s *Scanner) FromType(v any, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	h, err := handlerOf(v)
	if err != nil {
		return nil, err
	}
	return s.FromHandler(h, desc)
}

// FromHandler builds the Resource described by h.
//
// Schemas and errors with an ID are registered into desc and referenced;
// others stay inline. Create, Update, Delete, Patch and Query operations
// require a resource schema; without one FromHandler returns an
// *apidesc.ConfigurationError. Builder failures are returned unchanged. On
// any error desc is left as it was.
func (s *Scanner) FromHandler(h annotation.Handler, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	r, st, err := s.build(h, desc)
	if err != nil {
		return nil, err
	}
	if err := st.commit(); err != nil {
		return nil, err
	}
	return r, nil
}

// Mount is FromHandler followed by desc.AddResource(path, ...). Nothing is
// registered in desc unless the resource can be bound to path.
func (s *Scanner) Mount(path string, h annotation.Handler, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	r, st, err := s.build(h, desc)
	if err != nil {
		return nil, err
	}
	if err := desc.CheckResource(path, r); err != nil {
		return nil, err
	}
	if err := st.commit(); err != nil {
		return nil, err
	}
	if err := desc.AddResource(path, r); err != nil {
		return nil, err
	}
	return r, nil
}

// MountType is Mount for a value implementing annotation.Annotated.
func (s *Scanner) MountType(path string, v any, desc *apidesc.APIDescription) (*apidesc.Resource, error) {
	h, err := handlerOf(v)
	if err != nil {
		return nil, err
	}
	return s.Mount(path, h, desc)
}

func handlerOf(v any) (annotation.Handler, error) {
	a, ok := v.(annotation.Annotated)
	if !ok {
		return annotation.Handler{}, apidesc.Configurationf("%T is not a resource handler: missing APIHandler method", v)
	}
	h := a.APIHandler()

	t := reflect.TypeOf(v)
	for _, m := range h.Methods {
		if _, ok := t.MethodByName(m.Name); !ok {
			return annotation.Handler{}, apidesc.Configurationf("%s has no method %q", t, m.Name)
		}
	}
	return h, nil
}

// build assembles the Resource with its registrations staged.
func (s *Scanner) build(h annotation.Handler, desc *apidesc.APIDescription) (*apidesc.Resource, *stage, error) {
	st, err := newStage(desc)
	if err != nil {
		return nil, nil, err
	}

	rb := apidesc.NewResource()
	if h.Schema != nil {
		schema, err := st.schema(h.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("resource schema: %w", err)
		}
		rb.ResourceSchema(schema)
	}

	for _, m := range h.Methods {
		ops, err := st.method(m)
		if err != nil {
			return nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		for _, op := range ops {
			if op.Kind().RequiresResourceSchema() && h.Schema == nil {
				return nil, nil, apidesc.Configurationf("method %s: %s operation requires a resource schema", m.Name, op.Kind())
			}
			s.log().Debug("discovered operation",
				slog.String("method", m.Name),
				slog.String("kind", op.Kind().String()))
		}
		rb.Operations(ops...)
	}

	r, err := rb.Build()
	if err != nil {
		return nil, nil, err
	}
	return r, st, nil
}

// stage collects registrations for one scan. Values are checked against the
// destination tables as they are staged and written on commit.
type stage struct {
	desc    *apidesc.APIDescription
	pending *apidesc.APIDescription
}

func newStage(desc *apidesc.APIDescription) (*stage, error) {
	if desc == nil {
		return nil, apidesc.Configurationf("nil API description")
	}
	pending, err := apidesc.NewAPIDescription().ID(desc.ID()).Build()
	if err != nil {
		return nil, err
	}
	return &stage{desc: desc, pending: pending}, nil
}

func (st *stage) commit() error {
	defs := st.pending.Definitions()
	for _, name := range defs.Names() {
		v, _ := defs.Get(name)
		if _, err := st.desc.Definitions().Register(name, v); err != nil {
			return err
		}
	}
	errs := st.pending.Errors()
	for _, name := range errs.Names() {
		v, _ := errs.Get(name)
		if _, err := st.desc.Errors().Register(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (st *stage) registerSchema(name string, v *apidesc.Schema) (apidesc.Reference, error) {
	if err := st.desc.Definitions().Check(name, v); err != nil {
		return apidesc.Reference{}, err
	}
	return st.pending.Definitions().Register(name, v)
}

func (st *stage) registerError(name string, v *apidesc.Error) (apidesc.Reference, error) {
	if err := st.desc.Errors().Check(name, v); err != nil {
		return apidesc.Reference{}, err
	}
	return st.pending.Errors().Register(name, v)
}

func (st *stage) hasSchema(name string) bool {
	_, ok := st.desc.Definitions().Get(name)
	if !ok {
		_, ok = st.pending.Definitions().Get(name)
	}
	return ok
}

func (st *stage) hasError(name string) bool {
	_, ok := st.desc.Errors().Get(name)
	if !ok {
		_, ok = st.pending.Errors().Get(name)
	}
	return ok
}

var iderType = reflect.TypeFor[annotation.IDer]()

// schema builds a Schema from its source, registering it when it carries an
// ID.
func (st *stage) schema(src *annotation.Schema) (*apidesc.Schema, error) {
	id := src.ID
	b := apidesc.NewSchema()
	switch {
	case src.FromType != nil:
		if id == "" {
			id = schemaID(src.FromType)
		}
		value, err := DeriveSchema(src.FromType)
		if err != nil {
			return nil, apidesc.Configurationf("schema for %s: %v", src.FromType, err)
		}
		b.Schema(value)
	case src.JSON != "":
		b.JSON([]byte(src.JSON))
	case id != "":
		if !st.hasSchema(id) {
			return nil, apidesc.Configurationf("schema %q is not defined", id)
		}
		return apidesc.SchemaRef(apidesc.DefinitionRef(id)), nil
	default:
		return nil, apidesc.Configurationf("schema needs an ID, JSON or a type")
	}

	schema, err := b.Build()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return schema, nil
	}
	ref, err := st.registerSchema(id, schema)
	if err != nil {
		return nil, err
	}
	return apidesc.SchemaRef(ref), nil
}

// schemaID returns the ID a type declares through annotation.IDer.
func schemaID(t reflect.Type) string {
	for _, c := range []reflect.Type{t, reflect.PointerTo(t)} {
		if c.Implements(iderType) {
			if c.Kind() == reflect.Ptr {
				return reflect.New(c.Elem()).Interface().(annotation.IDer).SchemaID()
			}
			return reflect.Zero(c).Interface().(annotation.IDer).SchemaID()
		}
	}
	return ""
}

func (st *stage) optionalSchema(src *annotation.Schema) (*apidesc.Schema, error) {
	if src == nil {
		return nil, nil
	}
	return st.schema(src)
}

func (st *stage) apiError(a annotation.Error) (*apidesc.Error, error) {
	if a.ID != "" && a.Code == 0 && a.Description == "" && a.Schema == nil {
		if !st.hasError(a.ID) {
			return nil, apidesc.Configurationf("error %q is not defined", a.ID)
		}
		return apidesc.ErrorReference(apidesc.ErrorRef(a.ID)), nil
	}

	schema, err := st.optionalSchema(a.Schema)
	if err != nil {
		return nil, err
	}
	e, err := apidesc.NewError().Code(a.Code).Description(a.Description).Schema(schema).Build()
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		return e, nil
	}
	ref, err := st.registerError(a.ID, e)
	if err != nil {
		return nil, err
	}
	return apidesc.ErrorReference(ref), nil
}

// method builds the operations of one method: create, read, update, delete,
// patch, then actions and queries in declared order.
func (st *stage) method(m annotation.Method) ([]apidesc.Operator, error) {
	var ops []apidesc.Operator
	add := func(op apidesc.Operator, err error) error {
		if err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	}

	if m.Create != nil {
		if err := add(st.create(m.Create)); err != nil {
			return nil, err
		}
	}
	if m.Read != nil {
		if err := add(st.read(m.Read)); err != nil {
			return nil, err
		}
	}
	if m.Update != nil {
		if err := add(st.update(m.Update)); err != nil {
			return nil, err
		}
	}
	if m.Delete != nil {
		if err := add(st.delete(m.Delete)); err != nil {
			return nil, err
		}
	}
	if m.Patch != nil {
		if err := add(st.patch(m.Patch)); err != nil {
			return nil, err
		}
	}

	actions := m.Actions
	if m.Action != nil {
		actions = append([]annotation.Action{*m.Action}, actions...)
	}
	for _, a := range actions {
		if err := add(st.action(m.Name, a)); err != nil {
			return nil, err
		}
	}

	queries := m.Queries
	if m.Query != nil {
		queries = append([]annotation.Query{*m.Query}, queries...)
	}
	for _, q := range queries {
		if err := add(st.query(m.Name, q)); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

// common applies the shared attributes to an operation builder.
func common[B interface {
	Description(string) B
	Parameter(*apidesc.Parameter) B
	Error(*apidesc.Error) B
	SupportedLocales(...string) B
	SupportedContexts(...string) B
	Stability(apidesc.Stability) B
}](st *stage, b B, a annotation.Operation) error {
	b.Description(a.Description).
		SupportedLocales(a.Locales...).
		SupportedContexts(a.Contexts...).
		Stability(a.Stability)
	for _, p := range a.Parameters {
		param, err := apidesc.NewParameter(p.Name, p.Type).
			Description(p.Description).
			DefaultValue(p.DefaultValue).
			EnumValues(p.EnumValues...).
			Source(p.Source).
			Required(p.Required).
			Build()
		if err != nil {
			return err
		}
		b.Parameter(param)
	}
	for _, e := range a.Errors {
		apiErr, err := st.apiError(e)
		if err != nil {
			return err
		}
		b.Error(apiErr)
	}
	return nil
}

func (st *stage) create(a *annotation.Create) (apidesc.Operator, error) {
	b := apidesc.NewCreate().Mode(a.Mode).MvccSupported(a.MvccSupported)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

func (st *stage) read(a *annotation.Read) (apidesc.Operator, error) {
	b := apidesc.NewRead()
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

func (st *stage) update(a *annotation.Update) (apidesc.Operator, error) {
	b := apidesc.NewUpdate().MvccSupported(a.MvccSupported)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

func (st *stage) delete(a *annotation.Delete) (apidesc.Operator, error) {
	b := apidesc.NewDelete().MvccSupported(a.MvccSupported)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

func (st *stage) patch(a *annotation.Patch) (apidesc.Operator, error) {
	b := apidesc.NewPatch().MvccSupported(a.MvccSupported).Operations(a.Operations...)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

func (st *stage) action(method string, a annotation.Action) (apidesc.Operator, error) {
	name := a.Name
	if name == "" {
		name = method
	}
	b := apidesc.NewAction().Name(name)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	req, err := st.optionalSchema(a.Request)
	if err != nil {
		return nil, fmt.Errorf("action %s request: %w", name, err)
	}
	resp, err := st.optionalSchema(a.Response)
	if err != nil {
		return nil, fmt.Errorf("action %s response: %w", name, err)
	}
	return nonNil(b.Request(req).Response(resp).Build())
}

func (st *stage) query(method string, a annotation.Query) (apidesc.Operator, error) {
	id := a.ID
	if id == "" && a.Type == apidesc.QueryTypeID {
		id = method
	}
	b := apidesc.NewQuery().
		Type(a.Type).
		QueryID(id).
		CountPolicies(a.CountPolicies...).
		PagingModes(a.PagingModes...).
		QueryableFields(a.QueryableFields...).
		SupportedSortKeys(a.SortKeys...)
	if err := common(st, b, a.Operation); err != nil {
		return nil, err
	}
	return nonNil(b.Build())
}

// nonNil converts a typed builder result into an Operator without wrapping a
// nil pointer in a non-nil interface.
func nonNil[T apidesc.Operator](op T, err error) (apidesc.Operator, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}

