package apidesc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/broady/apidesc/i18n"
)

// Resource describes one addressable resource type: its schema and the
// operations it supports.
type Resource struct {
	description    i18n.Text
	resourceSchema *Schema
	create         *Create
	read           *Read
	update         *Update
	delete         *Delete
	patch          *Patch
	actions        []*Action
	queries        []*Query
}

// ResourceBuilder assembles a Resource.
type ResourceBuilder struct {
	description    string
	resourceSchema *Schema
	create         []*Create
	read           []*Read
	update         []*Update
	delete         []*Delete
	patch          []*Patch
	actions        []*Action
	queries        []*Query
	unknown        []Operator
}

// NewResource starts a Resource.
func NewResource() *ResourceBuilder {
	return &ResourceBuilder{}
}

// Description sets the description. It may be a translation key.
func (b *ResourceBuilder) Description(d string) *ResourceBuilder {
	b.description = d
	return b
}

// ResourceSchema sets the schema of the resource, inline or as a reference.
func (b *ResourceBuilder) ResourceSchema(s *Schema) *ResourceBuilder {
	b.resourceSchema = s
	return b
}

// Create sets the Create operation. Setting it twice fails at Build.
func (b *ResourceBuilder) Create(op *Create) *ResourceBuilder {
	b.create = append(b.create, op)
	return b
}

// Read sets the Read operation. Setting it twice fails at Build.
func (b *ResourceBuilder) Read(op *Read) *ResourceBuilder {
	b.read = append(b.read, op)
	return b
}

// Update sets the Update operation. Setting it twice fails at Build.
func (b *ResourceBuilder) Update(op *Update) *ResourceBuilder {
	b.update = append(b.update, op)
	return b
}

// Delete sets the Delete operation. Setting it twice fails at Build.
func (b *ResourceBuilder) Delete(op *Delete) *ResourceBuilder {
	b.delete = append(b.delete, op)
	return b
}

// Patch sets the Patch operation. Setting it twice fails at Build.
func (b *ResourceBuilder) Patch(op *Patch) *ResourceBuilder {
	b.patch = append(b.patch, op)
	return b
}

// Action adds an action.
func (b *ResourceBuilder) Action(op *Action) *ResourceBuilder {
	b.actions = append(b.actions, op)
	return b
}

// Actions adds actions in order.
func (b *ResourceBuilder) Actions(ops ...*Action) *ResourceBuilder {
	b.actions = append(b.actions, ops...)
	return b
}

// Query adds a query.
func (b *ResourceBuilder) Query(op *Query) *ResourceBuilder {
	b.queries = append(b.queries, op)
	return b
}

// Queries adds queries in order.
func (b *ResourceBuilder) Queries(ops ...*Query) *ResourceBuilder {
	b.queries = append(b.queries, ops...)
	return b
}

// Operations adds operations of any variant, dispatching on their kind.
func (b *ResourceBuilder) Operations(ops ...Operator) *ResourceBuilder {
	for _, op := range ops {
		switch o := op.(type) {
		case *Create:
			b.Create(o)
		case *Read:
			b.Read(o)
		case *Update:
			b.Update(o)
		case *Delete:
			b.Delete(o)
		case *Patch:
			b.Patch(o)
		case *Action:
			b.Action(o)
		case *Query:
			b.Query(o)
		default:
			b.unknown = append(b.unknown, op)
		}
	}
	return b
}

// Build validates and returns the Resource.
//
// It fails with a ValidationError when the resource would be empty (no
// operations, schema or description), when a single-valued operation was set
// more than once, when two actions share a name or when two ID queries share
// a query ID.
func (b *ResourceBuilder) Build() (*Resource, error) {
	if len(b.unknown) > 0 {
		return nil, invalid("Resource", "unsupported operation type %T", b.unknown[0])
	}

	var dups []string
	single := func(kind OperationKind, n int) {
		if n > 1 {
			dups = append(dups, kind.String())
		}
	}
	single(KindCreate, len(b.create))
	single(KindRead, len(b.read))
	single(KindUpdate, len(b.update))
	single(KindDelete, len(b.delete))
	single(KindPatch, len(b.patch))
	if len(dups) > 0 {
		return nil, invalid("Resource", "at most one %s operation may be declared", strings.Join(dups, ", "))
	}

	if slices.Contains(b.actions, nil) || slices.Contains(b.queries, nil) ||
		slices.Contains(b.create, nil) || slices.Contains(b.read, nil) ||
		slices.Contains(b.update, nil) || slices.Contains(b.delete, nil) ||
		slices.Contains(b.patch, nil) {
		return nil, invalid("Resource", "nil operation")
	}

	names := make(map[string]bool, len(b.actions))
	for _, a := range b.actions {
		if names[a.name] {
			return nil, invalid("Resource", "duplicate action %q", a.name)
		}
		names[a.name] = true
	}
	ids := make(map[string]bool, len(b.queries))
	for _, q := range b.queries {
		if q.queryType != QueryTypeID {
			continue
		}
		if ids[q.queryID] {
			return nil, invalid("Resource", "duplicate query id %q", q.queryID)
		}
		ids[q.queryID] = true
	}

	r := &Resource{
		description:    i18n.Wrap(b.description),
		resourceSchema: b.resourceSchema,
		create:         first(b.create),
		read:           first(b.read),
		update:         first(b.update),
		delete:         first(b.delete),
		patch:          first(b.patch),
		actions:        slices.Clone(b.actions),
		queries:        slices.Clone(b.queries),
	}
	if r.empty() {
		return nil, invalid("Resource", "a resource needs at least one operation, a schema or a description")
	}
	return r, nil
}

func first[T any](s []*T) *T {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

func (r *Resource) empty() bool {
	return r.description.IsZero() &&
		r.resourceSchema == nil &&
		len(r.Operations()) == 0
}

// Description returns the (possibly keyed) description.
func (r *Resource) Description() i18n.Text {
	return r.description
}

// ResourceSchema returns the resource schema, inline or as a reference, or nil.
func (r *Resource) ResourceSchema() *Schema {
	return r.resourceSchema
}

func (r *Resource) Create() *Create { return r.create }
func (r *Resource) Read() *Read     { return r.read }
func (r *Resource) Update() *Update { return r.update }
func (r *Resource) Delete() *Delete { return r.delete }
func (r *Resource) Patch() *Patch   { return r.patch }

// Actions returns the actions in declared order.
func (r *Resource) Actions() []*Action {
	return slices.Clone(r.actions)
}

// Queries returns the queries in declared order.
func (r *Resource) Queries() []*Query {
	return slices.Clone(r.queries)
}

// Action returns the named action, or nil.
func (r *Resource) Action(name string) *Action {
	for _, a := range r.actions {
		if a.name == name {
			return a
		}
	}
	return nil
}

// Operations returns every operation: create, read, update, delete, patch,
// then actions and queries in declared order.
func (r *Resource) Operations() []Operator {
	var ops []Operator
	if r.create != nil {
		ops = append(ops, r.create)
	}
	if r.read != nil {
		ops = append(ops, r.read)
	}
	if r.update != nil {
		ops = append(ops, r.update)
	}
	if r.delete != nil {
		ops = append(ops, r.delete)
	}
	if r.patch != nil {
		ops = append(ops, r.patch)
	}
	for _, a := range r.actions {
		ops = append(ops, a)
	}
	for _, q := range r.queries {
		ops = append(ops, q)
	}
	return ops
}

// Equal reports structural equality. Actions and queries are compared as
// sets.
func (r *Resource) Equal(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.description == other.description &&
		r.resourceSchema.Equal(other.resourceSchema) &&
		r.create.Equal(other.create) &&
		r.read.Equal(other.read) &&
		r.update.Equal(other.update) &&
		r.delete.Equal(other.delete) &&
		r.patch.Equal(other.patch) &&
		sameElements(r.actions, other.actions, (*Action).Equal) &&
		sameElements(r.queries, other.queries, (*Query).Equal)
}

// String returns a short summary for logs.
func (r *Resource) String() string {
	kinds := make([]string, 0, len(r.Operations()))
	for _, op := range r.Operations() {
		kinds = append(kinds, op.Kind().String())
	}
	return fmt.Sprintf("Resource{%s}", strings.Join(kinds, ","))
}
