package apidesc

import "slices"

// Create describes resource creation.
type Create struct {
	Operation
	mode          CreateMode
	mvccSupported bool
}

// CreateBuilder assembles a Create.
type CreateBuilder struct {
	OperationBuilder[*CreateBuilder]
	mode          CreateMode
	mvccSupported bool
}

// NewCreate starts a Create operation.
func NewCreate() *CreateBuilder {
	b := &CreateBuilder{}
	b.self = b
	return b
}

// Mode sets who chooses the new resource's identifier.
func (b *CreateBuilder) Mode(m CreateMode) *CreateBuilder {
	b.mode = m
	return b
}

// MvccSupported declares support for revision tokens.
func (b *CreateBuilder) MvccSupported(v bool) *CreateBuilder {
	b.mvccSupported = v
	return b
}

// Build validates and returns the Create. Mode defaults to ID_FROM_CLIENT.
func (b *CreateBuilder) Build() (*Create, error) {
	op, err := b.buildOperation("Create")
	if err != nil {
		return nil, err
	}
	fields := struct {
		Mode CreateMode `validate:"omitempty,oneof=ID_FROM_CLIENT ID_FROM_SERVER"`
	}{b.mode}
	if err := check("Create", fields); err != nil {
		return nil, err
	}
	mode := b.mode
	if mode == "" {
		mode = CreateModeIDFromClient
	}
	return &Create{Operation: op, mode: mode, mvccSupported: b.mvccSupported}, nil
}

func (c *Create) Kind() OperationKind { return KindCreate }

// Mode returns who chooses the new resource's identifier.
func (c *Create) Mode() CreateMode {
	return c.mode
}

// MvccSupported reports support for revision tokens.
func (c *Create) MvccSupported() bool {
	return c.mvccSupported
}

// Equal reports structural equality.
func (c *Create) Equal(other *Create) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.equal(&other.Operation) && c.mode == other.mode && c.mvccSupported == other.mvccSupported
}

// Read describes reading a single resource.
type Read struct {
	Operation
}

// ReadBuilder assembles a Read.
type ReadBuilder struct {
	OperationBuilder[*ReadBuilder]
}

// NewRead starts a Read operation.
func NewRead() *ReadBuilder {
	b := &ReadBuilder{}
	b.self = b
	return b
}

// Build validates and returns the Read.
func (b *ReadBuilder) Build() (*Read, error) {
	op, err := b.buildOperation("Read")
	if err != nil {
		return nil, err
	}
	return &Read{Operation: op}, nil
}

func (r *Read) Kind() OperationKind { return KindRead }

// Equal reports structural equality.
func (r *Read) Equal(other *Read) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.equal(&other.Operation)
}

// Update describes replacing a resource.
type Update struct {
	Operation
	mvccSupported bool
}

// UpdateBuilder assembles an Update.
type UpdateBuilder struct {
	OperationBuilder[*UpdateBuilder]
	mvccSupported bool
}

// NewUpdate starts an Update operation.
func NewUpdate() *UpdateBuilder {
	b := &UpdateBuilder{}
	b.self = b
	return b
}

// MvccSupported declares support for revision tokens.
func (b *UpdateBuilder) MvccSupported(v bool) *UpdateBuilder {
	b.mvccSupported = v
	return b
}

// Build validates and returns the Update.
func (b *UpdateBuilder) Build() (*Update, error) {
	op, err := b.buildOperation("Update")
	if err != nil {
		return nil, err
	}
	return &Update{Operation: op, mvccSupported: b.mvccSupported}, nil
}

func (u *Update) Kind() OperationKind { return KindUpdate }

// MvccSupported reports support for revision tokens.
func (u *Update) MvccSupported() bool {
	return u.mvccSupported
}

// Equal reports structural equality.
func (u *Update) Equal(other *Update) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.equal(&other.Operation) && u.mvccSupported == other.mvccSupported
}

// Delete describes removing a resource.
type Delete struct {
	Operation
	mvccSupported bool
}

// DeleteBuilder assembles a Delete.
type DeleteBuilder struct {
	OperationBuilder[*DeleteBuilder]
	mvccSupported bool
}

// NewDelete starts a Delete operation.
func NewDelete() *DeleteBuilder {
	b := &DeleteBuilder{}
	b.self = b
	return b
}

// MvccSupported declares support for revision tokens.
func (b *DeleteBuilder) MvccSupported(v bool) *DeleteBuilder {
	b.mvccSupported = v
	return b
}

// Build validates and returns the Delete.
func (b *DeleteBuilder) Build() (*Delete, error) {
	op, err := b.buildOperation("Delete")
	if err != nil {
		return nil, err
	}
	return &Delete{Operation: op, mvccSupported: b.mvccSupported}, nil
}

func (d *Delete) Kind() OperationKind { return KindDelete }

// MvccSupported reports support for revision tokens.
func (d *Delete) MvccSupported() bool {
	return d.mvccSupported
}

// Equal reports structural equality.
func (d *Delete) Equal(other *Delete) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.equal(&other.Operation) && d.mvccSupported == other.mvccSupported
}

// Patch describes partial modification of a resource.
type Patch struct {
	Operation
	mvccSupported bool
	operations    []PatchOperation
}

// PatchBuilder assembles a Patch.
type PatchBuilder struct {
	OperationBuilder[*PatchBuilder]
	mvccSupported bool
	operations    []PatchOperation
}

// NewPatch starts a Patch operation.
func NewPatch() *PatchBuilder {
	b := &PatchBuilder{}
	b.self = b
	return b
}

// MvccSupported declares support for revision tokens.
func (b *PatchBuilder) MvccSupported(v bool) *PatchBuilder {
	b.mvccSupported = v
	return b
}

// Operations adds supported patch-operation kinds.
func (b *PatchBuilder) Operations(ops ...PatchOperation) *PatchBuilder {
	b.operations = append(b.operations, ops...)
	return b
}

// Build validates and returns the Patch. At least one patch-operation kind
// is required.
func (b *PatchBuilder) Build() (*Patch, error) {
	op, err := b.buildOperation("Patch")
	if err != nil {
		return nil, err
	}
	fields := struct {
		Operations []PatchOperation `validate:"min=1,dive,oneof=ADD REMOVE REPLACE INCREMENT COPY MOVE TRANSFORM"`
	}{b.operations}
	if err := check("Patch", fields); err != nil {
		return nil, err
	}
	ops := make([]PatchOperation, 0, len(b.operations))
	for _, o := range b.operations {
		if !slices.Contains(ops, o) {
			ops = append(ops, o)
		}
	}
	return &Patch{Operation: op, mvccSupported: b.mvccSupported, operations: ops}, nil
}

func (p *Patch) Kind() OperationKind { return KindPatch }

// MvccSupported reports support for revision tokens.
func (p *Patch) MvccSupported() bool {
	return p.mvccSupported
}

// Operations returns the supported patch-operation kinds.
func (p *Patch) Operations() []PatchOperation {
	return slices.Clone(p.operations)
}

// Equal reports structural equality.
func (p *Patch) Equal(other *Patch) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.equal(&other.Operation) &&
		p.mvccSupported == other.mvccSupported &&
		sameSet(p.operations, other.operations)
}

// Action describes a named, non-CRUD operation on a resource.
type Action struct {
	Operation
	name     string
	request  *Schema
	response *Schema
}

// ActionBuilder assembles an Action.
type ActionBuilder struct {
	OperationBuilder[*ActionBuilder]
	name     string
	request  *Schema
	response *Schema
}

// NewAction starts an Action operation.
func NewAction() *ActionBuilder {
	b := &ActionBuilder{}
	b.self = b
	return b
}

// Name sets the action name. Required.
func (b *ActionBuilder) Name(name string) *ActionBuilder {
	b.name = name
	return b
}

// Request sets the request payload schema.
func (b *ActionBuilder) Request(s *Schema) *ActionBuilder {
	b.request = s
	return b
}

// Response sets the response payload schema.
func (b *ActionBuilder) Response(s *Schema) *ActionBuilder {
	b.response = s
	return b
}

// Build validates and returns the Action.
func (b *ActionBuilder) Build() (*Action, error) {
	op, err := b.buildOperation("Action")
	if err != nil {
		return nil, err
	}
	fields := struct {
		Name string `validate:"required"`
	}{b.name}
	if err := check("Action", fields); err != nil {
		return nil, err
	}
	return &Action{Operation: op, name: b.name, request: b.request, response: b.response}, nil
}

func (a *Action) Kind() OperationKind { return KindAction }

// Name returns the action name.
func (a *Action) Name() string {
	return a.name
}

// Request returns the request schema, or nil.
func (a *Action) Request() *Schema {
	return a.request
}

// Response returns the response schema, or nil.
func (a *Action) Response() *Schema {
	return a.response
}

// Equal reports structural equality.
func (a *Action) Equal(other *Action) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.equal(&other.Operation) &&
		a.name == other.name &&
		a.request.Equal(other.request) &&
		a.response.Equal(other.response)
}

// Query describes a search over a resource collection.
type Query struct {
	Operation
	queryType       QueryType
	queryID         string
	countPolicies   []CountPolicy
	pagingModes     []PagingMode
	queryableFields []string
	sortKeys        []string
}

// QueryBuilder assembles a Query.
type QueryBuilder struct {
	OperationBuilder[*QueryBuilder]
	queryType       QueryType
	queryID         string
	countPolicies   []CountPolicy
	pagingModes     []PagingMode
	queryableFields []string
	sortKeys        []string
}

// NewQuery starts a Query operation.
func NewQuery() *QueryBuilder {
	b := &QueryBuilder{}
	b.self = b
	return b
}

// Type sets the query type. Required.
func (b *QueryBuilder) Type(t QueryType) *QueryBuilder {
	b.queryType = t
	return b
}

// QueryID sets the query identifier. Required when the type is ID.
func (b *QueryBuilder) QueryID(id string) *QueryBuilder {
	b.queryID = id
	return b
}

// CountPolicies adds supported count policies.
func (b *QueryBuilder) CountPolicies(ps ...CountPolicy) *QueryBuilder {
	b.countPolicies = append(b.countPolicies, ps...)
	return b
}

// PagingModes adds supported paging modes.
func (b *QueryBuilder) PagingModes(ms ...PagingMode) *QueryBuilder {
	b.pagingModes = append(b.pagingModes, ms...)
	return b
}

// QueryableFields adds the names of fields that may appear in filters.
func (b *QueryBuilder) QueryableFields(fields ...string) *QueryBuilder {
	b.queryableFields = append(b.queryableFields, fields...)
	return b
}

// SupportedSortKeys adds the names of keys results may be sorted by.
func (b *QueryBuilder) SupportedSortKeys(keys ...string) *QueryBuilder {
	b.sortKeys = append(b.sortKeys, keys...)
	return b
}

// Build validates and returns the Query. A missing type is a
// ValidationError; an ID query without a query ID is a ConfigurationError.
func (b *QueryBuilder) Build() (*Query, error) {
	op, err := b.buildOperation("Query")
	if err != nil {
		return nil, err
	}
	fields := struct {
		Type            QueryType     `validate:"required,oneof=ID FILTER EXPRESSION"`
		CountPolicies   []CountPolicy `validate:"dive,oneof=NONE ESTIMATE EXACT"`
		PagingModes     []PagingMode  `validate:"dive,oneof=COOKIE OFFSET"`
		QueryableFields []string      `validate:"dive,required"`
		SortKeys        []string      `validate:"dive,required"`
	}{b.queryType, b.countPolicies, b.pagingModes, b.queryableFields, b.sortKeys}
	if err := check("Query", fields); err != nil {
		return nil, err
	}
	if b.queryType == QueryTypeID && b.queryID == "" {
		return nil, Configurationf("query of type %s requires a query id", QueryTypeID)
	}
	return &Query{
		Operation:       op,
		queryType:       b.queryType,
		queryID:         b.queryID,
		countPolicies:   slices.Clone(b.countPolicies),
		pagingModes:     slices.Clone(b.pagingModes),
		queryableFields: slices.Clone(b.queryableFields),
		sortKeys:        slices.Clone(b.sortKeys),
	}, nil
}

func (q *Query) Kind() OperationKind { return KindQuery }

// Type returns the query type.
func (q *Query) Type() QueryType {
	return q.queryType
}

// QueryID returns the query identifier; empty unless set.
func (q *Query) QueryID() string {
	return q.queryID
}

// CountPolicies returns the supported count policies in declared order.
func (q *Query) CountPolicies() []CountPolicy {
	return slices.Clone(q.countPolicies)
}

// PagingModes returns the supported paging modes in declared order.
func (q *Query) PagingModes() []PagingMode {
	return slices.Clone(q.pagingModes)
}

// QueryableFields returns the filterable field names in declared order.
func (q *Query) QueryableFields() []string {
	return slices.Clone(q.queryableFields)
}

// SupportedSortKeys returns the sort keys in declared order.
func (q *Query) SupportedSortKeys() []string {
	return slices.Clone(q.sortKeys)
}

// Equal reports structural equality.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.equal(&other.Operation) &&
		q.queryType == other.queryType &&
		q.queryID == other.queryID &&
		slices.Equal(q.countPolicies, other.countPolicies) &&
		slices.Equal(q.pagingModes, other.pagingModes) &&
		slices.Equal(q.queryableFields, other.queryableFields) &&
		slices.Equal(q.sortKeys, other.sortKeys)
}
