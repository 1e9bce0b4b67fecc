package apidesc

// Stability is the declared maturity of an operation.
type Stability string

const (
	StabilityStable     Stability = "STABLE"
	StabilityEvolving   Stability = "EVOLVING"
	StabilityInternal   Stability = "INTERNAL"
	StabilityDeprecated Stability = "DEPRECATED"
	StabilityRemoved    Stability = "REMOVED"
)

// CreateMode says who chooses the identifier of a created resource.
type CreateMode string

const (
	CreateModeIDFromClient CreateMode = "ID_FROM_CLIENT"
	CreateModeIDFromServer CreateMode = "ID_FROM_SERVER"
)

// PatchOperation is a kind of change a Patch operation accepts.
type PatchOperation string

const (
	PatchAdd       PatchOperation = "ADD"
	PatchRemove    PatchOperation = "REMOVE"
	PatchReplace   PatchOperation = "REPLACE"
	PatchIncrement PatchOperation = "INCREMENT"
	PatchCopy      PatchOperation = "COPY"
	PatchMove      PatchOperation = "MOVE"
	PatchTransform PatchOperation = "TRANSFORM"
)

// QueryType selects how a Query addresses results.
type QueryType string

const (
	QueryTypeID         QueryType = "ID"
	QueryTypeFilter     QueryType = "FILTER"
	QueryTypeExpression QueryType = "EXPRESSION"
)

// CountPolicy is how a Query reports the total number of results.
type CountPolicy string

const (
	CountPolicyNone     CountPolicy = "NONE"
	CountPolicyEstimate CountPolicy = "ESTIMATE"
	CountPolicyExact    CountPolicy = "EXACT"
)

// PagingMode is a paging strategy a Query supports.
type PagingMode string

const (
	PagingModeCookie PagingMode = "COOKIE"
	PagingModeOffset PagingMode = "OFFSET"
)

// ParameterSource is where a parameter value comes from.
type ParameterSource string

const (
	ParameterSourcePath       ParameterSource = "PATH"
	ParameterSourceAdditional ParameterSource = "ADDITIONAL"
)

// OperationKind identifies an operation variant.
type OperationKind int

const (
	KindCreate OperationKind = iota
	KindRead
	KindUpdate
	KindDelete
	KindPatch
	KindAction
	KindQuery
)

// String returns the lower-case operation name used in descriptors.
func (k OperationKind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindRead:
		return "read"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindPatch:
		return "patch"
	case KindAction:
		return "action"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// RequiresResourceSchema reports whether the operation reads or mutates a
// well-known entity and therefore needs a resource schema.
func (k OperationKind) RequiresResourceSchema() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete, KindPatch, KindQuery:
		return true
	default:
		return false
	}
}
