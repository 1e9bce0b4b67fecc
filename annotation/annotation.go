// Package annotation defines the metadata that describes a resource handler.
//
// A Handler is a plain data table: the resource schema plus, per method, the
// operations that method implements. Tables are either written by hand,
// returned from a type's APIHandler method (see [Annotated]), or produced
// from source comments by the apidesc command. The scan package turns a
// Handler into an apidesc.Resource.
//
//	func (UserHandler) APIHandler() annotation.Handler {
//		return annotation.Handler{
//			Schema: &annotation.Schema{ID: "frapi:user", FromType: reflect.TypeFor[User]()},
//			Methods: []annotation.Method{
//				{Name: "Read", Read: &annotation.Read{}},
//				{Name: "Promote", Action: &annotation.Action{}},
//			},
//		}
//	}
package annotation

import (
	"reflect"

	"github.com/broady/apidesc"
)

// Annotated is implemented by handler types that describe themselves.
type Annotated interface {
	APIHandler() Handler
}

// Handler describes a resource handler type.
type Handler struct {
	// Schema is the resource schema. Create, Update, Delete, Patch and Query
	// operations require it.
	Schema *Schema

	// Methods lists the operation-bearing methods in declaration order.
	Methods []Method
}

// Method holds the operations declared on one handler method.
// Action and Actions may both be set; Action is taken first. The same holds
// for Query and Queries.
type Method struct {
	// Name is the Go method name. It is the default action name and the
	// default query ID for ID queries.
	Name string

	Create *Create
	Read   *Read
	Update *Update
	Delete *Delete
	Patch  *Patch

	Action  *Action
	Actions []Action

	Query   *Query
	Queries []Query
}

// Operation holds the attributes common to every operation annotation.
type Operation struct {
	Description string
	Errors      []Error
	Parameters  []Parameter
	Locales     []string
	Contexts    []string
	Stability   apidesc.Stability
}

type Create struct {
	Operation
	Mode          apidesc.CreateMode
	MvccSupported bool
}

type Read struct {
	Operation
}

type Update struct {
	Operation
	MvccSupported bool
}

type Delete struct {
	Operation
	MvccSupported bool
}

type Patch struct {
	Operation
	MvccSupported bool
	Operations    []apidesc.PatchOperation
}

// Action declares a named operation. An empty Name defaults to the method
// name.
type Action struct {
	Operation
	Name     string
	Request  *Schema
	Response *Schema
}

// Query declares a search. For ID queries an empty ID defaults to the method
// name.
type Query struct {
	Operation
	Type            apidesc.QueryType
	ID              string
	CountPolicies   []apidesc.CountPolicy
	PagingModes     []apidesc.PagingMode
	QueryableFields []string
	SortKeys        []string
}

// Error declares an error. With an ID the error is shared through the
// description's error table; an ID without Code and Description refers to an
// error registered earlier.
type Error struct {
	ID          string
	Code        int
	Description string
	Schema      *Schema
}

type Parameter struct {
	Name         string
	Type         string
	Description  string
	DefaultValue string
	EnumValues   []string
	Source       apidesc.ParameterSource
	Required     bool
}

// Schema is a schema source: inline JSON or a Go type to introspect.
//
// With an ID the schema is shared through the description's definitions
// table. An ID alone refers to a definition registered earlier. Types that
// implement IDer supply the ID when the annotation does not.
type Schema struct {
	ID       string
	JSON     string
	FromType reflect.Type
}

// IDer is implemented by data types that carry their own shared schema ID.
type IDer interface {
	SchemaID() string
}
