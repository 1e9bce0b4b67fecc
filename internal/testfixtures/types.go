// Package testfixtures provides annotated handlers used for testing the scan
// and apigen packages.
package testfixtures

import (
	"reflect"
	"time"

	"github.com/broady/apidesc"
	"github.com/broady/apidesc/annotation"
)

// User is a resource type with its own shared schema ID.
type User struct {
	ID       string    `json:"_id" validate:"required"`
	Username string    `json:"username" validate:"required" description:"i18n:api#username"`
	Email    string    `json:"email,omitempty"`
	Created  time.Time `json:"created"`
	Tags     []string  `json:"tags,omitempty"`
	internal int
}

func (User) SchemaID() string { return "frapi:user" }

// Post is a resource type without a shared schema ID.
type Post struct {
	ID        int64  `json:"id"`
	AuthorID  int64  `json:"author_id"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

// PromoteRequest is an action payload.
type PromoteRequest struct {
	Role string `json:"role" validate:"required"`
}

// NotFound is an error shared between handlers.
var NotFound = annotation.Error{ID: "frapi:notfound", Code: 404, Description: "i18n:api#not_found"}

// UserHandler exposes every operation kind on users.
type UserHandler struct{}

func (UserHandler) APIHandler() annotation.Handler {
	return annotation.Handler{
		Schema: &annotation.Schema{FromType: reflect.TypeFor[User]()},
		Methods: []annotation.Method{
			{Name: "Create", Create: &annotation.Create{
				Operation: annotation.Operation{Description: "i18n:api#create"},
				Mode:      apidesc.CreateModeIDFromServer,
			}},
			{Name: "Read", Read: &annotation.Read{
				Operation: annotation.Operation{
					Description: "i18n:api#read",
					Errors:      []annotation.Error{NotFound},
					Parameters:  []annotation.Parameter{{Name: "fields", Type: "string"}},
					Locales:     []string{"en", "fr"},
				},
			}},
			{Name: "Update", Update: &annotation.Update{MvccSupported: true}},
			{Name: "Delete", Delete: &annotation.Delete{
				Operation: annotation.Operation{Errors: []annotation.Error{{ID: "frapi:notfound"}}},
			}},
			{Name: "Patch", Patch: &annotation.Patch{
				Operations: []apidesc.PatchOperation{apidesc.PatchAdd, apidesc.PatchRemove},
			}},
			{Name: "Promote", Action: &annotation.Action{
				Request: &annotation.Schema{FromType: reflect.TypeFor[PromoteRequest]()},
			}},
			{Name: "ByEmail", Query: &annotation.Query{Type: apidesc.QueryTypeID}},
		},
	}
}

func (UserHandler) Create()  {}
func (UserHandler) Read()    {}
func (UserHandler) Update()  {}
func (UserHandler) Delete()  {}
func (UserHandler) Patch()   {}
func (UserHandler) Promote() {}
func (UserHandler) ByEmail() {}

// PostHandler reads posts and shares the NotFound error with UserHandler.
type PostHandler struct{}

func (PostHandler) APIHandler() annotation.Handler {
	return annotation.Handler{
		Schema: &annotation.Schema{FromType: reflect.TypeFor[Post]()},
		Methods: []annotation.Method{
			{Name: "Read", Read: &annotation.Read{
				Operation: annotation.Operation{Errors: []annotation.Error{NotFound}},
			}},
			{Name: "Search", Queries: []annotation.Query{
				{Type: apidesc.QueryTypeFilter, QueryableFields: []string{"title"}},
				{Type: apidesc.QueryTypeID, ID: "drafts"},
			}},
		},
	}
}

func (PostHandler) Read()   {}
func (PostHandler) Search() {}

// MissingMethodHandler names a method it does not have.
type MissingMethodHandler struct{}

func (MissingMethodHandler) APIHandler() annotation.Handler {
	return annotation.Handler{
		Methods: []annotation.Method{{Name: "Ping", Action: &annotation.Action{}}},
	}
}
