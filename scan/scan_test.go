package scan

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/broady/apidesc"
	"github.com/broady/apidesc/annotation"
	"github.com/broady/apidesc/internal/testfixtures"
)

func newDesc(t *testing.T) *apidesc.APIDescription {
	t.Helper()
	d, err := apidesc.NewAPIDescription().ID("frapi:test").Build()
	if err != nil {
		t.Fatal(err)
	}
	return d
}

const responseSchema = `{"type":"object","properties":{"name":{"type":"string"}}}`

func TestFromHandler_Simple(t *testing.T) {
	h := annotation.Handler{
		Schema: &annotation.Schema{JSON: responseSchema},
		Methods: []annotation.Method{
			{Name: "Create", Create: &annotation.Create{
				Operation: annotation.Operation{
					Description: "i18n:api-dictionary#description_test",
					Errors:      []annotation.Error{{Code: 500, Description: "Unexpected error"}},
					Parameters:  []annotation.Parameter{{Name: "id", Type: "string"}},
					Locales:     []string{"en-GB"},
					Contexts:    []string{"security"},
					Stability:   apidesc.StabilityEvolving,
				},
				MvccSupported: true,
				Mode:          apidesc.CreateModeIDFromServer,
			}},
		},
	}

	desc := newDesc(t)
	r, err := FromHandler(h, desc)
	if err != nil {
		t.Fatalf("FromHandler: %v", err)
	}

	if r.ResourceSchema() == nil || r.ResourceSchema().IsReference() {
		t.Fatal("expected inline resource schema")
	}
	c := r.Create()
	if c == nil {
		t.Fatal("expected create operation")
	}
	if c.Description().Raw() != "i18n:api-dictionary#description_test" {
		t.Errorf("unexpected description %q", c.Description().Raw())
	}
	if c.Mode() != apidesc.CreateModeIDFromServer || !c.MvccSupported() {
		t.Errorf("unexpected create fields: mode %s mvcc %v", c.Mode(), c.MvccSupported())
	}
	if c.Stability() != apidesc.StabilityEvolving {
		t.Errorf("unexpected stability %s", c.Stability())
	}
	if got := c.SupportedLocales(); !slices.Equal(got, []string{"en-GB"}) {
		t.Errorf("unexpected locales %v", got)
	}
	if got := c.SupportedContexts(); !slices.Equal(got, []string{"security"}) {
		t.Errorf("unexpected contexts %v", got)
	}
	errs := c.Errors()
	if len(errs) != 1 || errs[0].IsReference() || errs[0].Code() != 500 {
		t.Errorf("expected one inline 500 error, got %v", errs)
	}
	if len(c.Parameters()) != 1 || c.Parameters()[0].Name() != "id" {
		t.Errorf("unexpected parameters %v", c.Parameters())
	}
	if desc.Definitions().Len() != 0 || desc.Errors().Len() != 0 {
		t.Error("nothing should be registered without IDs")
	}
}

func TestFromHandler_ReferencedSchemaAndError(t *testing.T) {
	h := annotation.Handler{
		Schema: &annotation.Schema{ID: "frapi:response", JSON: responseSchema},
		Methods: []annotation.Method{
			{Name: "Read", Read: &annotation.Read{
				Operation: annotation.Operation{
					Errors: []annotation.Error{{ID: "frapi:myerror", Code: 500, Description: "Unexpected error"}},
				},
			}},
		},
	}

	desc := newDesc(t)
	r, err := FromHandler(h, desc)
	if err != nil {
		t.Fatalf("FromHandler: %v", err)
	}

	if got := r.ResourceSchema().Reference().Value(); got != "#/definitions/frapi:response" {
		t.Errorf("unexpected schema reference %q", got)
	}
	if _, ok := desc.Definitions().Get("frapi:response"); !ok {
		t.Error("schema not registered")
	}
	e := r.Read().Errors()[0]
	if got := e.Reference().Value(); got != "#/errors/frapi:myerror" {
		t.Errorf("unexpected error reference %q", got)
	}
	resolved, err := desc.ResolveError(e)
	if err != nil || resolved.Code() != 500 {
		t.Errorf("error did not resolve: %v %v", resolved, err)
	}
}

func TestFromHandler_RequiresResourceSchema(t *testing.T) {
	ops := map[string]annotation.Method{
		"create": {Name: "Create", Create: &annotation.Create{}},
		"update": {Name: "Update", Update: &annotation.Update{}},
		"delete": {Name: "Delete", Delete: &annotation.Delete{}},
		"patch":  {Name: "Patch", Patch: &annotation.Patch{Operations: []apidesc.PatchOperation{apidesc.PatchAdd}}},
		"query":  {Name: "Query", Query: &annotation.Query{Type: apidesc.QueryTypeFilter}},
	}

	for name, m := range ops {
		t.Run(name, func(t *testing.T) {
			h := annotation.Handler{Methods: []annotation.Method{m}}
			_, err := FromHandler(h, newDesc(t))
			if !errors.Is(err, apidesc.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}

			h.Schema = &annotation.Schema{JSON: responseSchema}
			r, err := FromHandler(h, newDesc(t))
			if err != nil {
				t.Fatalf("with schema: %v", err)
			}
			if len(r.Operations()) != 1 || r.Operations()[0].Kind().String() != name {
				t.Errorf("expected one %s operation, got %v", name, r)
			}
		})
	}
}

func TestFromHandler_ActionWithoutSchema(t *testing.T) {
	h := annotation.Handler{
		Methods: []annotation.Method{
			{Name: "Action1", Action: &annotation.Action{Name: "myAction"}},
		},
	}
	r, err := FromHandler(h, newDesc(t))
	if err != nil {
		t.Fatalf("actions do not need a resource schema: %v", err)
	}
	if r.Action("myAction") == nil {
		t.Error("expected action myAction")
	}
	if r.ResourceSchema() != nil {
		t.Error("expected no resource schema")
	}
}

func TestFromHandler_EmptyHandler(t *testing.T) {
	_, err := FromHandler(annotation.Handler{}, newDesc(t))
	if !errors.Is(err, apidesc.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFromHandler_ActionsSingularAndPlural(t *testing.T) {
	singular := annotation.Handler{
		Methods: []annotation.Method{
			{Name: "A1", Action: &annotation.Action{Name: "a1"}},
			{Name: "A2", Action: &annotation.Action{Name: "a2"}},
		},
	}
	plural := annotation.Handler{
		Methods: []annotation.Method{
			{Name: "Actions", Actions: []annotation.Action{{Name: "a1"}, {Name: "a2"}}},
		},
	}

	r1, err := FromHandler(singular, newDesc(t))
	if err != nil {
		t.Fatal(err)
	}
	r2, err := FromHandler(plural, newDesc(t))
	if err != nil {
		t.Fatal(err)
	}

	names := func(r *apidesc.Resource) []string {
		var out []string
		for _, a := range r.Actions() {
			out = append(out, a.Name())
		}
		return out
	}
	want := []string{"a1", "a2"}
	if got := names(r1); !slices.Equal(got, want) {
		t.Errorf("singular: expected %v, got %v", want, got)
	}
	if got := names(r2); !slices.Equal(got, want) {
		t.Errorf("plural: expected %v, got %v", want, got)
	}
	if !r1.Equal(r2) {
		t.Error("singular and plural annotations should build equal resources")
	}
}

func TestFromHandler_QueriesSingularAndPlural(t *testing.T) {
	schema := &annotation.Schema{JSON: responseSchema}
	singular := annotation.Handler{
		Schema: schema,
		Methods: []annotation.Method{
			{Name: "Q1", Query: &annotation.Query{Type: apidesc.QueryTypeID, ID: "query1"}},
			{Name: "Q2", Query: &annotation.Query{Type: apidesc.QueryTypeID, ID: "query2"}},
		},
	}
	plural := annotation.Handler{
		Schema: schema,
		Methods: []annotation.Method{
			{Name: "Queries", Queries: []annotation.Query{
				{Type: apidesc.QueryTypeID, ID: "query1"},
				{Type: apidesc.QueryTypeID, ID: "query2"},
			}},
		},
	}

	for name, h := range map[string]annotation.Handler{"singular": singular, "plural": plural} {
		t.Run(name, func(t *testing.T) {
			r, err := FromHandler(h, newDesc(t))
			if err != nil {
				t.Fatal(err)
			}
			qs := r.Queries()
			if len(qs) != 2 || qs[0].QueryID() != "query1" || qs[1].QueryID() != "query2" {
				t.Errorf("unexpected queries %v", qs)
			}
		})
	}
}

func TestFromHandler_MethodNameDefaults(t *testing.T) {
	h := annotation.Handler{
		Schema: &annotation.Schema{JSON: responseSchema},
		Methods: []annotation.Method{
			{Name: "Promote", Action: &annotation.Action{}},
			{Name: "ByEmail", Query: &annotation.Query{Type: apidesc.QueryTypeID}},
			{Name: "Search", Query: &annotation.Query{Type: apidesc.QueryTypeFilter}},
		},
	}
	r, err := FromHandler(h, newDesc(t))
	if err != nil {
		t.Fatal(err)
	}
	if r.Action("Promote") == nil {
		t.Error("action name should default to the method name")
	}
	qs := r.Queries()
	if qs[0].QueryID() != "ByEmail" {
		t.Errorf("ID query should default to the method name, got %q", qs[0].QueryID())
	}
	if qs[1].QueryID() != "" {
		t.Errorf("filter query should not get an ID, got %q", qs[1].QueryID())
	}
}

func TestFromHandler_FailureLeavesDescriptionUntouched(t *testing.T) {
	desc := newDesc(t)
	h := annotation.Handler{
		Schema: &annotation.Schema{ID: "frapi:response", JSON: responseSchema},
		Methods: []annotation.Method{
			{Name: "Read", Read: &annotation.Read{
				Operation: annotation.Operation{
					Errors: []annotation.Error{{ID: "frapi:myerror", Code: 500, Description: "boom"}},
				},
			}},
			{Name: "A", Action: &annotation.Action{Name: "dup"}},
			{Name: "B", Action: &annotation.Action{Name: "dup"}},
		},
	}

	if _, err := FromHandler(h, desc); !errors.Is(err, apidesc.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if desc.Definitions().Len() != 0 || desc.Errors().Len() != 0 {
		t.Errorf("failed scan registered %d definitions and %d errors",
			desc.Definitions().Len(), desc.Errors().Len())
	}
}

func TestFromHandler_Conflicts(t *testing.T) {
	desc := newDesc(t)
	first := annotation.Handler{Schema: &annotation.Schema{ID: "frapi:response", JSON: responseSchema}}
	if _, err := FromHandler(first, desc); err != nil {
		t.Fatal(err)
	}

	again, err := FromHandler(first, desc)
	if err != nil {
		t.Fatalf("equal schema should be reused: %v", err)
	}
	if again.ResourceSchema().Reference() != apidesc.DefinitionRef("frapi:response") {
		t.Errorf("unexpected reference %v", again.ResourceSchema().Reference())
	}

	other := annotation.Handler{Schema: &annotation.Schema{ID: "frapi:response", JSON: `{"type":"string"}`}}
	if _, err := FromHandler(other, desc); !errors.Is(err, apidesc.ErrRegistryConflict) {
		t.Errorf("expected registry conflict, got %v", err)
	}

	within := annotation.Handler{
		Methods: []annotation.Method{{Name: "A", Action: &annotation.Action{
			Request:  &annotation.Schema{ID: "frapi:payload", JSON: responseSchema},
			Response: &annotation.Schema{ID: "frapi:payload", JSON: `{"type":"string"}`},
		}}},
	}
	if _, err := FromHandler(within, desc); !errors.Is(err, apidesc.ErrRegistryConflict) {
		t.Errorf("expected registry conflict within one scan, got %v", err)
	}
	if desc.Definitions().Len() != 1 {
		t.Errorf("expected 1 definition, got %d", desc.Definitions().Len())
	}
}

func TestFromHandler_UndefinedReferences(t *testing.T) {
	tests := []struct {
		name string
		h    annotation.Handler
	}{
		{"schema", annotation.Handler{Schema: &annotation.Schema{ID: "frapi:nope"}}},
		{"error", annotation.Handler{Methods: []annotation.Method{{Name: "A", Action: &annotation.Action{
			Operation: annotation.Operation{Errors: []annotation.Error{{ID: "frapi:nope"}}},
		}}}}},
		{"empty schema source", annotation.Handler{Schema: &annotation.Schema{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromHandler(tt.h, newDesc(t)); !errors.Is(err, apidesc.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestFromType(t *testing.T) {
	desc := newDesc(t)
	r, err := FromType(testfixtures.UserHandler{}, desc)
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}

	if got := len(r.Operations()); got != 7 {
		t.Errorf("expected 7 operations, got %d", got)
	}
	if got := r.ResourceSchema().Reference(); got != apidesc.DefinitionRef("frapi:user") {
		t.Errorf("schema ID should come from User.SchemaID, got %v", got)
	}
	if r.Action("Promote") == nil || r.Action("Promote").Request() == nil {
		t.Error("expected Promote action with request schema")
	}
	if r.Queries()[0].QueryID() != "ByEmail" {
		t.Errorf("unexpected query id %q", r.Queries()[0].QueryID())
	}
	if got := desc.Errors().Names(); !slices.Equal(got, []string{"frapi:notfound"}) {
		t.Errorf("unexpected errors table %v", got)
	}
	if del := r.Delete().Errors()[0]; del.Reference() != apidesc.ErrorRef("frapi:notfound") {
		t.Errorf("delete should reference the shared error, got %v", del.Reference())
	}

	if _, err := FromType(testfixtures.PostHandler{}, desc); err != nil {
		t.Fatalf("second handler sharing an error: %v", err)
	}
	if desc.Errors().Len() != 1 {
		t.Errorf("shared error registered %d times", desc.Errors().Len())
	}
}

func TestMount(t *testing.T) {
	desc := newDesc(t)
	scanner := New()

	r, err := scanner.MountType("/users", testfixtures.UserHandler{}, desc)
	if err != nil {
		t.Fatalf("MountType: %v", err)
	}
	if got, ok := desc.Resource("/users"); !ok || got != r {
		t.Error("resource not bound to /users")
	}
	if _, ok := desc.Definitions().Get("frapi:user"); !ok {
		t.Error("expected frapi:user definition")
	}

	// Mounting the same handler again is a no-op.
	if _, err := scanner.MountType("/users", testfixtures.UserHandler{}, desc); err != nil {
		t.Errorf("remounting an equal resource: %v", err)
	}

	rejected := annotation.Handler{
		Schema: &annotation.Schema{ID: "frapi:other", JSON: responseSchema},
		Methods: []annotation.Method{{Name: "Read", Read: &annotation.Read{
			Operation: annotation.Operation{Errors: []annotation.Error{{ID: "frapi:othererr", Code: 409, Description: "x"}}},
		}}},
	}
	tests := []struct {
		name string
		path string
		want error
	}{
		{"path bound to another resource", "/users", apidesc.ErrRegistryConflict},
		{"empty path", "", apidesc.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := scanner.Mount(tt.path, rejected, desc); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, ok := desc.Definitions().Get("frapi:other"); ok {
				t.Error("definition registered for a rejected mount")
			}
			if _, ok := desc.Errors().Get("frapi:othererr"); ok {
				t.Error("error registered for a rejected mount")
			}
		})
	}

	if _, err := scanner.MountType("/missing", testfixtures.MissingMethodHandler{}, desc); !errors.Is(err, apidesc.ErrConfiguration) {
		t.Errorf("expected configuration error for missing method, got %v", err)
	}
}

func TestFromType_Errors(t *testing.T) {
	if _, err := FromType(testfixtures.MissingMethodHandler{}, newDesc(t)); !errors.Is(err, apidesc.ErrConfiguration) {
		t.Errorf("expected configuration error for missing method, got %v", err)
	}
	if _, err := FromType(struct{}{}, newDesc(t)); !errors.Is(err, apidesc.ErrConfiguration) {
		t.Errorf("expected configuration error for unannotated type, got %v", err)
	}
}

func TestScanner_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := annotation.Handler{Methods: []annotation.Method{{Name: "Go", Action: &annotation.Action{}}}}
	if _, err := New().WithLogger(logger).FromHandler(h, newDesc(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "discovered operation") || !strings.Contains(buf.String(), "method=Go") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestSchemaID(t *testing.T) {
	if got := schemaID(reflect.TypeFor[testfixtures.User]()); got != "frapi:user" {
		t.Errorf("expected frapi:user, got %q", got)
	}
	if got := schemaID(reflect.TypeFor[testfixtures.Post]()); got != "" {
		t.Errorf("expected no ID, got %q", got)
	}
}
