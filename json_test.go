package apidesc

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/broady/apidesc/i18n"
)

func buildUsers(t *testing.T) *APIDescription {
	t.Helper()
	d := newDescription(t)
	ref := must(d.Definitions().Register("frapi:user", userSchema(t)))(t)
	errRef := must(d.Errors().Register("frapi:notfound", notFound(t)))(t)

	read := must(NewRead().
		Description("i18n:api#read").
		Error(ErrorReference(errRef)).
		Parameter(must(NewParameter("fields", "string").Description("Fields to return").Build())(t)).
		Build())(t)
	action := must(NewAction().Name("promote").Response(SchemaRef(ref)).Build())(t)
	query := must(NewQuery().Type(QueryTypeID).QueryID("byEmail").Build())(t)

	r := must(NewResource().ResourceSchema(SchemaRef(ref)).Read(read).Action(action).Query(query).Build())(t)
	if err := d.AddResource("/users", r); err != nil {
		t.Fatal(err)
	}
	return d
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON %s: %v", data, err)
	}
	return m
}

func TestMarshalLocalized(t *testing.T) {
	cat := i18n.NewCatalog()
	cat.Set("api", language.French, "read", "Lire un utilisateur")
	cat.Set("api", language.French, "user", "Un utilisateur")
	cat.Set("api", language.English, "read", "Read a user")
	tr := i18n.NewTranslator(cat, language.English)

	data, err := buildUsers(t).MarshalLocalized(tr, language.MustParse("fr-CA"))
	if err != nil {
		t.Fatal(err)
	}
	m := decode(t, data)

	if m["id"] != "frapi:test" || m["version"] != "1.0" {
		t.Errorf("unexpected header %v %v", m["id"], m["version"])
	}
	if _, ok := m["description"]; ok {
		t.Error("absent description should be omitted")
	}

	user := m["definitions"].(map[string]any)["frapi:user"].(map[string]any)
	if user["description"] != "Un utilisateur" {
		t.Errorf("schema description not localized: %v", user["description"])
	}
	name := user["properties"].(map[string]any)["name"].(map[string]any)
	if name["title"] != "Name" {
		t.Errorf("literal title should be unchanged: %v", name["title"])
	}

	notFound := m["errors"].(map[string]any)["frapi:notfound"].(map[string]any)
	if notFound["code"] != float64(404) {
		t.Errorf("unexpected code %v", notFound["code"])
	}
	if notFound["description"] != "api#not_found" {
		t.Errorf("missing key should fall back to the unprefixed raw text, got %v", notFound["description"])
	}

	users := m["paths"].(map[string]any)["/users"].(map[string]any)
	if users["resourceSchema"].(map[string]any)["$ref"] != "#/definitions/frapi:user" {
		t.Errorf("unexpected resource schema %v", users["resourceSchema"])
	}
	for _, absent := range []string{"create", "update", "delete", "patch", "description"} {
		if _, ok := users[absent]; ok {
			t.Errorf("absent %s should be omitted", absent)
		}
	}

	read := users["read"].(map[string]any)
	if read["description"] != "Lire un utilisateur" {
		t.Errorf("operation description not localized: %v", read["description"])
	}
	if read["stability"] != "STABLE" {
		t.Errorf("unexpected stability %v", read["stability"])
	}
	readErrs := read["errors"].([]any)
	if readErrs[0].(map[string]any)["$ref"] != "#/errors/frapi:notfound" {
		t.Errorf("unexpected error entry %v", readErrs[0])
	}
	param := read["parameters"].([]any)[0].(map[string]any)
	if param["name"] != "fields" || param["source"] != "ADDITIONAL" {
		t.Errorf("unexpected parameter %v", param)
	}

	action := users["actions"].([]any)[0].(map[string]any)
	if action["name"] != "promote" {
		t.Errorf("unexpected action %v", action)
	}
	if _, ok := action["request"]; ok {
		t.Error("absent request should be omitted")
	}
	query := users["queries"].([]any)[0].(map[string]any)
	if query["type"] != "ID" || query["queryId"] != "byEmail" {
		t.Errorf("unexpected query %v", query)
	}
}

func TestMarshalLocalizedIsRepeatable(t *testing.T) {
	cat := i18n.NewCatalog()
	cat.Set("api", language.French, "read", "Lire")
	cat.Set("api", language.German, "read", "Lesen")
	tr := i18n.NewTranslator(cat, language.English)
	d := buildUsers(t)

	for _, tc := range []struct {
		tag  language.Tag
		want string
	}{
		{language.French, `"Lire"`},
		{language.German, `"Lesen"`},
		{language.French, `"Lire"`},
		{language.Japanese, `"api#read"`},
	} {
		data, err := d.MarshalLocalized(tr, tc.tag)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), tc.want) {
			t.Errorf("%s: expected %s in %s", tc.tag, tc.want, data)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(buildUsers(t))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), i18n.KeyPrefix) {
		t.Errorf("keys should render without prefix: %s", data)
	}

	r := must(NewResource().Create(must(NewCreate().Build())(t)).Build())(t)
	data, err = json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	m := decode(t, data)
	if m["create"].(map[string]any)["mode"] != "ID_FROM_CLIENT" {
		t.Errorf("unexpected create %s", data)
	}
}
