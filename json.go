package apidesc

import (
	"encoding/json"

	"golang.org/x/text/language"

	"github.com/broady/apidesc/i18n"
)

// JSON serialization of the description tree.
// Absent optionals are omitted, references render as {"$ref": "..."} and
// translatable text renders as the string resolved for the requested locale.

// MarshalLocalized encodes the description with text resolved by tr for tag.
// A nil tr renders every key as its fallback.
func (d *APIDescription) MarshalLocalized(tr *i18n.Translator, tag language.Tag) ([]byte, error) {
	return json.Marshal(encoder{tr: tr, tag: tag}.description(d))
}

// MarshalJSON implements json.Marshaler without a translator.
func (d *APIDescription) MarshalJSON() ([]byte, error) {
	return d.MarshalLocalized(nil, language.Und)
}

// MarshalLocalized encodes the resource with text resolved by tr for tag.
func (r *Resource) MarshalLocalized(tr *i18n.Translator, tag language.Tag) ([]byte, error) {
	return json.Marshal(encoder{tr: tr, tag: tag}.resource(r))
}

// MarshalJSON implements json.Marshaler without a translator.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return r.MarshalLocalized(nil, language.Und)
}

type encoder struct {
	tr  *i18n.Translator
	tag language.Tag
}

func (e encoder) text(t i18n.Text) string {
	return e.tr.Resolve(t, e.tag)
}

func (e encoder) description(d *APIDescription) any {
	definitions := make(map[string]any, d.definitions.Len())
	for _, name := range d.definitions.Names() {
		s, _ := d.definitions.Get(name)
		definitions[name] = e.schema(s)
	}
	errs := make(map[string]any, d.errors.Len())
	for _, name := range d.errors.Names() {
		v, _ := d.errors.Get(name)
		errs[name] = e.apiError(v)
	}
	paths := make(map[string]any, len(d.pathOrder))
	for _, p := range d.pathOrder {
		paths[p] = e.resource(d.paths[p])
	}
	return &struct {
		ID          string         `json:"id"`
		Version     string         `json:"version,omitempty"`
		Description string         `json:"description,omitempty"`
		Definitions map[string]any `json:"definitions,omitempty"`
		Errors      map[string]any `json:"errors,omitempty"`
		Paths       map[string]any `json:"paths,omitempty"`
	}{
		ID:          d.id,
		Version:     d.version,
		Description: e.text(d.description),
		Definitions: definitions,
		Errors:      errs,
		Paths:       paths,
	}
}

func (e encoder) resource(r *Resource) any {
	var actions, queries []any
	for _, a := range r.actions {
		actions = append(actions, e.action(a))
	}
	for _, q := range r.queries {
		queries = append(queries, e.query(q))
	}
	return &struct {
		Description    string `json:"description,omitempty"`
		ResourceSchema any    `json:"resourceSchema,omitempty"`
		Create         any    `json:"create,omitempty"`
		Read           any    `json:"read,omitempty"`
		Update         any    `json:"update,omitempty"`
		Delete         any    `json:"delete,omitempty"`
		Patch          any    `json:"patch,omitempty"`
		Actions        []any  `json:"actions,omitempty"`
		Queries        []any  `json:"queries,omitempty"`
	}{
		Description:    e.text(r.description),
		ResourceSchema: e.optionalSchema(r.resourceSchema),
		Create:         e.create(r.create),
		Read:           e.read(r.read),
		Update:         e.update(r.update),
		Delete:         e.delete(r.delete),
		Patch:          e.patch(r.patch),
		Actions:        actions,
		Queries:        queries,
	}
}

// common holds the encoded fields shared by every operation.
type common struct {
	Description       string   `json:"description,omitempty"`
	Parameters        []any    `json:"parameters,omitempty"`
	Errors            []any    `json:"errors,omitempty"`
	SupportedLocales  []string `json:"supportedLocales,omitempty"`
	SupportedContexts []string `json:"supportedContexts,omitempty"`
	Stability         string   `json:"stability,omitempty"`
}

func (e encoder) common(o *Operation) common {
	c := common{
		Description:       e.text(o.description),
		SupportedLocales:  o.supportedLocales,
		SupportedContexts: o.supportedContexts,
		Stability:         string(o.stability),
	}
	for _, p := range o.parameters {
		c.Parameters = append(c.Parameters, e.parameter(p))
	}
	for _, v := range o.errors {
		c.Errors = append(c.Errors, e.apiError(v))
	}
	return c
}

func (e encoder) create(c *Create) any {
	if c == nil {
		return nil
	}
	return &struct {
		common
		Mode          string `json:"mode"`
		MvccSupported bool   `json:"mvccSupported,omitempty"`
	}{e.common(&c.Operation), string(c.mode), c.mvccSupported}
}

func (e encoder) read(r *Read) any {
	if r == nil {
		return nil
	}
	return e.common(&r.Operation)
}

func (e encoder) update(u *Update) any {
	if u == nil {
		return nil
	}
	return &struct {
		common
		MvccSupported bool `json:"mvccSupported,omitempty"`
	}{e.common(&u.Operation), u.mvccSupported}
}

func (e encoder) delete(d *Delete) any {
	if d == nil {
		return nil
	}
	return &struct {
		common
		MvccSupported bool `json:"mvccSupported,omitempty"`
	}{e.common(&d.Operation), d.mvccSupported}
}

func (e encoder) patch(p *Patch) any {
	if p == nil {
		return nil
	}
	return &struct {
		common
		MvccSupported bool             `json:"mvccSupported,omitempty"`
		Operations    []PatchOperation `json:"operations"`
	}{e.common(&p.Operation), p.mvccSupported, p.operations}
}

func (e encoder) action(a *Action) any {
	return &struct {
		Name string `json:"name"`
		common
		Request  any `json:"request,omitempty"`
		Response any `json:"response,omitempty"`
	}{
		Name:     a.name,
		common:   e.common(&a.Operation),
		Request:  e.optionalSchema(a.request),
		Response: e.optionalSchema(a.response),
	}
}

func (e encoder) query(q *Query) any {
	return &struct {
		Type    QueryType `json:"type"`
		QueryID string    `json:"queryId,omitempty"`
		common
		CountPolicies     []CountPolicy `json:"countPolicies,omitempty"`
		PagingModes       []PagingMode  `json:"pagingModes,omitempty"`
		QueryableFields   []string      `json:"queryableFields,omitempty"`
		SupportedSortKeys []string      `json:"supportedSortKeys,omitempty"`
	}{
		Type:              q.queryType,
		QueryID:           q.queryID,
		common:            e.common(&q.Operation),
		CountPolicies:     q.countPolicies,
		PagingModes:       q.pagingModes,
		QueryableFields:   q.queryableFields,
		SupportedSortKeys: q.sortKeys,
	}
}

func (e encoder) parameter(p *Parameter) any {
	return &struct {
		Name         string          `json:"name"`
		Type         string          `json:"type"`
		Description  string          `json:"description,omitempty"`
		DefaultValue string          `json:"defaultValue,omitempty"`
		EnumValues   []string        `json:"enumValues,omitempty"`
		Source       ParameterSource `json:"source"`
		Required     bool            `json:"required,omitempty"`
	}{
		Name:         p.name,
		Type:         p.typ,
		Description:  e.text(p.description),
		DefaultValue: p.defaultValue,
		EnumValues:   p.enumValues,
		Source:       p.source,
		Required:     p.required,
	}
}

func (e encoder) apiError(v *Error) any {
	if v.IsReference() {
		return v.ref
	}
	return &struct {
		Code        int    `json:"code"`
		Description string `json:"description"`
		Schema      any    `json:"schema,omitempty"`
	}{
		Code:        v.code,
		Description: e.text(v.description),
		Schema:      e.optionalSchema(v.schema),
	}
}

// optionalSchema returns nil for a nil schema so omitempty drops the field.
func (e encoder) optionalSchema(s *Schema) any {
	if s == nil {
		return nil
	}
	return e.schema(s)
}

func (e encoder) schema(s *Schema) any {
	if s.IsReference() {
		return s.ref
	}
	return e.localizeSchema(s.Value())
}

// localizeSchema resolves string-valued "title" and "description" keywords at
// every depth of an inline schema. v is a private copy and is modified in
// place.
func (e encoder) localizeSchema(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if s, ok := child.(string); ok && (k == "title" || k == "description") {
				v[k] = e.text(i18n.Wrap(s))
				continue
			}
			v[k] = e.localizeSchema(child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = e.localizeSchema(child)
		}
		return v
	default:
		return v
	}
}
