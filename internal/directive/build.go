package directive

import (
	"encoding/json"
	"fmt"
	"go/types"

	"github.com/broady/apidesc"
	"github.com/broady/apidesc/annotation"
)

// build assembles the annotation table of one handler type.
func (p *parser) build(h *handlerDecl) (Handler, error) {
	var attrs handlerAttrs
	if err := decode(&attrs, h.directive); err != nil {
		return Handler{}, err
	}

	out := Handler{
		TypeName: h.typeName,
		Path:     attrs.Path,
		Pos:      h.directive.Pos,
	}
	if attrs.Schema != "" {
		s, err := p.schema(attrs.Schema, h.directive)
		if err != nil {
			return Handler{}, err
		}
		out.Spec.Schema = s
	}

	for _, m := range p.methods {
		if m.recv != h.typeName {
			continue
		}
		method, err := p.method(m)
		if err != nil {
			return Handler{}, err
		}
		out.Spec.Methods = append(out.Spec.Methods, method)
	}
	return out, nil
}

// method converts the directives of one method. Error and param directives
// attach to the closest preceding operation directive.
func (p *parser) method(m methodDecl) (annotation.Method, error) {
	out := annotation.Method{Name: m.name}
	var current *annotation.Operation

	for _, d := range m.directives {
		switch d.Kind {
		case KindError:
			if current == nil {
				return out, fmt.Errorf("%s: %serror must follow an operation directive", d.Pos, prefix)
			}
			e, err := p.apiError(d)
			if err != nil {
				return out, err
			}
			current.Errors = append(current.Errors, e)
			continue

		case KindParam:
			if current == nil {
				return out, fmt.Errorf("%s: %sparam must follow an operation directive", d.Pos, prefix)
			}
			param, err := p.param(d)
			if err != nil {
				return out, err
			}
			current.Parameters = append(current.Parameters, param)
			continue
		}

		op, err := p.operation(&out, d)
		if err != nil {
			return out, err
		}
		current = op
	}
	return out, nil
}

// operation adds the operation declared by d to m and returns its common
// attributes so that following error and param directives can extend them.
func (p *parser) operation(m *annotation.Method, d Directive) (*annotation.Operation, error) {
	dup := func(set bool) error {
		if set {
			return fmt.Errorf("%s: duplicate %s%s on method %s", d.Pos, prefix, d.Kind, m.Name)
		}
		return nil
	}

	switch d.Kind {
	case KindCreate:
		var a createAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		if err := dup(m.Create != nil); err != nil {
			return nil, err
		}
		m.Create = &annotation.Create{
			Operation:     a.commonAttrs.operation(),
			Mode:          apidesc.CreateMode(a.Mode),
			MvccSupported: a.Mvcc,
		}
		return &m.Create.Operation, nil

	case KindRead:
		var a readAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		if err := dup(m.Read != nil); err != nil {
			return nil, err
		}
		m.Read = &annotation.Read{Operation: a.commonAttrs.operation()}
		return &m.Read.Operation, nil

	case KindUpdate:
		var a mvccAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		if err := dup(m.Update != nil); err != nil {
			return nil, err
		}
		m.Update = &annotation.Update{Operation: a.commonAttrs.operation(), MvccSupported: a.Mvcc}
		return &m.Update.Operation, nil

	case KindDelete:
		var a mvccAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		if err := dup(m.Delete != nil); err != nil {
			return nil, err
		}
		m.Delete = &annotation.Delete{Operation: a.commonAttrs.operation(), MvccSupported: a.Mvcc}
		return &m.Delete.Operation, nil

	case KindPatch:
		var a patchAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		if err := dup(m.Patch != nil); err != nil {
			return nil, err
		}
		ops := make([]apidesc.PatchOperation, 0, len(a.Operations))
		for _, o := range a.Operations {
			ops = append(ops, apidesc.PatchOperation(o))
		}
		m.Patch = &annotation.Patch{Operation: a.commonAttrs.operation(), MvccSupported: a.Mvcc, Operations: ops}
		return &m.Patch.Operation, nil

	case KindAction:
		var a actionAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		action := annotation.Action{Operation: a.commonAttrs.operation(), Name: a.Name}
		var err error
		if action.Request, err = p.optionalSchema(a.Request, d); err != nil {
			return nil, err
		}
		if action.Response, err = p.optionalSchema(a.Response, d); err != nil {
			return nil, err
		}
		m.Actions = append(m.Actions, action)
		return &m.Actions[len(m.Actions)-1].Operation, nil

	case KindQuery:
		var a queryAttrs
		if err := decode(&a, d); err != nil {
			return nil, err
		}
		q := annotation.Query{
			Operation:       a.commonAttrs.operation(),
			Type:            apidesc.QueryType(a.Type),
			ID:              a.ID,
			QueryableFields: a.Fields,
			SortKeys:        a.SortKeys,
		}
		for _, c := range a.CountPolicies {
			q.CountPolicies = append(q.CountPolicies, apidesc.CountPolicy(c))
		}
		for _, pm := range a.PagingModes {
			q.PagingModes = append(q.PagingModes, apidesc.PagingMode(pm))
		}
		m.Queries = append(m.Queries, q)
		return &m.Queries[len(m.Queries)-1].Operation, nil
	}
	return nil, fmt.Errorf("%s: %s%s is not an operation", d.Pos, prefix, d.Kind)
}

func (a commonAttrs) operation() annotation.Operation {
	return annotation.Operation{
		Description: a.Description,
		Stability:   apidesc.Stability(a.Stability),
		Locales:     a.Locales,
		Contexts:    a.Contexts,
	}
}

func (p *parser) apiError(d Directive) (annotation.Error, error) {
	var a errorAttrs
	if err := decode(&a, d); err != nil {
		return annotation.Error{}, err
	}
	e := annotation.Error{ID: a.ID, Code: a.Code, Description: a.Description}
	var err error
	if e.Schema, err = p.optionalSchema(a.Schema, d); err != nil {
		return annotation.Error{}, err
	}
	return e, nil
}

func (p *parser) param(d Directive) (annotation.Parameter, error) {
	var a paramAttrs
	if err := decode(&a, d); err != nil {
		return annotation.Parameter{}, err
	}
	return annotation.Parameter{
		Name:         a.Name,
		Type:         a.Type,
		Description:  a.Description,
		DefaultValue: a.Default,
		EnumValues:   a.Enum,
		Source:       apidesc.ParameterSource(a.Source),
		Required:     a.Required,
	}, nil
}

func (p *parser) optionalSchema(typeName string, d Directive) (*annotation.Schema, error) {
	if typeName == "" {
		return nil, nil
	}
	return p.schema(typeName, d)
}

// schema converts the named package-level struct type into an inline schema
// carrying the ID from its schema directive, if any.
func (p *parser) schema(typeName string, d Directive) (*annotation.Schema, error) {
	obj := p.pkg.Types.Scope().Lookup(typeName)
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%s: %s%s: %q is not a type in package %s", d.Pos, prefix, d.Kind, typeName, p.pkg.PkgPath)
	}
	if _, ok := tn.Type().Underlying().(*types.Struct); !ok {
		return nil, fmt.Errorf("%s: %s%s: %s is not a struct type", d.Pos, prefix, d.Kind, typeName)
	}
	value, err := p.conv.schema(tn.Type())
	if err != nil {
		return nil, fmt.Errorf("%s: %s%s: schema for %s: %w", d.Pos, prefix, d.Kind, typeName, err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode schema for %s: %w", typeName, err)
	}
	return &annotation.Schema{ID: p.schemaID[typeName], JSON: string(raw)}, nil
}
