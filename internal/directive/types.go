package directive

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"github.com/broady/apidesc/internal/jsonfield"
)

// converter turns go/types struct types into JSON-schema-like objects,
// following the same rules as scan.DeriveSchema does for reflect types.
type converter struct {
	visiting map[*types.Named]bool
}

func newConverter() *converter {
	return &converter{visiting: make(map[*types.Named]bool)}
}

func (c *converter) schema(t types.Type) (map[string]any, error) {
	t = types.Unalias(t)
	if named, ok := t.(*types.Named); ok {
		if s := specialSchema(named); s != nil {
			return s, nil
		}
		if _, isStruct := named.Underlying().(*types.Struct); isStruct {
			if c.visiting[named] {
				return map[string]any{"type": "object"}, nil
			}
			c.visiting[named] = true
			defer delete(c.visiting, named)
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		return basicSchema(u)

	case *types.Pointer:
		return c.schema(u.Elem())

	case *types.Slice:
		if b, ok := u.Elem().Underlying().(*types.Basic); ok && b.Kind() == types.Byte {
			return map[string]any{"type": "string", "format": "byte"}, nil
		}
		items, err := c.schema(u.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil

	case *types.Array:
		items, err := c.schema(u.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items, "minItems": u.Len(), "maxItems": u.Len()}, nil

	case *types.Map:
		if err := validateMapKey(u.Key()); err != nil {
			return nil, err
		}
		value, err := c.schema(u.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": value}, nil

	case *types.Interface:
		return map[string]any{}, nil

	case *types.Struct:
		return c.structSchema(u)

	default:
		return nil, fmt.Errorf("unsupported type: %s", t)
	}
}

func (c *converter) structSchema(st *types.Struct) (map[string]any, error) {
	var fields []jsonfield.Field
	if err := c.collectFields(st, 0, map[*types.Struct]bool{st: true}, &fields); err != nil {
		return nil, err
	}
	properties, required := jsonfield.Resolve(fields)
	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s, nil
}

func (c *converter) collectFields(st *types.Struct, depth int, embedded map[*types.Struct]bool, fields *[]jsonfield.Field) error {
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))
		jsonTag := tag.Get("json")

		if field.Embedded() && jsonTag == "" {
			ft := field.Type()
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = ptr.Elem()
			}
			if inner, ok := ft.Underlying().(*types.Struct); ok {
				if embedded[inner] {
					continue
				}
				embedded[inner] = true
				err := c.collectFields(inner, depth+1, embedded, fields)
				delete(embedded, inner)
				if err != nil {
					return err
				}
				continue
			}
		}
		if !field.Exported() {
			continue
		}

		name, stringEncoded, skip := jsonfield.ParseTag(jsonTag, field.Name())
		if skip {
			continue
		}

		var prop map[string]any
		if stringEncoded {
			prop = map[string]any{"type": "string"}
		} else {
			var err error
			if prop, err = c.schema(field.Type()); err != nil {
				return fmt.Errorf("field %s: %w", field.Name(), err)
			}
		}
		if desc := tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		*fields = append(*fields, jsonfield.Field{
			Name:     name,
			Depth:    depth,
			Tagged:   jsonTag != "" && !strings.HasPrefix(jsonTag, ","),
			Schema:   prop,
			Required: jsonfield.HasRule(tag.Get("validate"), "required"),
		})
	}
	return nil
}

func basicSchema(b *types.Basic) (map[string]any, error) {
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		return map[string]any{"type": "boolean"}, nil
	case info&types.IsInteger != 0:
		return map[string]any{"type": "integer"}, nil
	case info&types.IsFloat != 0:
		return map[string]any{"type": "number"}, nil
	case info&types.IsString != 0:
		return map[string]any{"type": "string"}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", b)
	}
}

// specialSchema handles named types whose JSON encoding differs from their
// underlying type.
func specialSchema(n *types.Named) map[string]any {
	obj := n.Obj()
	if obj.Pkg() == nil {
		return nil
	}
	switch obj.Pkg().Path() + "." + obj.Name() {
	case "time.Time":
		return map[string]any{"type": "string", "format": "date-time"}
	case "time.Duration":
		return map[string]any{"type": "integer"}
	case "encoding/json.Number":
		return map[string]any{"type": "number"}
	case "encoding/json.RawMessage":
		return map[string]any{}
	}
	return nil
}

func validateMapKey(t types.Type) error {
	if b, ok := t.Underlying().(*types.Basic); ok && b.Info()&(types.IsString|types.IsInteger) != 0 {
		return nil
	}
	for _, typ := range []types.Type{t, types.NewPointer(t)} {
		ms := types.NewMethodSet(typ)
		if ms.Lookup(nil, "MarshalText") != nil {
			return nil
		}
	}
	return fmt.Errorf("unsupported map key type: %s", t)
}
