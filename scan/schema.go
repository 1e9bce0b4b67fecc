package scan

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/broady/apidesc/internal/jsonfield"
)

// DeriveSchema builds a JSON-schema-like object describing t, the way
// encoding/json would encode a value of that type.
//
// Struct fields use their json tag names and are skipped with json:"-".
// Fields whose validate tag contains "required" are listed under
// "required". A description struct tag becomes the property description and
// may be a translation key. Embedded structs without a json tag are
// flattened, and a name defined at several depths resolves to the shallowest
// field as in encoding/json. Recursive types are cut at the second visit with
// a bare {"type":"object"}.
func DeriveSchema(t reflect.Type) (map[string]any, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}
	d := &deriver{visiting: make(map[reflect.Type]bool)}
	return d.typeSchema(t)
}

type deriver struct {
	visiting map[reflect.Type]bool
}

func (d *deriver) typeSchema(t reflect.Type) (map[string]any, error) {
	if s := specialSchema(t); s != nil {
		return s, nil
	}
	if err := checkUnsupportedType(t); err != nil {
		return nil, err
	}

	switch t.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return map[string]any{"type": "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil

	case reflect.String:
		return map[string]any{"type": "string"}, nil

	case reflect.Slice:
		// []byte is encoded as base64
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}, nil
		}
		items, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil

	case reflect.Array:
		items, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items, "minItems": t.Len(), "maxItems": t.Len()}, nil

	case reflect.Map:
		if err := validateMapKeyType(t.Key()); err != nil {
			return nil, err
		}
		value, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": value}, nil

	case reflect.Ptr:
		return d.typeSchema(t.Elem())

	case reflect.Interface:
		return map[string]any{}, nil

	case reflect.Struct:
		return d.structSchema(t)

	default:
		return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t.String(), t.Kind())
	}
}

func (d *deriver) structSchema(t reflect.Type) (map[string]any, error) {
	if d.visiting[t] {
		return map[string]any{"type": "object"}, nil
	}
	d.visiting[t] = true
	defer delete(d.visiting, t)

	var fields []jsonfield.Field
	if err := d.collectFields(t, 0, map[reflect.Type]bool{t: true}, &fields); err != nil {
		return nil, err
	}
	properties, required := jsonfield.Resolve(fields)

	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s, nil
}

// collectFields gathers the fields of t and of its untagged embedded structs.
// embedded holds the struct types on the current embedding path; a struct
// that embeds itself is walked only once.
func (d *deriver) collectFields(t reflect.Type, depth int, embedded map[reflect.Type]bool, fields *[]jsonfield.Field) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if field.Anonymous && jsonTag == "" {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if embedded[ft] {
					continue
				}
				embedded[ft] = true
				err := d.collectFields(ft, depth+1, embedded, fields)
				delete(embedded, ft)
				if err != nil {
					return err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		name, stringEncoded, skip := jsonfield.ParseTag(jsonTag, field.Name)
		if skip {
			continue
		}

		var prop map[string]any
		if stringEncoded {
			prop = map[string]any{"type": "string"}
		} else {
			var err error
			if prop, err = d.typeSchema(field.Type); err != nil {
				return fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
			}
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		*fields = append(*fields, jsonfield.Field{
			Name:     name,
			Depth:    depth,
			Tagged:   jsonTag != "" && !strings.HasPrefix(jsonTag, ","),
			Schema:   prop,
			Required: jsonfield.HasRule(field.Tag.Get("validate"), "required"),
		})
	}
	return nil
}

// specialSchema handles types whose JSON encoding differs from their kind.
func specialSchema(t reflect.Type) map[string]any {
	switch {
	case t.PkgPath() == "time" && t.Name() == "Time":
		return map[string]any{"type": "string", "format": "date-time"}
	case t.PkgPath() == "time" && t.Name() == "Duration":
		return map[string]any{"type": "integer"}
	case t.PkgPath() == "encoding/json" && t.Name() == "Number":
		return map[string]any{"type": "number"}
	case t.PkgPath() == "encoding/json" && t.Name() == "RawMessage":
		return map[string]any{}
	case t.Kind() == reflect.Struct && t.NumField() == 0:
		return map[string]any{"type": "object"}
	}
	return nil
}

func checkUnsupportedType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan:
		return fmt.Errorf("unsupported type: chan %s", t.Elem())
	case reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("unsupported type: %s", t.Kind())
	case reflect.Func:
		return fmt.Errorf("unsupported type: func")
	case reflect.UnsafePointer:
		return fmt.Errorf("unsupported type: unsafe.Pointer")
	}
	return nil
}

var textMarshaler = reflect.TypeOf((*interface{ MarshalText() ([]byte, error) })(nil)).Elem()

func validateMapKeyType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if t.Implements(textMarshaler) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", t)
}
