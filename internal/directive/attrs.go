package directive

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	d.ZeroEmpty(true)
	return d
}()

// listKeys are split on commas.
var listKeys = map[string]bool{
	"locales":    true,
	"contexts":   true,
	"operations": true,
	"count":      true,
	"paging":     true,
	"fields":     true,
	"sort":       true,
	"enum":       true,
}

// parseAttrs splits `key=value key2="quoted value"` into a value map.
// Repeated keys accumulate.
func parseAttrs(s string) (map[string][]string, error) {
	attrs := make(map[string][]string)
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return attrs, nil
		}

		eq := strings.IndexByte(s, '=')
		if eq <= 0 || strings.ContainsAny(s[:eq], " \t\"") {
			field, _, _ := strings.Cut(s, " ")
			return nil, fmt.Errorf("expected key=value, got %q", field)
		}
		key := s[:eq]
		s = s[eq+1:]

		var value string
		if strings.HasPrefix(s, `"`) {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: malformed quoted value", key)
			}
			if value, err = strconv.Unquote(quoted); err != nil {
				return nil, fmt.Errorf("attribute %s: %w", key, err)
			}
			s = s[len(quoted):]
		} else {
			end := strings.IndexAny(s, " \t")
			if end < 0 {
				end = len(s)
			}
			value, s = s[:end], s[end:]
		}

		if listKeys[key] {
			for _, v := range strings.Split(value, ",") {
				if v = strings.TrimSpace(v); v != "" {
					attrs[key] = append(attrs[key], v)
				}
			}
			continue
		}
		attrs[key] = append(attrs[key], value)
	}
}

// decode fills dst from the directive's attributes.
func decode(dst any, d Directive) error {
	if err := decoder.Decode(dst, d.Attrs); err != nil {
		return fmt.Errorf("%s: %s%s: %s", d.Pos, prefix, d.Kind, describe(err))
	}
	return nil
}

// describe flattens gorilla/schema errors into one line.
func describe(err error) string {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return err.Error()
	}
	msgs := make([]string, 0, len(multi))
	for key, e := range multi {
		var unknown schema.UnknownKeyError
		var empty schema.EmptyFieldError
		switch {
		case errors.As(e, &unknown):
			msgs = append(msgs, "unknown attribute "+key)
		case errors.As(e, &empty):
			msgs = append(msgs, "missing attribute "+key)
		default:
			msgs = append(msgs, fmt.Sprintf("attribute %s: %v", key, e))
		}
	}
	slices.Sort(msgs)
	return strings.Join(msgs, "; ")
}

type handlerAttrs struct {
	Path   string `schema:"path,required"`
	Schema string `schema:"schema"`
}

type schemaAttrs struct {
	ID string `schema:"id,required"`
}

type commonAttrs struct {
	Description string   `schema:"description"`
	Stability   string   `schema:"stability"`
	Locales     []string `schema:"locales"`
	Contexts    []string `schema:"contexts"`
}

type createAttrs struct {
	commonAttrs
	Mode string `schema:"mode"`
	Mvcc bool   `schema:"mvcc"`
}

type readAttrs struct {
	commonAttrs
}

type mvccAttrs struct {
	commonAttrs
	Mvcc bool `schema:"mvcc"`
}

type patchAttrs struct {
	commonAttrs
	Mvcc       bool     `schema:"mvcc"`
	Operations []string `schema:"operations"`
}

type actionAttrs struct {
	commonAttrs
	Name     string `schema:"name"`
	Request  string `schema:"request"`
	Response string `schema:"response"`
}

type queryAttrs struct {
	commonAttrs
	Type          string   `schema:"type,required"`
	ID            string   `schema:"id"`
	CountPolicies []string `schema:"count"`
	PagingModes   []string `schema:"paging"`
	Fields        []string `schema:"fields"`
	SortKeys      []string `schema:"sort"`
}

type errorAttrs struct {
	ID          string `schema:"id"`
	Code        int    `schema:"code"`
	Description string `schema:"description"`
	Schema      string `schema:"schema"`
}

type paramAttrs struct {
	Name        string   `schema:"name,required"`
	Type        string   `schema:"type,required"`
	Description string   `schema:"description"`
	Default     string   `schema:"default"`
	Enum        []string `schema:"enum"`
	Source      string   `schema:"source"`
	Required    bool     `schema:"required"`
}
