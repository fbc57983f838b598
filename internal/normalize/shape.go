package normalize

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/JakeFAU/recipe-graph-crawler/internal/structdata"
)

// present reports whether v carries a usable value; JSON null counts as absent.
func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// asList is the canonical adapter for values that may be a single item or a
// list of items.
func asList(v gjson.Result) []gjson.Result {
	switch {
	case !present(v):
		return nil
	case v.IsArray():
		return v.Array()
	default:
		return []gjson.Result{v}
	}
}

// first returns the first element of asList(v).
func first(v gjson.Result) (gjson.Result, bool) {
	items := asList(v)
	if len(items) == 0 {
		return gjson.Result{}, false
	}
	return items[0], true
}

// scalar renders strings, numbers and booleans as text; a list yields its
// first element.
func scalar(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return v.String(), true
	case gjson.JSON:
		if v.IsArray() {
			if head, ok := first(v); ok {
				return scalar(head)
			}
		}
	}
	return "", false
}

// text reads obj[key] as a scalar, returning "" when absent or malformed.
func text(obj gjson.Result, key string) string {
	v, ok := structdata.Field(obj, key)
	if !ok {
		return ""
	}
	s, _ := scalar(v)
	return s
}

// object returns the first element of v when it is a JSON object.
func object(v gjson.Result) (gjson.Result, bool) {
	head, ok := first(v)
	if !ok || !head.IsObject() {
		return gjson.Result{}, false
	}
	return head, true
}

// urlOf accepts a bare URL string or an object with a url member.
func urlOf(v gjson.Result) string {
	head, ok := first(v)
	if !ok {
		return ""
	}
	if head.IsObject() {
		return text(head, "url")
	}
	s, _ := scalar(head)
	return s
}

func integer(v gjson.Result) *int64 {
	var n int64
	switch v.Type {
	case gjson.Number:
		n = v.Int()
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			n = parsed
		} else if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			n = int64(f)
		} else {
			return nil
		}
	default:
		return nil
	}
	return &n
}

func number(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// hasType reports whether obj's @type is, or contains, want.
func hasType(obj gjson.Result, want string) bool {
	v, ok := structdata.Field(obj, "@type")
	if !ok {
		return false
	}
	for _, t := range asList(v) {
		if strings.EqualFold(t.String(), want) {
			return true
		}
	}
	return false
}

// describe names the JSON shape of v for error messages.
func describe(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}
