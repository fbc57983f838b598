package normalize

import (
	"fmt"

	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

// Status is the outcome of mapping one document key.
type Status int

// Field statuses.
const (
	StatusAbsent Status = iota
	StatusParsed
	StatusInvalid
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusParsed:
		return "parsed"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FieldResult records what happened to one document key. Dropped counts list
// elements skipped because of their shape while the rest of the field was
// kept.
type FieldResult struct {
	Key     string
	Status  Status
	Dropped int
	Err     error
}

// ShapeError reports a key whose value has a shape no fallback covers.
type ShapeError struct {
	Key  string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("field %q: want %s, got %s", e.Key, e.Want, e.Got)
}

// Result is the normalized form of one document.
type Result struct {
	Recipe   *recipe.Recipe
	Entities []recipe.Tagged
	Fields   []FieldResult
}

// Field returns the report for key.
func (r Result) Field(key string) (FieldResult, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldResult{}, false
}

// Invalid returns every field that was dropped.
func (r Result) Invalid() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if f.Status == StatusInvalid {
			out = append(out, f)
		}
	}
	return out
}

// EntitiesOf returns the discovered sub-entities of kind, in order.
func (r Result) EntitiesOf(kind recipe.Kind) []recipe.Entity {
	var out []recipe.Entity
	for _, t := range r.Entities {
		if t.Kind == kind {
			out = append(out, t.Entity)
		}
	}
	return out
}
