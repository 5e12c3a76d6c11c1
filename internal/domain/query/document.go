// Package query models the search backend's query DSL as a generic structured document.
package query

// Top-level and nested keys this service reads or writes.
const (
	KeyQuery         = "query"
	KeyFilter        = "filter"
	KeyPostFilter    = "post_filter"
	KeyFunctionScore = "function_score"
	KeyFunctions     = "functions"
	KeyScoreMode     = "score_mode"
	KeyBoostMode     = "boost_mode"
	KeyMatchAll      = "match_all"
	KeyBool          = "bool"
	KeyMust          = "must"
	KeyMustNot       = "must_not"
	KeyShould        = "should"
	KeyTerms         = "terms"
	KeyMatch         = "match"
	KeyBoost         = "boost"
)

// Document is a query document as decoded from JSON: nested map[string]any / []any values.
// The engine treats it as opaque apart from the keys above.
type Document map[string]any

// Clone returns a deep copy. Maps and slices produced by encoding/json are copied,
// scalars are shared. Nested Documents come back as plain map[string]any.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// Map returns the value at key if it is an object.
func (d Document) Map(key string) (map[string]any, bool) {
	return asMap(d[key])
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

// IsEmpty reports whether v is nil, an empty object or an empty array.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case Document:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
