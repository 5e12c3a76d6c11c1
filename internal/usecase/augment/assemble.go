package augment

import (
	"github.com/kailas-cloud/queryrules/internal/domain/query"
)

// Function score combination modes.
const (
	ScoreModeSum      = "sum"
	BoostModeMultiply = "multiply"
)

// assemble folds the pass contributions into doc, which must already be a private copy.
func assemble(doc query.Document, st *passState) query.Document {
	switch {
	case len(st.functions) > 0:
		wrapFunctionScore(doc, st)
	case len(st.should) > 0:
		doc[query.KeyQuery] = withShould(doc[query.KeyQuery], st.should)
	}

	mergeExclusions(doc, st.exclusions)
	return doc
}

// wrapFunctionScore moves query and filter under a function_score wrapper that
// sums the functions and multiplies the result into the relevance score.
func wrapFunctionScore(doc query.Document, st *passState) {
	fs := map[string]any{}

	if q, ok := doc[query.KeyQuery]; ok {
		fs[query.KeyQuery] = q
		delete(doc, query.KeyQuery)
	}
	if len(st.should) > 0 {
		fs[query.KeyQuery] = withShould(fs[query.KeyQuery], st.should)
	}
	if f, ok := doc[query.KeyFilter]; ok {
		fs[query.KeyFilter] = f
		delete(doc, query.KeyFilter)
	}

	functions := make([]any, len(st.functions))
	for i, fn := range st.functions {
		functions[i] = fn.Clause()
	}
	fs[query.KeyFunctions] = functions
	fs[query.KeyScoreMode] = ScoreModeSum
	fs[query.KeyBoostMode] = BoostModeMultiply

	// An empty match_all placeholder adds nothing inside function_score.
	if inner, ok := fs[query.KeyQuery].(map[string]any); ok {
		if v, has := inner[query.KeyMatchAll]; has && query.IsEmpty(v) {
			delete(inner, query.KeyMatchAll)
		}
	}
	if q, ok := fs[query.KeyQuery]; ok && query.IsEmpty(q) {
		delete(fs, query.KeyQuery)
	}

	doc[query.KeyQuery] = map[string]any{query.KeyFunctionScore: fs}
}

// withShould combines a base query with fallback should-clauses. must is never
// empty: a bool with only should clauses requires one of them to match.
func withShould(base any, should []any) map[string]any {
	must := base
	if query.IsEmpty(base) || isEmptyMatchAll(base) {
		must = map[string]any{query.KeyMatchAll: map[string]any{}}
	}
	return map[string]any{query.KeyBool: map[string]any{
		query.KeyMust:   []any{must},
		query.KeyShould: should,
	}}
}

// mergeExclusions appends exclusion clauses to post_filter.bool.must_not.
// A post_filter that is not a bool query is kept as a filter clause of a new bool.
func mergeExclusions(doc query.Document, exclusions []any) {
	if len(exclusions) == 0 {
		return
	}

	var b map[string]any
	pf, exists := doc[query.KeyPostFilter]
	pfMap, isMap := doc.Map(query.KeyPostFilter)

	switch {
	case !exists || query.IsEmpty(pf):
		b = map[string]any{}
	case isMap && isBoolOnly(pfMap):
		b, _ = query.Document(pfMap).Map(query.KeyBool)
	default:
		b = map[string]any{query.KeyFilter: []any{pf}}
	}

	mustNot := toSlice(b[query.KeyMustNot])
	b[query.KeyMustNot] = append(mustNot, exclusions...)
	doc[query.KeyPostFilter] = map[string]any{query.KeyBool: b}
}

// isEmptyMatchAll reports whether v is exactly {"match_all":{}}.
func isEmptyMatchAll(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	inner, has := m[query.KeyMatchAll]
	return has && query.IsEmpty(inner)
}

func isBoolOnly(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, ok := query.Document(m).Map(query.KeyBool)
	return ok
}

// toSlice normalizes a clause list that the DSL also accepts as a single object.
func toSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}
