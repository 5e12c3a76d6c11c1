package augment

import (
	"strings"

	"github.com/kailas-cloud/queryrules/internal/domain/query"
	"github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
	"github.com/kailas-cloud/queryrules/internal/metrics"
)

// DefaultIDField is the document field hide actions match ids against.
const DefaultIDField = "post_id"

// passState accumulates the contributions of one augmentation pass.
// It is created per call and never shared.
type passState struct {
	functions  []scoring.Function
	should     []any
	exclusions []any
	applied    []string
}

// applier turns rule actions into pass contributions.
type applier struct {
	engine      *scoring.Engine
	categorizer scoring.Categorizer
	capability  ScriptingCapability
	idField     string
}

// apply runs every action of a rule in order. Incomplete actions are skipped.
func (a *applier) apply(st *passState, actions []rule.Action) {
	for _, action := range actions {
		switch act := action.(type) {
		case rule.Boost:
			a.adjust(st, rule.KindBoost, act.Adjustment)
		case rule.Bury:
			a.adjust(st, rule.KindBury, act.Adjustment)
		case rule.Hide:
			a.hide(st, act)
		}
	}
}

func (a *applier) adjust(st *passState, kind rule.ActionKind, adj rule.Adjustment) {
	if !adj.Complete() {
		metrics.ActionsSkippedTotal.WithLabelValues(string(kind)).Inc()
		return
	}

	if a.capability != nil && a.capability.DynamicScriptingEnabled() {
		a.adjustScripted(st, kind, adj)
		return
	}
	a.adjustFallback(st, kind, adj)
}

// adjustScripted renders a script_score function for the adjustment.
func (a *applier) adjustScripted(st *passState, kind rule.ActionKind, adj rule.Adjustment) {
	fn, ok := a.engine.Render(scoring.Input{
		Field:    adj.Field,
		Operator: adj.Operator,
		Text:     *adj.Text,
		Value:    *adj.Value,
	})
	if !ok {
		metrics.ActionsSkippedTotal.WithLabelValues(string(kind)).Inc()
		return
	}
	st.functions = append(st.functions, fn)
	metrics.ActionsAppliedTotal.WithLabelValues(string(kind), "script").Inc()
}

// adjustFallback degrades to a should-clause match when scripting is unavailable.
// The value becomes a query-level boost only while no scoring function exists.
func (a *applier) adjustFallback(st *passState, kind rule.ActionKind, adj rule.Adjustment) {
	field := adj.Field
	if a.categorizer.IsTaxonomy(field) {
		field += ".name"
	}
	field = scoring.Normalize(field)

	match := map[string]any{
		query.KeyQuery: strings.ToLower(*adj.Text),
	}
	if len(st.functions) == 0 {
		match[query.KeyBoost] = *adj.Value
	}

	st.should = append(st.should, map[string]any{
		query.KeyMatch: map[string]any{field: match},
	})
	metrics.ActionsAppliedTotal.WithLabelValues(string(kind), "fallback").Inc()
}

// hide adds one must_not terms clause per id.
func (a *applier) hide(st *passState, h rule.Hide) {
	ids := h.Targets()
	if len(ids) == 0 {
		metrics.ActionsSkippedTotal.WithLabelValues(string(rule.KindHide)).Inc()
		return
	}
	for _, id := range ids {
		st.exclusions = append(st.exclusions, map[string]any{
			query.KeyTerms: map[string]any{a.idField: []any{id}},
		})
	}
	metrics.ActionsAppliedTotal.WithLabelValues(string(rule.KindHide), "filter").Inc()
}
