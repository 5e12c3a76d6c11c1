package queryrules

import (
	"fmt"
	"time"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

func ruleToDomain(r Rule) (domrule.Rule, error) {
	out := domrule.Rule{
		ID:          r.ID,
		Title:       r.Title,
		Status:      domrule.Status(r.Status),
		Position:    r.Position,
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
		Triggers:    triggerSetToDomain(r.Triggers),
		Actions:     make([]domrule.Action, 0, len(r.Actions)),
	}
	for i, a := range r.Actions {
		act, err := actionToDomain(a)
		if err != nil {
			return domrule.Rule{}, fmt.Errorf("%w: action %d: %w", ErrInvalidRule, i, err)
		}
		out.Actions = append(out.Actions, act)
	}
	return out, nil
}

func triggerSetToDomain(ts TriggerSet) domrule.TriggerSet {
	out := domrule.TriggerSet{
		Condition: domrule.Condition(ts.Condition),
		Triggers:  make([]domrule.Trigger, len(ts.Triggers)),
	}
	for i, t := range ts.Triggers {
		out.Triggers[i] = domrule.Trigger{Operator: domrule.TriggerOperator(t.Operator), Keyword: t.Keyword}
	}
	return out
}

func actionToDomain(a Action) (domrule.Action, error) {
	adj := domrule.Adjustment{
		Field:    a.Field,
		Operator: scoring.Operator(a.Operator),
		Text:     a.Text,
		Value:    a.Value,
	}
	switch a.Type {
	case ActionBoost:
		return domrule.Boost{Adjustment: adj}, nil
	case ActionBury:
		return domrule.Bury{Adjustment: adj}, nil
	case ActionHide:
		return domrule.Hide{IDs: a.IDs}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}
}

func ruleFromDomain(r domrule.Rule) Rule {
	out := Rule{
		ID:          r.ID,
		Title:       r.Title,
		Status:      Status(r.Status),
		Position:    r.Position,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
		Triggers: TriggerSet{
			Condition: Condition(r.Triggers.Condition),
			Triggers:  make([]Trigger, len(r.Triggers.Triggers)),
		},
		Actions: make([]Action, 0, len(r.Actions)),
	}
	for i, t := range r.Triggers.Triggers {
		out.Triggers.Triggers[i] = Trigger{Operator: string(t.Operator), Keyword: t.Keyword}
	}
	for _, a := range r.Actions {
		out.Actions = append(out.Actions, actionFromDomain(a))
	}
	return out
}

func actionFromDomain(a domrule.Action) Action {
	switch act := a.(type) {
	case domrule.Boost:
		return adjustmentFromDomain(ActionBoost, act.Adjustment)
	case domrule.Bury:
		return adjustmentFromDomain(ActionBury, act.Adjustment)
	case domrule.Hide:
		return Action{Type: ActionHide, IDs: act.IDs}
	default:
		return Action{Type: ActionType(a.Kind())}
	}
}

func adjustmentFromDomain(t ActionType, adj domrule.Adjustment) Action {
	return Action{
		Type:     t,
		Field:    adj.Field,
		Operator: string(adj.Operator),
		Text:     adj.Text,
		Value:    adj.Value,
	}
}

// overrideToDomain adapts a public TriggerOverride to the engine's signature.
func overrideToDomain(o TriggerOverride) func(domrule.Trigger, string) (bool, bool) {
	return func(t domrule.Trigger, term string) (bool, bool) {
		return o(Trigger{Operator: string(t.Operator), Keyword: t.Keyword}, term)
	}
}
