package chi

import (
	"fmt"
	"time"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

// AugmentRequest is the body of POST /v1/augment.
type AugmentRequest struct {
	SearchTerm string         `json:"search_term"`
	Query      map[string]any `json:"query"`
}

// AugmentResponse carries the rewritten query and the rules that shaped it.
type AugmentResponse struct {
	Query        map[string]any `json:"query"`
	AppliedRules []string       `json:"applied_rules"`
	Changed      bool           `json:"changed"`
}

// TriggerSet is the wire form of a rule's trigger set.
type TriggerSet struct {
	Condition string    `json:"condition,omitempty"`
	Triggers  []Trigger `json:"triggers"`
}

// Trigger is one keyword comparison.
type Trigger struct {
	Operator string `json:"operator"`
	Keyword  string `json:"keyword"`
}

// Action is the wire form of boost, bury and hide. Type selects which
// fields are read.
type Action struct {
	Type     string   `json:"type"`
	Field    string   `json:"field,omitempty"`
	Operator string   `json:"operator,omitempty"`
	Text     *string  `json:"text,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	IDs      string   `json:"ids,omitempty"`
}

// RuleRequest is the body of POST /v1/rules and PUT /v1/rules/{id}.
type RuleRequest struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Status      string     `json:"status,omitempty"`
	Position    int        `json:"position"`
	ActiveFrom  *time.Time `json:"active_from,omitempty"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
	Triggers    TriggerSet `json:"triggers"`
	Actions     []Action   `json:"actions"`
}

// RuleResponse is a stored rule.
type RuleResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	ActiveFrom  *time.Time `json:"active_from,omitempty"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
	Triggers    TriggerSet `json:"triggers"`
	Actions     []Action   `json:"actions"`
}

// RuleListResponse wraps GET /v1/rules.
type RuleListResponse struct {
	Items []RuleResponse `json:"items"`
	Total int            `json:"total"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func ruleFromRequest(req RuleRequest) (domrule.Rule, error) {
	r := domrule.Rule{
		ID:          req.ID,
		Title:       req.Title,
		Status:      domrule.Status(req.Status),
		Position:    req.Position,
		ActiveFrom:  req.ActiveFrom,
		ActiveUntil: req.ActiveUntil,
		Triggers: domrule.TriggerSet{
			Condition: domrule.Condition(req.Triggers.Condition),
			Triggers:  make([]domrule.Trigger, len(req.Triggers.Triggers)),
		},
		Actions: make([]domrule.Action, 0, len(req.Actions)),
	}
	for i, t := range req.Triggers.Triggers {
		r.Triggers.Triggers[i] = domrule.Trigger{
			Operator: domrule.TriggerOperator(t.Operator),
			Keyword:  t.Keyword,
		}
	}
	for i, a := range req.Actions {
		act, err := actionFromDTO(a)
		if err != nil {
			return domrule.Rule{}, fmt.Errorf("action %d: %w", i, err)
		}
		r.Actions = append(r.Actions, act)
	}
	return r, nil
}

func actionFromDTO(a Action) (domrule.Action, error) {
	adj := domrule.Adjustment{
		Field:    a.Field,
		Operator: scoring.Operator(a.Operator),
		Text:     a.Text,
		Value:    a.Value,
	}
	kind := domrule.ActionKind(a.Type)
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}
	switch kind {
	case domrule.KindBoost:
		return domrule.Boost{Adjustment: adj}, nil
	case domrule.KindBury:
		return domrule.Bury{Adjustment: adj}, nil
	default:
		return domrule.Hide{IDs: a.IDs}, nil
	}
}

func ruleToResponse(r domrule.Rule) RuleResponse {
	resp := RuleResponse{
		ID:          r.ID,
		Title:       r.Title,
		Status:      string(r.Status),
		Position:    r.Position,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
		Triggers: TriggerSet{
			Condition: string(r.Triggers.Condition),
			Triggers:  make([]Trigger, len(r.Triggers.Triggers)),
		},
		Actions: make([]Action, 0, len(r.Actions)),
	}
	for i, t := range r.Triggers.Triggers {
		resp.Triggers.Triggers[i] = Trigger{Operator: string(t.Operator), Keyword: t.Keyword}
	}
	for _, a := range r.Actions {
		resp.Actions = append(resp.Actions, actionToDTO(a))
	}
	return resp
}

func actionToDTO(a domrule.Action) Action {
	switch act := a.(type) {
	case domrule.Boost:
		return adjustmentToDTO(domrule.KindBoost, act.Adjustment)
	case domrule.Bury:
		return adjustmentToDTO(domrule.KindBury, act.Adjustment)
	case domrule.Hide:
		return Action{Type: string(domrule.KindHide), IDs: act.IDs}
	default:
		return Action{Type: string(a.Kind())}
	}
}

func adjustmentToDTO(kind domrule.ActionKind, adj domrule.Adjustment) Action {
	return Action{
		Type:     string(kind),
		Field:    adj.Field,
		Operator: string(adj.Operator),
		Text:     adj.Text,
		Value:    adj.Value,
	}
}
