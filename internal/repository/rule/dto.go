package rule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

// triggerSetRow is the JSON representation of a trigger set stored in triggers_json.
type triggerSetRow struct {
	Condition string       `json:"condition"`
	Triggers  []triggerRow `json:"triggers"`
}

type triggerRow struct {
	Operator string `json:"operator"`
	Keyword  string `json:"keyword"`
}

// actionRow is the JSON representation of one action stored in actions_json.
// Value is kept raw: authoring tools write it either as a number or as a numeric string.
type actionRow struct {
	Type     string          `json:"type"`
	Field    string          `json:"field,omitempty"`
	Operator string          `json:"operator,omitempty"`
	Text     *string         `json:"text,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	IDs      string          `json:"ids,omitempty"`
}

// ruleToHash converts a domain Rule to a map for HSET.
func ruleToHash(r domrule.Rule) (map[string]string, error) {
	ts := triggerSetRow{
		Condition: string(r.Triggers.Condition),
		Triggers:  make([]triggerRow, len(r.Triggers.Triggers)),
	}
	for i, t := range r.Triggers.Triggers {
		ts.Triggers[i] = triggerRow{Operator: string(t.Operator), Keyword: t.Keyword}
	}
	triggersJSON, err := json.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("marshal triggers: %w", err)
	}

	rows := make([]actionRow, 0, len(r.Actions))
	for _, a := range r.Actions {
		row, err := actionToRow(a)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	actionsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}

	return map[string]string{
		"id":            r.ID,
		"title":         r.Title,
		"status":        string(r.Status),
		"position":      strconv.Itoa(r.Position),
		"created_at":    strconv.FormatInt(r.CreatedAt, 10),
		"active_from":   formatTime(r.ActiveFrom),
		"active_until":  formatTime(r.ActiveUntil),
		"triggers_json": string(triggersJSON),
		"actions_json":  string(actionsJSON),
	}, nil
}

func actionToRow(a domrule.Action) (actionRow, error) {
	switch act := a.(type) {
	case domrule.Boost:
		return adjustmentToRow(domrule.KindBoost, act.Adjustment)
	case domrule.Bury:
		return adjustmentToRow(domrule.KindBury, act.Adjustment)
	case domrule.Hide:
		return actionRow{Type: string(domrule.KindHide), IDs: act.IDs}, nil
	default:
		return actionRow{}, fmt.Errorf("unsupported action %T", a)
	}
}

func adjustmentToRow(kind domrule.ActionKind, adj domrule.Adjustment) (actionRow, error) {
	row := actionRow{
		Type:     string(kind),
		Field:    adj.Field,
		Operator: string(adj.Operator),
		Text:     adj.Text,
	}
	if adj.Value != nil {
		v, err := json.Marshal(*adj.Value)
		if err != nil {
			return actionRow{}, fmt.Errorf("marshal value: %w", err)
		}
		row.Value = v
	}
	return row, nil
}

// ruleFromHash hydrates a domain Rule from an HGETALL result map.
// Unknown operators become OpInvalid, unknown action types are dropped and
// unparsable values leave the action incomplete. Structurally broken fields
// (position, created_at, the JSON columns) are errors.
func ruleFromHash(m map[string]string) (domrule.Rule, error) {
	r := domrule.Rule{
		ID:     m["id"],
		Title:  m["title"],
		Status: domrule.Status(m["status"]),
	}

	if s := m["position"]; s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return domrule.Rule{}, fmt.Errorf("invalid position: %w", err)
		}
		r.Position = p
	}
	if s := m["created_at"]; s != "" {
		c, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domrule.Rule{}, fmt.Errorf("invalid created_at: %w", err)
		}
		r.CreatedAt = c
	}

	var err error
	if r.ActiveFrom, err = parseTime(m["active_from"]); err != nil {
		return domrule.Rule{}, fmt.Errorf("invalid active_from: %w", err)
	}
	if r.ActiveUntil, err = parseTime(m["active_until"]); err != nil {
		return domrule.Rule{}, fmt.Errorf("invalid active_until: %w", err)
	}

	if s := m["triggers_json"]; s != "" {
		var ts triggerSetRow
		if err := json.Unmarshal([]byte(s), &ts); err != nil {
			return domrule.Rule{}, fmt.Errorf("unmarshal triggers: %w", err)
		}
		r.Triggers = triggerSetFromRow(ts)
	} else {
		r.Triggers.Condition = domrule.ConditionAll
	}

	if s := m["actions_json"]; s != "" {
		var rows []actionRow
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			return domrule.Rule{}, fmt.Errorf("unmarshal actions: %w", err)
		}
		r.Actions = actionsFromRows(rows)
	}

	return r, nil
}

func triggerSetFromRow(ts triggerSetRow) domrule.TriggerSet {
	set := domrule.TriggerSet{
		Condition: domrule.ParseCondition(ts.Condition),
		Triggers:  make([]domrule.Trigger, len(ts.Triggers)),
	}
	for i, t := range ts.Triggers {
		set.Triggers[i] = domrule.Trigger{
			Operator: domrule.ParseTriggerOperator(t.Operator),
			Keyword:  t.Keyword,
		}
	}
	return set
}

func actionsFromRows(rows []actionRow) []domrule.Action {
	actions := make([]domrule.Action, 0, len(rows))
	for _, row := range rows {
		switch domrule.ActionKind(row.Type) {
		case domrule.KindBoost:
			actions = append(actions, domrule.Boost{Adjustment: adjustmentFromRow(row)})
		case domrule.KindBury:
			actions = append(actions, domrule.Bury{Adjustment: adjustmentFromRow(row)})
		case domrule.KindHide:
			actions = append(actions, domrule.Hide{IDs: row.IDs})
		}
	}
	return actions
}

func adjustmentFromRow(row actionRow) domrule.Adjustment {
	return domrule.Adjustment{
		Field:    row.Field,
		Operator: scoring.Operator(row.Operator),
		Text:     row.Text,
		Value:    parseValue(row.Value),
	}
}

// parseValue accepts 5, 2.5, "5" and " -3 ". Anything else is absent.
func parseValue(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// Date bounds are stored as unix seconds; empty means unbounded.

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" || s == "0" {
		return nil, nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	t := time.Unix(sec, 0).UTC()
	return &t, nil
}
