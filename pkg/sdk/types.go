package queryrules

import "time"

// Status is the publication state of a rule. Only published rules are applied.
type Status string

// Rule statuses.
const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
)

// Condition combines the results of a trigger set.
type Condition string

// Trigger set conditions.
const (
	ConditionAll Condition = "all"
	ConditionAny Condition = "any"
)

// ActionType names an action variant.
type ActionType string

// Action types.
const (
	ActionBoost ActionType = "boost"
	ActionBury  ActionType = "bury"
	ActionHide  ActionType = "hide"
)

// Rule is a stored search rule.
type Rule struct {
	ID          string // generated when empty on create
	Title       string
	Status      Status // default: draft
	Position    int    // lower runs first
	CreatedAt   time.Time
	ActiveFrom  *time.Time
	ActiveUntil *time.Time
	Triggers    TriggerSet
	Actions     []Action
}

// TriggerSet decides whether a rule applies to a search term.
type TriggerSet struct {
	Condition Condition // default: all
	Triggers  []Trigger
}

// Trigger compares Keyword with the search term using Operator, e.g.
// "equals", "contains", "greater_than".
type Trigger struct {
	Operator string
	Keyword  string
}

// TriggerOverride replaces built-in trigger evaluation when handled is true.
type TriggerOverride func(t Trigger, term string) (matched, handled bool)

// Action is a boost, bury or hide. Field, Operator, Text and Value are read
// for boost and bury; IDs for hide.
type Action struct {
	Type     ActionType
	Field    string
	Operator string
	Text     *string
	Value    *float64
	IDs      string // comma separated document ids
}

// Boost builds a boost action.
func Boost(field, operator, text string, value float64) Action {
	return Action{Type: ActionBoost, Field: field, Operator: operator, Text: &text, Value: &value}
}

// Bury builds a bury action. value is applied as given, so pass a negative
// number to push documents down.
func Bury(field, operator, text string, value float64) Action {
	return Action{Type: ActionBury, Field: field, Operator: operator, Text: &text, Value: &value}
}

// Hide builds a hide action for a comma separated id list.
func Hide(ids string) Action {
	return Action{Type: ActionHide, IDs: ids}
}

// AugmentResult is the outcome of Client.Augment.
type AugmentResult struct {
	Query        map[string]any
	AppliedRules []string
	Changed      bool
}
