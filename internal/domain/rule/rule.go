package rule

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Status is the publication state of a rule record.
type Status string

// Rule statuses.
const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == StatusPublish || s == StatusDraft
}

// Rule combines an active date window, a trigger set and an ordered action list.
// A Rule is read-only during an augmentation pass.
type Rule struct {
	ID          string
	Title       string
	Status      Status
	Position    int
	CreatedAt   int64 // unix millis
	ActiveFrom  *time.Time
	ActiveUntil *time.Time
	Triggers    TriggerSet
	Actions     []Action
}

// ActiveAt reports whether now lies inside the rule's date window. Both bounds are inclusive
// and an unset bound is open.
func (r Rule) ActiveAt(now time.Time) bool {
	if r.ActiveFrom != nil && now.Before(*r.ActiveFrom) {
		return false
	}
	if r.ActiveUntil != nil && now.After(*r.ActiveUntil) {
		return false
	}
	return true
}

// Published reports whether the rule is visible to the search path.
func (r Rule) Published() bool {
	return r.Status == StatusPublish
}

// Validate checks a rule before it is written. The search path never calls it:
// stored rules that would fail here still degrade to no-ops at evaluation time.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if len(r.ID) > 64 {
		return fmt.Errorf("rule id too long (max 64)")
	}
	if !idRegex.MatchString(r.ID) {
		return fmt.Errorf("rule id must be alphanumeric with underscores and hyphens")
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.ActiveFrom != nil && r.ActiveUntil != nil && r.ActiveUntil.Before(*r.ActiveFrom) {
		return fmt.Errorf("active_until is before active_from")
	}
	if !r.Triggers.Condition.IsValid() {
		return fmt.Errorf("invalid trigger condition %q", r.Triggers.Condition)
	}
	for i, t := range r.Triggers.Triggers {
		if !t.Operator.IsValid() {
			return fmt.Errorf("trigger %d: invalid operator %q", i, t.Operator)
		}
		if t.Keyword == "" {
			return fmt.Errorf("trigger %d: keyword is required", i)
		}
	}
	for i, a := range r.Actions {
		if err := validateAction(a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func validateAction(a Action) error {
	switch act := a.(type) {
	case Boost:
		return validateAdjustment(act.Adjustment)
	case Bury:
		return validateAdjustment(act.Adjustment)
	case Hide:
		if len(act.Targets()) == 0 {
			return fmt.Errorf("hide requires at least one id")
		}
		return nil
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func validateAdjustment(adj Adjustment) error {
	if !adj.Complete() {
		return fmt.Errorf("field, text and value are required")
	}
	if !adj.Operator.IsValid() {
		return fmt.Errorf("invalid operator %q", adj.Operator)
	}
	return nil
}
