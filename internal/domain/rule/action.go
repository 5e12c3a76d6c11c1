package rule

import (
	"strings"

	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

// ActionKind names an action variant.
type ActionKind string

// Action kinds.
const (
	KindBoost ActionKind = "boost"
	KindBury  ActionKind = "bury"
	KindHide  ActionKind = "hide"
)

// IsValid checks if the kind is one of the supported values.
func (k ActionKind) IsValid() bool {
	return k == KindBoost || k == KindBury || k == KindHide
}

// Action is an effect applied when a rule's triggers are satisfied.
// The set of implementations is closed: Boost, Bury, Hide.
type Action interface {
	Kind() ActionKind
	isAction()
}

// Adjustment is the scoring payload shared by boost and bury.
// Text and Value are pointers because "absent" and "zero" differ: an empty
// text is a valid match target, a missing one disables the action.
type Adjustment struct {
	Field    string
	Operator scoring.Operator
	Text     *string
	Value    *float64
}

// Complete reports whether field, text and value are all present.
func (a Adjustment) Complete() bool {
	return a.Field != "" && a.Text != nil && a.Value != nil
}

// Boost raises the score of matching documents by Value.
type Boost struct {
	Adjustment
}

// Kind implements Action.
func (Boost) Kind() ActionKind { return KindBoost }
func (Boost) isAction()        {}

// Bury lowers the score of matching documents. The sign of Value is taken as stored.
type Bury struct {
	Adjustment
}

// Kind implements Action.
func (Bury) Kind() ActionKind { return KindBury }
func (Bury) isAction()        {}

// Hide removes documents from results by id.
type Hide struct {
	// IDs is a comma separated list as authored, e.g. "12, 34,56".
	IDs string
}

// Kind implements Action.
func (Hide) Kind() ActionKind { return KindHide }
func (Hide) isAction()        {}

// Targets splits IDs on commas, trims each entry and drops empty ones.
func (h Hide) Targets() []string {
	if strings.TrimSpace(h.IDs) == "" {
		return nil
	}
	parts := strings.Split(h.IDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			out = append(out, id)
		}
	}
	return out
}
