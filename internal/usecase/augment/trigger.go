package augment

import (
	"strings"

	"github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// compareFunc tests a trigger keyword against the search term.
type compareFunc func(keyword, term string) bool

// triggerOps is the dispatch table for trigger operators. Operators missing
// from the table never match.
var triggerOps = map[rule.TriggerOperator]compareFunc{
	rule.OpEquals:          equals,
	rule.OpIs:              equals,
	rule.OpDoesNotEqual:    not(equals),
	rule.OpIsNot:           not(equals),
	rule.OpEqualsOrGreater: func(k, t string) bool { return parseLeadingInt(k) >= parseLeadingInt(t) },
	rule.OpEqualsOrLess:    func(k, t string) bool { return parseLeadingInt(k) <= parseLeadingInt(t) },
	rule.OpGreaterThan:     func(k, t string) bool { return parseLeadingInt(k) > parseLeadingInt(t) },
	rule.OpLessThan:        func(k, t string) bool { return parseLeadingInt(k) < parseLeadingInt(t) },
	rule.OpContains:        containsFold,
	rule.OpIsIn:            containsFold,
	rule.OpDoesNotContain:  not(containsFold),
	rule.OpIsNotIn:         not(containsFold),
}

func equals(keyword, term string) bool { return keyword == term }

// containsFold reports whether keyword occurs in term, ignoring case.
func containsFold(keyword, term string) bool {
	return strings.Contains(strings.ToLower(term), strings.ToLower(keyword))
}

func not(f compareFunc) compareFunc {
	return func(k, t string) bool { return !f(k, t) }
}

// parseLeadingInt reads an optional sign and the leading run of digits after
// any whitespace. Input without leading digits is 0; overflow saturates.
func parseLeadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const limit = int64(^uint64(0) >> 1)
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		d := int64(c - '0')
		if n > (limit-d)/10 {
			n = limit
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// triggerEvaluator decides whether a rule's trigger set applies to a term.
type triggerEvaluator struct {
	override TriggerOverride
}

// matches evaluates a single trigger. A missing operator or keyword never matches.
func (e triggerEvaluator) matches(t rule.Trigger, term string) bool {
	if e.override != nil {
		if matched, handled := e.override(t, term); handled {
			return matched
		}
	}
	if t.Operator == rule.OpInvalid || t.Keyword == "" {
		return false
	}
	cmp, ok := triggerOps[t.Operator]
	if !ok {
		return false
	}
	return cmp(t.Keyword, term)
}

// applies combines trigger results in declared order. ALL fails on the first
// miss, ANY succeeds on the first hit. An exhausted ALL applies; an exhausted
// ANY does not. An empty set never applies.
func (e triggerEvaluator) applies(set rule.TriggerSet, term string) bool {
	if len(set.Triggers) == 0 {
		return false
	}

	for _, t := range set.Triggers {
		ok := e.matches(t, term)
		switch set.Condition {
		case rule.ConditionAny:
			if ok {
				return true
			}
		default:
			if !ok {
				return false
			}
		}
	}

	return set.Condition != rule.ConditionAny
}
