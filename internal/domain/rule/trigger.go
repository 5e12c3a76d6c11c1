package rule

// Condition combines the results of a trigger set.
type Condition string

// Trigger set conditions.
const (
	// ConditionAll requires every trigger to match.
	ConditionAll Condition = "all"
	// ConditionAny requires at least one trigger to match.
	ConditionAny Condition = "any"
)

// IsValid checks if the condition is one of the supported values.
func (c Condition) IsValid() bool {
	return c == ConditionAll || c == ConditionAny
}

// ParseCondition maps a stored condition to a Condition. Anything unrecognized is ALL.
func ParseCondition(s string) Condition {
	if c := Condition(s); c.IsValid() {
		return c
	}
	return ConditionAll
}

// TriggerOperator compares a trigger keyword with the search term.
type TriggerOperator string

// Trigger operators. equals/is, does_not_equal/is_not, contains/is_in and
// does_not_contain/is_not_in are aliases.
const (
	OpEquals          TriggerOperator = "equals"
	OpIs              TriggerOperator = "is"
	OpDoesNotEqual    TriggerOperator = "does_not_equal"
	OpIsNot           TriggerOperator = "is_not"
	OpEqualsOrGreater TriggerOperator = "equals_or_greater_than"
	OpEqualsOrLess    TriggerOperator = "equals_or_less_than"
	OpGreaterThan     TriggerOperator = "greater_than"
	OpLessThan        TriggerOperator = "less_than"
	OpContains        TriggerOperator = "contains"
	OpIsIn            TriggerOperator = "is_in"
	OpDoesNotContain  TriggerOperator = "does_not_contain"
	OpIsNotIn         TriggerOperator = "is_not_in"
	OpInvalid         TriggerOperator = ""
)

// TriggerOperators lists every supported trigger operator.
var TriggerOperators = []TriggerOperator{
	OpEquals, OpIs,
	OpDoesNotEqual, OpIsNot,
	OpEqualsOrGreater, OpEqualsOrLess,
	OpGreaterThan, OpLessThan,
	OpContains, OpIsIn,
	OpDoesNotContain, OpIsNotIn,
}

// IsValid checks if the operator is one of the supported values.
func (o TriggerOperator) IsValid() bool {
	for _, op := range TriggerOperators {
		if o == op {
			return true
		}
	}
	return false
}

// ParseTriggerOperator maps a stored operator name to a TriggerOperator, OpInvalid if unknown.
func ParseTriggerOperator(s string) TriggerOperator {
	if op := TriggerOperator(s); op.IsValid() {
		return op
	}
	return OpInvalid
}

// Trigger is a single condition tested against the search term.
type Trigger struct {
	Operator TriggerOperator
	Keyword  string
}

// TriggerSet is the ordered list of triggers and how their results combine.
type TriggerSet struct {
	Condition Condition
	Triggers  []Trigger
}
