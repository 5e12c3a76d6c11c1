package scoring

import (
	"fmt"
	"sort"
)

// Operator is the comparison a boost/bury action applies to a document field.
type Operator string

// Script operators.
const (
	OpContains       Operator = "contains"
	OpIsIn           Operator = "is_in"
	OpDoesNotContain Operator = "does_not_contain"
	OpIsNotIn        Operator = "is_not_in"
	OpIs             Operator = "is"
	OpIsNot          Operator = "is_not"
)

// Operators lists every script operator in declaration order.
var Operators = []Operator{OpContains, OpIsIn, OpDoesNotContain, OpIsNotIn, OpIs, OpIsNot}

// IsValid checks if the operator is one of the supported values.
func (o Operator) IsValid() bool {
	for _, op := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Template placeholders.
const (
	PlaceholderField = "[FIELD]"
	PlaceholderText  = "[TEXT]"
	PlaceholderValue = "[VALUE]"
)

type key struct {
	category Category
	operator Operator
}

// Registry maps (category, operator) pairs to script templates.
// A Registry is not safe for concurrent mutation; populate it before serving.
type Registry struct {
	templates map[key]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[key]string)}
}

// DefaultRegistry returns a registry holding the 18 built-in painless templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for cat, ops := range defaultTemplates {
		for op, tmpl := range ops {
			r.templates[key{cat, op}] = tmpl
		}
	}
	return r
}

// Register adds or replaces the template for a category and operator.
func (r *Registry) Register(cat Category, op Operator, template string) error {
	if !cat.IsValid() {
		return fmt.Errorf("unknown script category %q", cat)
	}
	if !op.IsValid() {
		return fmt.Errorf("unknown script operator %q", op)
	}
	if template == "" {
		return fmt.Errorf("empty template for %s/%s", cat, op)
	}
	r.templates[key{cat, op}] = template
	return nil
}

// Lookup returns the template for a category and operator.
func (r *Registry) Lookup(cat Category, op Operator) (string, bool) {
	t, ok := r.templates[key{cat, op}]
	return t, ok
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for k, v := range r.templates {
		c.templates[k] = v
	}
	return c
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// Keys lists registered pairs as "category/operator", sorted.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.templates))
	for k := range r.templates {
		out = append(out, string(k.category)+"/"+string(k.operator))
	}
	sort.Strings(out)
	return out
}

const (
	stringContains    = "return _score + ( doc[[FIELD]].value.toLowerCase().indexOf( '[TEXT]' ) != -1 ? [VALUE] : 0 )"
	stringNotContains = "return _score + ( doc[[FIELD]].value.toLowerCase().indexOf( '[TEXT]' ) == -1 ? [VALUE] : 0 )"
	stringIs          = "return _score + ( doc[[FIELD]].value.toLowerCase() == '[TEXT]' ? [VALUE] : 0 )"
	stringIsNot       = "return _score + ( doc[[FIELD]].value.toLowerCase() != '[TEXT]' ? [VALUE] : 0 )"

	taxonomyContains    = "return _score + ( doc[[FIELD]].value.find { it.name && it.name.toLowerCase().indexOf( '[TEXT]' ) != -1 } != null ? [VALUE] : 0 )"
	taxonomyNotContains = "return _score + ( doc[[FIELD]].value.find { it.name && it.name.toLowerCase().indexOf( '[TEXT]' ) == -1  } != null ? [VALUE] : 0 )"
	taxonomyIs          = "return _score + ( doc[[FIELD]].value.find { it.name && it.name.toLowerCase() == '[TEXT]' } != null ? [VALUE] : 0 )"
	taxonomyIsNot       = "return _score + ( doc[[FIELD]].value.find { it.name && it.name == '[TEXT]' } == null ? [VALUE] : 0 )"

	metaContains    = "return _score + ( doc[[FIELD]].value.find { it.raw && it.raw.toLowerCase().indexOf( '[TEXT]' ) != -1 } != null ? [VALUE] : 0 )"
	metaNotContains = "return _score + ( doc[[FIELD]].value.find { it.raw && it.raw.toLowerCase().indexOf( '[TEXT]' ) == -1  } != null ? [VALUE] : 0 )"
	metaIs          = "return _score + ( doc[[FIELD]].value.find { it.raw && it.raw.toLowerCase() == '[TEXT]' } != null ? [VALUE] : 0 )"
	metaIsNot       = "return _score + ( doc[[FIELD]].value.find { it.raw && it.raw == '[TEXT]' } == null ? [VALUE] : 0 )"
)

var defaultTemplates = map[Category]map[Operator]string{
	CategoryString: {
		OpContains:       stringContains,
		OpIsIn:           stringContains,
		OpDoesNotContain: stringNotContains,
		OpIsNotIn:        stringNotContains,
		OpIs:             stringIs,
		OpIsNot:          stringIsNot,
	},
	CategoryTaxonomyObject: {
		OpContains:       taxonomyContains,
		OpIsIn:           taxonomyContains,
		OpDoesNotContain: taxonomyNotContains,
		OpIsNotIn:        taxonomyNotContains,
		OpIs:             taxonomyIs,
		OpIsNot:          taxonomyIsNot,
	},
	CategoryMetaObject: {
		OpContains:       metaContains,
		OpIsIn:           metaContains,
		OpDoesNotContain: metaNotContains,
		OpIsNotIn:        metaNotContains,
		OpIs:             metaIs,
		OpIsNot:          metaIsNot,
	},
}
