package scoring

import (
	"strconv"
	"strings"
)

// DefaultLang is the scripting dialect the built-in templates are written in.
const DefaultLang = "painless"

// Function is a rendered script_score entry of a function_score query.
// Script is opaque: it is substituted, never parsed.
type Function struct {
	Script string
	Lang   string
}

// Clause returns the function in query DSL form.
func (f Function) Clause() map[string]any {
	return map[string]any{
		"script_score": map[string]any{
			"script": map[string]any{
				"lang":   f.Lang,
				"inline": f.Script,
			},
		},
	}
}

// Input carries everything a template needs.
type Input struct {
	Field    string
	Operator Operator
	Text     string
	Value    float64
}

// Engine renders scoring functions from a template registry.
type Engine struct {
	registry    *Registry
	categorizer Categorizer
	lang        string
}

// NewEngine creates an engine. A nil registry uses DefaultRegistry; an empty lang uses DefaultLang.
func NewEngine(registry *Registry, categorizer Categorizer, lang string) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if lang == "" {
		lang = DefaultLang
	}
	return &Engine{registry: registry, categorizer: categorizer, lang: lang}
}

// Render builds the scoring function for in. The text is lowercased before
// substitution. ok is false when no template matches the field category and operator.
func (e *Engine) Render(in Input) (Function, bool) {
	field, cat := e.categorizer.Categorize(in.Field)

	tmpl, ok := e.registry.Lookup(cat, in.Operator)
	if !ok {
		return Function{}, false
	}

	return Function{
		Script: Substitute(tmpl, field, strings.ToLower(in.Text), in.Value),
		Lang:   e.lang,
	}, true
}

// Substitute fills the three placeholders of a template. The field is wrapped in single quotes.
func Substitute(template, field, text string, value float64) string {
	r := strings.NewReplacer(
		PlaceholderField, "'"+field+"'",
		PlaceholderText, text,
		PlaceholderValue, FormatValue(value),
	)
	return r.Replace(template)
}

// FormatValue renders a numeric magnitude without trailing zeros (5, 2.5, -3).
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
