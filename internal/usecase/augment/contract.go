package augment

import (
	"context"

	"github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// RuleSource supplies published rules in evaluation order, at most limit of them.
type RuleSource interface {
	FetchActiveRules(ctx context.Context, limit int) ([]rule.Rule, error)
}

// ScriptingCapability reports whether the search backend accepts inline scripts.
type ScriptingCapability interface {
	DynamicScriptingEnabled() bool
}

// StaticCapability is a ScriptingCapability fixed at startup.
type StaticCapability bool

// DynamicScriptingEnabled implements ScriptingCapability.
func (c StaticCapability) DynamicScriptingEnabled() bool { return bool(c) }

// TriggerOverride replaces built-in trigger evaluation when handled is true.
type TriggerOverride func(t rule.Trigger, term string) (matched, handled bool)
