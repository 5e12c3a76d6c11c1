package health

import (
	"context"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RuleSource is probed to confirm stored rules can be read and decoded.
type RuleSource interface {
	FetchActiveRules(ctx context.Context, limit int) ([]domrule.Rule, error)
}
