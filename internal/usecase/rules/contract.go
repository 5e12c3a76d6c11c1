package rules

import (
	"context"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// Repository defines the storage contract for rule records.
type Repository interface {
	Create(ctx context.Context, r domrule.Rule) error
	Update(ctx context.Context, r domrule.Rule) error
	Get(ctx context.Context, id string) (domrule.Rule, error)
	List(ctx context.Context) ([]domrule.Rule, error)
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached rule sets after a write.
type Invalidator interface {
	Invalidate()
}
