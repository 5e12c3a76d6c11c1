package rule

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/queryrules/internal/domain"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/logger"
	"github.com/kailas-cloud/queryrules/internal/metrics"
)

// store is the consumer interface for rule records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HReplace(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores rules as one hash per rule and implements usecase/rules.Repository
// and augment.RuleSource.
type Repo struct {
	store  store
	prefix string
}

// New creates a rule repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: domain.KeyPrefix}
}

// WithKeyPrefix overrides the key namespace (default domain.KeyPrefix).
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Create stores a new rule. Returns domain.ErrAlreadyExists if the id is taken.
func (r *Repo) Create(ctx context.Context, rl domrule.Rule) error {
	key := r.ruleKey(rl.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	hashData, err := ruleToHash(rl)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, hashData); err != nil {
		return fmt.Errorf("hset rule %s: %w", rl.ID, err)
	}
	return nil
}

// Update replaces an existing rule. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Update(ctx context.Context, rl domrule.Rule) error {
	key := r.ruleKey(rl.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	hashData, err := ruleToHash(rl)
	if err != nil {
		return err
	}
	if err := r.store.HReplace(ctx, key, hashData); err != nil {
		return fmt.Errorf("replace rule %s: %w", rl.ID, err)
	}
	return nil
}

// Get retrieves a rule by id.
func (r *Repo) Get(ctx context.Context, id string) (domrule.Rule, error) {
	m, err := r.store.HGetAll(ctx, r.ruleKey(id))
	if err != nil {
		return domrule.Rule{}, fmt.Errorf("hgetall rule %s: %w", id, err)
	}
	if len(m) == 0 {
		return domrule.Rule{}, domain.ErrNotFound
	}
	return ruleFromHash(m)
}

// List returns every rule regardless of status, in evaluation order.
// A record that cannot be decoded fails the whole listing.
func (r *Repo) List(ctx context.Context) ([]domrule.Rule, error) {
	return r.list(ctx, true)
}

func (r *Repo) list(ctx context.Context, strict bool) ([]domrule.Rule, error) {
	keys, err := r.store.Scan(ctx, r.ruleKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}
	if len(keys) == 0 {
		return []domrule.Rule{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi rules: %w", err)
	}

	rules := make([]domrule.Rule, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		rl, err := ruleFromHash(m)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("parse rule %s: %w", keys[i], err)
			}
			metrics.RuleDecodeErrorsTotal.Inc()
			logger.FromContext(ctx).Warn("Skipping undecodable rule",
				zap.String("key", keys[i]),
				zap.Error(err),
			)
			continue
		}
		rules = append(rules, rl)
	}

	sortRules(rules)
	return rules, nil
}

// Delete removes a rule.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.ruleKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del rule %s: %w", id, err)
	}
	return nil
}

// FetchActiveRules returns published rules in evaluation order, at most limit of them.
// Date windows are left to the caller, which checks them against its own clock.
// Undecodable records are logged and skipped so they cannot hide the other rules.
func (r *Repo) FetchActiveRules(ctx context.Context, limit int) ([]domrule.Rule, error) {
	all, err := r.list(ctx, false)
	if err != nil {
		return nil, err
	}

	published := make([]domrule.Rule, 0, len(all))
	for _, rl := range all {
		if !rl.Published() {
			continue
		}
		published = append(published, rl)
		if limit > 0 && len(published) == limit {
			break
		}
	}
	return published, nil
}

// sortRules orders by position, then creation time, then id.
func sortRules(rules []domrule.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
}

// Valkey key pattern: queryrules:rule:{id}

func (r *Repo) ruleKey(id string) string {
	return fmt.Sprintf("%srule:%s", r.prefix, id)
}
