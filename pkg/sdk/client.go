package queryrules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/queryrules/internal/config"
	"github.com/kailas-cloud/queryrules/internal/db"
	dbRedis "github.com/kailas-cloud/queryrules/internal/db/redis"
	"github.com/kailas-cloud/queryrules/internal/domain/query"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
	logpkg "github.com/kailas-cloud/queryrules/internal/logger"
	rulerepo "github.com/kailas-cloud/queryrules/internal/repository/rule"
	"github.com/kailas-cloud/queryrules/internal/usecase/augment"
	healthuc "github.com/kailas-cloud/queryrules/internal/usecase/health"
	rulesuc "github.com/kailas-cloud/queryrules/internal/usecase/rules"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type augmentUseCase interface {
	AugmentWithReport(ctx context.Context, doc query.Document, term string) (query.Document, augment.Report)
}

type ruleUseCase interface {
	Create(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	Update(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	Get(ctx context.Context, id string) (domrule.Rule, error)
	List(ctx context.Context) ([]domrule.Rule, error)
	Delete(ctx context.Context, id string) error
}

// Client is the queryrules SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	augmentSvc augmentUseCase
	rulesSvc   ruleUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("queryrules: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("queryrules: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// createStore opens the store. Both drivers share one client: rules only need
// hash and keyspace commands.
func createStore(cfg *clientConfig) (*dbRedis.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("queryrules: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("queryrules: unknown driver %q", cfg.driver)
	}
}

// buildEngine renders script templates with the configured overrides.
func buildEngine(cfg *clientConfig) (*scoring.Engine, scoring.Categorizer, error) {
	scripts := config.ScriptsConfig{
		Lang:             cfg.lang,
		TaxonomyPrefixes: cfg.taxonomies,
		Templates:        cfg.templates,
	}
	reg, err := scripts.Registry()
	if err != nil {
		return nil, scoring.Categorizer{}, fmt.Errorf("queryrules: %w", err)
	}

	categorizer := scoring.NewCategorizer(cfg.taxonomies...)
	return scoring.NewEngine(reg, categorizer, cfg.lang), categorizer, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	engine, categorizer, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}

	repo := rulerepo.New(store).WithKeyPrefix(cfg.keyPrefix)
	cache := rulerepo.NewCache(repo, cfg.cacheTTL)

	augmentSvc := augment.New(cache, engine).
		WithCapability(augment.StaticCapability(!cfg.noScripts)).
		WithCategorizer(categorizer).
		WithIDField(cfg.idField)
	if cfg.ruleLimit > 0 {
		augmentSvc = augmentSvc.WithLimit(cfg.ruleLimit)
	}
	if cfg.override != nil {
		augmentSvc = augmentSvc.WithTriggerOverride(overrideToDomain(cfg.override))
	}

	return &Client{
		store:      store,
		augmentSvc: augmentSvc,
		rulesSvc:   rulesuc.New(repo).WithInvalidator(cache),
		healthSvc:  healthuc.New(store, repo),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Augment applies every published, active rule whose triggers match term to q.
// q is not modified. The result Query is q itself when nothing applied.
func (c *Client) Augment(ctx context.Context, q map[string]any, term string) AugmentResult {
	start := time.Now()
	defer func() { c.obs.observe("augment", start, nil) }()

	if c.obs != nil && c.obs.logger != nil {
		ctx = logpkg.ContextWithLogger(ctx, c.obs.logger)
	}
	out, report := c.augmentSvc.AugmentWithReport(ctx, query.Document(q), term)
	return AugmentResult{
		Query:        out,
		AppliedRules: report.AppliedRules,
		Changed:      report.Changed(),
	}
}

// Rules returns the rule management service.
func (c *Client) Rules() *RuleService {
	return &RuleService{svc: c.rulesSvc, obs: c.obs}
}
