package queryrules

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	username string
	password string
	db       int

	keyPrefix  string
	ruleLimit  int
	cacheTTL   time.Duration
	noScripts  bool
	idField    string
	lang       string
	taxonomies []string
	templates  map[string]map[string]string
	override   TriggerOverride

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithACL sets the ACL username and logical database.
func WithACL(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.db = db
	})
}

// WithKeyPrefix namespaces rule keys. Default: "queryrules:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithRuleLimit caps the rules considered per search. Default: 500.
func WithRuleLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ruleLimit = n
	})
}

// WithCacheTTL sets how long published rules are served from memory. Default: 30s.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithoutDynamicScripting switches boost and bury to plain should clauses
// for backends that reject inline scripts.
func WithoutDynamicScripting() Option {
	return optionFunc(func(c *clientConfig) {
		c.noScripts = true
	})
}

// WithIDField sets the document field hide actions exclude by. Default: post_id.
func WithIDField(field string) Option {
	return optionFunc(func(c *clientConfig) {
		c.idField = field
	})
}

// WithScriptLang sets the script language of generated script_score functions.
// Default: painless.
func WithScriptLang(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.lang = lang
	})
}

// WithTaxonomyPrefixes sets the field prefixes that address term object arrays.
// Default: "terms.".
func WithTaxonomyPrefixes(prefixes ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.taxonomies = prefixes
	})
}

// WithTemplate overrides one script template. category is one of "string",
// "taxonomy_object" or "meta_object". The template may use the [FIELD],
// [TEXT] and [VALUE] placeholders.
func WithTemplate(category, operator, template string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.templates == nil {
			c.templates = make(map[string]map[string]string)
		}
		if c.templates[category] == nil {
			c.templates[category] = make(map[string]string)
		}
		c.templates[category][operator] = template
	})
}

// WithTriggerOverride registers a callback consulted before each built-in trigger test.
func WithTriggerOverride(o TriggerOverride) Option {
	return optionFunc(func(c *clientConfig) {
		c.override = o
	})
}

// WithLogger enables structured logging for SDK operations and augmentation.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
