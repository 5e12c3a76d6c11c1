package augment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/queryrules/internal/domain/query"
	"github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
	"github.com/kailas-cloud/queryrules/internal/logger"
	"github.com/kailas-cloud/queryrules/internal/metrics"
)

// DefaultRuleLimit caps how many rules one pass considers.
const DefaultRuleLimit = 500

// Report describes what a pass contributed.
type Report struct {
	AppliedRules []string
	Functions    int
	ShouldMatch  int
	Exclusions   int
}

// Changed reports whether the pass modified the document.
func (r Report) Changed() bool {
	return r.Functions > 0 || r.ShouldMatch > 0 || r.Exclusions > 0
}

// Service augments query documents with the rules of a RuleSource.
// It holds configuration only; every pass builds its own state, so one
// Service serves concurrent requests.
type Service struct {
	source   RuleSource
	triggers triggerEvaluator
	applier  *applier
	limit    int
	enabled  bool
	now      func() time.Time
}

// New creates an augmentation service. engine may be nil to use the default templates.
func New(source RuleSource, engine *scoring.Engine) *Service {
	categorizer := scoring.NewCategorizer()
	if engine == nil {
		engine = scoring.NewEngine(nil, categorizer, "")
	}
	return &Service{
		source: source,
		applier: &applier{
			engine:      engine,
			categorizer: categorizer,
			capability:  StaticCapability(true),
			idField:     DefaultIDField,
		},
		limit:   DefaultRuleLimit,
		enabled: true,
		now:     time.Now,
	}
}

// WithLimit sets the maximum number of rules fetched per pass.
func (s *Service) WithLimit(limit int) *Service {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// WithCapability sets the dynamic scripting capability probe.
func (s *Service) WithCapability(c ScriptingCapability) *Service {
	if c != nil {
		s.applier.capability = c
	}
	return s
}

// WithCategorizer sets the field categorizer used by the fallback path.
// The engine keeps the categorizer it was built with.
func (s *Service) WithCategorizer(c scoring.Categorizer) *Service {
	s.applier.categorizer = c
	return s
}

// WithIDField sets the document field hide actions exclude by.
func (s *Service) WithIDField(field string) *Service {
	if field != "" {
		s.applier.idField = field
	}
	return s
}

// WithTriggerOverride registers a callback consulted before each built-in trigger test.
func (s *Service) WithTriggerOverride(o TriggerOverride) *Service {
	s.triggers.override = o
	return s
}

// WithEnabled toggles augmentation. A disabled service returns documents unchanged.
func (s *Service) WithEnabled(enabled bool) *Service {
	s.enabled = enabled
	return s
}

// WithClock replaces the clock used for rule date windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Augment returns doc rewritten by every active rule whose triggers match term.
// It never fails: an empty term, a rule fetch error or no matching rule yield doc itself.
func (s *Service) Augment(ctx context.Context, doc query.Document, term string) query.Document {
	out, _ := s.AugmentWithReport(ctx, doc, term)
	return out
}

// AugmentWithReport is Augment that also reports what was applied.
func (s *Service) AugmentWithReport(
	ctx context.Context, doc query.Document, term string,
) (query.Document, Report) {
	start := time.Now()
	defer func() { metrics.AugmentDuration.Observe(time.Since(start).Seconds()) }()

	if !s.enabled {
		metrics.AugmentTotal.WithLabelValues("disabled").Inc()
		return doc, Report{}
	}
	if term == "" {
		metrics.AugmentTotal.WithLabelValues("no_term").Inc()
		return doc, Report{}
	}

	log := logger.FromContext(ctx)

	matched := s.matchingRules(ctx, term, log)
	if len(matched) == 0 {
		metrics.AugmentTotal.WithLabelValues("unchanged").Inc()
		return doc, Report{}
	}

	st := &passState{}
	for _, r := range matched {
		s.applier.apply(st, r.Actions)
		st.applied = append(st.applied, r.ID)
	}

	report := Report{
		AppliedRules: st.applied,
		Functions:    len(st.functions),
		ShouldMatch:  len(st.should),
		Exclusions:   len(st.exclusions),
	}
	if !report.Changed() {
		metrics.AugmentTotal.WithLabelValues("unchanged").Inc()
		return doc, report
	}

	out := doc.Clone()
	if out == nil {
		out = query.Document{}
	}
	out = assemble(out, st)

	metrics.AugmentTotal.WithLabelValues("augmented").Inc()
	log.Debug("Query augmented",
		zap.String("search_term", term),
		zap.Strings("rules", st.applied),
		zap.Int("functions", report.Functions),
		zap.Int("should", report.ShouldMatch),
		zap.Int("exclusions", report.Exclusions),
	)
	return out, report
}

// matchingRules fetches rules and keeps those active now whose triggers apply to term.
func (s *Service) matchingRules(ctx context.Context, term string, log *zap.Logger) []rule.Rule {
	rules, err := s.source.FetchActiveRules(ctx, s.limit)
	if err != nil {
		metrics.RuleSourceErrorsTotal.Inc()
		log.Warn("Failed to fetch rules, searching without them", zap.Error(err))
		return nil
	}

	now := s.now()
	var matched []rule.Rule
	for _, r := range rules {
		if !r.ActiveAt(now) {
			continue
		}
		if !s.triggers.applies(r.Triggers, term) {
			continue
		}
		matched = append(matched, r)
	}
	metrics.RulesMatchedTotal.Add(float64(len(matched)))
	return matched
}
