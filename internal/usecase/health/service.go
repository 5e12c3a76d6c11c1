package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates rules cannot be read; searches pass through unaugmented.
	Degraded Status = "degraded"
	// Unhealthy indicates the rule store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	rules RuleSource
}

// New creates a Service. rules can be nil.
func New(db DBPinger, rules RuleSource) *Service {
	return &Service{db: db, rules: rules}
}

// Check runs health checks against all components. The rule probe only runs
// when the database answers.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	status := Healthy
	if s.rules != nil {
		if _, err := s.rules.FetchActiveRules(ctx, 1); err != nil {
			checks["rules"] = CheckError
			status = Degraded
		} else {
			checks["rules"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
