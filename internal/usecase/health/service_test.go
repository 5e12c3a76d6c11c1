package health

import (
	"context"
	"errors"
	"testing"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockRuleSource struct {
	err   error
	calls int
}

func (m *mockRuleSource) FetchActiveRules(_ context.Context, _ int) ([]domrule.Rule, error) {
	m.calls++
	return nil, m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockRuleSource{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["rules"] != CheckOK {
		t.Errorf("expected rules %q, got %q", CheckOK, r.Checks["rules"])
	}
}

func TestCheck_DBError(t *testing.T) {
	rules := &mockRuleSource{}
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, rules)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if rules.calls != 0 {
		t.Error("rules must not be probed while the database is down")
	}
}

func TestCheck_RulesError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockRuleSource{err: errors.New("bad record")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["rules"] != CheckError {
		t.Errorf("expected rules %q, got %q", CheckError, r.Checks["rules"])
	}
}

func TestCheck_NoRuleSource(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["rules"]; ok {
		t.Error("rules check should be absent when rules is nil")
	}
}
