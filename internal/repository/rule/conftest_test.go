package rule

import (
	"context"
	"testing"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hreplaceFn     func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HReplace(ctx context.Context, key string, fields map[string]string) error {
	if m.hreplaceFn != nil {
		return m.hreplaceFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func ptrStr(s string) *string   { return &s }
func ptrF64(f float64) *float64 { return &f }

func testRule(t *testing.T, id string) domrule.Rule {
	t.Helper()
	return domrule.Rule{
		ID:        id,
		Title:     "Summer sale",
		Status:    domrule.StatusPublish,
		Position:  1,
		CreatedAt: 1700000000000,
		Triggers: domrule.TriggerSet{
			Condition: domrule.ConditionAny,
			Triggers:  []domrule.Trigger{{Operator: domrule.OpContains, Keyword: "sale"}},
		},
		Actions: []domrule.Action{
			domrule.Boost{Adjustment: domrule.Adjustment{
				Field: "post_title", Operator: scoring.OpContains, Text: ptrStr("sale"), Value: ptrF64(5),
			}},
			domrule.Hide{IDs: "12,34"},
		},
	}
}
