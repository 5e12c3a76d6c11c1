package rule

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/queryrules/internal/domain"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/logger"
	"github.com/kailas-cloud/queryrules/internal/metrics"
)

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	var written map[string]string

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "queryrules:rule:summer" {
			t.Errorf("unexpected key: %s", key)
		}
		written = fields
		return nil
	}

	if err := repo.Create(context.Background(), testRule(t, "summer")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written["status"] != "publish" || written["position"] != "1" {
		t.Errorf("unexpected hash: %v", written)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	err := repo.Create(context.Background(), testRule(t, "summer"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_HSetError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return errors.New("connection lost")
	}

	if err := repo.Create(context.Background(), testRule(t, "summer")); err == nil {
		t.Fatal("expected error on HSET failure")
	}
}

func TestCreate_CustomPrefix(t *testing.T) {
	repo, ms := newTestRepo(t)
	repo.WithKeyPrefix("tenant1:")
	ms.hsetFn = func(_ context.Context, key string, _ map[string]string) error {
		if key != "tenant1:rule:summer" {
			t.Errorf("unexpected key: %s", key)
		}
		return nil
	}
	if err := repo.Create(context.Background(), testRule(t, "summer")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Update ---

func TestUpdate_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Update(context.Background(), testRule(t, "summer"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_ReplacesHash(t *testing.T) {
	repo, ms := newTestRepo(t)
	var replaced string

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		t.Error("update must replace the hash, not merge into it")
		return nil
	}
	ms.hreplaceFn = func(_ context.Context, key string, _ map[string]string) error {
		replaced = key
		return nil
	}

	if err := repo.Update(context.Background(), testRule(t, "summer")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replaced != "queryrules:rule:summer" {
		t.Errorf("replaced %q", replaced)
	}
}

// --- Get ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	want := testRule(t, "summer")
	hash, err := ruleToHash(want)
	if err != nil {
		t.Fatalf("ruleToHash: %v", err)
	}
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) { return hash, nil }

	got, err := repo.Get(context.Background(), "summer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- List / FetchActiveRules ---

func hashes(t *testing.T, rules ...domrule.Rule) ([]string, []map[string]string) {
	t.Helper()
	keys := make([]string, len(rules))
	out := make([]map[string]string, len(rules))
	for i, r := range rules {
		h, err := ruleToHash(r)
		if err != nil {
			t.Fatalf("ruleToHash: %v", err)
		}
		keys[i] = "queryrules:rule:" + r.ID
		out[i] = h
	}
	return keys, out
}

func TestList_SortedByPositionThenCreatedAt(t *testing.T) {
	repo, ms := newTestRepo(t)

	a := testRule(t, "a")
	a.Position = 2
	b := testRule(t, "b")
	b.Position = 1
	b.CreatedAt = 2
	c := testRule(t, "c")
	c.Position = 1
	c.CreatedAt = 1

	keys, data := hashes(t, a, b, c)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "queryrules:rule:*" {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return keys, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return append(data, map[string]string{}), nil
	}

	rules, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "b", "a"}) {
		t.Errorf("order = %v", ids)
	}
}

func TestList_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	rules, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules == nil || len(rules) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", rules)
	}
}

func TestFetchActiveRules_PublishedOnlyAndLimited(t *testing.T) {
	repo, ms := newTestRepo(t)

	r1 := testRule(t, "r1")
	r1.Position = 1
	draft := testRule(t, "draft")
	draft.Position = 2
	draft.Status = domrule.StatusDraft
	r2 := testRule(t, "r2")
	r2.Position = 3
	r3 := testRule(t, "r3")
	r3.Position = 4

	keys, data := hashes(t, r1, draft, r2, r3)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) { return keys, nil }
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) { return data, nil }

	rules, err := repo.FetchActiveRules(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 || rules[0].ID != "r1" || rules[1].ID != "r2" {
		t.Errorf("unexpected rules: %+v", rules)
	}
}

func TestFetchActiveRules_SkipsUndecodableRecord(t *testing.T) {
	repo, ms := newTestRepo(t)

	keys, data := hashes(t, testRule(t, "good"))
	bad := testRule(t, "bad")
	badKeys, badData := hashes(t, bad)
	badData[0]["triggers_json"] = "{not json"
	keys = append(keys, badKeys...)
	data = append(data, badData...)

	ms.scanFn = func(_ context.Context, _ string) ([]string, error) { return keys, nil }
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) { return data, nil }

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))
	before := testutil.ToFloat64(metrics.RuleDecodeErrorsTotal)

	rules, err := repo.FetchActiveRules(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "good" {
		t.Errorf("expected only the good rule, got %+v", rules)
	}
	if got := testutil.ToFloat64(metrics.RuleDecodeErrorsTotal) - before; got != 1 {
		t.Errorf("decode errors counted = %v, want 1", got)
	}
	if logs.FilterField(zap.String("key", "queryrules:rule:bad")).Len() != 1 {
		t.Errorf("expected a warning for the bad record, got %v", logs.All())
	}

	// The admin listing stays strict.
	if _, err := repo.List(context.Background()); err == nil {
		t.Error("List: expected error for undecodable record")
	}
}

func TestFetchActiveRules_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("timeout")
	}

	if _, err := repo.FetchActiveRules(context.Background(), 10); err == nil {
		t.Fatal("expected error")
	}
}

// --- Delete ---

func TestDelete_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	var deleted string
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "summer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "queryrules:rule:summer" {
		t.Errorf("deleted %q", deleted)
	}
}
