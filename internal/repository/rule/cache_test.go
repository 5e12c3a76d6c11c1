package rule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// mockSource implements the cache's source interface.
type mockSource struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context, limit int) ([]domrule.Rule, error)
}

func (m *mockSource) FetchActiveRules(ctx context.Context, limit int) ([]domrule.Rule, error) {
	m.calls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, limit)
	}
	return []domrule.Rule{{ID: "r1"}}, nil
}

func newTestCache(src *mockSource) (*Cache, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(src, 10*time.Second)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_HitWithinTTL(t *testing.T) {
	src := &mockSource{}
	c, now := newTestCache(src)
	ctx := context.Background()

	if _, err := c.FetchActiveRules(ctx, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	*now = now.Add(9 * time.Second)
	rules, err := c.FetchActiveRules(ctx, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || src.calls.Load() != 1 {
		t.Errorf("expected cached result, source calls = %d", src.calls.Load())
	}
}

func TestCache_RefreshAfterTTL(t *testing.T) {
	src := &mockSource{}
	c, now := newTestCache(src)
	ctx := context.Background()

	_, _ = c.FetchActiveRules(ctx, 500)
	*now = now.Add(10 * time.Second)
	_, _ = c.FetchActiveRules(ctx, 500)

	if src.calls.Load() != 2 {
		t.Errorf("expected refresh after ttl, source calls = %d", src.calls.Load())
	}
}

func TestCache_LimitChangeIsMiss(t *testing.T) {
	src := &mockSource{}
	c, _ := newTestCache(src)
	ctx := context.Background()

	_, _ = c.FetchActiveRules(ctx, 500)
	_, _ = c.FetchActiveRules(ctx, 10)

	if src.calls.Load() != 2 {
		t.Errorf("expected a fetch per limit, source calls = %d", src.calls.Load())
	}
}

func TestCache_Invalidate(t *testing.T) {
	src := &mockSource{}
	c, _ := newTestCache(src)
	ctx := context.Background()

	_, _ = c.FetchActiveRules(ctx, 500)
	c.Invalidate()
	_, _ = c.FetchActiveRules(ctx, 500)

	if src.calls.Load() != 2 {
		t.Errorf("expected refetch after invalidate, source calls = %d", src.calls.Load())
	}
}

func TestCache_ErrorNotCached(t *testing.T) {
	fail := true
	src := &mockSource{fetchFn: func(context.Context, int) ([]domrule.Rule, error) {
		if fail {
			return nil, errors.New("down")
		}
		return []domrule.Rule{{ID: "r1"}}, nil
	}}
	c, _ := newTestCache(src)
	ctx := context.Background()

	if _, err := c.FetchActiveRules(ctx, 500); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	rules, err := c.FetchActiveRules(ctx, 500)
	if err != nil || len(rules) != 1 {
		t.Fatalf("expected recovery, got %v, %v", rules, err)
	}
}

func TestCache_ConcurrentMissesCollapse(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{fetchFn: func(context.Context, int) ([]domrule.Rule, error) {
		<-release
		return []domrule.Rule{{ID: "r1"}}, nil
	}}
	c, _ := newTestCache(src)

	const n = 8
	var wg sync.WaitGroup
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			if _, err := c.FetchActiveRules(context.Background(), 500); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := src.calls.Load(); got > 2 {
		t.Errorf("expected refreshes to collapse, source calls = %d", got)
	}
}

func TestCache_RefreshSurvivesCallerCancel(t *testing.T) {
	src := &mockSource{fetchFn: func(ctx context.Context, _ int) ([]domrule.Rule, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []domrule.Rule{{ID: "r1"}}, nil
	}}
	c, _ := newTestCache(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rules, err := c.FetchActiveRules(ctx, 500)
	if err != nil {
		t.Fatalf("refresh should not inherit caller cancellation: %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("unexpected rules: %v", rules)
	}
}

func TestCache_InvalidateDuringRefreshDropsStaleResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var version atomic.Int32
	src := &mockSource{fetchFn: func(context.Context, int) ([]domrule.Rule, error) {
		if version.Add(1) == 1 {
			close(entered)
			<-release
			return []domrule.Rule{{ID: "stale"}}, nil
		}
		return []domrule.Rule{{ID: "fresh"}}, nil
	}}
	c, _ := newTestCache(src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.FetchActiveRules(context.Background(), 500)
	}()
	<-entered
	c.Invalidate()
	close(release)
	<-done

	rules, err := c.FetchActiveRules(context.Background(), 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "fresh" {
		t.Errorf("expected fresh rules after invalidate, got %v", rules)
	}
}
