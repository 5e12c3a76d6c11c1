package queryrules

import (
	"context"

	"github.com/kailas-cloud/queryrules/internal/domain/query"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/usecase/augment"
	healthuc "github.com/kailas-cloud/queryrules/internal/usecase/health"
)

// --- augmentUseCase mock ---

type mockAugmentUC struct {
	augmentFn func(ctx context.Context, doc query.Document, term string) (query.Document, augment.Report)
}

func (m *mockAugmentUC) AugmentWithReport(
	ctx context.Context, doc query.Document, term string,
) (query.Document, augment.Report) {
	return m.augmentFn(ctx, doc, term)
}

// --- ruleUseCase mock ---

type mockRuleUC struct {
	createFn func(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	updateFn func(ctx context.Context, r domrule.Rule) (domrule.Rule, error)
	getFn    func(ctx context.Context, id string) (domrule.Rule, error)
	listFn   func(ctx context.Context) ([]domrule.Rule, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRuleUC) Create(ctx context.Context, r domrule.Rule) (domrule.Rule, error) {
	return m.createFn(ctx, r)
}

func (m *mockRuleUC) Update(ctx context.Context, r domrule.Rule) (domrule.Rule, error) {
	return m.updateFn(ctx, r)
}

func (m *mockRuleUC) Get(ctx context.Context, id string) (domrule.Rule, error) {
	return m.getFn(ctx, id)
}

func (m *mockRuleUC) List(ctx context.Context) ([]domrule.Rule, error) {
	return m.listFn(ctx)
}

func (m *mockRuleUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(augmentSvc augmentUseCase, rulesSvc ruleUseCase) *Client {
	return &Client{
		augmentSvc: augmentSvc,
		rulesSvc:   rulesSvc,
	}
}
