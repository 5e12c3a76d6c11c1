package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/queryrules/internal/domain"
	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
)

// Service handles rule record CRUD. It only stores rules; evaluation lives in usecase/augment.
type Service struct {
	repo  Repository
	cache Invalidator
	newID func() string
	now   func() time.Time
}

// New creates a rule management service.
func New(repo Repository) *Service {
	return &Service{
		repo:  repo,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// WithInvalidator registers a cache that is flushed after every write.
func (s *Service) WithInvalidator(c Invalidator) *Service {
	s.cache = c
	return s
}

// Create validates and stores a new rule. An empty id is replaced with a generated UUID.
func (s *Service) Create(ctx context.Context, r domrule.Rule) (domrule.Rule, error) {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.Status == "" {
		r.Status = domrule.StatusDraft
	}
	if r.Triggers.Condition == "" {
		r.Triggers.Condition = domrule.ConditionAll
	}
	r.CreatedAt = s.now().UnixMilli()

	if err := r.Validate(); err != nil {
		return domrule.Rule{}, fmt.Errorf("validate rule: %w: %w", domain.ErrInvalidRule, err)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return domrule.Rule{}, fmt.Errorf("create rule: %w", err)
	}

	s.invalidate()
	return r, nil
}

// Update replaces an existing rule. CreatedAt is carried over from the stored record.
func (s *Service) Update(ctx context.Context, r domrule.Rule) (domrule.Rule, error) {
	existing, err := s.repo.Get(ctx, r.ID)
	if err != nil {
		return domrule.Rule{}, fmt.Errorf("get rule: %w", err)
	}
	r.CreatedAt = existing.CreatedAt
	if r.Status == "" {
		r.Status = existing.Status
	}
	if r.Triggers.Condition == "" {
		r.Triggers.Condition = domrule.ConditionAll
	}

	if err := r.Validate(); err != nil {
		return domrule.Rule{}, fmt.Errorf("validate rule: %w: %w", domain.ErrInvalidRule, err)
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return domrule.Rule{}, fmt.Errorf("update rule: %w", err)
	}

	s.invalidate()
	return r, nil
}

// Get retrieves a rule by id.
func (s *Service) Get(ctx context.Context, id string) (domrule.Rule, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return domrule.Rule{}, fmt.Errorf("get rule: %w", err)
	}
	return r, nil
}

// List returns all rules in evaluation order.
func (s *Service) List(ctx context.Context) ([]domrule.Rule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// Delete removes a rule.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
