package queryrules

import (
	"context"
	"fmt"
	"time"
)

// RuleService manages stored rules. Writes take effect for searches immediately.
type RuleService struct {
	svc ruleUseCase
	obs *observer
}

// Create validates and stores a rule. ID is generated when empty.
func (s *RuleService) Create(ctx context.Context, r Rule) (_ Rule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("rules.create", start, err) }()

	dr, err := ruleToDomain(r)
	if err != nil {
		return Rule{}, err
	}
	created, err := s.svc.Create(ctx, dr)
	if err != nil {
		return Rule{}, fmt.Errorf("create rule: %w", err)
	}
	return ruleFromDomain(created), nil
}

// Update replaces the rule with r.ID.
func (s *RuleService) Update(ctx context.Context, r Rule) (_ Rule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("rules.update", start, err) }()

	dr, err := ruleToDomain(r)
	if err != nil {
		return Rule{}, err
	}
	updated, err := s.svc.Update(ctx, dr)
	if err != nil {
		return Rule{}, fmt.Errorf("update rule: %w", err)
	}
	return ruleFromDomain(updated), nil
}

// Get returns a rule by id.
func (s *RuleService) Get(ctx context.Context, id string) (_ Rule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("rules.get", start, err) }()

	r, err := s.svc.Get(ctx, id)
	if err != nil {
		return Rule{}, fmt.Errorf("get rule: %w", err)
	}
	return ruleFromDomain(r), nil
}

// List returns all rules, drafts included, in evaluation order.
func (s *RuleService) List(ctx context.Context) (_ []Rule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("rules.list", start, err) }()

	rules, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = ruleFromDomain(r)
	}
	return out, nil
}

// Delete removes a rule.
func (s *RuleService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("rules.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}
