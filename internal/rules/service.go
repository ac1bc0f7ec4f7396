package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
)

// Service manages the lifecycle of a community's AutoMod rules. It runs the
// same config validation the evaluator relies on, so a rule that would
// silently no-op can never be persisted.
type Service struct {
	store     store.Store
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewService creates a rule admin service. The evaluator's rule cache is
// invalidated on every write.
func NewService(s store.Store, ev *Evaluator, logger *slog.Logger) *Service {
	return &Service{store: s, evaluator: ev, logger: logger}
}

// CreateRuleParams carries the fields accepted when authoring a rule.
type CreateRuleParams struct {
	CommunityID string           `json:"communityId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        model.RuleType   `json:"type"`
	Config      json.RawMessage  `json:"config"`
	Action      model.RuleAction `json:"action"`
	ApplyTo     model.ApplyTo    `json:"applyTo"`
}

// CreateRule validates and persists a new rule. Action defaults to remove
// and ApplyTo to both, matching how communities usually want new rules to
// behave.
func (s *Service) CreateRule(ctx context.Context, p CreateRuleParams) (*model.Rule, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: rule name is required", ErrInvalidConfig)
	}
	if p.Action == "" {
		p.Action = model.ActionRemove
	}
	if !validRuleAction(p.Action) {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidConfig, p.Action)
	}
	if p.ApplyTo == "" {
		p.ApplyTo = model.ApplyBoth
	}
	if !validApplyTo(p.ApplyTo) {
		return nil, fmt.Errorf("%w: unknown applyTo %q", ErrInvalidConfig, p.ApplyTo)
	}
	if _, err := ParseConfig(p.Type, p.Config); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule := &model.Rule{
		ID:          uuid.NewString(),
		CommunityID: p.CommunityID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Config:      p.Config,
		Action:      p.Action,
		ApplyTo:     p.ApplyTo,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	s.evaluator.InvalidateCommunity(p.CommunityID)
	s.logger.Info("automod rule created",
		"rule_id", rule.ID, "community_id", rule.CommunityID, "type", rule.Type, "action", rule.Action)
	return rule, nil
}

// UpdateRuleParams lists the only fields an update may touch. The rule's
// type is immutable; anything else submitted is ignored rather than applied.
type UpdateRuleParams struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Config      json.RawMessage   `json:"config"`
	Action      *model.RuleAction `json:"action"`
	ApplyTo     *model.ApplyTo    `json:"applyTo"`
	IsActive    *bool             `json:"isActive"`
}

// UpdateRule applies a partial update. A new config is validated against the
// rule's stored type.
func (s *Service) UpdateRule(ctx context.Context, ruleID string, p UpdateRuleParams) (*model.Rule, error) {
	rule, err := s.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("%w: rule name is required", ErrInvalidConfig)
		}
		rule.Name = *p.Name
	}
	if p.Description != nil {
		rule.Description = *p.Description
	}
	if p.Config != nil {
		if _, err := ParseConfig(rule.Type, p.Config); err != nil {
			return nil, err
		}
		rule.Config = p.Config
	}
	if p.Action != nil {
		if !validRuleAction(*p.Action) {
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidConfig, *p.Action)
		}
		rule.Action = *p.Action
	}
	if p.ApplyTo != nil {
		if !validApplyTo(*p.ApplyTo) {
			return nil, fmt.Errorf("%w: unknown applyTo %q", ErrInvalidConfig, *p.ApplyTo)
		}
		rule.ApplyTo = *p.ApplyTo
	}
	if p.IsActive != nil {
		rule.IsActive = *p.IsActive
	}

	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.evaluator.InvalidateCommunity(rule.CommunityID)
	return rule, nil
}

// DeleteRule removes a rule permanently.
func (s *Service) DeleteRule(ctx context.Context, ruleID string) error {
	rule, err := s.store.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	s.evaluator.InvalidateCommunity(rule.CommunityID)
	s.logger.Info("automod rule deleted", "rule_id", ruleID, "community_id", rule.CommunityID)
	return nil
}

// GetRule fetches a single rule by ID.
func (s *Service) GetRule(ctx context.Context, ruleID string) (*model.Rule, error) {
	return s.store.GetRule(ctx, ruleID)
}

// GetRules lists a community's rules, newest first.
func (s *Service) GetRules(ctx context.Context, communityID string) ([]*model.Rule, error) {
	return s.store.ListRulesByCommunity(ctx, communityID)
}

// Stats summarizes a community's rules and their trigger counts.
func (s *Service) Stats(ctx context.Context, communityID string) (*model.RuleStats, error) {
	all, err := s.store.ListRulesByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	stats := &model.RuleStats{
		TotalRules: len(all),
		Rules:      make([]model.RuleStatsEntry, 0, len(all)),
	}
	for _, r := range all {
		if r.IsActive {
			stats.ActiveRules++
		}
		stats.TotalTriggers += r.TriggeredCount
		stats.Rules = append(stats.Rules, model.RuleStatsEntry{
			ID:             r.ID,
			Name:           r.Name,
			Type:           r.Type,
			TriggeredCount: r.TriggeredCount,
			IsActive:       r.IsActive,
		})
	}
	return stats, nil
}

func validRuleAction(a model.RuleAction) bool {
	switch a {
	case model.ActionFlag, model.ActionAutoReport, model.ActionMute, model.ActionRemove, model.ActionBan:
		return true
	}
	return false
}

func validApplyTo(a model.ApplyTo) bool {
	switch a {
	case model.ApplyPost, model.ApplyComment, model.ApplyBoth:
		return true
	}
	return false
}
