package rules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.NewSQLiteStore(context.Background(), t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	if err := s.CreateUser(ctx, &model.User{ID: "owner-1", Name: "o", Email: "o@example.com", CreatedAt: now}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := s.CreateCommunity(ctx, &model.Community{ID: "comm-1", Name: "c", Slug: "c", OwnerID: "owner-1", CreatedAt: now}); err != nil {
		t.Fatalf("seed community: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(s, NewEvaluator(s, logger), logger)
}

func TestCreateRule_Defaults(t *testing.T) {
	svc := newTestService(t)

	rule, err := svc.CreateRule(context.Background(), CreateRuleParams{
		CommunityID: "comm-1",
		Name:        "no spam",
		Type:        model.RuleBannedWords,
		Config:      []byte(`{"words": ["spam"]}`),
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if rule.Action != model.ActionRemove {
		t.Errorf("Action = %q, want the remove default", rule.Action)
	}
	if rule.ApplyTo != model.ApplyBoth {
		t.Errorf("ApplyTo = %q, want the both default", rule.ApplyTo)
	}
	if !rule.IsActive {
		t.Error("new rules start active")
	}
	if rule.ID == "" {
		t.Error("rule must get an ID")
	}
}

func TestCreateRule_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateRuleParams
	}{
		{"missing name", CreateRuleParams{CommunityID: "comm-1", Type: model.RuleBannedWords, Config: []byte(`{"words":[]}`)}},
		{"bad action", CreateRuleParams{CommunityID: "comm-1", Name: "x", Type: model.RuleBannedWords, Config: []byte(`{"words":[]}`), Action: "explode"}},
		{"bad applyTo", CreateRuleParams{CommunityID: "comm-1", Name: "x", Type: model.RuleBannedWords, Config: []byte(`{"words":[]}`), ApplyTo: "everything"}},
		{"bad config", CreateRuleParams{CommunityID: "comm-1", Name: "x", Type: model.RuleCapsFilter, Config: []byte(`{"maxCapsPercent": 200}`)}},
		{"unknown type", CreateRuleParams{CommunityID: "comm-1", Name: "x", Type: "bogus", Config: []byte(`{}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateRule(ctx, tt.params); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestUpdateRule_PartialAndTypeImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, CreateRuleParams{
		CommunityID: "comm-1",
		Name:        "no spam",
		Type:        model.RuleBannedWords,
		Config:      []byte(`{"words": ["spam"]}`),
		Action:      model.ActionFlag,
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	off := false
	updated, err := svc.UpdateRule(ctx, rule.ID, UpdateRuleParams{IsActive: &off})
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.IsActive {
		t.Error("IsActive should be off")
	}
	// Untouched fields survive a partial update.
	if updated.Name != "no spam" || updated.Action != model.ActionFlag {
		t.Errorf("partial update clobbered fields: %+v", updated)
	}

	// A replacement config is validated against the stored type, so a
	// caps_filter shape is rejected on a banned_words rule.
	_, err = svc.UpdateRule(ctx, rule.ID, UpdateRuleParams{Config: []byte(`{"maxCapsPercent": 50}`)})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestDeleteRule(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, CreateRuleParams{
		CommunityID: "comm-1",
		Name:        "no spam",
		Type:        model.RuleBannedWords,
		Config:      []byte(`{"words": ["spam"]}`),
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if err := svc.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := svc.DeleteRule(ctx, rule.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRuleStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r1, err := svc.CreateRule(ctx, CreateRuleParams{
		CommunityID: "comm-1", Name: "a", Type: model.RuleBannedWords, Config: []byte(`{"words":["x"]}`),
	})
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if _, err := svc.CreateRule(ctx, CreateRuleParams{
		CommunityID: "comm-1", Name: "b", Type: model.RuleSpamFilter, Config: []byte(`{}`),
	}); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	off := false
	if _, err := svc.UpdateRule(ctx, r1.ID, UpdateRuleParams{IsActive: &off}); err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}

	stats, err := svc.Stats(ctx, "comm-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRules != 2 || stats.ActiveRules != 1 {
		t.Errorf("stats = %+v, want 2 total, 1 active", stats)
	}
	if len(stats.Rules) != 2 {
		t.Errorf("per-rule entries = %d, want 2", len(stats.Rules))
	}
}
