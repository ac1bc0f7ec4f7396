package rules

import (
	"context"
	"log/slog"
	"time"

	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
	cache "github.com/patrickmn/go-cache"
)

const (
	ruleCacheTTL     = 30 * time.Second
	ruleCacheCleanup = 5 * time.Minute
)

// Content is a piece of user-submitted content to evaluate.
type Content struct {
	Title       string // optional, posts only
	Text        string
	AuthorID    string
	CommunityID string
	Type        model.ContentType
}

// Evaluator runs content through a community's active AutoMod rules and
// resolves the single most severe action.
//
// The evaluator fails open: content is never blocked because of missing
// configuration or store faults. Evaluate always returns a usable result; a
// non-nil error reports the infrastructure fault that forced the allow
// default, so callers can alert without changing the decision.
type Evaluator struct {
	store  store.Store
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewEvaluator creates an Evaluator over the given store.
func NewEvaluator(s store.Store, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		store:  s,
		cache:  cache.New(ruleCacheTTL, ruleCacheCleanup),
		logger: logger,
		now:    time.Now,
	}
}

// InvalidateCommunity drops the cached rule set for a community. Rule CRUD
// calls this so edits take effect without waiting out the TTL.
func (e *Evaluator) InvalidateCommunity(communityID string) {
	e.cache.Delete(ruleCacheKey(communityID, model.ContentPost))
	e.cache.Delete(ruleCacheKey(communityID, model.ContentComment))
}

func ruleCacheKey(communityID string, contentType model.ContentType) string {
	return communityID + "/" + string(contentType)
}

// Evaluate checks content against the community's active rules for its
// content type and returns the triggered rules plus the most severe action.
// With no active rules the content is allowed immediately.
func (e *Evaluator) Evaluate(ctx context.Context, c Content) (*model.EvaluationResult, error) {
	allow := &model.EvaluationResult{
		Passed:         true,
		TriggeredRules: []model.TriggeredRule{},
		FinalAction:    model.ActionAllow,
	}

	activeRules, err := e.activeRules(ctx, c.CommunityID, c.Type)
	if err != nil {
		e.logger.Error("loading automod rules failed, allowing content",
			"community_id", c.CommunityID, "err", err)
		return allow, err
	}
	if len(activeRules) == 0 {
		return allow, nil
	}

	fullText := c.Text
	if c.Title != "" {
		fullText = c.Title + " " + c.Text
	}

	facts := &authorFacts{evaluator: e, authorID: c.AuthorID}

	var triggered []model.TriggeredRule
	for _, rule := range activeRules {
		reason := e.checkRule(ctx, rule, fullText, facts)
		if reason == "" {
			continue
		}
		triggered = append(triggered, model.TriggeredRule{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Action:   rule.Action,
			Reason:   reason,
		})
		// Usage counter only; a lost increment never affects the decision.
		if err := e.store.IncrementRuleTriggered(ctx, rule.ID); err != nil {
			e.logger.Warn("incrementing rule trigger count failed",
				"rule_id", rule.ID, "err", err)
		}
	}

	if len(triggered) == 0 {
		return allow, nil
	}

	final := triggered[0].Action
	for _, t := range triggered[1:] {
		if t.Action.Severity() > final.Severity() {
			final = t.Action
		}
	}

	return &model.EvaluationResult{
		Passed:         false,
		TriggeredRules: triggered,
		FinalAction:    final,
	}, nil
}

// checkRule parses the rule's config and dispatches to its checker. An
// invalid stored config (which validation should have prevented) or a failed
// fact lookup skips the rule rather than blocking content.
func (e *Evaluator) checkRule(ctx context.Context, rule *model.Rule, fullText string, facts *authorFacts) string {
	cfg, err := ParseConfig(rule.Type, rule.Config)
	if err != nil {
		e.logger.Warn("skipping rule with invalid stored config",
			"rule_id", rule.ID, "type", rule.Type, "err", err)
		return ""
	}

	switch cfg := cfg.(type) {
	case *BannedWordsConfig:
		return checkBannedWords(fullText, cfg)
	case *SpamFilterConfig:
		return checkSpam(fullText, cfg)
	case *KarmaMinimumConfig:
		karma, err := facts.karma(ctx)
		if err != nil {
			e.logger.Warn("karma lookup failed, skipping rule", "rule_id", rule.ID, "err", err)
			return ""
		}
		return checkKarma(karma, cfg)
	case *AccountAgeConfig:
		createdAt, err := facts.accountCreatedAt(ctx)
		if err != nil {
			e.logger.Warn("account lookup failed, skipping rule", "rule_id", rule.ID, "err", err)
			return ""
		}
		return checkAccountAge(createdAt, e.now(), cfg)
	case *LinkFilterConfig:
		return checkLinks(fullText, cfg)
	case *CapsFilterConfig:
		return checkCaps(fullText, cfg)
	default:
		return ""
	}
}

func (e *Evaluator) activeRules(ctx context.Context, communityID string, contentType model.ContentType) ([]*model.Rule, error) {
	key := ruleCacheKey(communityID, contentType)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]*model.Rule), nil
	}
	rules, err := e.store.ListActiveRules(ctx, communityID, contentType)
	if err != nil {
		return nil, err
	}
	e.cache.SetDefault(key, rules)
	return rules, nil
}

// authorFacts memoizes per-evaluation store lookups so several karma or
// account-age rules cost one query each.
type authorFacts struct {
	evaluator *Evaluator
	authorID  string

	karmaTotal  int64
	karmaLoaded bool
	createdAt   time.Time
	userLoaded  bool
}

func (f *authorFacts) karma(ctx context.Context) (int64, error) {
	if !f.karmaLoaded {
		total, err := f.evaluator.store.SumPostScoresByAuthor(ctx, f.authorID)
		if err != nil {
			return 0, err
		}
		f.karmaTotal = total
		f.karmaLoaded = true
	}
	return f.karmaTotal, nil
}

func (f *authorFacts) accountCreatedAt(ctx context.Context) (time.Time, error) {
	if !f.userLoaded {
		user, err := f.evaluator.store.GetUser(ctx, f.authorID)
		if err != nil {
			return time.Time{}, err
		}
		f.createdAt = user.CreatedAt
		f.userLoaded = true
	}
	return f.createdAt, nil
}
