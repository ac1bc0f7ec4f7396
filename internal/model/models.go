package model

import (
	"encoding/json"
	"time"
)

// RuleType identifies the kind of check an AutoMod rule performs.
type RuleType string

const (
	RuleBannedWords  RuleType = "banned_words"
	RuleSpamFilter   RuleType = "spam_filter"
	RuleKarmaMinimum RuleType = "karma_minimum"
	RuleAccountAge   RuleType = "account_age"
	RuleLinkFilter   RuleType = "link_filter"
	RuleCapsFilter   RuleType = "caps_filter"
)

// RuleAction is the enforcement a triggered rule asks for.
type RuleAction string

const (
	ActionAllow      RuleAction = "allow"
	ActionFlag       RuleAction = "flag"
	ActionAutoReport RuleAction = "auto_report"
	ActionMute       RuleAction = "mute"
	ActionRemove     RuleAction = "remove"
	ActionBan        RuleAction = "ban"
)

// Severity returns the rank used to pick the final outcome when several rules
// trigger. Higher wins. ActionAllow and unknown actions rank zero.
func (a RuleAction) Severity() int {
	switch a {
	case ActionFlag:
		return 1
	case ActionAutoReport:
		return 2
	case ActionMute:
		return 3
	case ActionRemove:
		return 4
	case ActionBan:
		return 5
	default:
		return 0
	}
}

// ContentType distinguishes posts from comments.
type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentComment ContentType = "comment"
)

// ApplyTo restricts which content types a rule evaluates.
type ApplyTo string

const (
	ApplyPost    ApplyTo = "post"
	ApplyComment ApplyTo = "comment"
	ApplyBoth    ApplyTo = "both"
)

// Rule is a configured AutoMod rule scoped to one community. Config holds the
// type-specific configuration as JSON; it is validated before persistence and
// parsed into a typed variant at evaluation time.
type Rule struct {
	ID             string          `json:"id"`
	CommunityID    string          `json:"communityId"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Type           RuleType        `json:"type"`
	Config         json.RawMessage `json:"config"` // shape depends on Type
	Action         RuleAction      `json:"action"`
	ApplyTo        ApplyTo         `json:"applyTo"`
	IsActive       bool            `json:"isActive"`
	TriggeredCount int64           `json:"triggeredCount"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// TriggeredRule records one rule violation within an evaluation.
type TriggeredRule struct {
	RuleID   string     `json:"ruleId"`
	RuleName string     `json:"ruleName"`
	Action   RuleAction `json:"action"`
	Reason   string     `json:"reason"`
}

// EvaluationResult is the outcome of running a piece of content through a
// community's active rules. It is never persisted.
type EvaluationResult struct {
	Passed         bool            `json:"passed"`
	TriggeredRules []TriggeredRule `json:"triggeredRules"`
	FinalAction    RuleAction      `json:"finalAction"`
}

// ReportStatus tracks a report through its lifecycle. Pending is the only
// non-terminal status; a report leaves it exactly once, via resolution.
type ReportStatus string

const (
	ReportPending     ReportStatus = "pending"
	ReportDismissed   ReportStatus = "dismissed"
	ReportActionTaken ReportStatus = "action_taken"
)

// ReviewAction is the decision a moderator applies when resolving a report.
type ReviewAction string

const (
	ReviewDismiss ReviewAction = "dismiss"
	ReviewRemove  ReviewAction = "remove"
	ReviewWarn    ReviewAction = "warn"
	ReviewBan     ReviewAction = "ban"
)

// Valid reports whether a is one of the recognized review actions.
func (a ReviewAction) Valid() bool {
	switch a {
	case ReviewDismiss, ReviewRemove, ReviewWarn, ReviewBan:
		return true
	}
	return false
}

// Report is a user-submitted flag against a post or a comment. Post and
// comment reports live in separate tables but share this shape; TargetKind
// tells them apart. Title/content/author/community are snapshots taken at
// intake so moderators can review the report even after the target changes
// or, for comments, is deleted.
type Report struct {
	ID          string       `json:"id"`
	TargetKind  ContentType  `json:"type"`
	TargetID    string       `json:"targetId"`
	ReporterID  string       `json:"reporterId"`
	Reason      string       `json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      ReportStatus `json:"status"`
	ReviewedBy  string       `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewedAt,omitempty"`
	Action      ReviewAction `json:"action,omitempty"`

	// Denormalized review context.
	CommunityID     string `json:"communityId"`
	AuthorID        string `json:"authorId"`
	TitleSnapshot   string `json:"title,omitempty"` // empty for comment reports
	ContentSnapshot string `json:"content"`

	CreatedAt time.Time `json:"createdAt"`
}

// ReportStats summarizes a community's report queue.
type ReportStats struct {
	Pending         int `json:"pending"`
	PendingPosts    int `json:"pendingPosts"`
	PendingComments int `json:"pendingComments"`
	ResolvedToday   int `json:"resolvedToday"`
}

// RuleStats summarizes a community's AutoMod configuration and usage.
type RuleStats struct {
	TotalRules    int              `json:"totalRules"`
	ActiveRules   int              `json:"activeRules"`
	TotalTriggers int64            `json:"totalTriggers"`
	Rules         []RuleStatsEntry `json:"rules"`
}

// RuleStatsEntry is one rule's line in RuleStats.
type RuleStatsEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           RuleType `json:"type"`
	TriggeredCount int64    `json:"triggeredCount"`
	IsActive       bool     `json:"isActive"`
}

// MemberRole is a user's role within a community.
type MemberRole string

const (
	RoleOwner     MemberRole = "owner"
	RoleModerator MemberRole = "moderator"
	RoleMember    MemberRole = "member"
)

// User is a platform account. Only the fields this service consumes.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Community is a platform community. Owned externally; this service reads it
// for authorization and writes nothing.
type Community struct {
	ID        string
	Name      string
	Slug      string
	OwnerID   string
	CreatedAt time.Time
}

// CommunityMember is a user's membership row in a community. The resolution
// engine flips IsBanned; everything else is read-only here.
type CommunityMember struct {
	ID          string
	CommunityID string
	UserID      string
	Role        MemberRole
	CanModerate bool
	IsBanned    bool
	IsMuted     bool
	JoinedAt    time.Time
}

// PostStatus tracks whether a post is visible.
type PostStatus string

const (
	PostActive  PostStatus = "active"
	PostRemoved PostStatus = "removed"
)

// Post is a community post. Score feeds the karma checker; Status is flipped
// to removed by the resolution engine (posts are soft-deleted).
type Post struct {
	ID          string
	CommunityID string
	AuthorID    string
	Title       string
	Content     string
	Score       int64
	Status      PostStatus
	CreatedAt   time.Time
}

// Comment is a comment on a post. Comments are hard-deleted on removal; the
// report row's content snapshot preserves the audit trail.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
