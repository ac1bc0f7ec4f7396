package store

import (
	"context"
	"errors"
	"time"

	"github.com/openbarrio/automod/internal/model"
)

// Sentinel errors returned by Store implementations. Services translate
// these into user-facing failures at the API boundary.
var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateReport is returned when a (target, reporter) pair already
	// has a report. The unique index is the authoritative guard; any
	// service-level pre-check is only an optimization.
	ErrDuplicateReport = errors.New("target already reported by this user")

	// ErrAlreadyResolved is returned when a report's status is no longer
	// pending at the moment of the conditional review write.
	ErrAlreadyResolved = errors.New("report already reviewed")
)

// ReportFilter narrows report listings for the moderation queue.
type ReportFilter struct {
	Status model.ReportStatus
	Limit  int
	Offset int
}

// Store defines the persistence interface for the trust & safety service.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)

	// Communities
	CreateCommunity(ctx context.Context, c *model.Community) error
	GetCommunity(ctx context.Context, id string) (*model.Community, error)

	// Memberships
	CreateMember(ctx context.Context, m *model.CommunityMember) error
	GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error)
	SetMemberBanned(ctx context.Context, communityID, userID string, banned bool) error

	// Posts and comments
	CreatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	SetPostStatus(ctx context.Context, id string, status model.PostStatus) error
	SumPostScoresByAuthor(ctx context.Context, authorID string) (int64, error)
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// AutoMod rules
	CreateRule(ctx context.Context, r *model.Rule) error
	GetRule(ctx context.Context, id string) (*model.Rule, error)
	UpdateRule(ctx context.Context, r *model.Rule) error
	DeleteRule(ctx context.Context, id string) error
	ListRulesByCommunity(ctx context.Context, communityID string) ([]*model.Rule, error)
	// ListActiveRules returns the community's active rules whose apply_to
	// covers the given content type, in creation order.
	ListActiveRules(ctx context.Context, communityID string, contentType model.ContentType) ([]*model.Rule, error)
	// IncrementRuleTriggered bumps a rule's usage counter by one. Best
	// effort; callers log and swallow failures.
	IncrementRuleTriggered(ctx context.Context, id string) error

	// Reports
	CreatePostReport(ctx context.Context, r *model.Report) error
	CreateCommentReport(ctx context.Context, r *model.Report) error
	GetPostReport(ctx context.Context, id string) (*model.Report, error)
	GetCommentReport(ctx context.Context, id string) (*model.Report, error)
	HasPostReport(ctx context.Context, postID, reporterID string) (bool, error)
	HasCommentReport(ctx context.Context, commentID, reporterID string) (bool, error)
	ListPostReports(ctx context.Context, communityID string, f ReportFilter) ([]*model.Report, error)
	ListCommentReports(ctx context.Context, communityID string, f ReportFilter) ([]*model.Report, error)
	// MarkPostReportReviewed transitions a report out of pending. The write
	// is conditional on the stored status still being pending; if another
	// reviewer won the race it returns ErrAlreadyResolved.
	MarkPostReportReviewed(ctx context.Context, id, reviewerID string, status model.ReportStatus, action model.ReviewAction, at time.Time) error
	MarkCommentReportReviewed(ctx context.Context, id, reviewerID string, status model.ReportStatus, action model.ReviewAction, at time.Time) error
	CountPostReports(ctx context.Context, communityID string, status model.ReportStatus) (int, error)
	CountCommentReports(ctx context.Context, communityID string, status model.ReportStatus) (int, error)
	CountReportsResolvedSince(ctx context.Context, communityID string, since time.Time) (int, error)
	// OldestPendingReport returns the age of the oldest pending report in
	// each community that has at least one, keyed by community id.
	OldestPendingReport(ctx context.Context, now time.Time) (map[string]time.Duration, error)
}
