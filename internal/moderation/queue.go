package moderation

import (
	"context"
	"sort"
	"time"

	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQueueLimit = 25
	maxQueueLimit     = 100
)

// QueueFilter selects which reports the moderation queue returns.
type QueueFilter struct {
	Status model.ReportStatus // default pending
	Type   string             // "post", "comment", or "all" (default)
	Page   int                // 1-based
	Limit  int
}

func (f *QueueFilter) normalize() {
	if f.Status == "" {
		f.Status = model.ReportPending
	}
	if f.Type == "" {
		f.Type = "all"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultQueueLimit
	}
	if f.Limit > maxQueueLimit {
		f.Limit = maxQueueLimit
	}
}

// Queue returns a community's reports merged across post and comment
// reports, newest first. Both sides are fetched up to the end of the
// requested page, merged, sorted, and only then paginated, so the page
// boundary stays correct when one content type dominates recent activity.
func (s *Service) Queue(ctx context.Context, communityID string, f QueueFilter) ([]*model.Report, error) {
	f.normalize()

	offset := (f.Page - 1) * f.Limit
	fetch := store.ReportFilter{
		Status: f.Status,
		Limit:  offset + f.Limit,
		Offset: 0,
	}

	var posts, comments []*model.Report
	g, gctx := errgroup.WithContext(ctx)
	if f.Type == "post" || f.Type == "all" {
		g.Go(func() error {
			var err error
			posts, err = s.store.ListPostReports(gctx, communityID, fetch)
			return err
		})
	}
	if f.Type == "comment" || f.Type == "all" {
		g.Go(func() error {
			var err error
			comments, err = s.store.ListCommentReports(gctx, communityID, fetch)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := append(posts, comments...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if offset >= len(merged) {
		return []*model.Report{}, nil
	}
	end := offset + f.Limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[offset:end], nil
}

// Stats summarizes a community's queue: pending counts by type and reports
// resolved since UTC midnight.
func (s *Service) Stats(ctx context.Context, communityID string) (*model.ReportStats, error) {
	var pendingPosts, pendingComments, resolvedToday int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pendingPosts, err = s.store.CountPostReports(gctx, communityID, model.ReportPending)
		return err
	})
	g.Go(func() error {
		var err error
		pendingComments, err = s.store.CountCommentReports(gctx, communityID, model.ReportPending)
		return err
	})
	g.Go(func() error {
		now := time.Now().UTC()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		var err error
		resolvedToday, err = s.store.CountReportsResolvedSince(gctx, communityID, midnight)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.ReportStats{
		Pending:         pendingPosts + pendingComments,
		PendingPosts:    pendingPosts,
		PendingComments: pendingComments,
		ResolvedToday:   resolvedToday,
	}, nil
}
