package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
)

// ReportPost records a user report against a post. It rejects reports on
// missing posts, self-reports, and duplicates from the same reporter. The
// created report snapshots the post's title, content, author, and community
// for moderator review.
func (s *Service) ReportPost(ctx context.Context, postID, reporterID, reason, description string) (*model.Report, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("looking up post: %w", err)
	}
	if post.AuthorID == reporterID {
		return nil, ErrSelfReport
	}

	// Cheap pre-check; the unique index on (post_id, reporter_id) is the
	// authoritative guard under concurrency.
	exists, err := s.store.HasPostReport(ctx, postID, reporterID)
	if err != nil {
		return nil, fmt.Errorf("checking for existing report: %w", err)
	}
	if exists {
		return nil, store.ErrDuplicateReport
	}

	report := &model.Report{
		ID:              uuid.NewString(),
		TargetKind:      model.ContentPost,
		TargetID:        postID,
		ReporterID:      reporterID,
		Reason:          reason,
		Description:     sanitizeDescription(description),
		Status:          model.ReportPending,
		CommunityID:     post.CommunityID,
		AuthorID:        post.AuthorID,
		TitleSnapshot:   post.Title,
		ContentSnapshot: post.Content,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.CreatePostReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("post reported",
		"report_id", report.ID, "post_id", postID,
		"community_id", post.CommunityID, "reason", reason)
	return report, nil
}

// ReportComment records a user report against a comment, with the same
// rejection rules as ReportPost. The community is resolved through the
// comment's post and denormalized onto the report.
func (s *Service) ReportComment(ctx context.Context, commentID, reporterID, reason, description string) (*model.Report, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("looking up comment: %w", err)
	}
	if comment.AuthorID == reporterID {
		return nil, ErrSelfReport
	}

	exists, err := s.store.HasCommentReport(ctx, commentID, reporterID)
	if err != nil {
		return nil, fmt.Errorf("checking for existing report: %w", err)
	}
	if exists {
		return nil, store.ErrDuplicateReport
	}

	post, err := s.store.GetPost(ctx, comment.PostID)
	if err != nil {
		return nil, fmt.Errorf("looking up parent post: %w", err)
	}

	report := &model.Report{
		ID:              uuid.NewString(),
		TargetKind:      model.ContentComment,
		TargetID:        commentID,
		ReporterID:      reporterID,
		Reason:          reason,
		Description:     sanitizeDescription(description),
		Status:          model.ReportPending,
		CommunityID:     post.CommunityID,
		AuthorID:        comment.AuthorID,
		ContentSnapshot: comment.Content,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.CreateCommentReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("comment reported",
		"report_id", report.ID, "comment_id", commentID,
		"community_id", post.CommunityID, "reason", reason)
	return report, nil
}
