package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/openbarrio/automod/internal/model"
)

// Resolution is the outcome of a resolved report.
type Resolution struct {
	ReportID string             `json:"reportId"`
	Action   model.ReviewAction `json:"action"`
	Status   model.ReportStatus `json:"status"`
}

// ResolvePostReport applies a moderator decision to a pending post report.
// The reviewer must pass the authorization gate for the report's community.
// The status transition is a conditional write, so of two concurrent
// reviewers exactly one succeeds; the loser gets ErrAlreadyResolved and no
// enforcement runs twice.
func (s *Service) ResolvePostReport(ctx context.Context, reportID, reviewerID string, action model.ReviewAction) (*Resolution, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	report, err := s.store.GetPostReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.CanModerate(ctx, reviewerID, report.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	status := statusFor(action)
	if err := s.store.MarkPostReportReviewed(ctx, reportID, reviewerID, status, action, time.Now().UTC()); err != nil {
		return nil, err
	}

	// Enforcement runs after the transition is won. The transition is the
	// idempotency guard: a report leaves pending once, so enforcement
	// applies once.
	switch action {
	case model.ReviewRemove:
		if err := s.store.SetPostStatus(ctx, report.TargetID, model.PostRemoved); err != nil {
			return nil, fmt.Errorf("removing post: %w", err)
		}
	case model.ReviewBan:
		if err := s.store.SetMemberBanned(ctx, report.CommunityID, report.AuthorID, true); err != nil {
			return nil, fmt.Errorf("banning author: %w", err)
		}
		if err := s.store.SetPostStatus(ctx, report.TargetID, model.PostRemoved); err != nil {
			return nil, fmt.Errorf("removing post: %w", err)
		}
	case model.ReviewWarn, model.ReviewDismiss:
		// Status transition only. Warning delivery belongs to the
		// notification layer.
	}

	s.logger.Info("post report resolved",
		"report_id", reportID, "reviewer_id", reviewerID,
		"action", action, "community_id", report.CommunityID)
	return &Resolution{ReportID: reportID, Action: action, Status: status}, nil
}

// ResolveCommentReport applies a moderator decision to a pending comment
// report. Removal hard-deletes the comment; the report's content snapshot
// remains as the audit record.
func (s *Service) ResolveCommentReport(ctx context.Context, reportID, reviewerID string, action model.ReviewAction) (*Resolution, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	report, err := s.store.GetCommentReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.CanModerate(ctx, reviewerID, report.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("authorization check: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	status := statusFor(action)
	if err := s.store.MarkCommentReportReviewed(ctx, reportID, reviewerID, status, action, time.Now().UTC()); err != nil {
		return nil, err
	}

	switch action {
	case model.ReviewRemove:
		if err := s.store.DeleteComment(ctx, report.TargetID); err != nil {
			return nil, fmt.Errorf("deleting comment: %w", err)
		}
	case model.ReviewBan:
		if err := s.store.SetMemberBanned(ctx, report.CommunityID, report.AuthorID, true); err != nil {
			return nil, fmt.Errorf("banning author: %w", err)
		}
		if err := s.store.DeleteComment(ctx, report.TargetID); err != nil {
			return nil, fmt.Errorf("deleting comment: %w", err)
		}
	case model.ReviewWarn, model.ReviewDismiss:
	}

	s.logger.Info("comment report resolved",
		"report_id", reportID, "reviewer_id", reviewerID,
		"action", action, "community_id", report.CommunityID)
	return &Resolution{ReportID: reportID, Action: action, Status: status}, nil
}

func statusFor(action model.ReviewAction) model.ReportStatus {
	if action == model.ReviewDismiss {
		return model.ReportDismissed
	}
	return model.ReportActionTaken
}
