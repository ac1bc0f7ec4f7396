package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/moderation"
	"github.com/openbarrio/automod/internal/rules"
)

type evaluateRequest struct {
	CommunityID string            `json:"communityId"`
	Type        model.ContentType `json:"type"`
	AuthorID    string            `json:"authorId"`
	Title       string            `json:"title,omitempty"`
	Text        string            `json:"text"`
}

// handleEvaluate runs a piece of content through the community's active
// rules and returns the verdict. Store faults during rule loading still
// yield an allow verdict; content is never blocked by our own outage.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CommunityID == "" || req.AuthorID == "" {
		writeError(w, http.StatusBadRequest, "communityId and authorId are required")
		return
	}
	if req.Type != model.ContentPost && req.Type != model.ContentComment {
		writeError(w, http.StatusBadRequest, "type must be post or comment")
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), rules.Content{
		CommunityID: req.CommunityID,
		Type:        req.Type,
		AuthorID:    req.AuthorID,
		Title:       req.Title,
		Text:        req.Text,
	})
	if err != nil {
		// Fail open: the verdict is still usable.
		s.logger.Error("evaluation degraded", "error", err, "community_id", req.CommunityID)
	}
	writeJSON(w, http.StatusOK, result)
}

type reportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleReportPost(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	actor := ActorIDFromContext(r.Context())
	report, err := s.moderation.ReportPost(r.Context(), chi.URLParam(r, "postID"), actor, req.Reason, req.Description)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleReportComment(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	actor := ActorIDFromContext(r.Context())
	report, err := s.moderation.ReportComment(r.Context(), chi.URLParam(r, "commentID"), actor, req.Reason, req.Description)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if _, ok := s.requireModerator(w, r, communityID); !ok {
		return
	}

	filter := moderation.QueueFilter{
		Status: model.ReportStatus(r.URL.Query().Get("status")),
		Type:   r.URL.Query().Get("type"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}
	reports, err := s.moderation.Queue(r.Context(), communityID, filter)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleReportStats(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if _, ok := s.requireModerator(w, r, communityID); !ok {
		return
	}

	stats, err := s.moderation.Stats(r.Context(), communityID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type resolveRequest struct {
	Action model.ReviewAction `json:"action"`
}

func (s *Server) handleResolvePostReport(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	actor := ActorIDFromContext(r.Context())
	res, err := s.moderation.ResolvePostReport(r.Context(), chi.URLParam(r, "reportID"), actor, req.Action)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolveCommentReport(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	actor := ActorIDFromContext(r.Context())
	res, err := s.moderation.ResolveCommentReport(r.Context(), chi.URLParam(r, "reportID"), actor, req.Action)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
