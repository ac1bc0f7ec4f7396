package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openbarrio/automod/internal/rules"
)

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if _, ok := s.requireModerator(w, r, communityID); !ok {
		return
	}

	list, err := s.rules.GetRules(r.Context(), communityID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": list})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if _, ok := s.requireModerator(w, r, communityID); !ok {
		return
	}

	var params rules.CreateRuleParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	// The URL, not the body, decides which community the rule belongs to.
	params.CommunityID = communityID

	rule, err := s.rules.CreateRule(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleRuleStats(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	if _, ok := s.requireModerator(w, r, communityID); !ok {
		return
	}

	stats, err := s.rules.Stats(r.Context(), communityID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")
	rule, err := s.rules.GetRule(r.Context(), ruleID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	if _, ok := s.requireModerator(w, r, rule.CommunityID); !ok {
		return
	}

	var params rules.UpdateRuleParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.rules.UpdateRule(r.Context(), ruleID, params)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")
	rule, err := s.rules.GetRule(r.Context(), ruleID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	if _, ok := s.requireModerator(w, r, rule.CommunityID); !ok {
		return
	}

	if err := s.rules.DeleteRule(r.Context(), ruleID); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed.
func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
