package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openbarrio/automod/internal/model"
	"github.com/openbarrio/automod/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewSQLiteStore(ctx, t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	now := time.Now().UTC()
	for _, id := range []string{"owner-1", "mod-1", "member-1", "author-1"} {
		err := s.CreateUser(ctx, &model.User{ID: id, Name: id, Email: id + "@example.com", CreatedAt: now})
		if err != nil {
			t.Fatalf("seed user %s: %v", id, err)
		}
	}
	err = s.CreateCommunity(ctx, &model.Community{
		ID: "comm-1", Name: "Gardening", Slug: "gardening", OwnerID: "owner-1", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed community: %v", err)
	}
	err = s.CreateMember(ctx, &model.CommunityMember{
		ID: "m-1", CommunityID: "comm-1", UserID: "mod-1",
		Role: model.RoleModerator, CanModerate: true, JoinedAt: now,
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	err = s.CreatePost(ctx, &model.Post{
		ID: "post-1", CommunityID: "comm-1", AuthorID: "author-1",
		Title: "Hello", Content: "First post", Status: model.PostActive, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	srv := NewServer(Config{ListenAddr: ":0"}, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(srv.Stop)
	return srv, s
}

func doJSON(t *testing.T, srv *Server, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"communityId": "comm-1", "type": "post", "authorId": "author-1", "text": "hello"}`
	rec := doJSON(t, srv, http.MethodPost, "/v1/evaluate", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result model.EvaluationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Passed || result.FinalAction != model.ActionAllow {
		t.Errorf("result = %+v, want allow with no rules configured", result)
	}
}

func TestEvaluateEndpoint_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name, body string
	}{
		{"missing community", `{"type": "post", "authorId": "a", "text": "x"}`},
		{"bad type", `{"communityId": "c", "type": "video", "authorId": "a", "text": "x"}`},
		{"unknown field", `{"communityId": "c", "type": "post", "authorId": "a", "text": "x", "bogus": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/v1/evaluate", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestReportPostEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/posts/post-1/reports", "member-1", `{"reason": "spam"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var rpt model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rpt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rpt.Status != model.ReportPending || rpt.TargetID != "post-1" {
		t.Errorf("report = %+v", rpt)
	}

	// Duplicate from the same reporter.
	rec = doJSON(t, srv, http.MethodPost, "/v1/posts/post-1/reports", "member-1", `{"reason": "spam"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Self-report.
	rec = doJSON(t, srv, http.MethodPost, "/v1/posts/post-1/reports", "author-1", `{"reason": "spam"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("self-report status = %d, want 422", rec.Code)
	}
}

func TestReportPostEndpoint_RequiresActor(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/v1/posts/post-1/reports", "", `{"reason": "spam"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestQueueEndpoint_Authorization(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/v1/communities/comm-1/reports", "member-1", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/communities/comm-1/reports", "mod-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("moderator status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestResolveEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/v1/posts/post-1/reports", "member-1", `{"reason": "spam"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("report status = %d", rec.Code)
	}
	var rpt model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rpt); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/reports/posts/"+rpt.ID+"/resolve", "mod-1", `{"action": "dismiss"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Already resolved.
	rec = doJSON(t, srv, http.MethodPost, "/v1/reports/posts/"+rpt.ID+"/resolve", "owner-1", `{"action": "remove"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("second resolve status = %d, want 409", rec.Code)
	}

	// Bad action.
	rec = doJSON(t, srv, http.MethodPost, "/v1/reports/posts/"+rpt.ID+"/resolve", "mod-1", `{"action": "explode"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad action status = %d, want 400", rec.Code)
	}
}

func TestRuleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// Non-moderators cannot create rules.
	body := `{"name": "no spam", "type": "banned_words", "config": {"words": ["spam"]}}`
	rec := doJSON(t, srv, http.MethodPost, "/v1/communities/comm-1/rules", "member-1", body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member create status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/communities/comm-1/rules", "mod-1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rule model.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rule.Action != model.ActionRemove || rule.ApplyTo != model.ApplyBoth {
		t.Errorf("defaults = (%q, %q), want (remove, both)", rule.Action, rule.ApplyTo)
	}

	// Invalid config is a 400.
	bad := `{"name": "broken", "type": "caps_filter", "config": {"maxCapsPercent": 150}}`
	rec = doJSON(t, srv, http.MethodPost, "/v1/communities/comm-1/rules", "mod-1", bad)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid config status = %d, want 400", rec.Code)
	}

	// Update flips the rule off.
	rec = doJSON(t, srv, http.MethodPatch, "/v1/rules/"+rule.ID, "mod-1", `{"isActive": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Stats reflect the rule.
	rec = doJSON(t, srv, http.MethodGet, "/v1/communities/comm-1/rules/stats", "mod-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats model.RuleStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalRules != 1 || stats.ActiveRules != 0 {
		t.Errorf("stats = %+v, want 1 rule, 0 active", stats)
	}

	// Delete.
	rec = doJSON(t, srv, http.MethodDelete, "/v1/rules/"+rule.ID, "mod-1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodDelete, "/v1/rules/"+rule.ID, "mod-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete again status = %d, want 404", rec.Code)
	}
}
