package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openbarrio/automod/internal/moderation"
	"github.com/openbarrio/automod/internal/rules"
	"github.com/openbarrio/automod/internal/store"
)

// Config holds server configuration.
type Config struct {
	ListenAddr string
	DBPath     string
}

// Server is the moderation service's HTTP API.
type Server struct {
	config     Config
	rules      *rules.Service
	evaluator  *rules.Evaluator
	moderation *moderation.Service
	rl         *RateLimiter
	router     chi.Router
	logger     *slog.Logger
}

// NewServer creates a new Server from the given config and store.
func NewServer(cfg Config, s store.Store, logger *slog.Logger) *Server {
	evaluator := rules.NewEvaluator(s, logger)
	srv := &Server{
		config:     cfg,
		rules:      rules.NewService(s, evaluator, logger),
		evaluator:  evaluator,
		moderation: moderation.NewService(s, logger),
		rl:         NewRateLimiter(DefaultRateLimiterConfig()),
		logger:     logger,
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware)
	r.Use(ActorMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		// Evaluation is called by the content pipeline, not end users.
		r.Post("/evaluate", s.handleEvaluate)

		r.Group(func(r chi.Router) {
			r.Use(RequireActor)

			// Report intake.
			r.Group(func(r chi.Router) {
				r.Use(ReportRateLimitMiddleware(s.rl))
				r.Post("/posts/{postID}/reports", s.handleReportPost)
				r.Post("/comments/{commentID}/reports", s.handleReportComment)
			})

			// Moderation queue and resolution.
			r.Get("/communities/{communityID}/reports", s.handleQueue)
			r.Get("/communities/{communityID}/reports/stats", s.handleReportStats)
			r.Post("/reports/posts/{reportID}/resolve", s.handleResolvePostReport)
			r.Post("/reports/comments/{reportID}/resolve", s.handleResolveCommentReport)

			// AutoMod rule management.
			r.Get("/communities/{communityID}/rules", s.handleListRules)
			r.Post("/communities/{communityID}/rules", s.handleCreateRule)
			r.Get("/communities/{communityID}/rules/stats", s.handleRuleStats)
			r.Patch("/rules/{ruleID}", s.handleUpdateRule)
			r.Delete("/rules/{ruleID}", s.handleDeleteRule)
		})
	})

	return r
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stop cleans up server resources.
func (s *Server) Stop() {
	s.rl.Stop()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireModerator resolves the actor and checks moderator access for the
// community. It writes the error response itself and returns ok=false when
// the caller should stop.
func (s *Server) requireModerator(w http.ResponseWriter, r *http.Request, communityID string) (string, bool) {
	actor := ActorIDFromContext(r.Context())
	allowed, err := s.moderation.CanModerate(r.Context(), actor, communityID)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return "", false
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "you do not have moderator access to this community")
		return "", false
	}
	return actor, true
}
