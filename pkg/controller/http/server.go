package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/errutil"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// TopicUseCase is the read side of the research store served by the API
type TopicUseCase interface {
	GetTopics(ctx context.Context, q usecase.TopicQuery) ([]*model.Topic, error)
	ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error)
	GetAnalytics(ctx context.Context, days int) (*model.Analytics, error)
	ListSessions(ctx context.Context, days int) ([]*model.ResearchSession, error)
}

// ResearchUseCase starts research runs
type ResearchUseCase interface {
	RunResearch(ctx context.Context, input usecase.ResearchInput) (*usecase.ResearchResult, error)
	Running() bool
}

// CompetitorUseCase compares competitor channels
type CompetitorUseCase interface {
	AnalyzeCompetitors(ctx context.Context, channelIDs []string) (*model.CompetitorComparison, error)
}

type Server struct {
	router        *chi.Mux
	topicUC       TopicUseCase
	researchUC    ResearchUseCase
	researchInput usecase.ResearchInput
	competitorUC  CompetitorUseCase
	apiToken      string
}

type Options func(*Server)

// WithResearch enables POST /api/research. input is used for every run
// started through the API.
func WithResearch(uc ResearchUseCase, input usecase.ResearchInput) Options {
	return func(s *Server) {
		s.researchUC = uc
		s.researchInput = input
	}
}

// WithCompetitors enables POST /api/competitors
func WithCompetitors(uc CompetitorUseCase) Options {
	return func(s *Server) {
		s.competitorUC = uc
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on every /api route
func WithAPIToken(token string) Options {
	return func(s *Server) {
		s.apiToken = token
	}
}

func New(topicUC TopicUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:  r,
		topicUC: topicUC,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		if s.apiToken != "" {
			r.Use(tokenMiddleware(s.apiToken))
		}

		r.Get("/status", statusHandler(s.researchUC))
		r.Post("/research", researchHandler(s.researchUC, s.researchInput))
		r.Post("/competitors", competitorsHandler(s.competitorUC))
		r.Get("/topics", topicsHandler(s.topicUC))
		r.Post("/topics/{id}/favorite", favoriteHandler(s.topicUC))
		r.Get("/analytics", analyticsHandler(s.topicUC))
		r.Get("/sessions", sessionsHandler(s.topicUC))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}
