package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/async"
	"github.com/topicscout/topicscout/pkg/utils/errutil"
)

// Query defaults of the dashboard API
const (
	defaultDays     = 7
	defaultMinScore = 60.0
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorBody(err error) errorResponse {
	return errorResponse{Error: err.Error()}
}

type topicResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	TotalScore       float64               `json:"total_score"`
	Scores           model.DimensionScores `json:"scores"`
	Category         string                `json:"category"`
	Keywords         []string              `json:"keywords"`
	RecommendedAngle string                `json:"recommended_angle"`
	CompetitionLevel string                `json:"competition_level"`
	Notes            string                `json:"notes"`
	Source           string                `json:"source"`
	SessionID        string                `json:"session_id"`
	Favorited        bool                  `json:"favorited"`
	Timestamp        time.Time             `json:"timestamp"`
}

func toTopicResponse(t *model.Topic) topicResponse {
	keywords := t.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return topicResponse{
		ID:               t.ID.String(),
		Title:            t.Title,
		TotalScore:       t.TotalScore,
		Scores:           t.Scores,
		Category:         t.Category,
		Keywords:         keywords,
		RecommendedAngle: t.RecommendedAngle,
		CompetitionLevel: t.CompetitionLevel.String(),
		Notes:            t.Notes,
		Source:           t.Source.String(),
		SessionID:        t.SessionID.String(),
		Favorited:        t.Favorited,
		Timestamp:        t.Timestamp,
	}
}

type sessionResponse struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	Keywords           []string   `json:"keywords"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	TopicsResearched   int        `json:"topics_researched"`
	HighQualityCount   int        `json:"high_quality_count"`
	SkippedCount       int        `json:"skipped_count"`
	FailedCount        int        `json:"failed_count"`
	VideosAnalyzed     int        `json:"videos_analyzed"`
	CompetitorsChecked int        `json:"competitors_checked"`
	DurationSeconds    float64    `json:"duration_seconds"`
	Error              string     `json:"error,omitempty"`
}

func toSessionResponse(s *model.ResearchSession) sessionResponse {
	resp := sessionResponse{
		ID:                 s.ID.String(),
		Status:             s.Status.String(),
		Keywords:           s.Keywords,
		StartedAt:          s.StartedAt,
		TopicsResearched:   s.TopicsResearched,
		HighQualityCount:   s.HighQualityCount,
		SkippedCount:       s.SkippedCount,
		FailedCount:        s.FailedCount,
		VideosAnalyzed:     s.VideosAnalyzed,
		CompetitorsChecked: s.CompetitorsChecked,
		DurationSeconds:    s.DurationSeconds,
		Error:              s.Error,
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if !s.CompletedAt.IsZero() {
		completed := s.CompletedAt
		resp.CompletedAt = &completed
	}
	return resp
}

func statusHandler(researchUC ResearchUseCase) http.HandlerFunc {
	type response struct {
		Status          string `json:"status"`
		ResearchEnabled bool   `json:"research_enabled"`
		ResearchRunning bool   `json:"research_running"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := response{Status: "ok"}
		if researchUC != nil {
			resp.ResearchEnabled = true
			resp.ResearchRunning = researchUC.Running()
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

// researchHandler starts a run in the background and answers 202 at once
func researchHandler(researchUC ResearchUseCase, input usecase.ResearchInput) http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if researchUC == nil {
			errutil.HandleHTTP(ctx, w, goerr.New("research is not configured"), http.StatusServiceUnavailable)
			return
		}
		if researchUC.Running() {
			errutil.HandleHTTP(ctx, w, model.ErrResearchInProgress, http.StatusConflict)
			return
		}

		async.Dispatch(ctx, "research", func(ctx context.Context) error {
			_, err := researchUC.RunResearch(ctx, input)
			return err
		})

		writeJSON(ctx, w, http.StatusAccepted, response{Status: "accepted"})
	}
}

func competitorsHandler(competitorUC CompetitorUseCase) http.HandlerFunc {
	type request struct {
		ChannelIDs []string `json:"channel_ids"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if competitorUC == nil {
			errutil.HandleHTTP(ctx, w, goerr.New("competitor analysis is not configured"), http.StatusServiceUnavailable)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		var ids []string
		for _, id := range req.ChannelIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrNoChannels, "channel_ids is required"), http.StatusBadRequest)
			return
		}

		result, err := competitorUC.AnalyzeCompetitors(ctx, ids)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, model.ErrNoChannels):
				status = http.StatusBadRequest
			case errors.Is(err, model.ErrSourceUnavailable):
				status = http.StatusBadGateway
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}
		writeJSON(ctx, w, http.StatusOK, result)
	}
}

func topicsHandler(topicUC TopicUseCase) http.HandlerFunc {
	type response struct {
		Topics []topicResponse `json:"topics"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := parseTopicQuery(r.URL.Query())
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		topics, err := topicUC.GetTopics(ctx, q)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Topics: make([]topicResponse, len(topics))}
		for i, t := range topics {
			resp.Topics[i] = toTopicResponse(t)
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}

func favoriteHandler(topicUC TopicUseCase) http.HandlerFunc {
	type response struct {
		ID        string `json:"id"`
		Favorited bool   `json:"favorited"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := model.TopicID(chi.URLParam(r, "id"))

		favorited, err := topicUC.ToggleFavorite(ctx, id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrNotFound) {
				status = http.StatusNotFound
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}
		writeJSON(ctx, w, http.StatusOK, response{ID: id.String(), Favorited: favorited})
	}
}

func analyticsHandler(topicUC TopicUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := intParam(r.URL.Query(), "days", defaultDays)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		analytics, err := topicUC.GetAnalytics(ctx, days)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(ctx, w, http.StatusOK, analytics)
	}
}

func sessionsHandler(topicUC TopicUseCase) http.HandlerFunc {
	type response struct {
		Sessions []sessionResponse `json:"sessions"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		days, err := intParam(r.URL.Query(), "days", defaultDays)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		sessions, err := topicUC.ListSessions(ctx, days)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Sessions: make([]sessionResponse, len(sessions))}
		for i, s := range sessions {
			resp.Sessions[i] = toSessionResponse(s)
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}

func parseTopicQuery(values url.Values) (usecase.TopicQuery, error) {
	var q usecase.TopicQuery

	days, err := intParam(values, "days", defaultDays)
	if err != nil {
		return q, err
	}
	limit, err := intParam(values, "limit", 0)
	if err != nil {
		return q, err
	}

	minScore := defaultMinScore
	if v := values.Get("min_score"); v != "" {
		minScore, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return q, goerr.Wrap(err, "invalid min_score", goerr.V("value", v))
		}
	}

	var favorited bool
	if v := values.Get("favorited"); v != "" {
		favorited, err = strconv.ParseBool(v)
		if err != nil {
			return q, goerr.Wrap(err, "invalid favorited", goerr.V("value", v))
		}
	}

	q.MinScore = &minScore
	q.Category = values.Get("category")
	q.Days = days
	q.FavoritedOnly = favorited
	q.Limit = limit
	return q, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	v := values.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid "+name, goerr.V("value", v))
	}
	return n, nil
}
