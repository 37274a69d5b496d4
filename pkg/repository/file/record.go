package file

import (
	"slices"
	"time"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

type topicRecord struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Importance       int       `json:"importance"`
	Watchability     int       `json:"watchability"`
	Monetization     int       `json:"monetization"`
	Popularity       int       `json:"popularity"`
	Innovation       int       `json:"innovation"`
	TotalScore       float64   `json:"total_score"`
	Category         string    `json:"category"`
	Keywords         []string  `json:"keywords"`
	RecommendedAngle string    `json:"recommended_angle"`
	CompetitionLevel string    `json:"competition_level"`
	Notes            string    `json:"notes"`
	AIAnalysis       string    `json:"ai_analysis"`
	Source           string    `json:"source"`
	SessionID        string    `json:"session_id"`
	Timestamp        time.Time `json:"timestamp"`
	Favorited        bool      `json:"favorited"`
}

func toTopicRecord(t *model.Topic) *topicRecord {
	return &topicRecord{
		ID:               string(t.ID),
		Title:            t.Title,
		Importance:       t.Scores.Importance,
		Watchability:     t.Scores.Watchability,
		Monetization:     t.Scores.Monetization,
		Popularity:       t.Scores.Popularity,
		Innovation:       t.Scores.Innovation,
		TotalScore:       t.TotalScore,
		Category:         t.Category,
		Keywords:         slices.Clone(t.Keywords),
		RecommendedAngle: t.RecommendedAngle,
		CompetitionLevel: string(t.CompetitionLevel),
		Notes:            t.Notes,
		AIAnalysis:       t.AIAnalysis,
		Source:           string(t.Source),
		SessionID:        string(t.SessionID),
		Timestamp:        t.Timestamp.UTC(),
		Favorited:        t.Favorited,
	}
}

func (r *topicRecord) toModel() *model.Topic {
	return &model.Topic{
		ID:    model.TopicID(r.ID),
		Title: r.Title,
		Scores: model.DimensionScores{
			Importance:   r.Importance,
			Watchability: r.Watchability,
			Monetization: r.Monetization,
			Popularity:   r.Popularity,
			Innovation:   r.Innovation,
		},
		TotalScore:       r.TotalScore,
		Category:         r.Category,
		Keywords:         slices.Clone(r.Keywords),
		RecommendedAngle: r.RecommendedAngle,
		CompetitionLevel: types.ParseCompetitionLevel(r.CompetitionLevel),
		Notes:            r.Notes,
		AIAnalysis:       r.AIAnalysis,
		Source:           types.SourceType(r.Source),
		SessionID:        model.SessionID(r.SessionID),
		Timestamp:        r.Timestamp.UTC(),
		Favorited:        r.Favorited,
	}
}

type sessionRecord struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	Keywords           []string  `json:"keywords"`
	StartedAt          time.Time `json:"started_at"`
	CompletedAt        time.Time `json:"completed_at"`
	TopicsResearched   int       `json:"topics_researched"`
	HighQualityCount   int       `json:"high_quality_count"`
	SkippedCount       int       `json:"skipped_count"`
	FailedCount        int       `json:"failed_count"`
	VideosAnalyzed     int       `json:"videos_analyzed"`
	CompetitorsChecked int       `json:"competitors_checked"`
	DurationSeconds    float64   `json:"duration_seconds"`
	Error              string    `json:"error,omitempty"`
}

func toSessionRecord(s *model.ResearchSession) *sessionRecord {
	return &sessionRecord{
		ID:                 string(s.ID),
		Status:             string(s.Status),
		Keywords:           slices.Clone(s.Keywords),
		StartedAt:          s.StartedAt.UTC(),
		CompletedAt:        s.CompletedAt.UTC(),
		TopicsResearched:   s.TopicsResearched,
		HighQualityCount:   s.HighQualityCount,
		SkippedCount:       s.SkippedCount,
		FailedCount:        s.FailedCount,
		VideosAnalyzed:     s.VideosAnalyzed,
		CompetitorsChecked: s.CompetitorsChecked,
		DurationSeconds:    s.DurationSeconds,
		Error:              s.Error,
	}
}

func (r *sessionRecord) toModel() *model.ResearchSession {
	return &model.ResearchSession{
		ID:                 model.SessionID(r.ID),
		Status:             types.SessionStatus(r.Status),
		Keywords:           slices.Clone(r.Keywords),
		StartedAt:          r.StartedAt.UTC(),
		CompletedAt:        r.CompletedAt.UTC(),
		TopicsResearched:   r.TopicsResearched,
		HighQualityCount:   r.HighQualityCount,
		SkippedCount:       r.SkippedCount,
		FailedCount:        r.FailedCount,
		VideosAnalyzed:     r.VideosAnalyzed,
		CompetitorsChecked: r.CompetitorsChecked,
		DurationSeconds:    r.DurationSeconds,
		Error:              r.Error,
	}
}
