package usecase_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/repository/memory"
	"github.com/topicscout/topicscout/pkg/usecase"
)

func newTopic(title string, score float64, category string, ts time.Time) *model.Topic {
	return &model.Topic{
		Title:            title,
		TotalScore:       score,
		Category:         category,
		CompetitionLevel: types.CompetitionMedium,
		Source:           types.SourceSearch,
		Timestamp:        ts,
	}
}

func TestTopicUseCase(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("saved topics are listed with filters", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)

		id, err := uc.SaveTopic(ctx, newTopic("Docker basics", 72, "Tutorial", now))
		gt.NoError(t, err).Required()
		gt.String(t, id.String()).NotEqual("")

		_, err = uc.SaveTopic(ctx, newTopic("Rust vs Go", 65, "Comparison", now.Add(-time.Minute)))
		gt.NoError(t, err).Required()
		_, err = uc.SaveTopic(ctx, newTopic("Old news", 90, "News", now.AddDate(0, 0, -30)))
		gt.NoError(t, err).Required()

		all, err := uc.GetTopics(ctx, usecase.TopicQuery{})
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3).Required()
		gt.Value(t, all[0].Title).Equal("Old news")

		recent, err := uc.GetTopics(ctx, usecase.TopicQuery{Days: 7})
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(2)

		minScore := 70.0
		high, err := uc.GetTopics(ctx, usecase.TopicQuery{MinScore: &minScore, Days: 7})
		gt.NoError(t, err).Required()
		gt.Array(t, high).Length(1).Required()
		gt.Value(t, high[0].ID).Equal(id)

		comparisons, err := uc.GetTopics(ctx, usecase.TopicQuery{Category: "Comparison"})
		gt.NoError(t, err).Required()
		gt.Array(t, comparisons).Length(1)

		limited, err := uc.GetTopics(ctx, usecase.TopicQuery{Limit: 2})
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(2)
	})

	t.Run("default limit applies", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		for i := 0; i < usecase.DefaultTopicLimit+5; i++ {
			_, err := uc.SaveTopic(ctx, newTopic("Topic", float64(i%100), "General", now))
			gt.NoError(t, err).Required()
		}

		topics, err := uc.GetTopics(ctx, usecase.TopicQuery{})
		gt.NoError(t, err).Required()
		gt.Array(t, topics).Length(usecase.DefaultTopicLimit)
	})

	t.Run("toggling twice restores the flag", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		id, err := uc.SaveTopic(ctx, newTopic("Kubernetes tips", 80, "Tips & Tricks", now))
		gt.NoError(t, err).Required()

		on, err := uc.ToggleFavorite(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, on).True()

		favorites, err := uc.GetTopics(ctx, usecase.TopicQuery{FavoritedOnly: true})
		gt.NoError(t, err).Required()
		gt.Array(t, favorites).Length(1)

		off, err := uc.ToggleFavorite(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, off).False()
	})

	t.Run("toggling an unknown topic fails", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		_, err := uc.ToggleFavorite(ctx, "missing")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestGetAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields zeroed analytics", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)

		a, err := uc.GetAnalytics(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, *a).Equal(model.Analytics{Days: 7})
	})

	t.Run("topics without sessions keep averages zeroed", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		_, err := uc.SaveTopic(ctx, newTopic("Imported", 90, "Tutorial", time.Now().UTC()))
		gt.NoError(t, err).Required()

		a, err := uc.GetAnalytics(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, a.TotalSessions).Equal(0)
		gt.Value(t, a.AvgScore).Equal(0.0)
		gt.Value(t, a.AvgTopicsPerSession).Equal(0.0)
	})

	t.Run("sessions and topics are aggregated", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewTopicUseCase(repo, nil)
		now := time.Now().UTC()

		for _, s := range []*model.ResearchSession{
			{StartedAt: now.Add(-time.Hour), TopicsResearched: 10, HighQualityCount: 3, DurationSeconds: 30},
			{StartedAt: now.Add(-2 * time.Hour), TopicsResearched: 4, HighQualityCount: 1, DurationSeconds: 10},
			{StartedAt: now.AddDate(0, 0, -20), TopicsResearched: 50, HighQualityCount: 9, DurationSeconds: 99},
		} {
			created, err := repo.Session().Create(ctx, s)
			gt.NoError(t, err).Required()
			created.Status = types.SessionCompleted
			gt.NoError(t, repo.Session().Finalize(ctx, created)).Required()
		}

		id, err := uc.SaveTopic(ctx, newTopic("A", 80, "Tutorial", now))
		gt.NoError(t, err).Required()
		_, err = uc.SaveTopic(ctx, newTopic("B", 60, "Tutorial", now))
		gt.NoError(t, err).Required()
		_, err = uc.SaveTopic(ctx, newTopic("C", 10, "Tutorial", now.AddDate(0, 0, -20)))
		gt.NoError(t, err).Required()
		_, err = uc.ToggleFavorite(ctx, id)
		gt.NoError(t, err).Required()

		a, err := uc.GetAnalytics(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, a.TotalSessions).Equal(2)
		gt.Value(t, a.TopicsResearched).Equal(14)
		gt.Value(t, a.HighQualityTopics).Equal(4)
		gt.Value(t, a.TotalDuration).Equal(40.0)
		gt.Value(t, a.AvgTopicsPerSession).Equal(7.0)
		gt.Value(t, a.AvgScore).Equal(70.0)
		gt.Value(t, a.FavoriteCount).Equal(1)

		sessions, err := uc.ListSessions(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Array(t, sessions).Length(2)

		allSessions, err := uc.ListSessions(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, allSessions).Length(3)
	})
}

func TestExportTopics(t *testing.T) {
	ctx := context.Background()

	t.Run("csv export contains matching topics", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		now := time.Now().UTC()
		_, err := uc.SaveTopic(ctx, newTopic("Recent topic", 75, "Tutorial", now))
		gt.NoError(t, err).Required()
		_, err = uc.SaveTopic(ctx, newTopic("Ancient topic", 75, "Tutorial", now.AddDate(-1, 0, 0)))
		gt.NoError(t, err).Required()

		dest := filepath.Join(t.TempDir(), "topics.csv")
		n, err := uc.ExportTopics(ctx, dest, 30)
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)

		file, err := os.Open(dest)
		gt.NoError(t, err).Required()
		defer file.Close()

		records, err := csv.NewReader(file).ReadAll()
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2).Required()
		gt.Value(t, records[1][1]).Equal("Recent topic")
	})

	t.Run("empty export still writes the header", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)

		dest := filepath.Join(t.TempDir(), "empty.csv")
		n, err := uc.ExportTopics(ctx, dest, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(0)

		data, err := os.ReadFile(dest)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("id,title,total_score")
	})

	t.Run("unsupported extension fails", func(t *testing.T) {
		uc := usecase.NewTopicUseCase(memory.New(), nil)
		_, err := uc.ExportTopics(ctx, filepath.Join(t.TempDir(), "topics.pdf"), 7)
		gt.Error(t, err).Is(model.ErrInvalidConfig)
	})
}
