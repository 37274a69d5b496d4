package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/service/export"
)

// DefaultTopicLimit is applied when a TopicQuery has no limit
const DefaultTopicLimit = 100

// TopicQuery filters topics. Days <= 0 disables the time window.
type TopicQuery struct {
	MinScore      *float64
	Category      string
	Days          int
	FavoritedOnly bool
	Limit         int
}

type TopicUseCase struct {
	repo interfaces.Repository
	sink *export.Sink
}

func NewTopicUseCase(repo interfaces.Repository, sink *export.Sink) *TopicUseCase {
	if sink == nil {
		sink = export.NewSink()
	}
	return &TopicUseCase{repo: repo, sink: sink}
}

func (uc *TopicUseCase) SaveTopic(ctx context.Context, topic *model.Topic) (model.TopicID, error) {
	created, err := uc.repo.Topic().Create(ctx, topic)
	if err != nil {
		return "", goerr.Wrap(err, "failed to save topic")
	}
	return created.ID, nil
}

// GetTopics returns matching topics ranked by score, then recency
func (uc *TopicUseCase) GetTopics(ctx context.Context, q TopicQuery) ([]*model.Topic, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultTopicLimit
	}

	opts := []interfaces.ListTopicOption{interfaces.WithLimit(limit)}
	if q.MinScore != nil {
		opts = append(opts, interfaces.WithMinScore(*q.MinScore))
	}
	if q.Category != "" {
		opts = append(opts, interfaces.WithCategory(q.Category))
	}
	if since := windowStart(q.Days); !since.IsZero() {
		opts = append(opts, interfaces.WithSince(since))
	}
	if q.FavoritedOnly {
		opts = append(opts, interfaces.WithFavoritedOnly())
	}

	topics, err := uc.repo.Topic().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list topics")
	}
	return topics, nil
}

// ToggleFavorite flips the favorite flag and returns the new value
func (uc *TopicUseCase) ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error) {
	favorited, err := uc.repo.Topic().ToggleFavorite(ctx, id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to toggle favorite", goerr.V(model.TopicIDKey, id))
	}
	return favorited, nil
}

// GetAnalytics aggregates sessions started and topics saved within the
// last days. A window without sessions yields zeroed averages.
func (uc *TopicUseCase) GetAnalytics(ctx context.Context, days int) (*model.Analytics, error) {
	since := windowStart(days)

	sessions, err := uc.repo.Session().List(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}

	var topicOpts []interfaces.ListTopicOption
	if !since.IsZero() {
		topicOpts = append(topicOpts, interfaces.WithSince(since))
	}
	topics, err := uc.repo.Topic().List(ctx, topicOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list topics")
	}

	favorites, err := uc.repo.Topic().CountFavorites(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count favorites")
	}

	a := &model.Analytics{
		Days:          days,
		TotalSessions: len(sessions),
		FavoriteCount: favorites,
	}
	for _, s := range sessions {
		a.TopicsResearched += s.TopicsResearched
		a.HighQualityTopics += s.HighQualityCount
		a.TotalDuration += s.DurationSeconds
	}
	// Averages describe research runs, so a window without sessions has none.
	if len(sessions) == 0 {
		return a, nil
	}
	a.AvgTopicsPerSession = float64(a.TopicsResearched) / float64(len(sessions))
	if len(topics) > 0 {
		var sum float64
		for _, t := range topics {
			sum += t.TotalScore
		}
		a.AvgScore = sum / float64(len(topics))
	}
	return a, nil
}

// ExportTopics writes every topic saved within the last days to dest and
// returns how many were written. The format follows dest's extension.
func (uc *TopicUseCase) ExportTopics(ctx context.Context, dest string, days int) (int, error) {
	format, err := export.ParseFormat("", dest)
	if err != nil {
		return 0, err
	}

	var opts []interfaces.ListTopicOption
	if since := windowStart(days); !since.IsZero() {
		opts = append(opts, interfaces.WithSince(since))
	}
	topics, err := uc.repo.Topic().List(ctx, opts...)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list topics")
	}

	if err := uc.sink.Save(ctx, dest, format, topics); err != nil {
		return 0, goerr.Wrap(err, "failed to export topics", goerr.V(model.PathKey, dest))
	}
	return len(topics), nil
}

// ListSessions returns sessions started within the last days, newest first
func (uc *TopicUseCase) ListSessions(ctx context.Context, days int) ([]*model.ResearchSession, error) {
	sessions, err := uc.repo.Session().List(ctx, windowStart(days))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}

func windowStart(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}
