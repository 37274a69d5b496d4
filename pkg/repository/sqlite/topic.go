package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/utils/safe"
)

var topicColumns = []string{
	"id", "title", "importance", "watchability", "monetization", "popularity", "innovation",
	"total_score", "category", "keywords", "recommended_angle", "competition_level",
	"notes", "ai_analysis", "source", "session_id", "timestamp", "favorited",
}

type topicRepository struct {
	client *Client
}

func (r *topicRepository) Create(ctx context.Context, topic *model.Topic) (*model.Topic, error) {
	if err := topic.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid topic")
	}

	created := topic.Copy()
	if created.ID == "" {
		created.ID = model.NewTopicID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}
	created.Timestamp = created.Timestamp.UTC()

	keywords, err := json.Marshal(nonNil(created.Keywords))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode keywords")
	}

	query, args, err := r.client.builder.Insert("topics").
		Columns(topicColumns...).
		Values(
			string(created.ID), created.Title,
			created.Scores.Importance, created.Scores.Watchability, created.Scores.Monetization,
			created.Scores.Popularity, created.Scores.Innovation,
			created.TotalScore, created.Category, string(keywords), created.RecommendedAngle,
			string(created.CompetitionLevel), created.Notes, created.AIAnalysis,
			string(created.Source), string(created.SessionID), formatTime(created.Timestamp),
			created.Favorited,
		).ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build insert")
	}

	if _, err := r.client.db.ExecContext(ctx, query, args...); err != nil {
		return nil, goerr.Wrap(err, "failed to insert topic", goerr.V(model.TopicIDKey, created.ID))
	}
	return created, nil
}

func (r *topicRepository) Get(ctx context.Context, id model.TopicID) (*model.Topic, error) {
	query, args, err := r.client.builder.Select(topicColumns...).
		From("topics").
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build select")
	}

	topic, err := scanTopic(r.client.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get topic", goerr.V(model.TopicIDKey, id))
	}
	return topic, nil
}

func (r *topicRepository) List(ctx context.Context, opts ...interfaces.ListTopicOption) ([]*model.Topic, error) {
	cfg := interfaces.BuildListTopicConfig(opts...)

	b := r.client.builder.Select(topicColumns...).
		From("topics").
		OrderBy("total_score DESC", "timestamp DESC")
	if minScore := cfg.MinScore(); minScore != nil {
		b = b.Where(sq.GtOrEq{"total_score": *minScore})
	}
	if cat := cfg.Category(); cat != "" {
		b = b.Where(sq.Eq{"category": cat})
	}
	if since := cfg.Since(); !since.IsZero() {
		b = b.Where(sq.GtOrEq{"timestamp": formatTime(since)})
	}
	if cfg.FavoritedOnly() {
		b = b.Where(sq.Eq{"favorited": true})
	}
	if limit := cfg.Limit(); limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build select")
	}

	rows, err := r.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list topics")
	}
	defer safe.Close(ctx, rows)

	var topics []*model.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan topic")
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate topics")
	}
	return topics, nil
}

func (r *topicRepository) ToggleFavorite(ctx context.Context, id model.TopicID) (bool, error) {
	tx, err := r.client.db.BeginTx(ctx, nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.client.builder.Select("favorited").
		From("topics").
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return false, goerr.Wrap(err, "failed to build select")
	}

	var favorited bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&favorited); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, goerr.Wrap(model.ErrNotFound, "topic not found", goerr.V(model.TopicIDKey, id))
		}
		return false, goerr.Wrap(err, "failed to read favorite flag", goerr.V(model.TopicIDKey, id))
	}

	query, args, err = r.client.builder.Update("topics").
		Set("favorited", !favorited).
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return false, goerr.Wrap(err, "failed to build update")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return false, goerr.Wrap(err, "failed to update favorite flag", goerr.V(model.TopicIDKey, id))
	}

	if err := tx.Commit(); err != nil {
		return false, goerr.Wrap(err, "failed to commit favorite toggle", goerr.V(model.TopicIDKey, id))
	}
	return !favorited, nil
}

func (r *topicRepository) CountFavorites(ctx context.Context) (int, error) {
	query, args, err := r.client.builder.Select("COUNT(*)").
		From("topics").
		Where(sq.Eq{"favorited": true}).
		ToSql()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build count")
	}

	var count int
	if err := r.client.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, goerr.Wrap(err, "failed to count favorites")
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*model.Topic, error) {
	var (
		t                                 model.Topic
		id, keywords, level, source, sess string
		timestamp                         string
	)
	if err := row.Scan(
		&id, &t.Title,
		&t.Scores.Importance, &t.Scores.Watchability, &t.Scores.Monetization,
		&t.Scores.Popularity, &t.Scores.Innovation,
		&t.TotalScore, &t.Category, &keywords, &t.RecommendedAngle, &level,
		&t.Notes, &t.AIAnalysis, &source, &sess, &timestamp, &t.Favorited,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keywords), &t.Keywords); err != nil {
		return nil, goerr.Wrap(model.ErrStorageCorruption, "invalid stored keywords", goerr.V(model.TopicIDKey, id))
	}
	ts, err := parseTime(timestamp)
	if err != nil {
		return nil, err
	}

	t.ID = model.TopicID(id)
	t.CompetitionLevel = types.ParseCompetitionLevel(level)
	t.Source = types.SourceType(source)
	t.SessionID = model.SessionID(sess)
	t.Timestamp = ts
	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
