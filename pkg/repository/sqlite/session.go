package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/utils/safe"
)

var sessionColumns = []string{
	"id", "status", "keywords", "started_at", "completed_at",
	"topics_researched", "high_quality_count", "skipped_count", "failed_count",
	"videos_analyzed", "competitors_checked", "duration_seconds", "error",
}

type sessionRepository struct {
	client *Client
}

func (r *sessionRepository) Create(ctx context.Context, session *model.ResearchSession) (*model.ResearchSession, error) {
	created := session.Copy()
	if created.ID == "" {
		created.ID = model.NewSessionID()
	}
	if created.StartedAt.IsZero() {
		created.StartedAt = time.Now()
	}
	created.StartedAt = created.StartedAt.UTC()
	if created.Status == "" {
		created.Status = types.SessionRunning
	}

	keywords, err := json.Marshal(nonNil(created.Keywords))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode keywords")
	}

	query, args, err := r.client.builder.Insert("sessions").
		Columns(sessionColumns...).
		Values(
			string(created.ID), string(created.Status), string(keywords),
			formatTime(created.StartedAt), formatTime(created.CompletedAt),
			created.TopicsResearched, created.HighQualityCount, created.SkippedCount, created.FailedCount,
			created.VideosAnalyzed, created.CompetitorsChecked, created.DurationSeconds, created.Error,
		).ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build insert")
	}
	if _, err := r.client.db.ExecContext(ctx, query, args...); err != nil {
		return nil, goerr.Wrap(err, "failed to insert session", goerr.V(model.SessionIDKey, created.ID))
	}
	return created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ResearchSession, error) {
	query, args, err := r.client.builder.Select(sessionColumns...).
		From("sessions").
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build select")
	}

	session, err := scanSession(r.client.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "session not found", goerr.V(model.SessionIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(model.SessionIDKey, id))
	}
	return session, nil
}

func (r *sessionRepository) Finalize(ctx context.Context, session *model.ResearchSession) error {
	existing, err := r.Get(ctx, session.ID)
	if err != nil {
		return err
	}
	if existing.Status.IsFinal() {
		return goerr.Wrap(model.ErrSessionFinalized, "session already finalized", goerr.V(model.SessionIDKey, session.ID))
	}

	keywords, err := json.Marshal(nonNil(session.Keywords))
	if err != nil {
		return goerr.Wrap(err, "failed to encode keywords")
	}

	query, args, err := r.client.builder.Update("sessions").
		SetMap(map[string]any{
			"status":              string(session.Status),
			"keywords":            string(keywords),
			"completed_at":        formatTime(session.CompletedAt),
			"topics_researched":   session.TopicsResearched,
			"high_quality_count":  session.HighQualityCount,
			"skipped_count":       session.SkippedCount,
			"failed_count":        session.FailedCount,
			"videos_analyzed":     session.VideosAnalyzed,
			"competitors_checked": session.CompetitorsChecked,
			"duration_seconds":    session.DurationSeconds,
			"error":               session.Error,
		}).
		Where(sq.Eq{"id": string(session.ID), "status": string(types.SessionRunning)}).
		ToSql()
	if err != nil {
		return goerr.Wrap(err, "failed to build update")
	}

	res, err := r.client.db.ExecContext(ctx, query, args...)
	if err != nil {
		return goerr.Wrap(err, "failed to finalize session", goerr.V(model.SessionIDKey, session.ID))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(model.ErrSessionFinalized, "session already finalized", goerr.V(model.SessionIDKey, session.ID))
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context, since time.Time) ([]*model.ResearchSession, error) {
	b := r.client.builder.Select(sessionColumns...).
		From("sessions").
		OrderBy("started_at DESC")
	if !since.IsZero() {
		b = b.Where(sq.GtOrEq{"started_at": formatTime(since)})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build select")
	}

	rows, err := r.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	defer safe.Close(ctx, rows)

	var sessions []*model.ResearchSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate sessions")
	}
	return sessions, nil
}

func scanSession(row rowScanner) (*model.ResearchSession, error) {
	var (
		s                                   model.ResearchSession
		id, status, keywords, started, done string
	)
	if err := row.Scan(
		&id, &status, &keywords, &started, &done,
		&s.TopicsResearched, &s.HighQualityCount, &s.SkippedCount, &s.FailedCount,
		&s.VideosAnalyzed, &s.CompetitorsChecked, &s.DurationSeconds, &s.Error,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keywords), &s.Keywords); err != nil {
		return nil, goerr.Wrap(model.ErrStorageCorruption, "invalid stored keywords", goerr.V(model.SessionIDKey, id))
	}
	var err error
	if s.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if s.CompletedAt, err = parseTime(done); err != nil {
		return nil, err
	}

	s.ID = model.SessionID(id)
	s.Status = types.SessionStatus(status)
	return &s, nil
}
