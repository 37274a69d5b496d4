package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	importance INTEGER NOT NULL,
	watchability INTEGER NOT NULL,
	monetization INTEGER NOT NULL,
	popularity INTEGER NOT NULL,
	innovation INTEGER NOT NULL,
	total_score REAL NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '[]',
	recommended_angle TEXT NOT NULL DEFAULT '',
	competition_level TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	ai_analysis TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	session_id TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL,
	favorited INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_topics_score ON topics(total_score DESC, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_topics_timestamp ON topics(timestamp);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	keywords TEXT NOT NULL DEFAULT '[]',
	started_at TEXT NOT NULL,
	completed_at TEXT NOT NULL DEFAULT '',
	topics_researched INTEGER NOT NULL DEFAULT 0,
	high_quality_count INTEGER NOT NULL DEFAULT 0,
	skipped_count INTEGER NOT NULL DEFAULT 0,
	failed_count INTEGER NOT NULL DEFAULT 0,
	videos_analyzed INTEGER NOT NULL DEFAULT 0,
	competitors_checked INTEGER NOT NULL DEFAULT 0,
	duration_seconds REAL NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// Client stores topics and sessions in a SQLite database file
type Client struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	topic   *topicRepository
	session *sessionRepository
}

var _ interfaces.Repository = &Client{}

// New opens or creates the database at path. Parent directories are created.
func New(ctx context.Context, path string) (*Client, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V(model.PathKey, dir))
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V(model.PathKey, path))
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to enable WAL", goerr.V(model.PathKey, path))
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V(model.PathKey, path))
	}

	c := &Client{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	c.topic = &topicRepository{client: c}
	c.session = &sessionRepository{client: c}
	return c, nil
}

func (c *Client) Topic() interfaces.TopicRepository {
	return c.topic
}

func (c *Client) Session() interfaces.SessionRepository {
	return c.session
}

func (c *Client) Close() error {
	return c.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(model.ErrStorageCorruption, "invalid stored timestamp", goerr.V("value", s))
	}
	return t.UTC(), nil
}
