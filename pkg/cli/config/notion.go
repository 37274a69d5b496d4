package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/service/notion"
	"github.com/urfave/cli/v3"
)

// Notion configures publishing of persisted topics to a content calendar
type Notion struct {
	token      string
	databaseID string
}

func (x *Notion) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notion-token",
			Usage:       "Notion integration token",
			Category:    "Notion",
			Destination: &x.token,
			Sources:     cli.EnvVars("TOPICSCOUT_NOTION_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "notion-database-id",
			Usage:       "Notion database receiving topic pages",
			Category:    "Notion",
			Destination: &x.databaseID,
			Sources:     cli.EnvVars("TOPICSCOUT_NOTION_DATABASE_ID"),
		},
	}
}

func (x Notion) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(x.token)),
		slog.String("database-id", x.databaseID),
	)
}

// DatabaseID returns the target database
func (x *Notion) DatabaseID() string {
	return x.databaseID
}

// Configure creates the Notion service. It returns nil when no token is set.
func (x *Notion) Configure() (notion.Service, error) {
	if x.token == "" {
		return nil, nil
	}
	if x.databaseID == "" {
		return nil, goerr.New("notion-database-id is required when notion-token is set")
	}
	return notion.New(x.token)
}
