package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("TOPICSCOUT_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("TOPICSCOUT_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(),
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully", "dryRun", dryRun)

			return nil
		},
	}
}

// getIndexConfig returns the composite indexes needed by the topic filters.
// Equality filters on Category and Favorited combine with the Timestamp range.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "topics",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "Category", Order: fireconf.OrderAscending},
							{Path: "Timestamp", Order: fireconf.OrderAscending},
						},
					},
					{
						Fields: []fireconf.IndexField{
							{Path: "Favorited", Order: fireconf.OrderAscending},
							{Path: "Timestamp", Order: fireconf.OrderAscending},
						},
					},
					{
						Fields: []fireconf.IndexField{
							{Path: "Category", Order: fireconf.OrderAscending},
							{Path: "Favorited", Order: fireconf.OrderAscending},
							{Path: "Timestamp", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
