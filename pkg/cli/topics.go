package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/cli/config"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/service/export"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/topicscout/topicscout/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdTopics() *cli.Command {
	var repoCfg config.Repository
	var minScore float64
	var category string
	var days int
	var favorited bool
	var limit int

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "min-score",
			Usage:       "Minimum total score",
			Value:       60,
			Destination: &minScore,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Only topics of this category",
			Destination: &category,
		},
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Only topics saved within the last days, 0 for all",
			Value:       7,
			Destination: &days,
		},
		&cli.BoolFlag{
			Name:        "favorited",
			Usage:       "Only favorited topics",
			Destination: &favorited,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of topics",
			Value:       usecase.DefaultTopicLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "topics",
		Aliases: []string{"t"},
		Usage:   "List stored topics ranked by score",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			topics, err := uc.Topic.GetTopics(ctx, usecase.TopicQuery{
				MinScore:      &minScore,
				Category:      category,
				Days:          days,
				FavoritedOnly: favorited,
				Limit:         limit,
			})
			if err != nil {
				return err
			}

			printTopics(os.Stdout, topics)
			return nil
		},
	}
}

func cmdFavorite() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:      "favorite",
		Aliases:   []string{"fav"},
		Usage:     "Toggle the favorite flag of a topic",
		ArgsUsage: "<topic-id>",
		Flags:     repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := strings.TrimSpace(c.Args().First())
			if id == "" {
				return goerr.New("topic id is required")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			favorited, err := usecase.New(repo).Topic.ToggleFavorite(ctx, model.TopicID(id))
			if err != nil {
				return err
			}

			state := "removed from"
			if favorited {
				state = "added to"
			}
			fmt.Fprintf(os.Stdout, "Topic %s %s favorites\n", id, state)
			return nil
		},
	}
}

func cmdAnalytics() *cli.Command {
	var repoCfg config.Repository
	var days int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Aggregation window in days, 0 for all",
			Value:       7,
			Destination: &days,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "analytics",
		Aliases: []string{"a"},
		Usage:   "Show research statistics and recent sessions",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			analytics, err := uc.Topic.GetAnalytics(ctx, days)
			if err != nil {
				return err
			}
			sessions, err := uc.Topic.ListSessions(ctx, days)
			if err != nil {
				return err
			}

			printAnalytics(os.Stdout, analytics)
			printSessions(os.Stdout, sessions)
			return nil
		},
	}
}

func cmdExport() *cli.Command {
	var repoCfg config.Repository
	var output string
	var days int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination: file path (.csv or .xlsx), gs://bucket/object or - for stdout",
			Value:       "topics.csv",
			Destination: &output,
		},
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Only topics saved within the last days, 0 for all",
			Destination: &days,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export stored topics as CSV or XLSX",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			sinkOpts := []export.SinkOption{export.WithStdout(os.Stdout)}
			if strings.HasPrefix(output, "gs://") {
				client, err := storage.NewClient(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create storage client")
				}
				defer safe.Close(ctx, client)
				sinkOpts = append(sinkOpts, export.WithStorageClient(client))
			}

			uc := usecase.New(repo, usecase.WithExportSink(export.NewSink(sinkOpts...)))
			n, err := uc.Topic.ExportTopics(ctx, output, days)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("Topics exported", "count", n, "output", output)
			return nil
		},
	}
}
