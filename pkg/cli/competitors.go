package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/cli/config"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// buildCompetitors needs only the video source, so it works without AI credentials
func buildCompetitors(ctx context.Context, research *config.Research, yt *config.YouTube) (*usecase.CompetitorUseCase, error) {
	cfg, err := research.Configure()
	if err != nil {
		return nil, err
	}
	source, err := yt.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure video source")
	}

	logging.From(ctx).Info("Competitor analysis configured",
		"youtube", yt,
		"configured_channels", len(cfg.Discovery.CompetitorChannelIDs),
	)
	return usecase.NewCompetitorUseCase(source, cfg), nil
}

func cmdCompetitors() *cli.Command {
	var channels []string
	var research config.Research
	var yt config.YouTube

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "competitor",
			Usage:       "Competitor channel ID (repeatable); the configured competitor channels are used when omitted",
			Destination: &channels,
		},
	}
	flags = append(flags, research.Flags()...)
	flags = append(flags, yt.Flags()...)

	return &cli.Command{
		Name:    "competitors",
		Aliases: []string{"comp"},
		Usage:   "Compare competitor channels by views, engagement, upload frequency and formats",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			competitorUC, err := buildCompetitors(ctx, &research, &yt)
			if err != nil {
				return goerr.Wrap(err, "failed to build competitor analysis")
			}

			result, err := competitorUC.AnalyzeCompetitors(ctx, channels)
			if err != nil {
				return goerr.Wrap(err, "competitor analysis failed")
			}
			printCompetitors(os.Stdout, result)
			return nil
		},
	}
}
