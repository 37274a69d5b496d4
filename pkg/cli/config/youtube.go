package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/service/youtube"
	"github.com/urfave/cli/v3"
)

// YouTube holds the video platform credentials
type YouTube struct {
	apiKey string
}

func (x *YouTube) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "youtube-api-key",
			Usage:       "YouTube Data API key",
			Category:    "YouTube",
			Sources:     cli.EnvVars("TOPICSCOUT_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"),
			Destination: &x.apiKey,
		},
	}
}

func (x YouTube) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api_key.len", len(x.apiKey)),
	)
}

// Configure creates the video source client
func (x *YouTube) Configure(ctx context.Context) (*youtube.Client, error) {
	if x.apiKey == "" {
		return nil, goerr.Wrap(ErrMissingCredentials, "youtube-api-key is required")
	}
	return youtube.New(ctx, x.apiKey)
}
