package config

import (
	"log/slog"

	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/service/feed"
	"github.com/urfave/cli/v3"
)

// Feed lists RSS/Atom feeds whose headlines enrich the trend context
type Feed struct {
	urls []string
}

func (x *Feed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "trend-feed",
			Usage:       "RSS/Atom feed URL used as trend context (repeatable)",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_TREND_FEEDS"),
			Destination: &x.urls,
		},
	}
}

func (x Feed) LogValue() slog.Value {
	return slog.GroupValue(slog.Any("urls", x.urls))
}

// Configure returns a headline reader, or nil when no feed is set
func (x *Feed) Configure() interfaces.TrendSource {
	if len(x.urls) == 0 {
		return nil
	}
	return feed.New(x.urls)
}
