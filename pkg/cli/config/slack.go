package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack configures run summary notifications
type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for posting run summaries)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TOPICSCOUT_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID receiving run summaries",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("TOPICSCOUT_SLACK_CHANNEL_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// IsEnabled reports whether notifications are configured
func (x *Slack) IsEnabled() bool {
	return x.botToken != ""
}

// ChannelID returns the notification channel
func (x *Slack) ChannelID() string {
	return x.channelID
}

// Configure creates the Slack service. It returns nil when no bot token is set.
func (x *Slack) Configure() (slack.Service, error) {
	if !x.IsEnabled() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.New("slack-channel-id is required when slack-bot-token is set")
	}
	return slack.New(x.botToken)
}
