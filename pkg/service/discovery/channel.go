package discovery

import (
	"context"
	"strings"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// recentThemeLimit is how many extracted themes are kept on the channel context.
const recentThemeLimit = 10

// Profile builds the channel context from the channel's metadata and recent
// uploads. Lookup failures degrade to a General context and are reported
// through the returned error count.
func (a *Aggregator) Profile(ctx context.Context) (model.ChannelContext, int) {
	ch := model.ChannelContext{
		ChannelID:  a.settings.ChannelID,
		Niche:      config.GeneralNiche,
		RegionCode: a.settings.RegionCode,
		CategoryID: a.settings.CategoryID,
	}
	if ch.ChannelID == "" {
		return ch, 0
	}

	logger := logging.From(ctx).With("channel_id", ch.ChannelID)
	failures := 0

	info, err := a.source.ChannelInfo(ctx, ch.ChannelID)
	if err != nil {
		failures++
		logger.Warn("failed to get channel info", "error", err)
	} else {
		ch.Title = info.Title
		ch.SubscriberCount = info.SubscriberCount
	}

	videos, err := a.source.ChannelVideos(ctx, ch.ChannelID, a.settings.ChannelVideoLimit, a.settings.ChannelHistoryDays)
	if err != nil {
		failures++
		logger.Warn("failed to get channel videos", "error", err)
		return ch, failures
	}
	if len(videos) == 0 {
		return ch, failures
	}

	var views uint64
	for _, v := range videos {
		views += v.ViewCount
	}
	themes := ExtractThemes(videos, 0)

	ch.AvgViews = float64(views) / float64(len(videos))
	ch.Niche = DetectNiche(themes, a.niches)
	ch.VideosAnalyzed = len(videos)
	if len(themes) > recentThemeLimit {
		themes = themes[:recentThemeLimit]
	}
	ch.RecentThemes = themes

	return ch, failures
}

// SeedKeywords picks search keywords when the caller gave none: the
// channel's recent themes, else the configured defaults.
func (a *Aggregator) SeedKeywords(ch model.ChannelContext) []string {
	if len(ch.RecentThemes) > 0 {
		return ch.RecentThemes
	}
	return a.settings.DefaultKeywords
}

// CompetitorTitles collects recent upload titles of the configured
// competitor channels. It returns the titles, how many channels were
// checked successfully and how many lookups failed.
func (a *Aggregator) CompetitorTitles(ctx context.Context) ([]string, int, int) {
	logger := logging.From(ctx)
	var (
		out     []string
		checked int
		failed  int
	)
	for _, id := range a.settings.CompetitorChannelIDs {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		videos, err := a.source.ChannelVideos(ctx, id, a.settings.ChannelVideoLimit, a.settings.ChannelHistoryDays)
		if err != nil {
			failed++
			logger.Warn("failed to get competitor videos", "channel_id", id, "error", err)
			continue
		}
		checked++
		for _, v := range videos {
			out = append(out, v.Title)
		}
	}
	return out, checked, failed
}
