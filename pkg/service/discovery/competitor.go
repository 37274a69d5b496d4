package discovery

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/service/relevance"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

const (
	competitorThemeLimit = 10
	commonThemeLimit     = 10
	topVideoLimit        = 5
	otherFormat          = "other"
)

// titleFormats are checked in order; the first match wins.
var titleFormats = []struct {
	name    string
	markers []string
}{
	{name: "tutorial", markers: []string{"tutorial"}},
	{name: "how-to", markers: []string{"how to", "how-to"}},
	{name: "review", markers: []string{"review"}},
	{name: "comparison", markers: []string{"vs", "versus", "comparison"}},
	{name: "tips", markers: []string{"tips", "tricks"}},
	{name: "guide", markers: []string{"guide"}},
}

// CompetitorAnalyzer measures what works on competitor channels
type CompetitorAnalyzer struct {
	source      interfaces.VideoSource
	videoLimit  int
	historyDays int
}

func NewCompetitorAnalyzer(source interfaces.VideoSource, cfg config.ResearchConfig) *CompetitorAnalyzer {
	return &CompetitorAnalyzer{
		source:      source,
		videoLimit:  cfg.Discovery.ChannelVideoLimit,
		historyDays: cfg.Discovery.ChannelHistoryDays,
	}
}

// Analyze profiles one channel from its uploads in the history window
func (x *CompetitorAnalyzer) Analyze(ctx context.Context, channelID string) (*model.CompetitorAnalysis, error) {
	info, err := x.source.ChannelInfo(ctx, channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get competitor channel", goerr.V("channel_id", channelID))
	}
	videos, err := x.source.ChannelVideos(ctx, channelID, x.videoLimit, x.historyDays)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get competitor videos", goerr.V("channel_id", channelID))
	}

	a := &model.CompetitorAnalysis{
		ChannelID:       channelID,
		ChannelTitle:    info.Title,
		SubscriberCount: info.SubscriberCount,
		VideoCount:      info.VideoCount,
		ViewCount:       info.ViewCount,
		RecentVideos:    len(videos),
		Themes:          ExtractThemes(videos, competitorThemeLimit),
		UploadFrequency: UploadFrequencyOf(videos),
		BestFormat:      BestFormat(videos),
	}
	if a.ChannelTitle == "" {
		a.ChannelTitle = channelID
	}
	a.AvgViews, a.MedianViews, a.AvgEngagementRate = viewStats(videos)
	a.TopVideos = topVideos(videos, topVideoLimit)
	return a, nil
}

// Compare analyzes every channel and picks the leaders. Channels that cannot
// be analyzed are listed in Failed; if none succeed, ErrSourceUnavailable is
// returned.
func (x *CompetitorAnalyzer) Compare(ctx context.Context, channelIDs []string) (*model.CompetitorComparison, error) {
	logger := logging.From(ctx)
	out := &model.CompetitorComparison{}
	seen := map[string]struct{}{}

	for _, id := range channelIDs {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		a, err := x.Analyze(ctx, id)
		if err != nil {
			logger.Warn("failed to analyze competitor", "channel_id", id, "error", err)
			out.Failed = append(out.Failed, id)
			continue
		}
		out.Competitors = append(out.Competitors, a)
	}

	if len(out.Competitors) == 0 {
		return out, goerr.Wrap(model.ErrSourceUnavailable, "no competitor channel could be analyzed",
			goerr.V("channel_ids", channelIDs))
	}

	var (
		bestEngagement = out.Competitors[0]
		mostViews      = out.Competitors[0]
		mostFrequent   = out.Competitors[0]
		subscribers    float64
	)
	for _, c := range out.Competitors {
		if c.AvgEngagementRate > bestEngagement.AvgEngagementRate {
			bestEngagement = c
		}
		if c.AvgViews > mostViews.AvgViews {
			mostViews = c
		}
		if c.UploadFrequency.VideosPerWeek > mostFrequent.UploadFrequency.VideosPerWeek {
			mostFrequent = c
		}
		subscribers += float64(c.SubscriberCount)
	}
	out.BestEngagement = bestEngagement.ChannelTitle
	out.MostViews = mostViews.ChannelTitle
	out.MostFrequent = mostFrequent.ChannelTitle
	out.AvgSubscriberCount = subscribers / float64(len(out.Competitors))
	out.CommonThemes = CommonThemes(out.Competitors)

	return out, nil
}

// UploadFrequencyOf measures uploads per week between the oldest and newest
// dated video. Fewer than two dated videos, or a span under a day, is unknown.
func UploadFrequencyOf(videos []model.VideoSummary) model.UploadFrequency {
	unknown := model.UploadFrequency{Consistency: types.UploadUnknown}

	var dated []model.VideoSummary
	for _, v := range videos {
		if !v.PublishedAt.IsZero() {
			dated = append(dated, v)
		}
	}
	if len(dated) < 2 {
		return unknown
	}

	first, last := dated[0].PublishedAt, dated[0].PublishedAt
	for _, v := range dated[1:] {
		if v.PublishedAt.Before(first) {
			first = v.PublishedAt
		}
		if v.PublishedAt.After(last) {
			last = v.PublishedAt
		}
	}
	days := math.Floor(last.Sub(first).Hours() / 24)
	if days <= 0 {
		return unknown
	}

	perWeek := float64(len(dated)) / (days / 7)
	return model.UploadFrequency{
		VideosPerWeek: math.Round(perWeek*10) / 10,
		Consistency:   types.UploadConsistencyOf(perWeek),
	}
}

// BestFormat groups titles into formats and returns the one with the highest
// average views. Titles matching no format count as "other".
func BestFormat(videos []model.VideoSummary) model.FormatPerformance {
	type bucket struct {
		views uint64
		count int
	}
	buckets := map[string]*bucket{}
	var order []string

	for _, v := range videos {
		name := titleFormat(v.Title)
		b, ok := buckets[name]
		if !ok {
			b = &bucket{}
			buckets[name] = b
			order = append(order, name)
		}
		b.views += v.ViewCount
		b.count++
	}

	best := model.FormatPerformance{Format: "unknown"}
	for _, name := range order {
		b := buckets[name]
		avg := float64(b.views) / float64(b.count)
		if best.Count == 0 || avg > best.AvgViews {
			best = model.FormatPerformance{Format: name, AvgViews: avg, Count: b.count}
		}
	}
	return best
}

// CommonThemes returns themes shared by at least two competitors, most
// widely shared first.
func CommonThemes(competitors []*model.CompetitorAnalysis) []string {
	counts := map[string]int{}
	var order []string
	for _, c := range competitors {
		seen := map[string]struct{}{}
		for _, theme := range c.Themes {
			if _, ok := seen[theme]; ok {
				continue
			}
			seen[theme] = struct{}{}
			if counts[theme] == 0 {
				order = append(order, theme)
			}
			counts[theme]++
		}
	}

	common := slices.DeleteFunc(order, func(theme string) bool { return counts[theme] < 2 })
	sort.SliceStable(common, func(i, j int) bool {
		return counts[common[i]] > counts[common[j]]
	})
	if len(common) > commonThemeLimit {
		common = common[:commonThemeLimit]
	}
	return common
}

func titleFormat(title string) string {
	lower := strings.ToLower(title)
	for _, f := range titleFormats {
		for _, m := range f.markers {
			if relevance.MatchTerm(lower, m) {
				return f.name
			}
		}
	}
	return otherFormat
}

// viewStats averages over videos that have views and over videos that have
// engagement, leaving out the ones the platform reports as zero.
func viewStats(videos []model.VideoSummary) (avgViews, medianViews, avgEngagement float64) {
	var views []float64
	var rates []float64
	for _, v := range videos {
		if v.ViewCount > 0 {
			views = append(views, float64(v.ViewCount))
		}
		if r := v.EngagementRate(); r > 0 {
			rates = append(rates, r)
		}
	}
	if len(views) > 0 {
		avgViews = mean(views)
		slices.Sort(views)
		mid := len(views) / 2
		if len(views)%2 == 0 {
			medianViews = (views[mid-1] + views[mid]) / 2
		} else {
			medianViews = views[mid]
		}
	}
	if len(rates) > 0 {
		avgEngagement = mean(rates)
	}
	return avgViews, medianViews, avgEngagement
}

func topVideos(videos []model.VideoSummary, limit int) []model.TopVideo {
	sorted := slices.Clone(videos)
	slices.SortStableFunc(sorted, func(a, b model.VideoSummary) int {
		switch {
		case a.ViewCount > b.ViewCount:
			return -1
		case a.ViewCount < b.ViewCount:
			return 1
		}
		return 0
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]model.TopVideo, 0, len(sorted))
	for _, v := range sorted {
		out = append(out, model.TopVideo{
			ID:             v.ID,
			Title:          v.Title,
			ViewCount:      v.ViewCount,
			EngagementRate: v.EngagementRate(),
		})
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
