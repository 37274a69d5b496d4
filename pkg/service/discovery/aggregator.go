package discovery

import (
	"context"
	"strings"

	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/service/relevance"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// maxIdeaTrends caps how many discovered titles are handed to idea
// generation as trend context.
const maxIdeaTrends = 15

// IdeaGenerator proposes new topics for a channel
type IdeaGenerator interface {
	GenerateTopicIdeas(ctx context.Context, ch model.ChannelContext, count int, trends []string) ([]model.Candidate, error)
}

// Report summarizes one discovery pass
type Report struct {
	Searched     int
	Trending     int
	Generated    int
	Duplicates   int
	Filtered     int
	SourceErrors int
}

// Aggregator gathers candidate topics from search, trending and idea
// generation.
type Aggregator struct {
	source   interfaces.VideoSource
	ideas    IdeaGenerator
	filter   *relevance.Filter
	niches   []config.Niche
	settings config.Discovery
}

// New creates an Aggregator. ideas may be nil when idea generation is not
// available.
func New(source interfaces.VideoSource, ideas IdeaGenerator, filter *relevance.Filter, cfg config.ResearchConfig) *Aggregator {
	return &Aggregator{
		source:   source,
		ideas:    ideas,
		filter:   filter,
		niches:   cfg.Niches,
		settings: cfg.Discovery,
	}
}

// Discover returns relevant, unique candidates. Sources that fail are logged
// and counted in the report; discovery itself never fails.
func (a *Aggregator) Discover(ctx context.Context, keywords []string, ch model.ChannelContext, useTrending, useAIGeneration bool) ([]model.Candidate, Report) {
	logger := logging.From(ctx)
	var (
		report Report
		raw    []model.Candidate
	)

	for _, query := range a.queries(keywords, ch.Niche) {
		if ctx.Err() != nil {
			break
		}
		videos, err := a.source.Search(ctx, query, a.settings.SearchResultsPerQuery, a.searchOrder())
		if err != nil {
			report.SourceErrors++
			logger.Warn("search failed", "query", query, "error", err)
			continue
		}
		for _, v := range videos {
			raw = append(raw, fromVideo(v, types.SourceSearch, query))
		}
		report.Searched += len(videos)
	}

	if useTrending && ctx.Err() == nil {
		videos, err := a.source.Trending(ctx, ch.RegionCode, ch.CategoryID, a.settings.TrendingResults)
		if err != nil {
			report.SourceErrors++
			logger.Warn("trending lookup failed", "region", ch.RegionCode, "error", err)
		} else {
			for _, v := range videos {
				raw = append(raw, fromVideo(v, types.SourceTrending, ""))
			}
			report.Trending = len(videos)
		}
	}

	if useAIGeneration && a.ideas != nil && ctx.Err() == nil {
		generated, err := a.ideas.GenerateTopicIdeas(ctx, ch, a.settings.AIIdeaCount, titles(raw, maxIdeaTrends))
		if err != nil {
			report.SourceErrors++
			logger.Warn("topic idea generation failed", "error", err)
		} else {
			raw = append(raw, generated...)
			report.Generated = len(generated)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	candidates := make([]model.Candidate, 0, len(raw))
	for _, c := range raw {
		key := model.NormalizeTitle(c.Title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		if !a.filter.IsRelevant(c, ch) {
			report.Filtered++
			continue
		}
		candidates = append(candidates, c)
	}

	logger.Info("discovery finished",
		"candidates", len(candidates),
		"searched", report.Searched,
		"trending", report.Trending,
		"generated", report.Generated,
		"duplicates", report.Duplicates,
		"filtered", report.Filtered,
		"source_errors", report.SourceErrors,
	)

	return candidates, report
}

// queries expands the first MaxKeywords keywords with niche variants.
func (a *Aggregator) queries(keywords []string, niche string) []string {
	var out []string
	n := 0
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if a.settings.MaxKeywords > 0 && n == a.settings.MaxKeywords {
			break
		}
		n++
		out = append(out, kw)
		out = append(out, NicheVariants(kw, niche, a.niches, a.settings.VariantsPerKeyword)...)
	}
	return out
}

func (a *Aggregator) searchOrder() string {
	if a.settings.SearchOrder == "" {
		return "relevance"
	}
	return a.settings.SearchOrder
}

func fromVideo(v model.VideoSummary, source types.SourceType, query string) model.Candidate {
	return model.Candidate{
		Title:         strings.TrimSpace(v.Title),
		Description:   v.Description,
		SourceType:    source,
		RawKeywords:   v.Tags,
		OriginVideoID: v.ID,
		Query:         query,
	}
}

func titles(candidates []model.Candidate, limit int) []string {
	out := make([]string, 0, min(len(candidates), limit))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, c.Title)
	}
	return out
}
