package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/service/discovery"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// CompetitorUseCase compares competitor channels on recent performance
type CompetitorUseCase struct {
	analyzer *discovery.CompetitorAnalyzer
	defaults []string
}

func NewCompetitorUseCase(source interfaces.VideoSource, cfg config.ResearchConfig) *CompetitorUseCase {
	return &CompetitorUseCase{
		analyzer: discovery.NewCompetitorAnalyzer(source, cfg),
		defaults: cfg.Discovery.CompetitorChannelIDs,
	}
}

// AnalyzeCompetitors compares the given channels, or the configured
// competitor channels when none are given.
func (uc *CompetitorUseCase) AnalyzeCompetitors(ctx context.Context, channelIDs []string) (*model.CompetitorComparison, error) {
	ids := compactIDs(channelIDs)
	if len(ids) == 0 {
		ids = compactIDs(uc.defaults)
	}
	if len(ids) == 0 {
		return nil, goerr.Wrap(model.ErrNoChannels, "no competitor channel to analyze")
	}

	logging.From(ctx).Info("analyzing competitors", "channels", len(ids))
	result, err := uc.analyzer.Compare(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compare competitors")
	}
	return result, nil
}

func compactIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
