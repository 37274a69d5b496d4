package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/cli/config"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/service/discovery"
	"github.com/topicscout/topicscout/pkg/service/evaluator"
	"github.com/topicscout/topicscout/pkg/service/relevance"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/topicscout/topicscout/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// pipelineConfig gathers every flag group the research pipeline is built from
type pipelineConfig struct {
	research config.Research
	llm      config.LLM
	youtube  config.YouTube
	feed     config.Feed
	slack    config.Slack
	notion   config.Notion
}

func (p *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.research.Flags()...)
	flags = append(flags, p.llm.Flags()...)
	flags = append(flags, p.youtube.Flags()...)
	flags = append(flags, p.feed.Flags()...)
	flags = append(flags, p.slack.Flags()...)
	flags = append(flags, p.notion.Flags()...)
	return flags
}

// Build wires discovery, evaluation, scoring and notifications into a
// research use case persisting to repo
func (p *pipelineConfig) Build(ctx context.Context, repo interfaces.Repository) (*usecase.ResearchUseCase, error) {
	logger := logging.From(ctx)

	cfg, err := p.research.Configure()
	if err != nil {
		return nil, err
	}

	completer, err := p.llm.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM")
	}
	eval, err := evaluator.New(completer, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create evaluator")
	}

	source, err := p.youtube.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure video source")
	}
	aggregator := discovery.New(source, eval, relevance.New(cfg.Filter), cfg)

	var opts []usecase.ResearchOption
	if trends := p.feed.Configure(); trends != nil {
		opts = append(opts, usecase.WithTrendSource(trends))
		logger.Info("Trend feeds enabled", "feed", p.feed)
	}

	slackSvc, err := p.slack.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure slack")
	}
	if slackSvc != nil {
		opts = append(opts, usecase.WithSlackNotification(slackSvc, p.slack.ChannelID()))
		logger.Info("Slack notification enabled", "slack", p.slack)
	}

	notionSvc, err := p.notion.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure notion")
	}
	if notionSvc != nil {
		opts = append(opts, usecase.WithNotionPublishing(notionSvc, p.notion.DatabaseID()))
		logger.Info("Notion publishing enabled", "notion", p.notion)
	}

	logger.Info("Research pipeline configured",
		"research", p.research,
		"llm", p.llm,
		"youtube", p.youtube,
		"concurrency", cfg.Evaluation.Concurrency,
		"min_total_score", cfg.MinTotalScore,
	)

	return usecase.NewResearchUseCase(repo, aggregator, eval, cfg, opts...)
}

// researchInputConfig holds the per-run inputs
type researchInputConfig struct {
	keywords    []string
	useTrending bool
	useAIIdeas  bool
}

func (x *researchInputConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "keyword",
			Aliases:     []string{"k"},
			Usage:       "Seed keyword (repeatable); the channel's themes are used when omitted",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_KEYWORDS"),
			Destination: &x.keywords,
		},
		&cli.BoolFlag{
			Name:        "trending",
			Usage:       "Also consider trending videos of the region (off unless set)",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_USE_TRENDING"),
			Destination: &x.useTrending,
		},
		&cli.BoolFlag{
			Name:        "ai-ideas",
			Usage:       "Include AI generated topic ideas as candidates",
			Category:    "Research",
			Value:       true,
			Sources:     cli.EnvVars("TOPICSCOUT_USE_AI_IDEAS"),
			Destination: &x.useAIIdeas,
		},
	}
}

func (x *researchInputConfig) Input() usecase.ResearchInput {
	return usecase.ResearchInput{
		Keywords:        x.keywords,
		UseTrending:     x.useTrending,
		UseAIGeneration: x.useAIIdeas,
	}
}

func cmdResearch() *cli.Command {
	var repoCfg config.Repository
	var pipeline pipelineConfig
	var input researchInputConfig

	var flags []cli.Flag
	flags = append(flags, input.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, pipeline.Flags()...)

	return &cli.Command{
		Name:    "research",
		Aliases: []string{"r"},
		Usage:   "Run one research session and print the persisted topics",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			researchUC, err := pipeline.Build(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to build research pipeline")
			}

			result, runErr := researchUC.RunResearch(ctx, input.Input())
			if result != nil {
				printResearchResult(os.Stdout, result)
			}
			if runErr != nil {
				return goerr.Wrap(runErr, "research run failed")
			}
			return nil
		},
	}
}
