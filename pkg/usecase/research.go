package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/interfaces"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/service/discovery"
	"github.com/topicscout/topicscout/pkg/service/llm"
	"github.com/topicscout/topicscout/pkg/service/notion"
	"github.com/topicscout/topicscout/pkg/service/scoring"
	"github.com/topicscout/topicscout/pkg/service/slack"
	"github.com/topicscout/topicscout/pkg/utils/errutil"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// maxTrendContext caps the trend titles handed to each evaluation
const maxTrendContext = 20

// TopicEvaluator scores a single candidate
type TopicEvaluator interface {
	Evaluate(ctx context.Context, c model.Candidate, ch model.ChannelContext, trends, competitors []string) (*model.Evaluation, error)
}

// ResearchInput holds the parameters of one research run
type ResearchInput struct {
	Keywords        []string
	UseTrending     bool
	UseAIGeneration bool
	// MaxTopics caps how many candidates are evaluated; <= 0 uses the configured default
	MaxTopics int
}

// ResearchResult is the outcome of a run. Topics holds the persisted topics
// ranked by score; Rejected holds evaluated topics below the threshold.
type ResearchResult struct {
	Session      *model.ResearchSession
	Topics       []*model.Topic
	Rejected     []*model.Topic
	Skipped      int
	Failed       int
	SourceErrors int
}

type ResearchUseCase struct {
	repo       interfaces.Repository
	aggregator *discovery.Aggregator
	evaluator  TopicEvaluator
	scorer     *scoring.Engine
	gate       *llm.Gate
	cfg        config.ResearchConfig

	trends interfaces.TrendSource

	slackService   slack.Service
	slackChannelID string

	notionService    notion.Service
	notionDatabaseID string

	running atomic.Bool
}

// ResearchOption is a functional option for ResearchUseCase
type ResearchOption func(*ResearchUseCase)

// WithTrendSource adds headlines as trend context for evaluations
func WithTrendSource(src interfaces.TrendSource) ResearchOption {
	return func(uc *ResearchUseCase) {
		uc.trends = src
	}
}

// WithSlackNotification posts a run summary to channelID
func WithSlackNotification(svc slack.Service, channelID string) ResearchOption {
	return func(uc *ResearchUseCase) {
		uc.slackService = svc
		uc.slackChannelID = channelID
	}
}

// WithNotionPublishing creates a page per persisted topic in databaseID
func WithNotionPublishing(svc notion.Service, databaseID string) ResearchOption {
	return func(uc *ResearchUseCase) {
		uc.notionService = svc
		uc.notionDatabaseID = databaseID
	}
}

// WithGate replaces the AI rate gate built from the evaluation settings
func WithGate(gate *llm.Gate) ResearchOption {
	return func(uc *ResearchUseCase) {
		uc.gate = gate
	}
}

func NewResearchUseCase(repo interfaces.Repository, aggregator *discovery.Aggregator, evaluator TopicEvaluator, cfg config.ResearchConfig, opts ...ResearchOption) (*ResearchUseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := scoring.New(cfg.Weights)
	if err != nil {
		return nil, err
	}

	uc := &ResearchUseCase{
		repo:       repo,
		aggregator: aggregator,
		evaluator:  evaluator,
		scorer:     scorer,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.gate == nil {
		uc.gate = llm.NewGate(cfg.Evaluation.RequestsPerMinute, cfg.Evaluation.InitialBackoff, cfg.Evaluation.MaxBackoff)
	}
	return uc, nil
}

// Running reports whether a research run is in progress
func (uc *ResearchUseCase) Running() bool {
	return uc.running.Load()
}

// RunResearch runs discovery, evaluation, scoring and persistence once.
// Only one run may be active at a time. When a run-level error aborts the
// run, the partial result is returned together with the error.
func (uc *ResearchUseCase) RunResearch(ctx context.Context, input ResearchInput) (*ResearchResult, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, goerr.Wrap(model.ErrResearchInProgress, "cannot start research")
	}
	defer uc.running.Store(false)

	started := time.Now().UTC()
	session, err := uc.repo.Session().Create(ctx, &model.ResearchSession{
		Status:    types.SessionRunning,
		Keywords:  input.Keywords,
		StartedAt: started,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create research session")
	}

	ctx = logging.With(ctx, logging.From(ctx).With("session_id", session.ID))
	logger := logging.From(ctx)
	logger.Info("research started", "keywords", input.Keywords)

	result := &ResearchResult{Session: session}

	ch, profileErrors := uc.aggregator.Profile(ctx)
	result.SourceErrors += profileErrors
	session.VideosAnalyzed = ch.VideosAnalyzed

	keywords := input.Keywords
	if len(keywords) == 0 {
		keywords = uc.aggregator.SeedKeywords(ch)
	}
	session.Keywords = keywords

	candidates, report := uc.aggregator.Discover(ctx, keywords, ch, input.UseTrending, input.UseAIGeneration)
	result.SourceErrors += report.SourceErrors

	trends := uc.trendContext(ctx, candidates, result)

	competitors, checked, failed := uc.aggregator.CompetitorTitles(ctx)
	session.CompetitorsChecked = checked
	result.SourceErrors += failed

	limit := input.MaxTopics
	if limit <= 0 {
		limit = uc.cfg.MaxTopicsPerRun
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	evaluated, runErr := uc.evaluateAll(ctx, candidates, ch, trends, competitors, result)

	// Topics evaluated before an abort are kept as partial results.
	if err := uc.persist(context.WithoutCancel(ctx), session.ID, evaluated, result); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			errutil.Handle(ctx, err, "failed to save partial research results")
		}
	}

	uc.finalize(ctx, session, started, len(evaluated), result, runErr)

	if runErr != nil {
		return result, runErr
	}

	uc.notify(ctx, result)

	logger.Info("research finished",
		"status", session.Status,
		"persisted", len(result.Topics),
		"rejected", len(result.Rejected),
		"skipped", result.Skipped,
		"failed", result.Failed,
		"source_errors", result.SourceErrors,
	)
	return result, nil
}

// trendContext combines trending video titles with feed headlines.
func (uc *ResearchUseCase) trendContext(ctx context.Context, candidates []model.Candidate, result *ResearchResult) []string {
	var trends []string
	for _, c := range candidates {
		if c.SourceType == types.SourceTrending {
			trends = append(trends, c.Title)
		}
	}

	if uc.trends != nil {
		headlines, err := uc.trends.Headlines(ctx, uc.cfg.Discovery.TrendHeadlineLimit)
		if err != nil {
			result.SourceErrors++
			logging.From(ctx).Warn("failed to get trend headlines", "error", err)
		} else {
			trends = append(trends, headlines...)
		}
	}

	if len(trends) > maxTrendContext {
		trends = trends[:maxTrendContext]
	}
	return trends
}

type evaluated struct {
	candidate model.Candidate
	eval      *model.Evaluation
}

// evaluateAll evaluates candidates with at most Concurrency calls in flight.
// Result order follows candidate order. An auth failure cancels the
// remaining work and is returned as the run error.
func (uc *ResearchUseCase) evaluateAll(ctx context.Context, candidates []model.Candidate, ch model.ChannelContext, trends, competitors []string, result *ResearchResult) ([]evaluated, error) {
	outcomes := make([]*model.Evaluation, len(candidates))
	var skipped, failed atomic.Int64

	concurrency := max(uc.cfg.Evaluation.Concurrency, 1)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, c := range candidates {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			eval, err := uc.evaluateOne(egCtx, c, ch, trends, competitors)
			switch {
			case err == nil:
				outcomes[i] = eval
			case errors.Is(err, model.ErrAuth):
				return err
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case errors.Is(err, model.ErrRateLimited):
				skipped.Add(1)
				logging.From(ctx).Warn("topic skipped after repeated rate limits", "title", c.Title)
			default:
				failed.Add(1)
				logging.From(ctx).Warn("topic evaluation failed", "title", c.Title, "error", err)
			}
			return nil
		})
	}
	runErr := eg.Wait()

	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())

	out := make([]evaluated, 0, len(candidates))
	for i, eval := range outcomes {
		if eval != nil {
			out = append(out, evaluated{candidate: candidates[i], eval: eval})
		}
	}

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		return out, goerr.Wrap(runErr, "research aborted", goerr.V("evaluated", len(out)))
	}
	return out, nil
}

// evaluateOne retries rate-limited calls with the shared backoff.
func (uc *ResearchUseCase) evaluateOne(ctx context.Context, c model.Candidate, ch model.ChannelContext, trends, competitors []string) (*model.Evaluation, error) {
	for retry := 0; ; retry++ {
		if err := uc.gate.Wait(ctx); err != nil {
			return nil, err
		}

		eval, err := uc.evaluator.Evaluate(ctx, c, ch, trends, competitors)
		if err == nil {
			uc.gate.Reset()
			return eval, nil
		}
		if !errors.Is(err, model.ErrRateLimited) || retry >= uc.cfg.Evaluation.RateLimitRetries {
			return nil, err
		}

		wait := uc.gate.Backoff()
		logging.From(ctx).Info("rate limited, backing off",
			"title", c.Title, "retry", retry+1, "wait", wait.String())
	}
}

// persist stores topics at or above the threshold, best first.
func (uc *ResearchUseCase) persist(ctx context.Context, sessionID model.SessionID, items []evaluated, result *ResearchResult) error {
	topics := make([]*model.Topic, 0, len(items))
	for _, item := range items {
		topics = append(topics, uc.buildTopic(sessionID, item))
	}
	scoring.Rank(topics)

	for _, t := range topics {
		if t.TotalScore < uc.cfg.MinTotalScore {
			result.Rejected = append(result.Rejected, t)
			continue
		}
		created, err := uc.repo.Topic().Create(ctx, t)
		if err != nil {
			return goerr.Wrap(err, "failed to save topic", goerr.V(model.TitleKey, t.Title))
		}
		result.Topics = append(result.Topics, created)
	}
	return nil
}

func (uc *ResearchUseCase) buildTopic(sessionID model.SessionID, item evaluated) *model.Topic {
	category := item.eval.Category
	if category == "" {
		category = discovery.Categorize(item.candidate.Title, uc.cfg.Categories)
	}

	return &model.Topic{
		Title:            item.candidate.Title,
		Scores:           item.eval.Scores,
		TotalScore:       uc.scorer.Score(item.eval.Scores),
		Category:         category,
		Keywords:         item.eval.Keywords,
		RecommendedAngle: item.eval.RecommendedAngle,
		CompetitionLevel: item.eval.CompetitionLevel,
		Notes:            item.eval.Notes,
		AIAnalysis:       item.eval.RawResponse,
		Source:           item.candidate.SourceType,
		SessionID:        sessionID,
	}
}

// finalize records the session outcome. It runs even when ctx was
// cancelled so the session never stays running.
func (uc *ResearchUseCase) finalize(ctx context.Context, session *model.ResearchSession, started time.Time, evaluatedCount int, result *ResearchResult, runErr error) {
	completed := time.Now().UTC()

	session.CompletedAt = completed
	session.DurationSeconds = completed.Sub(started).Seconds()
	session.TopicsResearched = evaluatedCount
	session.HighQualityCount = len(result.Topics)
	session.SkippedCount = result.Skipped
	session.FailedCount = result.Failed

	switch {
	case runErr != nil:
		session.Status = types.SessionAborted
		session.Error = runErr.Error()
	case result.Skipped > 0 || result.Failed > 0 || result.SourceErrors > 0:
		session.Status = types.SessionDegraded
	default:
		session.Status = types.SessionCompleted
	}

	if err := uc.repo.Session().Finalize(context.WithoutCancel(ctx), session); err != nil {
		errutil.Handle(ctx, err, "failed to finalize research session")
	}
}

// notify sends best-effort notifications; failures are only logged.
func (uc *ResearchUseCase) notify(ctx context.Context, result *ResearchResult) {
	if uc.slackService != nil && uc.slackChannelID != "" {
		blocks := buildResearchSummaryBlocks(result)
		text := fmt.Sprintf("Research finished: %d topics saved", len(result.Topics))
		if _, err := uc.slackService.PostMessage(ctx, uc.slackChannelID, blocks, text); err != nil {
			errutil.Handle(ctx, err, "failed to post research summary to Slack")
		}
	}

	if uc.notionService != nil && uc.notionDatabaseID != "" {
		for _, t := range result.Topics {
			if _, err := uc.notionService.PublishTopic(ctx, uc.notionDatabaseID, t); err != nil {
				errutil.Handle(ctx, err, "failed to publish topic to Notion")
			}
		}
	}
}

func keywordSummary(keywords []string) string {
	if len(keywords) == 0 {
		return "(none)"
	}
	return strings.Join(keywords, ", ")
}
