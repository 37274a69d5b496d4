package usecase_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/repository/memory"
	"github.com/topicscout/topicscout/pkg/service/discovery"
	"github.com/topicscout/topicscout/pkg/service/evaluator"
	"github.com/topicscout/topicscout/pkg/service/relevance"
	"github.com/topicscout/topicscout/pkg/usecase"

	goslack "github.com/slack-go/slack"
)

const (
	titleHigh = "Go Programming Tutorial"
	titleMid  = "Rust Programming Guide"
	titleLow  = "Zig Programming Course"
)

func reply(i, w, m, p, n int) string {
	return strings.Join([]string{
		"IMPORTANCE: " + strconv.Itoa(i) + "/100",
		"WATCHABILITY: " + strconv.Itoa(w) + "/100",
		"MONETIZATION: " + strconv.Itoa(m) + "/100",
		"POPULARITY: " + strconv.Itoa(p) + "/100",
		"INNOVATION: " + strconv.Itoa(n) + "/100",
		"RECOMMENDED ANGLE: Build it live",
		"KEYWORDS: go, tutorial",
		"COMPETITION LEVEL: Medium",
		"CATEGORY: Tutorial",
		"NOTES: none",
	}, "\n")
}

var defaultReplies = map[string]string{
	titleHigh: reply(90, 80, 70, 60, 95),
	titleMid:  reply(40, 40, 40, 40, 40),
	titleLow:  reply(10, 10, 10, 10, 10),
}

// mockVideoSource serves a fixed search result
type mockVideoSource struct {
	videos []model.VideoSummary
}

func (m *mockVideoSource) Search(_ context.Context, _ string, _ int, _ string) ([]model.VideoSummary, error) {
	return m.videos, nil
}

func (m *mockVideoSource) Trending(_ context.Context, _, _ string, _ int) ([]model.VideoSummary, error) {
	return nil, nil
}

func (m *mockVideoSource) ChannelVideos(_ context.Context, _ string, _, _ int) ([]model.VideoSummary, error) {
	return nil, nil
}

func (m *mockVideoSource) ChannelInfo(_ context.Context, id string) (*model.ChannelInfo, error) {
	return &model.ChannelInfo{ID: id}, nil
}

// mockCompleter answers by the topic title found in the prompt
type mockCompleter struct {
	mu         sync.Mutex
	calls      map[string]int
	prompts    []string
	completeFn func(ctx context.Context, title string, call int) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	title := ""
	for _, t := range []string{titleHigh, titleMid, titleLow} {
		if strings.Contains(prompt, "- Title: "+t) {
			title = t
		}
	}

	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[title]++
	call := m.calls[title]
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.completeFn != nil {
		return m.completeFn(ctx, title, call)
	}
	return defaultReplies[title], nil
}

func (m *mockCompleter) callCount(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[title]
}

type mockTrendSource struct {
	headlines []string
	err       error
}

func (m *mockTrendSource) Headlines(_ context.Context, limit int) ([]string, error) {
	return m.headlines, m.err
}

type mockSlackService struct {
	mu    sync.Mutex
	posts []string
}

func (m *mockSlackService) PostMessage(_ context.Context, channelID string, _ []goslack.Block, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, channelID+":"+text)
	return "1.0", nil
}

type mockNotionService struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockNotionService) PublishTopic(_ context.Context, _ string, topic *model.Topic) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.published = append(m.published, topic.Title)
	return "https://notion.so/" + topic.ID.String(), nil
}

func testResearchConfig() config.ResearchConfig {
	cfg := config.DefaultResearchConfig()
	cfg.Evaluation.RequestsPerMinute = 600000
	cfg.Evaluation.InitialBackoff = time.Millisecond
	cfg.Evaluation.MaxBackoff = 4 * time.Millisecond
	return cfg
}

type researchFixture struct {
	repo      *memory.Memory
	completer *mockCompleter
	uc        *usecase.ResearchUseCase
}

func newResearchFixture(t *testing.T, completer *mockCompleter, mutate func(*config.ResearchConfig), opts ...usecase.ResearchOption) *researchFixture {
	t.Helper()
	cfg := testResearchConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	src := &mockVideoSource{videos: []model.VideoSummary{
		{ID: "v1", Title: titleHigh},
		{ID: "v2", Title: titleMid},
		{ID: "v3", Title: titleLow},
	}}

	eval, err := evaluator.New(completer, cfg)
	gt.NoError(t, err).Required()

	agg := discovery.New(src, eval, relevance.New(cfg.Filter), cfg)
	repo := memory.New()

	uc, err := usecase.NewResearchUseCase(repo, agg, eval, cfg, opts...)
	gt.NoError(t, err).Required()

	return &researchFixture{repo: repo, completer: completer, uc: uc}
}

func TestRunResearch(t *testing.T) {
	ctx := context.Background()
	input := usecase.ResearchInput{Keywords: []string{"programming"}}

	t.Run("only topics at or above the threshold are persisted", func(t *testing.T) {
		f := newResearchFixture(t, &mockCompleter{}, nil)

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()

		gt.Array(t, result.Topics).Length(1).Required()
		gt.Value(t, result.Topics[0].Title).Equal(titleHigh)
		gt.Value(t, result.Topics[0].TotalScore).Equal(78.75)
		gt.Value(t, result.Topics[0].Category).Equal("Tutorial")
		gt.Value(t, result.Topics[0].Source).Equal(types.SourceSearch)
		gt.Value(t, result.Topics[0].SessionID).Equal(result.Session.ID)

		gt.Array(t, result.Rejected).Length(2).Required()
		gt.Value(t, result.Rejected[0].TotalScore).Equal(40.0)
		gt.Value(t, result.Rejected[1].TotalScore).Equal(10.0)

		stored, err := f.repo.Topic().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1)

		session, err := f.repo.Session().Get(ctx, result.Session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, session.Status).Equal(types.SessionCompleted)
		gt.Value(t, session.TopicsResearched).Equal(3)
		gt.Value(t, session.HighQualityCount).Equal(1)
		gt.Value(t, session.Keywords).Equal([]string{"programming"})
		gt.Bool(t, session.CompletedAt.IsZero()).False()
	})

	t.Run("malformed reply is retried and the retried scores are kept", func(t *testing.T) {
		completer := &mockCompleter{
			completeFn: func(_ context.Context, title string, call int) (string, error) {
				if title == titleHigh && call == 1 {
					return "This topic looks promising overall.", nil
				}
				return defaultReplies[title], nil
			},
		}
		f := newResearchFixture(t, completer, nil)

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Topics).Length(1).Required()
		gt.Value(t, result.Topics[0].Scores.Innovation).Equal(95)
		gt.Value(t, completer.callCount(titleHigh)).Equal(2)
		gt.Value(t, result.Session.Status).Equal(types.SessionCompleted)
	})

	t.Run("twice malformed candidate is dropped and the run continues", func(t *testing.T) {
		completer := &mockCompleter{
			completeFn: func(_ context.Context, title string, _ int) (string, error) {
				if title == titleMid {
					return "no idea", nil
				}
				return defaultReplies[title], nil
			},
		}
		f := newResearchFixture(t, completer, nil)

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Failed).Equal(1)
		gt.Array(t, result.Topics).Length(1)
		gt.Array(t, result.Rejected).Length(1)
		gt.Value(t, result.Session.Status).Equal(types.SessionDegraded)
		gt.Value(t, result.Session.TopicsResearched).Equal(2)
		gt.Value(t, result.Session.FailedCount).Equal(1)
	})

	t.Run("rate limited candidate is skipped after bounded retries", func(t *testing.T) {
		completer := &mockCompleter{
			completeFn: func(_ context.Context, title string, _ int) (string, error) {
				if title == titleLow {
					return "", goerr.Wrap(model.ErrRateLimited, "429")
				}
				return defaultReplies[title], nil
			},
		}
		f := newResearchFixture(t, completer, func(cfg *config.ResearchConfig) {
			cfg.Evaluation.RateLimitRetries = 2
		})

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Skipped).Equal(1)
		gt.Value(t, completer.callCount(titleLow)).Equal(3)
		gt.Value(t, result.Session.Status).Equal(types.SessionDegraded)
		gt.Value(t, result.Session.SkippedCount).Equal(1)
	})

	t.Run("transient rate limit recovers", func(t *testing.T) {
		completer := &mockCompleter{
			completeFn: func(_ context.Context, title string, call int) (string, error) {
				if title == titleHigh && call == 1 {
					return "", goerr.Wrap(model.ErrRateLimited, "429")
				}
				return defaultReplies[title], nil
			},
		}
		f := newResearchFixture(t, completer, nil)

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Topics).Length(1)
		gt.Value(t, result.Skipped).Equal(0)
		gt.Value(t, result.Session.Status).Equal(types.SessionCompleted)
	})

	t.Run("auth failure aborts the run", func(t *testing.T) {
		completer := &mockCompleter{
			completeFn: func(_ context.Context, title string, _ int) (string, error) {
				if title == titleMid {
					return "", goerr.Wrap(model.ErrAuth, "invalid api key")
				}
				return defaultReplies[title], nil
			},
		}
		f := newResearchFixture(t, completer, nil)

		result, err := f.uc.RunResearch(ctx, input)
		gt.Error(t, err).Is(model.ErrAuth)
		gt.Value(t, result).NotNil()
		gt.Value(t, completer.callCount(titleLow)).Equal(0)

		session, err := f.repo.Session().Get(ctx, result.Session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, session.Status).Equal(types.SessionAborted)
		gt.String(t, session.Error).Contains("authentication failed")

		gt.Array(t, result.Topics).Length(1)
		stored, err := f.repo.Topic().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1)
	})

	t.Run("max topics limits evaluations", func(t *testing.T) {
		f := newResearchFixture(t, &mockCompleter{}, nil)

		result, err := f.uc.RunResearch(ctx, usecase.ResearchInput{Keywords: []string{"programming"}, MaxTopics: 2})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Session.TopicsResearched).Equal(2)
		gt.Value(t, f.completer.callCount(titleLow)).Equal(0)
	})

	t.Run("concurrent workers evaluate every candidate", func(t *testing.T) {
		f := newResearchFixture(t, &mockCompleter{}, func(cfg *config.ResearchConfig) {
			cfg.Evaluation.Concurrency = 3
		})

		result, err := f.uc.RunResearch(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Session.TopicsResearched).Equal(3)
		gt.Array(t, result.Topics).Length(1)
	})

	t.Run("default keywords are used when none are given", func(t *testing.T) {
		f := newResearchFixture(t, &mockCompleter{}, nil)

		result, err := f.uc.RunResearch(ctx, usecase.ResearchInput{})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Session.Keywords).Equal(config.DefaultResearchConfig().Discovery.DefaultKeywords)
	})
}

func TestRunResearchTrendContext(t *testing.T) {
	completer := &mockCompleter{}
	trends := &mockTrendSource{headlines: []string{"Go 1.24 ships iterators"}}
	f := newResearchFixture(t, completer, nil, usecase.WithTrendSource(trends))

	_, err := f.uc.RunResearch(context.Background(), usecase.ResearchInput{Keywords: []string{"programming"}})
	gt.NoError(t, err).Required()
	gt.String(t, completer.prompts[0]).Contains("Go 1.24 ships iterators")
}

func TestRunResearchTrendFailureDegrades(t *testing.T) {
	trends := &mockTrendSource{err: goerr.Wrap(model.ErrSourceUnavailable, "down")}
	f := newResearchFixture(t, &mockCompleter{}, nil, usecase.WithTrendSource(trends))

	result, err := f.uc.RunResearch(context.Background(), usecase.ResearchInput{Keywords: []string{"programming"}})
	gt.NoError(t, err).Required()
	gt.Value(t, result.SourceErrors).Equal(1)
	gt.Value(t, result.Session.Status).Equal(types.SessionDegraded)
}

func TestRunResearchNotifications(t *testing.T) {
	slackSvc := &mockSlackService{}
	notionSvc := &mockNotionService{}
	f := newResearchFixture(t, &mockCompleter{}, nil,
		usecase.WithSlackNotification(slackSvc, "C123"),
		usecase.WithNotionPublishing(notionSvc, "db-1"),
	)

	_, err := f.uc.RunResearch(context.Background(), usecase.ResearchInput{Keywords: []string{"programming"}})
	gt.NoError(t, err).Required()
	gt.Value(t, slackSvc.posts).Equal([]string{"C123:Research finished: 1 topics saved"})
	gt.Value(t, notionSvc.published).Equal([]string{titleHigh})
}

func TestRunResearchNotificationFailureIsIgnored(t *testing.T) {
	notionSvc := &mockNotionService{err: goerr.New("notion down")}
	f := newResearchFixture(t, &mockCompleter{}, nil, usecase.WithNotionPublishing(notionSvc, "db-1"))

	result, err := f.uc.RunResearch(context.Background(), usecase.ResearchInput{Keywords: []string{"programming"}})
	gt.NoError(t, err).Required()
	gt.Array(t, result.Topics).Length(1)
}

func TestRunResearchInProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	completer := &mockCompleter{
		completeFn: func(_ context.Context, title string, _ int) (string, error) {
			once.Do(func() { close(started) })
			<-release
			return defaultReplies[title], nil
		},
	}
	f := newResearchFixture(t, completer, nil)
	ctx := context.Background()
	input := usecase.ResearchInput{Keywords: []string{"programming"}}

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.RunResearch(ctx, input)
		done <- err
	}()

	<-started
	gt.Bool(t, f.uc.Running()).True()
	_, err := f.uc.RunResearch(ctx, input)
	gt.Error(t, err).Is(model.ErrResearchInProgress)

	close(release)
	gt.NoError(t, <-done)
	gt.Bool(t, f.uc.Running()).False()
}

func TestRunResearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	completer := &mockCompleter{
		completeFn: func(_ context.Context, title string, _ int) (string, error) {
			if title == titleHigh {
				cancel()
			}
			return defaultReplies[title], nil
		},
	}
	f := newResearchFixture(t, completer, nil)

	result, err := f.uc.RunResearch(ctx, usecase.ResearchInput{Keywords: []string{"programming"}})
	gt.Error(t, err).Is(context.Canceled)
	gt.Value(t, completer.callCount(titleLow)).Equal(0)

	session, err := f.repo.Session().Get(context.Background(), result.Session.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, session.Status).Equal(types.SessionAborted)
}

func TestNewResearchUseCaseRejectsInvalidWeights(t *testing.T) {
	cfg := testResearchConfig()
	cfg.Weights.Importance = 0.5

	_, err := usecase.NewResearchUseCase(memory.New(), nil, nil, cfg)
	gt.Error(t, err).Is(model.ErrInvalidWeights)
}
