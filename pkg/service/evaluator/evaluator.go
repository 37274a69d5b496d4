package evaluator

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/service/llm"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// Evaluator asks the AI service to score candidates and to propose new ones.
// It never sleeps or retries on rate limits; pacing belongs to the caller.
type Evaluator struct {
	completer   llm.Completer
	prompts     *prompts
	maxAttempts int
	categories  []string
}

func New(completer llm.Completer, cfg config.ResearchConfig) (*Evaluator, error) {
	p, err := loadPrompts(cfg.Evaluation)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(cfg.Categories)+1)
	for _, c := range cfg.Categories {
		categories = append(categories, c.Name)
	}
	categories = append(categories, config.GeneralCategory)

	attempts := cfg.Evaluation.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Evaluator{
		completer:   completer,
		prompts:     p,
		maxAttempts: attempts,
		categories:  categories,
	}, nil
}

// Evaluate scores one candidate. A reply that cannot be parsed is followed
// by clarifying prompts until the attempt budget is spent, after which
// model.ErrEvaluation is returned. Completion errors are returned as they
// are so the caller can tell rate limits and auth failures apart.
func (e *Evaluator) Evaluate(ctx context.Context, c model.Candidate, ch model.ChannelContext, trends, competitors []string) (*model.Evaluation, error) {
	base, err := render(e.prompts.evaluate, evaluateData{
		Candidate:   c,
		Channel:     ch,
		Trends:      trends,
		Competitors: competitors,
		Categories:  e.categories,
	})
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx).With("title", c.Title)
	prompt := base
	var lastErr *ParseError

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		text, err := e.completer.Complete(ctx, prompt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to evaluate topic",
				goerr.V(model.TitleKey, c.Title), goerr.V("attempt", attempt))
		}

		eval, err := ParseEvaluation(text)
		if err == nil {
			eval.Attempts = attempt
			return eval, nil
		}
		if !errors.As(err, &lastErr) {
			return nil, goerr.Wrap(err, "unexpected parse failure", goerr.V(model.TitleKey, c.Title))
		}

		logger.Warn("AI response was malformed",
			"attempt", attempt,
			"problems", lastErr.Problems(),
		)

		prompt, err = render(e.prompts.retry, retryData{
			Prompt:   base,
			Previous: text,
			Problems: lastErr.Problems(),
		})
		if err != nil {
			return nil, err
		}
	}

	return nil, goerr.Wrap(model.ErrEvaluation, "AI response could not be parsed",
		goerr.V(model.TitleKey, c.Title),
		goerr.V("attempts", e.maxAttempts),
		goerr.V("reason", lastErr.Error()),
	)
}

// GenerateTopicIdeas asks for up to count new topic titles tailored to the
// channel. Each idea becomes an ai-generated candidate.
func (e *Evaluator) GenerateTopicIdeas(ctx context.Context, ch model.ChannelContext, count int, trends []string) ([]model.Candidate, error) {
	if count < 1 {
		return nil, nil
	}

	prompt, err := render(e.prompts.generate, generateData{
		Channel: ch,
		Count:   count,
		Trends:  trends,
	})
	if err != nil {
		return nil, err
	}

	text, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate topic ideas", goerr.V("count", count))
	}

	ideas := ParseTopicIdeas(text, count)
	candidates := make([]model.Candidate, 0, len(ideas))
	for _, idea := range ideas {
		candidates = append(candidates, model.Candidate{
			Title:      idea,
			SourceType: types.SourceAIGenerated,
		})
	}
	return candidates, nil
}
