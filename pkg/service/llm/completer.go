package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Completer turns a prompt into free text. Failures wrap one of
// model.ErrRateLimited, model.ErrAuth or model.ErrTransient.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = "You are a content strategist who evaluates video topic ideas for a specific channel. Follow the requested output format exactly."

// Client adapts a gollem.LLMClient to Completer. Every call opens a fresh
// session so prompts never share history.
type Client struct {
	llm          gollem.LLMClient
	systemPrompt string
}

var _ Completer = &Client{}

type Option func(*Client)

// WithSystemPrompt replaces the default system prompt
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

func New(llmClient gollem.LLMClient, opts ...Option) *Client {
	c := &Client{
		llm:          llmClient,
		systemPrompt: systemPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	session, err := c.llm.NewSession(ctx, gollem.WithSessionSystemPrompt(c.systemPrompt))
	if err != nil {
		return "", Classify(goerr.Wrap(err, "failed to create LLM session"))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", Classify(goerr.Wrap(err, "failed to generate content"))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(model.ErrTransient, "empty response from LLM")
	}

	return strings.Join(resp.Texts, "\n"), nil
}

var (
	rateLimitMarkers = []string{"429", "rate limit", "ratelimit", "resource_exhausted", "resource exhausted", "quota", "too many requests"}
	authMarkers      = []string{"401", "403", "unauthenticated", "permission_denied", "permission denied", "invalid api key", "invalid x-api-key", "api key not valid", "unauthorized"}
)

// Classify maps a provider error onto the completion error taxonomy.
// Errors already classified and context errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrAuth) || errors.Is(err, model.ErrTransient) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return goerr.Wrap(model.ErrRateLimited, "LLM provider rate limited the request", goerr.V("cause", err.Error()))
		case codes.Unauthenticated, codes.PermissionDenied:
			return goerr.Wrap(model.ErrAuth, "LLM provider rejected the credentials", goerr.V("cause", err.Error()))
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range rateLimitMarkers {
		if strings.Contains(msg, m) {
			return goerr.Wrap(model.ErrRateLimited, "LLM provider rate limited the request", goerr.V("cause", err.Error()))
		}
	}
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return goerr.Wrap(model.ErrAuth, "LLM provider rejected the credentials", goerr.V("cause", err.Error()))
		}
	}
	return goerr.Wrap(model.ErrTransient, "LLM request failed", goerr.V("cause", err.Error()))
}
