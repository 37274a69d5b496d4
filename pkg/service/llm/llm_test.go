package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/service/llm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mockLLMSession struct {
	generateFn func(ctx context.Context, input []gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, input)
	}
	return &gollem.Response{Texts: []string{"ok"}}, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.Generate(ctx, input)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	session      *mockLLMSession
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	if c.session != nil {
		return c.session, nil
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestClientComplete(t *testing.T) {
	t.Run("joins response texts", func(t *testing.T) {
		var got string
		client := llm.New(&mockLLMClient{session: &mockLLMSession{
			generateFn: func(ctx context.Context, input []gollem.Input) (*gollem.Response, error) {
				got = string(input[0].(gollem.Text))
				return &gollem.Response{Texts: []string{"IMPORTANCE: 80/100", "NOTES: fine"}}, nil
			},
		}})

		text, err := client.Complete(context.Background(), "evaluate this")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("evaluate this")
		gt.Value(t, text).Equal("IMPORTANCE: 80/100\nNOTES: fine")
	})

	t.Run("empty response is transient", func(t *testing.T) {
		client := llm.New(&mockLLMClient{session: &mockLLMSession{
			generateFn: func(ctx context.Context, input []gollem.Input) (*gollem.Response, error) {
				return &gollem.Response{}, nil
			},
		}})
		_, err := client.Complete(context.Background(), "x")
		gt.Error(t, err).Is(model.ErrTransient)
	})

	t.Run("provider errors are classified", func(t *testing.T) {
		client := llm.New(&mockLLMClient{session: &mockLLMSession{
			generateFn: func(ctx context.Context, input []gollem.Input) (*gollem.Response, error) {
				return nil, errors.New("googleapi: Error 429: Resource has been exhausted")
			},
		}})
		_, err := client.Complete(context.Background(), "x")
		gt.Error(t, err).Is(model.ErrRateLimited)
	})

	t.Run("session errors are classified", func(t *testing.T) {
		client := llm.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, errors.New("401 Unauthorized: invalid x-api-key")
			},
		})
		_, err := client.Complete(context.Background(), "x")
		gt.Error(t, err).Is(model.ErrAuth)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "grpc resource exhausted", err: status.Error(codes.ResourceExhausted, "slow down"), want: model.ErrRateLimited},
		{name: "grpc unauthenticated", err: status.Error(codes.Unauthenticated, "who are you"), want: model.ErrAuth},
		{name: "grpc permission denied", err: status.Error(codes.PermissionDenied, "nope"), want: model.ErrAuth},
		{name: "rate limit text", err: errors.New("Rate limit reached for requests"), want: model.ErrRateLimited},
		{name: "auth text", err: errors.New("Incorrect API key provided: 401"), want: model.ErrAuth},
		{name: "other", err: errors.New("connection reset by peer"), want: model.ErrTransient},
		{name: "already classified", err: model.ErrAuth, want: model.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Error(t, llm.Classify(tt.err)).Is(tt.want)
		})
	}

	gt.Error(t, llm.Classify(context.Canceled)).Is(context.Canceled)
	gt.NoError(t, llm.Classify(nil))
}

func TestGateBackoff(t *testing.T) {
	g := llm.NewGate(6000, 10*time.Millisecond, 40*time.Millisecond)

	gt.Value(t, g.Backoff()).Equal(10 * time.Millisecond)
	gt.Value(t, g.Backoff()).Equal(20 * time.Millisecond)
	gt.Value(t, g.Backoff()).Equal(40 * time.Millisecond)
	gt.Value(t, g.Backoff()).Equal(40 * time.Millisecond)

	g.Reset()
	gt.Value(t, g.Backoff()).Equal(10 * time.Millisecond)
}

func TestGateWaitHonoursPause(t *testing.T) {
	g := llm.NewGate(6000, 30*time.Millisecond, time.Second)
	g.Backoff()

	start := time.Now()
	gt.NoError(t, g.Wait(context.Background())).Required()
	gt.Bool(t, time.Since(start) >= 25*time.Millisecond).True()
}

func TestGateWaitCancelled(t *testing.T) {
	g := llm.NewGate(1, time.Minute, time.Minute)
	g.Backoff()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gt.Error(t, g.Wait(ctx))
}
