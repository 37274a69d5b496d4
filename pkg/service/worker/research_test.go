package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
	"github.com/topicscout/topicscout/pkg/service/worker"
	"github.com/topicscout/topicscout/pkg/usecase"
)

// mockRunner is a mock implementation of worker.ResearchRunner
type mockRunner struct {
	mu     sync.Mutex
	inputs []usecase.ResearchInput
	calls  atomic.Int32
	err    error
}

func (m *mockRunner) RunResearch(_ context.Context, input usecase.ResearchInput) (*usecase.ResearchResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	m.calls.Add(1)

	if m.err != nil {
		return nil, m.err
	}
	return &usecase.ResearchResult{
		Session: &model.ResearchSession{ID: "s1", Status: types.SessionCompleted},
	}, nil
}

func waitForCalls(t *testing.T, m *mockRunner, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.calls.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("runner was called %d times, want at least %d", m.calls.Load(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResearchWorker(t *testing.T) {
	t.Run("runs on start and on every tick", func(t *testing.T) {
		runner := &mockRunner{}
		input := usecase.ResearchInput{Keywords: []string{"golang"}, UseAIGeneration: true}
		w := worker.NewResearchWorker(runner, input, 20*time.Millisecond, worker.WithRunOnStart())

		gt.NoError(t, w.Start(context.Background())).Required()
		waitForCalls(t, runner, 3)
		w.Stop()

		runner.mu.Lock()
		defer runner.mu.Unlock()
		gt.Value(t, runner.inputs[0]).Equal(input)
	})

	t.Run("waits one interval without run on start", func(t *testing.T) {
		runner := &mockRunner{}
		w := worker.NewResearchWorker(runner, usecase.ResearchInput{}, time.Hour)

		gt.NoError(t, w.Start(context.Background())).Required()
		time.Sleep(30 * time.Millisecond)
		w.Stop()

		gt.Value(t, runner.calls.Load()).Equal(int32(0))
	})

	t.Run("keeps running after failures", func(t *testing.T) {
		runner := &mockRunner{err: goerr.Wrap(model.ErrAuth, "bad key")}
		w := worker.NewResearchWorker(runner, usecase.ResearchInput{}, 10*time.Millisecond, worker.WithRunOnStart())

		gt.NoError(t, w.Start(context.Background())).Required()
		waitForCalls(t, runner, 2)
		w.Stop()
	})

	t.Run("in-progress runs are skipped quietly", func(t *testing.T) {
		runner := &mockRunner{err: goerr.Wrap(model.ErrResearchInProgress, "busy")}
		w := worker.NewResearchWorker(runner, usecase.ResearchInput{}, 10*time.Millisecond, worker.WithRunOnStart())

		gt.NoError(t, w.Start(context.Background())).Required()
		waitForCalls(t, runner, 2)
		w.Stop()
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		runner := &mockRunner{}
		w := worker.NewResearchWorker(runner, usecase.ResearchInput{}, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		gt.NoError(t, w.Start(ctx)).Required()
		cancel()

		done := make(chan struct{})
		go func() {
			w.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
