package worker

import (
	"context"
	"errors"
	"time"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/errutil"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// ResearchRunner runs one research pass
type ResearchRunner interface {
	RunResearch(ctx context.Context, input usecase.ResearchInput) (*usecase.ResearchResult, error)
}

// ResearchWorker runs research periodically in the background
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - A tick that finds a run in progress is skipped, not queued
type ResearchWorker struct {
	runner     ResearchRunner
	input      usecase.ResearchInput
	interval   time.Duration
	runOnStart bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// WorkerOption is a functional option for ResearchWorker
type WorkerOption func(*ResearchWorker)

// WithRunOnStart runs research immediately instead of waiting one interval
func WithRunOnStart() WorkerOption {
	return func(w *ResearchWorker) {
		w.runOnStart = true
	}
}

// NewResearchWorker creates a worker that calls runner every interval with input
func NewResearchWorker(runner ResearchRunner, input usecase.ResearchInput, interval time.Duration, opts ...WorkerOption) *ResearchWorker {
	w := &ResearchWorker{
		runner:   runner,
		input:    input,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background loop without blocking
func (w *ResearchWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("research worker starting",
		"interval", w.interval.String(),
		"run_on_start", w.runOnStart)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the current run to finish
func (w *ResearchWorker) Stop() {
	logging.Default().Info("research worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("research worker stopped")
}

func (w *ResearchWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if w.runOnStart {
		w.research(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.research(ctx)

		case <-w.stopCh:
			logging.From(ctx).Info("research worker received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("research worker context cancelled")
			return
		}
	}
}

// research performs one run; errors are logged and the loop continues.
func (w *ResearchWorker) research(ctx context.Context) {
	startTime := time.Now()
	logger := logging.From(ctx)
	logger.Info("scheduled research starting")

	result, err := w.runner.RunResearch(ctx, w.input)
	if err != nil {
		if errors.Is(err, model.ErrResearchInProgress) {
			logger.Info("scheduled research skipped, a run is already in progress")
			return
		}
		errutil.Handle(ctx, err, "scheduled research failed (will retry next interval)")
		return
	}

	logger.Info("scheduled research completed",
		"session_id", result.Session.ID,
		"status", result.Session.Status,
		"persisted", len(result.Topics),
		"duration", time.Since(startTime).String())
}
