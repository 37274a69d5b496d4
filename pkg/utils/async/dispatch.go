package async

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/utils/errutil"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the caller's
// cancellation. The logger bound to ctx is carried over. Errors and panics
// are logged under the given task name.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("task", task))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New(fmt.Sprintf("panic: %v", r)), "panic in async task")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async task failed")
		}
	}()

	return done
}
