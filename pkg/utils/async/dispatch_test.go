package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/utils/async"
)

func TestDispatchDetachesFromCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ctxErr error
	done := async.Dispatch(ctx, "test", func(ctx context.Context) error {
		ctxErr = ctx.Err()
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	gt.NoError(t, ctxErr)
}

func TestDispatchRecoversPanicAndError(t *testing.T) {
	for _, h := range []func(context.Context) error{
		func(context.Context) error { panic("boom") },
		func(context.Context) error { return errors.New("failed") },
	} {
		select {
		case <-async.Dispatch(context.Background(), "test", h):
		case <-time.After(time.Second):
			t.Fatal("task did not finish")
		}
	}
}
