package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("hello", "key", "value")

	gt.String(t, buf.String()).Contains(`"msg":"hello"`)
	gt.String(t, buf.String()).Contains(`"key":"value"`)
}

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	logging.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	logging.From(context.Background()).Warn("fallback")

	gt.String(t, buf.String()).Contains(`"msg":"fallback"`)
}
