package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/cli/config"
	"github.com/topicscout/topicscout/pkg/utils/logging"
)

func TestLLMConfigure(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		for _, x := range []*config.LLM{
			config.NewLLMForTest(config.ProviderGemini, "", "", ""),
			config.NewLLMForTest(config.ProviderOpenAI, "", "", ""),
			config.NewLLMForTest(config.ProviderClaude, "", "", ""),
		} {
			_, err := x.Configure(t.Context())
			gt.Error(t, err).Is(config.ErrMissingCredentials)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewLLMForTest("llama", "", "", "").Configure(t.Context())
		gt.Value(t, err).NotNil()
	})

	t.Run("returns flags", func(t *testing.T) {
		var x config.LLM
		gt.Array(t, x.Flags()).Length(6)
	})
}

func TestSlackConfigure(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		svc, err := config.NewSlackForTest("", "C123").Configure()
		gt.NoError(t, err)
		gt.Value(t, svc).Nil()
	})

	t.Run("channel is required", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("enabled", func(t *testing.T) {
		x := config.NewSlackForTest("xoxb-test", "C123")
		svc, err := x.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
		gt.Value(t, x.ChannelID()).Equal("C123")
	})
}

func TestNotionConfigure(t *testing.T) {
	svc, err := config.NewNotionForTest("", "").Configure()
	gt.NoError(t, err)
	gt.Value(t, svc).Nil()

	_, err = config.NewNotionForTest("secret_abc", "").Configure()
	gt.Value(t, err).NotNil()

	svc, err = config.NewNotionForTest("secret_abc", "db").Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, svc).NotNil()
}

func TestFeedConfigure(t *testing.T) {
	gt.Value(t, config.NewFeedForTest().Configure()).Nil()
	gt.Value(t, config.NewFeedForTest("https://example.com/rss").Configure()).NotNil()
}

func TestRepositoryConfigure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "research.json")
		repo, err := config.NewRepositoryForTest(config.BackendFile, path).Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "research.db")
		repo, err := config.NewRepositoryForTest(config.BackendSQLite, path).Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "").Configure(t.Context())
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("redis", "").Configure(t.Context())
		gt.Value(t, err).NotNil()
	})
}

func TestLoggerConfigure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()
		closer()

		_, err = os.Stat(path)
		gt.NoError(t, err)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stderr").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stderr").Configure()
		gt.Value(t, err).NotNil()
	})
}
