package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/topicscout/topicscout/pkg/cli/config"
	"github.com/topicscout/topicscout/pkg/domain/model"
	domainConfig "github.com/topicscout/topicscout/pkg/domain/model/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644)).Required()
	return path
}

func TestLoadResearchConfig(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := config.LoadResearchConfig("")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Weights).Equal(domainConfig.DefaultResearchConfig().Weights)
		gt.Value(t, cfg.MinTotalScore).Equal(60.0)
	})

	t.Run("toml overrides only given settings", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "research.toml", `
min_total_score = 70.0

[weights]
importance = 0.2
watchability = 0.2
monetization = 0.2
popularity = 0.2
innovation = 0.2

[discovery]
max_keywords = 3
competitor_channel_ids = ["UC1", "UC2"]

[evaluation]
concurrency = 2
initial_backoff = "500ms"

[[niche]]
name = "Gaming Tech"
markers = ["gpu", "console"]
variants = ["hardware"]
`)

		cfg, err := config.LoadResearchConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.MinTotalScore).Equal(70.0)
		gt.Value(t, cfg.Weights.Innovation).Equal(0.2)
		gt.Value(t, cfg.Discovery.MaxKeywords).Equal(3)
		gt.Value(t, cfg.Discovery.CompetitorChannelIDs).Equal([]string{"UC1", "UC2"})
		gt.Value(t, cfg.Discovery.SearchResultsPerQuery).Equal(10)
		gt.Value(t, cfg.Evaluation.Concurrency).Equal(2)
		gt.Value(t, cfg.Evaluation.InitialBackoff).Equal(500 * time.Millisecond)
		gt.Value(t, cfg.Evaluation.MaxBackoff).Equal(time.Minute)
		gt.Array(t, cfg.Niches).Length(1).Required()
		gt.Value(t, cfg.Niches[0].Name).Equal("Gaming Tech")
		gt.Array(t, cfg.Categories).Length(5)
	})

	t.Run("yaml with prompt file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "evaluate.tmpl", "Rate {{.Title}}")
		path := writeFile(t, dir, "research.yaml", `
max_topics_per_run: 10
filter:
  blacklist: ["asmr"]
evaluation:
  evaluate_prompt_file: evaluate.tmpl
  retry_prompt: "Fix it"
categories:
  - name: Deep Dive
    markers: ["internals"]
`)

		cfg, err := config.LoadResearchConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.MaxTopicsPerRun).Equal(10)
		gt.Value(t, cfg.Filter.Blacklist).Equal([]string{"asmr"})
		gt.Value(t, cfg.Filter.Whitelist).Equal(domainConfig.DefaultResearchConfig().Filter.Whitelist)
		gt.Value(t, cfg.Evaluation.EvaluatePrompt).Equal("Rate {{.Title}}")
		gt.Value(t, cfg.Evaluation.RetryPrompt).Equal("Fix it")
		gt.Array(t, cfg.Categories).Length(1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadResearchConfig(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "research.ini", "a=b")
		_, err := config.LoadResearchConfig(path)
		gt.Error(t, err).Is(config.ErrUnsupportedFormat)
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "research.toml", "[evaluation]\nmax_backoff = \"soon\"\n")
		_, err := config.LoadResearchConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing prompt file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "research.yml", "evaluation:\n  generate_prompt_file: nope.tmpl\n")
		_, err := config.LoadResearchConfig(path)
		gt.Value(t, err).NotNil()
	})
}

func TestResearchConfigure(t *testing.T) {
	t.Run("flag overrides win over the file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "research.toml", "[evaluation]\nconcurrency = 2\n")
		x := config.NewResearchForTest(path)
		config.SetResearchOverridesForTest(x, "UCchannel", 0, 4, 120)

		cfg, err := x.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Discovery.ChannelID).Equal("UCchannel")
		gt.Value(t, cfg.MinTotalScore).Equal(0.0)
		gt.Value(t, cfg.Evaluation.Concurrency).Equal(4)
		gt.Value(t, cfg.Evaluation.RequestsPerMinute).Equal(120)
	})

	t.Run("weights not summing to one are rejected", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "research.toml", `
[weights]
importance = 0.5
watchability = 0.5
monetization = 0.5
popularity = 0.0
innovation = 0.0
`)
		_, err := config.NewResearchForTest(path).Configure()
		gt.Error(t, err).Is(model.ErrInvalidWeights)
	})

	t.Run("concurrency above request budget is rejected", func(t *testing.T) {
		x := config.NewResearchForTest("")
		config.SetResearchOverridesForTest(x, "", -1, 10, 5)
		_, err := x.Configure()
		gt.Error(t, err).Is(model.ErrInvalidConfig)
	})
}
