package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Research holds the research configuration file path and the flags that
// override individual settings of it
type Research struct {
	configPath  string
	channelID   string
	region      string
	minScore    float64
	maxTopics   int
	concurrency int
	rpm         int
}

func (x *Research) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "research-config",
			Aliases:     []string{"c"},
			Usage:       "Research configuration file (.toml, .yaml or .yml)",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_RESEARCH_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "channel-id",
			Usage:       "Channel analyzed for themes, niche and average views",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_CHANNEL_ID"),
			Destination: &x.channelID,
		},
		&cli.StringFlag{
			Name:        "region",
			Usage:       "Region code for trending videos",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_REGION"),
			Destination: &x.region,
		},
		&cli.FloatFlag{
			Name:        "min-score",
			Usage:       "Minimum total score for a topic to be persisted",
			Category:    "Research",
			Value:       -1,
			Sources:     cli.EnvVars("TOPICSCOUT_MIN_SCORE"),
			Destination: &x.minScore,
		},
		&cli.IntFlag{
			Name:        "max-topics",
			Usage:       "Maximum candidates evaluated per run",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_MAX_TOPICS"),
			Destination: &x.maxTopics,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Parallel AI evaluations",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.IntFlag{
			Name:        "requests-per-minute",
			Usage:       "AI request budget per minute",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_REQUESTS_PER_MINUTE"),
			Destination: &x.rpm,
		},
	}
}

func (x Research) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("channel_id", x.channelID),
		slog.String("region", x.region),
		slog.Float64("min_score", x.minScore),
		slog.Int("max_topics", x.maxTopics),
		slog.Int("concurrency", x.concurrency),
		slog.Int("requests_per_minute", x.rpm),
	)
}

// Configure loads the configuration file, applies flag overrides and
// validates the result
func (x *Research) Configure() (domainConfig.ResearchConfig, error) {
	cfg, err := LoadResearchConfig(x.configPath)
	if err != nil {
		return cfg, err
	}

	if x.channelID != "" {
		cfg.Discovery.ChannelID = x.channelID
	}
	if x.region != "" {
		cfg.Discovery.RegionCode = x.region
	}
	if x.minScore >= 0 {
		cfg.MinTotalScore = x.minScore
	}
	if x.maxTopics > 0 {
		cfg.MaxTopicsPerRun = x.maxTopics
	}
	if x.concurrency > 0 {
		cfg.Evaluation.Concurrency = x.concurrency
	}
	if x.rpm > 0 {
		cfg.Evaluation.RequestsPerMinute = x.rpm
	}

	if err := cfg.Validate(); err != nil {
		return cfg, goerr.Wrap(err, "invalid research configuration", goerr.V(ConfigPathKey, x.configPath))
	}
	return cfg, nil
}

type researchFile struct {
	Weights         *weightsFile    `toml:"weights" yaml:"weights"`
	Filter          *filterFile     `toml:"filter" yaml:"filter"`
	Niches          []nicheFile     `toml:"niche" yaml:"niches"`
	Categories      []categoryFile  `toml:"category" yaml:"categories"`
	Discovery       *discoveryFile  `toml:"discovery" yaml:"discovery"`
	Evaluation      *evaluationFile `toml:"evaluation" yaml:"evaluation"`
	MinTotalScore   *float64        `toml:"min_total_score" yaml:"min_total_score"`
	MaxTopicsPerRun *int            `toml:"max_topics_per_run" yaml:"max_topics_per_run"`
}

type weightsFile struct {
	Importance   float64 `toml:"importance" yaml:"importance"`
	Watchability float64 `toml:"watchability" yaml:"watchability"`
	Monetization float64 `toml:"monetization" yaml:"monetization"`
	Popularity   float64 `toml:"popularity" yaml:"popularity"`
	Innovation   float64 `toml:"innovation" yaml:"innovation"`
}

type filterFile struct {
	Blacklist []string `toml:"blacklist" yaml:"blacklist"`
	Whitelist []string `toml:"whitelist" yaml:"whitelist"`
}

type nicheFile struct {
	Name     string   `toml:"name" yaml:"name"`
	Markers  []string `toml:"markers" yaml:"markers"`
	Variants []string `toml:"variants" yaml:"variants"`
}

type categoryFile struct {
	Name    string   `toml:"name" yaml:"name"`
	Markers []string `toml:"markers" yaml:"markers"`
}

type discoveryFile struct {
	MaxKeywords           *int     `toml:"max_keywords" yaml:"max_keywords"`
	VariantsPerKeyword    *int     `toml:"variants_per_keyword" yaml:"variants_per_keyword"`
	SearchResultsPerQuery *int     `toml:"search_results_per_query" yaml:"search_results_per_query"`
	SearchOrder           string   `toml:"search_order" yaml:"search_order"`
	TrendingResults       *int     `toml:"trending_results" yaml:"trending_results"`
	AIIdeaCount           *int     `toml:"ai_idea_count" yaml:"ai_idea_count"`
	DefaultKeywords       []string `toml:"default_keywords" yaml:"default_keywords"`
	ChannelID             string   `toml:"channel_id" yaml:"channel_id"`
	RegionCode            string   `toml:"region_code" yaml:"region_code"`
	CategoryID            string   `toml:"category_id" yaml:"category_id"`
	CompetitorChannelIDs  []string `toml:"competitor_channel_ids" yaml:"competitor_channel_ids"`
	ChannelVideoLimit     *int     `toml:"channel_video_limit" yaml:"channel_video_limit"`
	ChannelHistoryDays    *int     `toml:"channel_history_days" yaml:"channel_history_days"`
	TrendHeadlineLimit    *int     `toml:"trend_headline_limit" yaml:"trend_headline_limit"`
}

type evaluationFile struct {
	MaxAttempts        *int   `toml:"max_attempts" yaml:"max_attempts"`
	RateLimitRetries   *int   `toml:"rate_limit_retries" yaml:"rate_limit_retries"`
	InitialBackoff     string `toml:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff         string `toml:"max_backoff" yaml:"max_backoff"`
	RequestsPerMinute  *int   `toml:"requests_per_minute" yaml:"requests_per_minute"`
	Concurrency        *int   `toml:"concurrency" yaml:"concurrency"`
	EvaluatePrompt     string `toml:"evaluate_prompt" yaml:"evaluate_prompt"`
	EvaluatePromptFile string `toml:"evaluate_prompt_file" yaml:"evaluate_prompt_file"`
	GeneratePrompt     string `toml:"generate_prompt" yaml:"generate_prompt"`
	GeneratePromptFile string `toml:"generate_prompt_file" yaml:"generate_prompt_file"`
	RetryPrompt        string `toml:"retry_prompt" yaml:"retry_prompt"`
	RetryPromptFile    string `toml:"retry_prompt_file" yaml:"retry_prompt_file"`
}

// LoadResearchConfig reads a TOML or YAML research configuration on top of
// the built-in defaults. An empty path yields the defaults. Settings absent
// from the file keep their default values.
func LoadResearchConfig(path string) (domainConfig.ResearchConfig, error) {
	cfg := domainConfig.DefaultResearchConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, goerr.Wrap(ErrConfigNotFound, "research config not found", goerr.V(ConfigPathKey, path))
		}
		return cfg, goerr.Wrap(err, "failed to read research config", goerr.V(ConfigPathKey, path))
	}

	var f researchFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return cfg, goerr.Wrap(err, "failed to parse TOML research config", goerr.V(ConfigPathKey, path))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return cfg, goerr.Wrap(err, "failed to parse YAML research config", goerr.V(ConfigPathKey, path))
		}
	default:
		return cfg, goerr.Wrap(ErrUnsupportedFormat, "unknown research config extension", goerr.V(ConfigPathKey, path))
	}

	if err := f.apply(&cfg, filepath.Dir(path)); err != nil {
		return cfg, goerr.Wrap(err, "invalid research config", goerr.V(ConfigPathKey, path))
	}
	return cfg, nil
}

func (f *researchFile) apply(cfg *domainConfig.ResearchConfig, baseDir string) error {
	if w := f.Weights; w != nil {
		cfg.Weights = domainConfig.Weights{
			Importance:   w.Importance,
			Watchability: w.Watchability,
			Monetization: w.Monetization,
			Popularity:   w.Popularity,
			Innovation:   w.Innovation,
		}
	}
	if fl := f.Filter; fl != nil {
		if fl.Blacklist != nil {
			cfg.Filter.Blacklist = fl.Blacklist
		}
		if fl.Whitelist != nil {
			cfg.Filter.Whitelist = fl.Whitelist
		}
	}
	if len(f.Niches) > 0 {
		cfg.Niches = make([]domainConfig.Niche, len(f.Niches))
		for i, n := range f.Niches {
			cfg.Niches[i] = domainConfig.Niche{Name: n.Name, Markers: n.Markers, Variants: n.Variants}
		}
	}
	if len(f.Categories) > 0 {
		cfg.Categories = make([]domainConfig.CategoryRule, len(f.Categories))
		for i, c := range f.Categories {
			cfg.Categories[i] = domainConfig.CategoryRule{Name: c.Name, Markers: c.Markers}
		}
	}
	if f.MinTotalScore != nil {
		cfg.MinTotalScore = *f.MinTotalScore
	}
	if f.MaxTopicsPerRun != nil {
		cfg.MaxTopicsPerRun = *f.MaxTopicsPerRun
	}
	if f.Discovery != nil {
		f.Discovery.apply(&cfg.Discovery)
	}
	if f.Evaluation != nil {
		if err := f.Evaluation.apply(&cfg.Evaluation, baseDir); err != nil {
			return err
		}
	}
	return nil
}

func (d *discoveryFile) apply(dst *domainConfig.Discovery) {
	setInt(&dst.MaxKeywords, d.MaxKeywords)
	setInt(&dst.VariantsPerKeyword, d.VariantsPerKeyword)
	setInt(&dst.SearchResultsPerQuery, d.SearchResultsPerQuery)
	setInt(&dst.TrendingResults, d.TrendingResults)
	setInt(&dst.AIIdeaCount, d.AIIdeaCount)
	setInt(&dst.ChannelVideoLimit, d.ChannelVideoLimit)
	setInt(&dst.ChannelHistoryDays, d.ChannelHistoryDays)
	setInt(&dst.TrendHeadlineLimit, d.TrendHeadlineLimit)
	setString(&dst.SearchOrder, d.SearchOrder)
	setString(&dst.ChannelID, d.ChannelID)
	setString(&dst.RegionCode, d.RegionCode)
	setString(&dst.CategoryID, d.CategoryID)
	if d.DefaultKeywords != nil {
		dst.DefaultKeywords = d.DefaultKeywords
	}
	if d.CompetitorChannelIDs != nil {
		dst.CompetitorChannelIDs = d.CompetitorChannelIDs
	}
}

func (e *evaluationFile) apply(dst *domainConfig.Evaluation, baseDir string) error {
	setInt(&dst.MaxAttempts, e.MaxAttempts)
	setInt(&dst.RateLimitRetries, e.RateLimitRetries)
	setInt(&dst.RequestsPerMinute, e.RequestsPerMinute)
	setInt(&dst.Concurrency, e.Concurrency)

	if err := setDuration(&dst.InitialBackoff, e.InitialBackoff); err != nil {
		return goerr.Wrap(err, "invalid initial_backoff")
	}
	if err := setDuration(&dst.MaxBackoff, e.MaxBackoff); err != nil {
		return goerr.Wrap(err, "invalid max_backoff")
	}

	for _, p := range []struct {
		dst        *string
		inline     string
		promptFile string
	}{
		{&dst.EvaluatePrompt, e.EvaluatePrompt, e.EvaluatePromptFile},
		{&dst.GeneratePrompt, e.GeneratePrompt, e.GeneratePromptFile},
		{&dst.RetryPrompt, e.RetryPrompt, e.RetryPromptFile},
	} {
		prompt, err := loadPrompt(p.inline, p.promptFile, baseDir)
		if err != nil {
			return err
		}
		setString(p.dst, prompt)
	}
	return nil
}

// loadPrompt prefers the inline template. Relative file paths resolve
// against the configuration file's directory.
func loadPrompt(inline, path, baseDir string) (string, error) {
	if inline != "" || path == "" {
		return inline, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read prompt template", goerr.V(ConfigPathKey, path))
	}
	return string(data), nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return goerr.Wrap(err, "failed to parse duration", goerr.V("value", v))
	}
	*dst = d
	return nil
}
