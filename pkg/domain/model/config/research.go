package config

import (
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

// WeightTolerance is the allowed deviation of the weight sum from 1.0
const WeightTolerance = 0.001

// Weights are the per-dimension multipliers of the scoring engine
type Weights struct {
	Importance   float64
	Watchability float64
	Monetization float64
	Popularity   float64
	Innovation   float64
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Importance + w.Watchability + w.Monetization + w.Popularity + w.Innovation
}

// Validate rejects negative weights and weights not summing to 1.0
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"importance":   w.Importance,
		"watchability": w.Watchability,
		"monetization": w.Monetization,
		"popularity":   w.Popularity,
		"innovation":   w.Innovation,
	} {
		if v < 0 || math.IsNaN(v) {
			return goerr.Wrap(model.ErrInvalidWeights, "weight must not be negative",
				goerr.V("dimension", name), goerr.V("weight", v))
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return goerr.Wrap(model.ErrInvalidWeights, "weights must sum to 1.0",
			goerr.V("sum", sum))
	}
	return nil
}

// FilterRules holds the relevance filter term lists
type FilterRules struct {
	Blacklist []string
	Whitelist []string
}

// Niche maps channel keywords to a niche name and its search variants
type Niche struct {
	Name     string
	Markers  []string
	Variants []string
}

// CategoryRule assigns Name to titles containing any marker
type CategoryRule struct {
	Name    string
	Markers []string
}

// Discovery controls how candidates are gathered
type Discovery struct {
	MaxKeywords           int
	VariantsPerKeyword    int
	SearchResultsPerQuery int
	SearchOrder           string
	TrendingResults       int
	AIIdeaCount           int
	DefaultKeywords       []string
	ChannelID             string
	RegionCode            string
	CategoryID            string
	CompetitorChannelIDs  []string
	ChannelVideoLimit     int
	ChannelHistoryDays    int
	TrendHeadlineLimit    int
}

// Evaluation controls the AI evaluator and its pacing
type Evaluation struct {
	MaxAttempts       int
	RateLimitRetries  int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	RequestsPerMinute int
	Concurrency       int

	// Prompt template overrides, empty means the built-in template
	EvaluatePrompt string
	GeneratePrompt string
	RetryPrompt    string
}

// ResearchConfig is the immutable configuration handed to every component
type ResearchConfig struct {
	Weights         Weights
	Filter          FilterRules
	Niches          []Niche
	Categories      []CategoryRule
	Discovery       Discovery
	Evaluation      Evaluation
	MinTotalScore   float64
	MaxTopicsPerRun int
}

// DefaultResearchConfig returns the built-in configuration
func DefaultResearchConfig() ResearchConfig {
	return ResearchConfig{
		Weights: Weights{
			Importance:   0.25,
			Watchability: 0.20,
			Monetization: 0.20,
			Popularity:   0.20,
			Innovation:   0.15,
		},
		Filter: FilterRules{
			Blacklist: []string{
				"music video", "official video", "mv", "trailer", "teaser",
				"gameplay", "let's play", "gaming", "fortnite", "roblox",
				"tiktok", "brainrot", "steal a", "admin abuse", "official music",
				"ft.", "feat.", "prod. by", "(official", "official trailer",
			},
			Whitelist: []string{
				"tutorial", "guide", "how to", "learn", "course", "lesson",
				"tech", "ai", "programming", "code", "software", "data",
				"business", "startup", "entrepreneur", "marketing", "strategy",
				"explained", "introduction", "beginner", "advanced", "tips",
				"review", "comparison", "vs", "best", "top",
			},
		},
		Niches: []Niche{
			{
				Name:     "Technology",
				Markers:  []string{"tech", "software", "coding", "programming", "developer", "ai", "ml", "data"},
				Variants: []string{"tech", "programming"},
			},
			{
				Name:     "Business & Finance",
				Markers:  []string{"business", "entrepreneur", "startup", "marketing", "finance", "money"},
				Variants: []string{"business", "entrepreneur"},
			},
			{
				Name:     "Education",
				Markers:  []string{"tutorial", "learn", "course", "guide", "explained", "education"},
				Variants: []string{"tutorial", "course"},
			},
		},
		Categories: []CategoryRule{
			{Name: "Tutorial", Markers: []string{"tutorial", "how to", "guide", "learn"}},
			{Name: "Review", Markers: []string{"review", "unbox", "test"}},
			{Name: "Comparison", Markers: []string{"vs", "versus", "comparison", "compare"}},
			{Name: "Tips & Tricks", Markers: []string{"tips", "tricks", "hacks"}},
			{Name: "News", Markers: []string{"news", "update", "announcement"}},
		},
		Discovery: Discovery{
			MaxKeywords:           5,
			VariantsPerKeyword:    2,
			SearchResultsPerQuery: 10,
			SearchOrder:           "relevance",
			TrendingResults:       20,
			AIIdeaCount:           20,
			DefaultKeywords:       []string{"tutorial", "guide", "explained"},
			RegionCode:            "US",
			ChannelVideoLimit:     20,
			ChannelHistoryDays:    90,
			TrendHeadlineLimit:    10,
		},
		Evaluation: Evaluation{
			MaxAttempts:       2,
			RateLimitRetries:  3,
			InitialBackoff:    2 * time.Second,
			MaxBackoff:        time.Minute,
			RequestsPerMinute: 30,
			Concurrency:       1,
		},
		MinTotalScore:   60,
		MaxTopicsPerRun: 50,
	}
}

// GeneralNiche is used when no niche markers match
const GeneralNiche = "General"

// GeneralCategory is used when no category rule matches
const GeneralCategory = "General"

// Validate checks the whole configuration
func (c ResearchConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.MinTotalScore < 0 || c.MinTotalScore > 100 {
		return goerr.Wrap(model.ErrInvalidConfig, "min total score must be within 0..100",
			goerr.V("min_total_score", c.MinTotalScore))
	}
	if c.MaxTopicsPerRun < 1 {
		return goerr.Wrap(model.ErrInvalidConfig, "max topics per run must be positive",
			goerr.V("max_topics_per_run", c.MaxTopicsPerRun))
	}

	e := c.Evaluation
	switch {
	case e.MaxAttempts < 1:
		return goerr.Wrap(model.ErrInvalidConfig, "max attempts must be positive", goerr.V("max_attempts", e.MaxAttempts))
	case e.RateLimitRetries < 0:
		return goerr.Wrap(model.ErrInvalidConfig, "rate limit retries must not be negative", goerr.V("rate_limit_retries", e.RateLimitRetries))
	case e.RequestsPerMinute < 1:
		return goerr.Wrap(model.ErrInvalidConfig, "requests per minute must be positive", goerr.V("requests_per_minute", e.RequestsPerMinute))
	case e.Concurrency < 1:
		return goerr.Wrap(model.ErrInvalidConfig, "concurrency must be positive", goerr.V("concurrency", e.Concurrency))
	case e.Concurrency > e.RequestsPerMinute:
		return goerr.Wrap(model.ErrInvalidConfig, "concurrency must not exceed requests per minute",
			goerr.V("concurrency", e.Concurrency), goerr.V("requests_per_minute", e.RequestsPerMinute))
	case e.InitialBackoff < 0 || e.MaxBackoff < e.InitialBackoff:
		return goerr.Wrap(model.ErrInvalidConfig, "invalid backoff range",
			goerr.V("initial_backoff", e.InitialBackoff), goerr.V("max_backoff", e.MaxBackoff))
	}

	d := c.Discovery
	if d.MaxKeywords < 1 || d.SearchResultsPerQuery < 1 {
		return goerr.Wrap(model.ErrInvalidConfig, "discovery limits must be positive",
			goerr.V("max_keywords", d.MaxKeywords), goerr.V("search_results_per_query", d.SearchResultsPerQuery))
	}

	for _, n := range c.Niches {
		if n.Name == "" {
			return goerr.Wrap(model.ErrInvalidConfig, "niche name is required")
		}
	}
	for _, r := range c.Categories {
		if r.Name == "" {
			return goerr.Wrap(model.ErrInvalidConfig, "category name is required")
		}
	}

	return nil
}
