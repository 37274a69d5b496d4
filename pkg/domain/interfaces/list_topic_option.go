package interfaces

import (
	"time"

	"github.com/topicscout/topicscout/pkg/domain/model"
)

// ListTopicOption is a functional option for filtering topics in List
type ListTopicOption func(*listTopicConfig)

type listTopicConfig struct {
	minScore      *float64
	category      string
	since         time.Time
	favoritedOnly bool
	limit         int
}

// WithMinScore keeps topics whose total score is at least score
func WithMinScore(score float64) ListTopicOption {
	return func(c *listTopicConfig) {
		c.minScore = &score
	}
}

// WithCategory keeps topics of exactly this category
func WithCategory(category string) ListTopicOption {
	return func(c *listTopicConfig) {
		c.category = category
	}
}

// WithSince keeps topics created at or after since
func WithSince(since time.Time) ListTopicOption {
	return func(c *listTopicConfig) {
		c.since = since.UTC()
	}
}

// WithFavoritedOnly keeps favorited topics only
func WithFavoritedOnly() ListTopicOption {
	return func(c *listTopicConfig) {
		c.favoritedOnly = true
	}
}

// WithLimit caps the number of returned topics. Zero or less means no cap.
func WithLimit(limit int) ListTopicOption {
	return func(c *listTopicConfig) {
		c.limit = limit
	}
}

// BuildListTopicConfig builds a listTopicConfig from options
func BuildListTopicConfig(opts ...ListTopicOption) *listTopicConfig {
	cfg := &listTopicConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// MinScore returns the minimum score filter, or nil if not set
func (c *listTopicConfig) MinScore() *float64 {
	return c.minScore
}

// Category returns the category filter, empty if not set
func (c *listTopicConfig) Category() string {
	return c.category
}

// Since returns the lower time bound, zero if not set
func (c *listTopicConfig) Since() time.Time {
	return c.since
}

// FavoritedOnly reports whether only favorited topics are requested
func (c *listTopicConfig) FavoritedOnly() bool {
	return c.favoritedOnly
}

// Limit returns the result cap, zero if not set
func (c *listTopicConfig) Limit() int {
	return c.limit
}

// Match reports whether topic passes every filter except Limit.
// Backends without native querying filter with it.
func (c *listTopicConfig) Match(topic *model.Topic) bool {
	if c.minScore != nil && topic.TotalScore < *c.minScore {
		return false
	}
	if c.category != "" && topic.Category != c.category {
		return false
	}
	if !c.since.IsZero() && topic.Timestamp.Before(c.since) {
		return false
	}
	if c.favoritedOnly && !topic.Favorited {
		return false
	}
	return true
}

// Apply filters, ranks and truncates topics in place
func (c *listTopicConfig) Apply(topics []*model.Topic) []*model.Topic {
	matched := topics[:0]
	for _, t := range topics {
		if c.Match(t) {
			matched = append(matched, t)
		}
	}
	model.RankTopics(matched)
	if c.limit > 0 && len(matched) > c.limit {
		matched = matched[:c.limit]
	}
	return matched
}
