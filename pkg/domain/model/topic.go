package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

// TopicID is a UUID-based identifier for Topic
type TopicID string

// NewTopicID generates a new UUID v4 TopicID
func NewTopicID() TopicID {
	return TopicID(uuid.New().String())
}

func (id TopicID) String() string {
	return string(id)
}

// DimensionScores are the five AI-assigned quality scores, each 0..100
type DimensionScores struct {
	Importance   int `json:"importance"`
	Watchability int `json:"watchability"`
	Monetization int `json:"monetization"`
	Popularity   int `json:"popularity"`
	Innovation   int `json:"innovation"`
}

// Validate checks every dimension is within 0..100
func (s DimensionScores) Validate() error {
	for name, v := range s.Map() {
		if v < 0 || v > 100 {
			return goerr.New("dimension score out of range",
				goerr.V("dimension", name), goerr.V("score", v))
		}
	}
	return nil
}

// Map returns the scores keyed by dimension name
func (s DimensionScores) Map() map[string]int {
	return map[string]int{
		"importance":   s.Importance,
		"watchability": s.Watchability,
		"monetization": s.Monetization,
		"popularity":   s.Popularity,
		"innovation":   s.Innovation,
	}
}

// Topic is an evaluated and scored candidate persisted by the research store
type Topic struct {
	ID               TopicID
	Title            string
	Scores           DimensionScores
	TotalScore       float64
	Category         string
	Keywords         []string
	RecommendedAngle string
	CompetitionLevel types.CompetitionLevel
	Notes            string
	AIAnalysis       string
	Source           types.SourceType
	SessionID        SessionID
	Timestamp        time.Time
	Favorited        bool
}

// Validate checks the invariants a stored topic must satisfy
func (t *Topic) Validate() error {
	if t.Title == "" {
		return goerr.New("topic title is required")
	}
	if err := t.Scores.Validate(); err != nil {
		return goerr.Wrap(err, "invalid topic scores", goerr.V(TitleKey, t.Title))
	}
	if t.TotalScore < 0 || t.TotalScore > 100 {
		return goerr.New("total score out of range",
			goerr.V(TitleKey, t.Title), goerr.V("total_score", t.TotalScore))
	}
	return nil
}

// Copy returns a deep copy of the topic
func (t *Topic) Copy() *Topic {
	if t == nil {
		return nil
	}
	c := *t
	c.Keywords = slices.Clone(t.Keywords)
	return &c
}

// RankTopics orders topics by total score descending, newest first on ties.
func RankTopics(topics []*Topic) {
	slices.SortStableFunc(topics, func(a, b *Topic) int {
		switch {
		case a.TotalScore > b.TotalScore:
			return -1
		case a.TotalScore < b.TotalScore:
			return 1
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
}
