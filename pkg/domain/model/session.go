package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

// SessionID is a UUID-based identifier for ResearchSession
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func (id SessionID) String() string {
	return string(id)
}

// ResearchSession records one orchestration run
type ResearchSession struct {
	ID                 SessionID
	Status             types.SessionStatus
	Keywords           []string
	StartedAt          time.Time
	CompletedAt        time.Time
	TopicsResearched   int
	HighQualityCount   int
	SkippedCount       int
	FailedCount        int
	VideosAnalyzed     int
	CompetitorsChecked int
	DurationSeconds    float64
	Error              string
}

// Copy returns a deep copy of the session
func (s *ResearchSession) Copy() *ResearchSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Keywords = slices.Clone(s.Keywords)
	return &c
}
