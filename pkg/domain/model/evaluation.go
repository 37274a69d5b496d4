package model

import "github.com/topicscout/topicscout/pkg/domain/types"

// Evaluation is a successfully parsed AI assessment of one candidate
type Evaluation struct {
	Scores           DimensionScores
	RecommendedAngle string
	Keywords         []string
	CompetitionLevel types.CompetitionLevel
	Category         string
	Notes            string
	RawResponse      string
	Attempts         int
}
