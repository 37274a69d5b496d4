package types

import "strings"

// CompetitionLevel is the AI-estimated saturation of a topic
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "Low"
	CompetitionMedium CompetitionLevel = "Medium"
	CompetitionHigh   CompetitionLevel = "High"
)

// AllCompetitionLevels returns all valid competition levels
func AllCompetitionLevels() []CompetitionLevel {
	return []CompetitionLevel{
		CompetitionLow,
		CompetitionMedium,
		CompetitionHigh,
	}
}

// IsValid checks if the competition level is valid
func (l CompetitionLevel) IsValid() bool {
	switch l {
	case CompetitionLow,
		CompetitionMedium,
		CompetitionHigh:
		return true
	default:
		return false
	}
}

func (l CompetitionLevel) String() string {
	return string(l)
}

// ParseCompetitionLevel reads a level case-insensitively. Anything
// unrecognised is treated as CompetitionMedium.
func ParseCompetitionLevel(s string) CompetitionLevel {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "*_.`"))
	switch {
	case strings.HasPrefix(s, "low"):
		return CompetitionLow
	case strings.HasPrefix(s, "high"):
		return CompetitionHigh
	default:
		return CompetitionMedium
	}
}
