package types

import "fmt"

// SourceType tells where a candidate topic came from
type SourceType string

const (
	SourceSearch      SourceType = "search"
	SourceTrending    SourceType = "trending"
	SourceAIGenerated SourceType = "ai-generated"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceSearch,
		SourceTrending,
		SourceAIGenerated:
		return true
	default:
		return false
	}
}

func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid source type: %s", s)
	}
	return st, nil
}
