package model

import (
	"strings"
	"unicode"

	"github.com/topicscout/topicscout/pkg/domain/types"
)

// Candidate is a proposed topic before evaluation. Never persisted.
type Candidate struct {
	Title         string
	Description   string
	SourceType    types.SourceType
	RawKeywords   []string
	OriginVideoID string
	Query         string
}

// NormalizeTitle returns the deduplication key of a title: lower-cased,
// punctuation and symbols dropped, whitespace collapsed.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsControl(r):
			continue
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
