package relevance

import (
	"strings"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

// Filter decides whether a candidate is worth evaluating for a channel.
// It is pure and safe for concurrent use.
type Filter struct {
	blacklist []string
	whitelist []string
}

func New(rules config.FilterRules) *Filter {
	return &Filter{
		blacklist: normalizeTerms(rules.Blacklist),
		whitelist: normalizeTerms(rules.Whitelist),
	}
}

// IsRelevant rejects any blacklist hit, then accepts a whitelist hit.
// Blacklist terms must stand as words, so "ft." does not hit "Microsoft.".
// AI-generated candidates skip the whitelist because they were produced for
// the channel already.
func (f *Filter) IsRelevant(c model.Candidate, _ model.ChannelContext) bool {
	text := strings.ToLower(c.Title + " " + c.Description)

	for _, term := range f.blacklist {
		if ContainsWord(text, term) {
			return false
		}
	}

	if c.SourceType == types.SourceAIGenerated {
		return true
	}

	for _, term := range f.whitelist {
		if MatchTerm(text, term) {
			return true
		}
	}
	return false
}

// BlacklistHit returns the first blacklist term found in the candidate, if any.
func (f *Filter) BlacklistHit(c model.Candidate) (string, bool) {
	text := strings.ToLower(c.Title + " " + c.Description)
	for _, term := range f.blacklist {
		if ContainsWord(text, term) {
			return term, true
		}
	}
	return "", false
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
