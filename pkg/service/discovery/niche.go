package discovery

import (
	"sort"
	"strings"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/model/config"
	"github.com/topicscout/topicscout/pkg/service/relevance"
)

// DetectNiche returns the first niche whose markers appear in the themes,
// or config.GeneralNiche. Short markers such as "ai" must be whole words.
func DetectNiche(themes []string, niches []config.Niche) string {
	text := strings.ToLower(strings.Join(themes, " "))
	if text == "" {
		return config.GeneralNiche
	}
	for _, n := range niches {
		for _, m := range n.Markers {
			if relevance.MatchTerm(text, strings.ToLower(strings.TrimSpace(m))) {
				return n.Name
			}
		}
	}
	return config.GeneralNiche
}

// NicheVariants qualifies keyword with up to limit niche qualifiers, e.g.
// "docker" becomes "docker tech" and "docker programming".
func NicheVariants(keyword, niche string, niches []config.Niche, limit int) []string {
	if limit <= 0 {
		return nil
	}
	for _, n := range niches {
		if !strings.EqualFold(n.Name, niche) {
			continue
		}
		var out []string
		for _, v := range n.Variants {
			if len(out) == limit {
				break
			}
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, keyword+" "+v)
			}
		}
		return out
	}
	return nil
}

// ExtractThemes ranks recurring words of video titles and tags. Title words
// longer than three characters count twice, tags once. Ties keep first-seen
// order.
func ExtractThemes(videos []model.VideoSummary, limit int) []string {
	weights := map[string]int{}
	var order []string
	add := func(word string, w int) {
		if _, ok := weights[word]; !ok {
			order = append(order, word)
		}
		weights[word] += w
	}

	for _, v := range videos {
		for _, word := range strings.Fields(strings.ToLower(v.Title)) {
			word = strings.Trim(word, ".,:;!?\"'()[]|")
			if len([]rune(word)) > 3 {
				add(word, 2)
			}
		}
		for _, tag := range v.Tags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				add(tag, 1)
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// Categorize picks the first category whose markers appear in the title,
// or config.GeneralCategory.
func Categorize(title string, rules []config.CategoryRule) string {
	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, m := range r.Markers {
			if relevance.MatchTerm(lower, strings.ToLower(strings.TrimSpace(m))) {
				return r.Name
			}
		}
	}
	return config.GeneralCategory
}
