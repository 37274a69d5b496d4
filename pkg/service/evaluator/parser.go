package evaluator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/topicscout/topicscout/pkg/domain/model"
	"github.com/topicscout/topicscout/pkg/domain/types"
)

// ParseError describes why an AI response could not be turned into an
// evaluation. It unwraps to model.ErrMalformedResponse.
type ParseError struct {
	Missing []string
	Invalid []string
}

func (e *ParseError) Error() string {
	return "malformed AI response: " + strings.Join(e.Problems(), "; ")
}

func (e *ParseError) Unwrap() error {
	return model.ErrMalformedResponse
}

// Problems lists every missing or invalid field in a form suitable for a
// clarifying prompt.
func (e *ParseError) Problems() []string {
	var out []string
	for _, m := range e.Missing {
		out = append(out, "missing "+m)
	}
	out = append(out, e.Invalid...)
	return out
}

type scoreField struct {
	label string
	re    *regexp.Regexp
	set   func(s *model.DimensionScores, v int)
}

// Labels may be wrapped in markdown emphasis: "**IMPORTANCE:** 85/100".
func scorePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `(?:\s+score)?[\s*_]*:[\s*_]*(-?\d+(?:\.\d+)?)`)
}

func textPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[\s>*_#-]*` + label + `[\s*_]*:[\s*_]*(.*)$`)
}

var (
	scoreFields = []scoreField{
		{label: "IMPORTANCE", re: scorePattern("IMPORTANCE"), set: func(s *model.DimensionScores, v int) { s.Importance = v }},
		{label: "WATCHABILITY", re: scorePattern("WATCHABILITY"), set: func(s *model.DimensionScores, v int) { s.Watchability = v }},
		{label: "MONETIZATION", re: scorePattern("MONETIZATION"), set: func(s *model.DimensionScores, v int) { s.Monetization = v }},
		{label: "POPULARITY", re: scorePattern("POPULARITY"), set: func(s *model.DimensionScores, v int) { s.Popularity = v }},
		{label: "INNOVATION", re: scorePattern("INNOVATION"), set: func(s *model.DimensionScores, v int) { s.Innovation = v }},
	}

	angleRe       = textPattern(`RECOMMENDED\s+ANGLE`)
	keywordsRe    = textPattern(`KEYWORDS`)
	competitionRe = textPattern(`COMPETITION(?:\s+LEVEL)?`)
	categoryRe    = textPattern(`CATEGORY`)
	notesRe       = regexp.MustCompile(`(?is)(?:^|\n)[\s>*_#-]*NOTES[\s*_]*:[\s*_]*(.*?)(?:\n\s*\n|$)`)

	ideaPrefixRe = regexp.MustCompile(`^\s*(?:\d{1,3}[\.\)]|[-*•])\s*`)
)

// ParseEvaluation extracts the labeled fields of an evaluation reply. All
// five scores are required and must be whole numbers within 0..100; the
// remaining fields are optional.
func ParseEvaluation(text string) (*model.Evaluation, error) {
	var (
		scores model.DimensionScores
		perr   ParseError
	)

	for _, f := range scoreFields {
		m := f.re.FindStringSubmatch(text)
		if m == nil {
			perr.Missing = append(perr.Missing, f.label)
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v != math.Trunc(v) || v < 0 || v > 100 {
			perr.Invalid = append(perr.Invalid, fmt.Sprintf("%s must be a whole number between 0 and 100, got %q", f.label, m[1]))
			continue
		}
		f.set(&scores, int(v))
	}

	if len(perr.Missing) > 0 || len(perr.Invalid) > 0 {
		return nil, &perr
	}

	return &model.Evaluation{
		Scores:           scores,
		RecommendedAngle: cleanText(firstMatch(angleRe, text)),
		Keywords:         splitKeywords(firstMatch(keywordsRe, text)),
		CompetitionLevel: types.ParseCompetitionLevel(firstMatch(competitionRe, text)),
		Category:         cleanCategory(firstMatch(categoryRe, text)),
		Notes:            cleanText(firstMatch(notesRe, text)),
		RawResponse:      text,
	}, nil
}

// ParseTopicIdeas reads one idea per line. Numbering and bullets are
// stripped; preamble lines ending with a colon and lines of 10 characters
// or less are dropped. Duplicates are removed and at most limit ideas are
// returned.
func ParseTopicIdeas(text string, limit int) []string {
	var ideas []string
	seen := map[string]struct{}{}

	for _, line := range strings.Split(text, "\n") {
		line = ideaPrefixRe.ReplaceAllString(line, "")
		line = cleanText(line)
		if utf8.RuneCountInString(line) <= 10 || strings.HasSuffix(line, ":") {
			continue
		}

		key := model.NormalizeTitle(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		ideas = append(ideas, line)
		if limit > 0 && len(ideas) >= limit {
			break
		}
	}
	return ideas
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// cleanText trims whitespace, markdown emphasis and wrapping quotes or brackets.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.Trim(s, "*_`\"'"))
		if len(trimmed) >= 2 && trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']' {
			trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func cleanCategory(s string) string {
	s = cleanText(s)
	// "Tutorial - step by step" keeps only the category name
	if i := strings.IndexAny(s, "(-–|/"); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	return strings.TrimRight(s, ".")
}

func splitKeywords(s string) []string {
	s = cleanText(s)
	if s == "" {
		return nil
	}

	var keywords []string
	seen := map[string]struct{}{}
	for _, kw := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		kw = strings.TrimLeft(cleanText(kw), "#")
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, kw)
	}
	return keywords
}
