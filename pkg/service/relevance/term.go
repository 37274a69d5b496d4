package relevance

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ShortTermLen is the length up to which MatchTerm requires a whole word,
// so "ai" does not match "said".
const ShortTermLen = 3

// MatchTerm reports whether the lower-cased text contains term. Short terms
// must stand as words; longer ones may be part of a word ("tech" matches
// "technology").
func MatchTerm(text, term string) bool {
	if term == "" {
		return false
	}
	if utf8.RuneCountInString(term) <= ShortTermLen {
		return ContainsWord(text, term)
	}
	return strings.Contains(text, term)
}

// ContainsWord reports whether term occurs in text without being glued to
// neighbouring letters or digits. Edges of term that are punctuation, like
// the dot of "ft." or the parenthesis of "(official", need no boundary.
func ContainsWord(text, term string) bool {
	if term == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	needBefore := isWordRune(first)
	needAfter := isWordRune(last)

	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		okBefore := !needBefore || start == 0 || !isWordRune(before)
		okAfter := !needAfter || end == len(text) || !isWordRune(after)
		if okBefore && okAfter {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
