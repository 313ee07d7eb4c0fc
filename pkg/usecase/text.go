package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// truncateRunes cuts s to at most n runes. n <= 0 means no limit.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// truncateLines cuts s to at most n runes without splitting a line
func truncateLines(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	cut := truncateRunes(s, n)
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i+1]
	}
	return cut
}

// normalizeName folds width variants, case and whitespace so that names can be
// compared as plain substrings
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
}

// nameWords splits a normalized name into words, dropping punctuation
func nameWords(s string) []string {
	return strings.FieldsFunc(normalizeName(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// containsAllWords reports whether every word of sub appears in words
func containsAllWords(words, sub []string) bool {
	if len(sub) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, w := range sub {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
