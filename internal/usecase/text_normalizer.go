package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	stopWordRegex        = regexp.MustCompile(`\b(combo|meal|with)\b`)
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	nonWordRegex         = regexp.MustCompile(`\W+`)
)

// Canonicalize normalizes a food name for lookup and comparison.
// Lowercases, drops the stop words "combo", "meal" and "with",
// replaces punctuation with spaces and collapses whitespace.
func Canonicalize(name string) string {
	result := strings.ToLower(name)
	result = stopWordRegex.ReplaceAllString(result, "")
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Similarity returns the token overlap of a and b: the number of shared
// tokens divided by the size of the larger token set. 0 when either side
// has no tokens.
func Similarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	shared := 0
	for t := range tokensA {
		if tokensB[t] {
			shared++
		}
	}

	return float64(shared) / float64(max(len(tokensA), len(tokensB)))
}

// tokenSet splits s on non-word runs into a set of lowercase tokens
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range nonWordRegex.Split(strings.ToLower(s), -1) {
		if t != "" {
			set[t] = true
		}
	}
	return set
}
