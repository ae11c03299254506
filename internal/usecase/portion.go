package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Qualitative portion multipliers
const (
	largePortion  = 1.3
	mediumPortion = 1.0
	smallPortion  = 0.8
)

var (
	// Matches an explicit count such as "3x", "x 3", "x3" or a bare "2"
	portionCountRegex = regexp.MustCompile(`(?:^|\s)(x?\s*\d+|\d+\s*x)(?:\b|$)`)
	nonDigitRegex     = regexp.MustCompile(`[^\d]`)

	largeRegex  = regexp.MustCompile(`(?i)\blarge\b`)
	mediumRegex = regexp.MustCompile(`(?i)\bmedium\b`)
	smallRegex  = regexp.MustCompile(`(?i)\bsmall\b`)
)

// PortionMultiplier converts free-text portion wording into a serving
// multiplier. An explicit count strictly between 0 and 10 wins; otherwise
// large/medium/small map to 1.3/1.0/0.8. Anything else is 1.
func PortionMultiplier(portionText string) float64 {
	if strings.TrimSpace(portionText) == "" {
		return 1
	}

	// Only the first count-like match is considered
	if m := portionCountRegex.FindString(strings.ToLower(portionText)); m != "" {
		if n, err := strconv.Atoi(nonDigitRegex.ReplaceAllString(m, "")); err == nil && n > 0 && n < 10 {
			return float64(n)
		}
	}

	switch {
	case largeRegex.MatchString(portionText):
		return largePortion
	case mediumRegex.MatchString(portionText):
		return mediumPortion
	case smallRegex.MatchString(portionText):
		return smallPortion
	}

	return 1
}
