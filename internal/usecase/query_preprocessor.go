package usecase

import (
	"regexp"
	"strings"
)

// maxFoodQueryLen caps the query sent to full-text product search
const maxFoodQueryLen = 100

var (
	// Matches size/quantity patterns like "12 fl oz", "355ml", "1.5 liter", "2 lb"
	sizeQuantityPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:fl\s*)?(?:oz|ounces?|lbs?|pounds?|ml|l|liters?|litres?|gallons?|kg|grams?|g|kcal|cal)\b`)

	// Matches pack/count patterns like "12 pack", "pack of 6", "6pk", "24 count", "2 cans"
	packCountPattern = regexp.MustCompile(`\b\d+\s*(?:pack|pk|count|ct|cans?|bottles?|pieces?|slices?)\b|\bpack\s*of\s*\d+\b`)

	// Matches bare numbers left behind, e.g. portion counts
	bareNumberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// queryNoiseWords carry no information for a product database search
var queryNoiseWords = map[string]bool{
	// Marketing terms
	"value":    true,
	"family":   true,
	"bonus":    true,
	"new":      true,
	"improved": true,
	"premium":  true,
	"original": true,
	"classic":  true,

	// Size descriptors
	"size":    true,
	"regular": true,
	"large":   true,
	"medium":  true,
	"small":   true,
	"mini":    true,
	"jumbo":   true,

	// Packaging and serving terms
	"bag":     true,
	"bottle":  true,
	"box":     true,
	"can":     true,
	"cup":     true,
	"glass":   true,
	"jar":     true,
	"pack":    true,
	"piece":   true,
	"serving": true,
	"slice":   true,
	"a":       true,
	"an":      true,
	"of":      true,
}

// FoodSearchQuery strips sizes, pack counts, bare numbers and packaging
// words from a canonical item name so full-text product search matches the
// food itself. Falls back to the input when nothing would remain.
func FoodSearchQuery(itemText string) string {
	cleaned := strings.ToLower(itemText)
	cleaned = sizeQuantityPattern.ReplaceAllString(cleaned, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = bareNumberPattern.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if !queryNoiseWords[w] {
			kept = append(kept, w)
		}
	}
	cleaned = strings.Join(kept, " ")

	if len(cleaned) > maxFoodQueryLen {
		cleaned = cleaned[:maxFoodQueryLen]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxFoodQueryLen/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if cleaned == "" {
		return strings.TrimSpace(itemText)
	}
	return cleaned
}
