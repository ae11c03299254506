package usecase

import "github.com/platewise/backend/internal/domain"

// duplicateThreshold is the similarity above which two items are the same food
const duplicateThreshold = 0.8

// Dedupe drops items whose canonical name is a near-duplicate of an
// earlier kept item. The first item of each cluster wins and input order
// is preserved.
func Dedupe(items []domain.CandidateItem) []domain.CandidateItem {
	kept := make([]domain.CandidateItem, 0, len(items))
	keptNames := make([]string, 0, len(items))

	for _, item := range items {
		name := Canonicalize(item.Name)

		duplicate := false
		for _, other := range keptNames {
			if Similarity(name, other) > duplicateThreshold {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, item)
			keptNames = append(keptNames, name)
		}
	}

	return kept
}
