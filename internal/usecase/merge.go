package usecase

import "github.com/platewise/backend/internal/domain"

// Single-meal plausibility ranges applied to every response
var (
	caloriesRange = Band{Min: 100, Max: 1100}
	proteinRange  = Band{Min: 5, Max: 60}
	carbsRange    = Band{Min: 5, Max: 150}
	fatRange      = Band{Min: 5, Max: 60}
	sodiumRange   = Band{Min: 0, Max: 2000}
	fiberRange    = Band{Min: 0, Max: 20}
)

// Merge combines verified macros with model estimates. A non-zero verified
// macro always wins; micronutrients come from the estimate only.
func Merge(verified domain.VerifiedAggregate, estimate domain.NutrientProfile) domain.NutrientProfile {
	merged := estimate

	merged.Calories = preferVerified(verified.Calories, estimate.Calories)
	merged.Protein = preferVerified(verified.Protein, estimate.Protein)
	merged.Carbs = preferVerified(verified.Carbs, estimate.Carbs)
	merged.Fat = preferVerified(verified.Fat, estimate.Fat)
	merged.Sodium = preferVerified(verified.Sodium, estimate.Sodium)
	merged.Fiber = preferVerified(verified.Fiber, estimate.Fiber)

	return merged
}

func preferVerified(verified, estimated int) int {
	if verified != 0 {
		return verified
	}
	return estimated
}

// Clamp forces macros into their plausible ranges, then floors every
// micronutrient at zero.
func Clamp(p domain.NutrientProfile) domain.NutrientProfile {
	p.Calories = clampTo(p.Calories, caloriesRange)
	p.Protein = clampTo(p.Protein, proteinRange)
	p.Carbs = clampTo(p.Carbs, carbsRange)
	p.Fat = clampTo(p.Fat, fatRange)
	p.Sodium = clampTo(p.Sodium, sodiumRange)
	p.Fiber = clampTo(p.Fiber, fiberRange)

	for _, v := range []*int{
		&p.VitaminA, &p.VitaminC, &p.VitaminD, &p.VitaminE, &p.VitaminK, &p.VitaminB12,
		&p.Iron, &p.Calcium, &p.Magnesium, &p.Zinc,
		&p.Water, &p.Potassium, &p.Chloride,
	} {
		*v = max(*v, 0)
	}

	return p
}

func clampTo(v int, b Band) int {
	return min(max(v, b.Min), b.Max)
}
