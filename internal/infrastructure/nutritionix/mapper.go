package nutritionix

import (
	"github.com/platewise/backend/internal/domain"
)

type instantResponse struct {
	Branded []brandedHit `json:"branded"`
}

type brandedHit struct {
	NixItemID string `json:"nix_item_id"`
	BrandName string `json:"brand_name"`
	FoodName  string `json:"food_name"`
}

type foodsResponse struct {
	Foods []Food `json:"foods"`
}

// Food is the nutrient block shared by /search/item and /natural/nutrients.
// Values stay untyped because the API sends null for unknown nutrients.
type Food struct {
	FoodName     string `json:"food_name"`
	BrandName    string `json:"brand_name"`
	Calories     any    `json:"nf_calories"`
	Protein      any    `json:"nf_protein"`
	Carbohydrate any    `json:"nf_total_carbohydrate"`
	TotalFat     any    `json:"nf_total_fat"`
	Sodium       any    `json:"nf_sodium"`
	DietaryFiber any    `json:"nf_dietary_fiber"`
}

// MapToMacros converts a Nutritionix food to domain macros.
// Null, missing or non-finite values become 0.
func MapToMacros(f Food) domain.Macros {
	return domain.Macros{
		Calories: domain.SafeAmount(f.Calories),
		Protein:  domain.SafeAmount(f.Protein),
		Carbs:    domain.SafeAmount(f.Carbohydrate),
		Fat:      domain.SafeAmount(f.TotalFat),
		Sodium:   domain.SafeAmount(f.Sodium),
		Fiber:    domain.SafeAmount(f.DietaryFiber),
	}
}

func mapBrandedCandidates(hits []brandedHit) []domain.BrandedCandidate {
	out := make([]domain.BrandedCandidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.BrandedCandidate{
			ID:        h.NixItemID,
			BrandName: h.BrandName,
			FoodName:  h.FoodName,
		})
	}
	return out
}
