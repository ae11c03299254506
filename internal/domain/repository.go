package domain

import (
	"context"
)

// ResultCache stores finished profiles keyed by request fingerprint
type ResultCache interface {
	Get(ctx context.Context, key string) (*NutrientProfile, error)
	Set(ctx context.Context, key string, value NutrientProfile) error
}

// BrandedCandidate is one hit from a branded-product instant search
type BrandedCandidate struct {
	ID        string `json:"nix_item_id"`
	BrandName string `json:"brand_name,omitempty"`
	FoodName  string `json:"food_name,omitempty"`
}

// BrandedCatalog searches branded products and fetches their nutrient detail
type BrandedCatalog interface {
	InstantSearch(ctx context.Context, query string) ([]BrandedCandidate, error)
	ItemDetail(ctx context.Context, id string) (*Macros, error)
}

// NaturalNutrientSource estimates nutrients from a natural-language food phrase
type NaturalNutrientSource interface {
	NaturalNutrients(ctx context.Context, query string) (*Macros, error)
}

// FoodDatabase searches a generic food database
type FoodDatabase interface {
	SearchFood(ctx context.Context, query string) (*Macros, error)
}

// Identifier turns a meal description and/or photo into candidate items
type Identifier interface {
	Identify(ctx context.Context, req MealRequest) ([]CandidateItem, error)
}

// MicronutrientEstimator fills the full nutrient set with model estimates,
// treating verified macros as fixed.
type MicronutrientEstimator interface {
	EstimateNutrients(ctx context.Context, verified VerifiedAggregate, foods []string) (NutrientProfile, error)
}
