package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/platewise/backend/internal/domain"
)

var errTierNotConfigured = errors.New("lookup service not configured")

// SourceResolver looks up verified macros for one canonical item name.
// Priority: branded catalog, then natural-language nutrients and the
// generic food database queried concurrently.
type SourceResolver struct {
	branded domain.BrandedCatalog
	natural domain.NaturalNutrientSource
	foodDB  domain.FoodDatabase
	logger  *zap.Logger
}

// NewSourceResolver creates a resolver over the three lookup services.
// Any of them may be nil, in which case that tier always fails.
func NewSourceResolver(
	branded domain.BrandedCatalog,
	natural domain.NaturalNutrientSource,
	foodDB domain.FoodDatabase,
	logger *zap.Logger,
) *SourceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceResolver{
		branded: branded,
		natural: natural,
		foodDB:  foodDB,
		logger:  logger.Named("resolver"),
	}
}

// Resolve returns the first usable nutrient record for itemText, tagged with
// its source. When no tier matches it returns nil and the joined tier
// failures; callers treat that as a zero contribution. A missing-credentials
// failure is returned immediately.
func (r *SourceResolver) Resolve(ctx context.Context, itemText string) (*domain.ResolvedNutrients, error) {
	if strings.TrimSpace(itemText) == "" {
		return nil, domain.ErrEmptyQuery
	}

	resolved, brandedErr := r.resolveBranded(ctx, itemText)
	if brandedErr == nil {
		r.logger.Debug("item resolved", zap.String("item", itemText), zap.Stringer("source", resolved.Source))
		return resolved, nil
	}
	if errors.Is(brandedErr, domain.ErrMissingCredentials) {
		return nil, brandedErr
	}

	resolved, genericErr := r.resolveGeneric(ctx, itemText)
	if genericErr == nil {
		r.logger.Debug("item resolved", zap.String("item", itemText), zap.Stringer("source", resolved.Source))
		return resolved, nil
	}
	if errors.Is(genericErr, domain.ErrMissingCredentials) {
		return nil, genericErr
	}

	r.logger.Debug("no nutrient source matched", zap.String("item", itemText), zap.Error(genericErr))
	return nil, errors.Join(brandedErr, genericErr)
}

// resolveBranded ranks instant-search hits by name similarity and fetches
// the top scorer's detail.
func (r *SourceResolver) resolveBranded(ctx context.Context, itemText string) (*domain.ResolvedNutrients, error) {
	const source = domain.SourceNutritionixBranded

	if r.branded == nil {
		return nil, domain.NewFetchError(source, "instant search", errTierNotConfigured)
	}

	candidates, err := r.branded.InstantSearch(ctx, itemText)
	if err != nil {
		return nil, domain.NewFetchError(source, "instant search", err)
	}
	if len(candidates) == 0 {
		return nil, domain.NewFetchError(source, "instant search", domain.ErrNotFound)
	}

	best := rankBranded(itemText, candidates)[0]
	if best.ID == "" {
		return nil, domain.NewFetchError(source, "item detail", domain.ErrNotFound)
	}

	macros, err := r.branded.ItemDetail(ctx, best.ID)
	if err != nil {
		return nil, domain.NewFetchError(source, "item detail", err)
	}
	if macros == nil {
		return nil, domain.NewFetchError(source, "item detail", domain.ErrNotFound)
	}

	return &domain.ResolvedNutrients{Source: source, Macros: *macros}, nil
}

// rankBranded orders candidates by similarity to itemText, best first.
// Ties keep the search service's order.
func rankBranded(itemText string, candidates []domain.BrandedCandidate) []domain.BrandedCandidate {
	type scored struct {
		candidate domain.BrandedCandidate
		score     float64
	}

	list := make([]scored, len(candidates))
	for i, c := range candidates {
		list[i] = scored{candidate: c, score: Similarity(itemText, c.BrandName+" "+c.FoodName)}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	ranked := make([]domain.BrandedCandidate, len(list))
	for i, s := range list {
		ranked[i] = s.candidate
	}
	return ranked
}

// resolveGeneric runs the natural-language and food-database lookups
// concurrently and prefers the natural-language result. The food database
// gets the item with sizes and packaging words stripped.
func (r *SourceResolver) resolveGeneric(ctx context.Context, itemText string) (*domain.ResolvedNutrients, error) {
	var (
		natural, food       *domain.Macros
		naturalErr, foodErr error
		g                   errgroup.Group
	)

	g.Go(func() error {
		if r.natural == nil {
			naturalErr = errTierNotConfigured
			return nil
		}
		natural, naturalErr = r.natural.NaturalNutrients(ctx, itemText)
		return nil
	})
	g.Go(func() error {
		if r.foodDB == nil {
			foodErr = errTierNotConfigured
			return nil
		}
		food, foodErr = r.foodDB.SearchFood(ctx, FoodSearchQuery(itemText))
		return nil
	})
	_ = g.Wait()

	if naturalErr == nil && natural != nil {
		return &domain.ResolvedNutrients{Source: domain.SourceNutritionixNatural, Macros: *natural}, nil
	}
	if foodErr == nil && food != nil {
		return &domain.ResolvedNutrients{Source: domain.SourceOpenFoodFacts, Macros: *food}, nil
	}

	if naturalErr == nil {
		naturalErr = domain.ErrNotFound
	}
	if foodErr == nil {
		foodErr = domain.ErrNotFound
	}
	return nil, errors.Join(
		domain.NewFetchError(domain.SourceNutritionixNatural, "natural nutrients", naturalErr),
		domain.NewFetchError(domain.SourceOpenFoodFacts, "food search", foodErr),
	)
}
