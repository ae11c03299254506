package usecase

import (
	"context"
	"sync"

	"github.com/platewise/backend/internal/domain"
)

// fakeIdentifier returns fixed items and counts calls
type fakeIdentifier struct {
	mu    sync.Mutex
	items []domain.CandidateItem
	err   error
	calls int
}

func (f *fakeIdentifier) Identify(ctx context.Context, req domain.MealRequest) ([]domain.CandidateItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.items, f.err
}

// fakeResolver maps canonical queries to results; unknown queries are not found
type fakeResolver struct {
	mu      sync.Mutex
	results map[string]*domain.ResolvedNutrients
	errs    map[string]error
	queries []string
}

func (f *fakeResolver) Resolve(ctx context.Context, itemText string) (*domain.ResolvedNutrients, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, itemText)
	if err := ctx.Err(); err != nil {
		return nil, domain.NewFetchError(domain.SourceNutritionixBranded, "instant search", err)
	}
	if err, ok := f.errs[itemText]; ok {
		return nil, err
	}
	if r, ok := f.results[itemText]; ok {
		return r, nil
	}
	return nil, domain.NewFetchError(domain.SourceNutritionixBranded, "instant search", domain.ErrNotFound)
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// fakeEstimator returns a fixed profile and records what it was asked
type fakeEstimator struct {
	mu       sync.Mutex
	profile  domain.NutrientProfile
	err      error
	calls    int
	verified domain.VerifiedAggregate
	foods    []string
}

func (f *fakeEstimator) EstimateNutrients(ctx context.Context, verified domain.VerifiedAggregate, foods []string) (domain.NutrientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.verified = verified
	f.foods = foods
	if err := ctx.Err(); err != nil {
		return domain.NutrientProfile{}, err
	}
	return f.profile, f.err
}

// fakeCache is an unbounded map cache
type fakeCache struct {
	mu     sync.Mutex
	data   map[string]domain.NutrientProfile
	setErr error
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]domain.NutrientProfile)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (*domain.NutrientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if v, ok := f.data[key]; ok {
		return &v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (f *fakeCache) Set(ctx context.Context, key string, value domain.NutrientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func branded(m domain.Macros) *domain.ResolvedNutrients {
	return &domain.ResolvedNutrients{Source: domain.SourceNutritionixBranded, Macros: m}
}

func natural(m domain.Macros) *domain.ResolvedNutrients {
	return &domain.ResolvedNutrients{Source: domain.SourceNutritionixNatural, Macros: m}
}
