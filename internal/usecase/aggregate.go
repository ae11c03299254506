package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/platewise/backend/internal/domain"
)

// defaultItemConcurrency bounds parallel per-item resolution
const defaultItemConcurrency = 4

// Resolver resolves one canonical item name to verified macros
type Resolver interface {
	Resolve(ctx context.Context, itemText string) (*domain.ResolvedNutrients, error)
}

// ItemResult records how one deduplicated item contributed to the aggregate
type ItemResult struct {
	Item         domain.CandidateItem
	Query        string
	Multiplier   float64
	Resolved     *domain.ResolvedNutrients
	Contribution domain.Macros
	Err          error
}

// Aggregation is the verified total across all items plus coverage accounting
type Aggregation struct {
	Verified domain.VerifiedAggregate
	Coverage domain.CoverageState
	Items    []ItemResult
	FoodList []string
}

// Aggregate resolves every item (in parallel, at most concurrency at a time),
// scales each result by its portion multiplier and sums them in input order.
// Items without a source contribute zero. Only a missing-credentials failure
// is returned as an error.
func Aggregate(
	ctx context.Context,
	resolver Resolver,
	items []domain.CandidateItem,
	concurrency int,
) (*Aggregation, error) {
	if concurrency <= 0 {
		concurrency = defaultItemConcurrency
	}

	results := make([]ItemResult, len(items))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, item := range items {
		g.Go(func() error {
			res := ItemResult{
				Item:       item,
				Query:      Canonicalize(item.Name),
				Multiplier: PortionMultiplier(item.PortionText),
			}
			res.Resolved, res.Err = resolver.Resolve(ctx, res.Query)
			if res.Resolved != nil {
				res.Contribution = res.Resolved.Macros.Scale(res.Multiplier)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	agg := &Aggregation{
		Items:    results,
		Coverage: domain.CoverageState{TotalItems: len(items)},
		FoodList: make([]string, 0, len(items)),
	}

	for _, res := range results {
		if res.Err != nil && errors.Is(res.Err, domain.ErrMissingCredentials) {
			return nil, res.Err
		}

		agg.FoodList = append(agg.FoodList, strings.TrimSpace(res.Item.PortionText+" "+res.Query))

		if res.Resolved == nil {
			continue
		}
		agg.Verified = agg.Verified.Add(res.Contribution)
		if res.Resolved.Source.IsBranded() {
			agg.Coverage.BrandedHits++
		}
	}

	return agg, nil
}

// Band is an inclusive numeric range
type Band struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// Contains reports whether v lies within the band
func (b Band) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// GateConfig holds the thresholds that decide whether verified data can
// stand alone without model estimation
type GateConfig struct {
	MinBrandedCoverage float64 `mapstructure:"min_branded_coverage"`
	Calories           Band    `mapstructure:"calories"`
	Protein            Band    `mapstructure:"protein"`
	Carbs              Band    `mapstructure:"carbs"`
	Fat                Band    `mapstructure:"fat"`
}

// DefaultGateConfig returns the empirically chosen production thresholds
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinBrandedCoverage: 0.5,
		Calories:           Band{Min: 200, Max: 1200},
		Protein:            Band{Min: 5, Max: 60},
		Carbs:              Band{Min: 5, Max: 160},
		Fat:                Band{Min: 5, Max: 70},
	}
}

// Gate is the coverage/plausibility predicate
type Gate struct {
	cfg GateConfig
}

// NewGate creates a gate; a zero config falls back to the defaults
func NewGate(cfg GateConfig) Gate {
	if cfg == (GateConfig{}) {
		cfg = DefaultGateConfig()
	}
	return Gate{cfg: cfg}
}

// Passes reports whether the verified aggregate is trustworthy on its own
func (g Gate) Passes(verified domain.VerifiedAggregate, coverage domain.CoverageState) bool {
	return coverage.Ratio() >= g.cfg.MinBrandedCoverage &&
		g.cfg.Calories.Contains(verified.Calories) &&
		g.cfg.Protein.Contains(verified.Protein) &&
		g.cfg.Carbs.Contains(verified.Carbs) &&
		g.cfg.Fat.Contains(verified.Fat)
}
