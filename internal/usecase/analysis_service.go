package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	Gate            GateConfig
	ItemConcurrency int
}

// AnalysisService turns a meal description into a bounded nutrient profile
type AnalysisService struct {
	identifier      domain.Identifier
	resolver        Resolver
	estimator       domain.MicronutrientEstimator
	cache           domain.ResultCache
	gate            Gate
	itemConcurrency int
	logger          *zap.Logger
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	identifier domain.Identifier,
	resolver Resolver,
	estimator domain.MicronutrientEstimator,
	cache domain.ResultCache,
	config AnalysisServiceConfig,
	logger *zap.Logger,
) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := config.ItemConcurrency
	if concurrency <= 0 {
		concurrency = defaultItemConcurrency
	}

	return &AnalysisService{
		identifier:      identifier,
		resolver:        resolver,
		estimator:       estimator,
		cache:           cache,
		gate:            NewGate(config.Gate),
		itemConcurrency: concurrency,
		logger:          logger.Named("analysis"),
	}
}

// Analyze runs the full pipeline for one meal.
// Flow: cache -> identify -> dedupe -> resolve per item -> gate -> (estimate) -> merge -> clamp -> cache
func (s *AnalysisService) Analyze(ctx context.Context, req *domain.MealRequest) (*domain.NutrientProfile, error) {
	if req == nil || (strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.PhotoRef) == "") {
		return nil, domain.ErrInvalidRequest
	}

	key := Fingerprint(*req)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			s.logger.Debug("cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	items, err := s.identify(ctx, *req)
	if err != nil {
		return nil, err
	}
	items = Dedupe(items)

	agg, err := Aggregate(ctx, s.resolver, items, s.itemConcurrency)
	if err != nil {
		return nil, err
	}
	// a cancelled request leaves every tier unresolved; never degrade that
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var profile domain.NutrientProfile
	if !req.ForceMicros && s.gate.Passes(agg.Verified, agg.Coverage) {
		s.logger.Debug("verified data passed gate, skipping estimation",
			zap.Int("branded_hits", agg.Coverage.BrandedHits),
			zap.Int("total_items", agg.Coverage.TotalItems))
		profile = domain.ProfileFromMacros(agg.Verified)
	} else {
		estimate, err := s.estimate(ctx, agg)
		if err != nil {
			return nil, err
		}
		profile = Merge(agg.Verified, estimate)
	}

	profile = Clamp(profile)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile); err != nil {
			s.logger.Warn("failed to cache profile", zap.String("key", key), zap.Error(err))
		}
	}

	return &profile, nil
}

// ResolveItem resolves a single item and reports its provenance and scaled
// contribution. Returns ErrNotFound when no source matched.
func (s *AnalysisService) ResolveItem(ctx context.Context, item domain.CandidateItem) (*ItemResult, error) {
	if strings.TrimSpace(Canonicalize(item.Name)) == "" {
		return nil, domain.ErrInvalidRequest
	}

	agg, err := Aggregate(ctx, s.resolver, []domain.CandidateItem{item}, 1)
	if err != nil {
		return nil, err
	}

	res := agg.Items[0]
	if res.Resolved == nil {
		return &res, fmt.Errorf("%w: %v", domain.ErrNotFound, res.Err)
	}
	return &res, nil
}

// identify asks the identification capability for items. Failures degrade
// to the whole description as a single item.
func (s *AnalysisService) identify(ctx context.Context, req domain.MealRequest) ([]domain.CandidateItem, error) {
	var items []domain.CandidateItem

	if s.identifier != nil {
		found, err := s.identifier.Identify(ctx, req)
		switch {
		case errors.Is(err, domain.ErrMissingCredentials), isContextError(err):
			return nil, err
		case err != nil:
			s.logger.Warn("identification failed, using whole description", zap.Error(err))
		default:
			items = found
		}
	}

	if len(items) == 0 {
		items = []domain.CandidateItem{{Name: req.Description}}
	}
	return items, nil
}

// estimate requests model estimates. Failures other than missing credentials
// or cancellation degrade to an all-zero estimate.
func (s *AnalysisService) estimate(ctx context.Context, agg *Aggregation) (domain.NutrientProfile, error) {
	if s.estimator == nil {
		return domain.NutrientProfile{}, nil
	}

	estimate, err := s.estimator.EstimateNutrients(ctx, agg.Verified, agg.FoodList)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) || isContextError(err) {
			return domain.NutrientProfile{}, err
		}
		s.logger.Warn("nutrient estimation failed, using verified data only", zap.Error(err))
		return domain.NutrientProfile{}, nil
	}
	return estimate, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Fingerprint derives a deterministic cache key from a request.
// Format: "meal:{sha256(normalized description, photo reference, forceMicros)}"
func Fingerprint(req domain.MealRequest) string {
	h := sha256.New()
	h.Write([]byte(normalizeDescription(req.Description)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(req.PhotoRef)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.ForceMicros)))
	return fmt.Sprintf("meal:%x", h.Sum(nil))
}

// normalizeDescription lowercases and collapses whitespace
func normalizeDescription(s string) string {
	s = strings.ToLower(s)
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
