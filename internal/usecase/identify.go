package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// FallbackIdentifier tries each identifier in order and returns the first
// non-empty item list. Photo-only identifiers are skipped for text-only meals
// by the identifiers themselves.
type FallbackIdentifier struct {
	identifiers []domain.Identifier
	logger      *zap.Logger
}

// NewFallbackIdentifier chains identifiers; nil entries are ignored
func NewFallbackIdentifier(logger *zap.Logger, identifiers ...domain.Identifier) *FallbackIdentifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	chain := make([]domain.Identifier, 0, len(identifiers))
	for _, id := range identifiers {
		if id != nil {
			chain = append(chain, id)
		}
	}

	return &FallbackIdentifier{identifiers: chain, logger: logger.Named("identify")}
}

// Identify implements domain.Identifier
func (f *FallbackIdentifier) Identify(ctx context.Context, req domain.MealRequest) ([]domain.CandidateItem, error) {
	var errs []error

	for i, id := range f.identifiers {
		items, err := id.Identify(ctx, req)
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, err
		}
		if err != nil {
			f.logger.Debug("identifier failed", zap.Int("position", i), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	return nil, errors.Join(errs...)
}
