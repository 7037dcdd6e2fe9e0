package scorer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/cache"
	"github.com/nftadvisor/valuation-go/internal/models"
)

// Scorer turns feature vectors into valuations. It is stateless given its
// loaded model: Predict is a pure function with no internal randomness.
type Scorer struct {
	model  *Model
	cache  *cache.ValuationCache
	logger *logrus.Logger
}

func New(model *Model, valuationCache *cache.ValuationCache, logger *logrus.Logger) *Scorer {
	return &Scorer{model: model, cache: valuationCache, logger: logger}
}

// Predict evaluates the regression over a feature vector. The same vector
// always yields the same valuation.
func (s *Scorer) Predict(fv models.FeatureVector) decimal.Decimal {
	w := s.model.Weights
	raw := s.model.Intercept +
		w.Rarity*float64(fv.Rarity) +
		w.HistoricalCount*float64(fv.HistoricalCount) +
		w.MarketTrend*fv.MarketTrend +
		w.Sentiment*float64(fv.SentimentSign)
	return decimal.NewFromFloat(raw)
}

// Latest returns a previously computed valuation for a collectible
// without recomputing. When none is cached it returns ErrUnavailable
// rather than fabricating a value.
func (s *Scorer) Latest(ctx context.Context, nftID string) (decimal.Decimal, error) {
	if nftID == "" {
		return decimal.Zero, fmt.Errorf("nft id is required: %w", models.ErrInvalid)
	}
	if val, ok := s.cache.Get(ctx, nftID); ok {
		return val, nil
	}
	return decimal.Zero, fmt.Errorf("no valuation for %s: %w", nftID, models.ErrUnavailable)
}
