package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/aggregator"
	"github.com/nftadvisor/valuation-go/internal/cache"
	"github.com/nftadvisor/valuation-go/internal/models"
	"github.com/nftadvisor/valuation-go/internal/scorer"
)

// DataSource is the collector surface the valuation pipeline consumes.
type DataSource interface {
	FetchNFT(ctx context.Context, nftID string) (*models.NFT, error)
	FetchUserNFTs(ctx context.Context, userID string) ([]string, error)
	FetchMarketRows(ctx context.Context, collection string) []models.MarketRow
	FetchSentiment(ctx context.Context, nftID string) models.Sentiment
	FetchRarity(ctx context.Context, nftID string) string
	FetchCollections(ctx context.Context) []string
}

// Service drives the valuation pipeline for a single collectible: collect
// facts, assemble features, score on a cache miss, write the result back.
type Service struct {
	source    DataSource
	cache     *cache.ValuationCache
	snapshots *cache.SnapshotCache
	scorer    *scorer.Scorer
	logger    *logrus.Logger
}

func NewService(source DataSource, valuationCache *cache.ValuationCache, snapshotCache *cache.SnapshotCache, sc *scorer.Scorer, logger *logrus.Logger) *Service {
	return &Service{
		source:    source,
		cache:     valuationCache,
		snapshots: snapshotCache,
		scorer:    sc,
		logger:    logger,
	}
}

// Valuate computes (or resolves from cache) the valuation of one
// collectible. NotFound propagates when the collectible does not exist;
// degraded secondary signals never fail the computation.
func (s *Service) Valuate(ctx context.Context, nftID string) (models.ValuationRecord, error) {
	if nftID == "" {
		return models.ValuationRecord{}, fmt.Errorf("nft id is required: %w", models.ErrInvalid)
	}

	nft, err := s.source.FetchNFT(ctx, nftID)
	if err != nil {
		return models.ValuationRecord{}, err
	}
	if nft.Rarity == "" {
		nft.Rarity = s.source.FetchRarity(ctx, nftID)
	}

	if cached, ok := s.cache.Get(ctx, nftID); ok {
		s.logger.WithField("nft_id", nftID).Debug("Using cached valuation")
		return models.ValuationRecord{NFTID: nftID, Valuation: cached, ComputedAt: time.Now().UTC()}, nil
	}

	snap := s.CollectionSnapshot(ctx, nft.Collection)
	sentiment := s.source.FetchSentiment(ctx, nftID)

	fv, err := aggregator.BuildFeatureVector(nft, snap, sentiment)
	if err != nil {
		return models.ValuationRecord{}, err
	}

	value := s.scorer.Predict(fv)
	s.cache.Set(ctx, nftID, value, 0)

	s.logger.WithFields(logrus.Fields{
		"nft_id":    nftID,
		"valuation": value.String(),
		"trend":     aggregator.ClassifyTrend(nft.HistoricalPrices),
	}).Info("Valuation computed")

	return models.ValuationRecord{NFTID: nftID, Valuation: value, ComputedAt: time.Now().UTC()}, nil
}

// LatestValuation returns the most recently cached valuation without
// recomputing, or ErrUnavailable when none exists.
func (s *Service) LatestValuation(ctx context.Context, nftID string) (decimal.Decimal, error) {
	return s.scorer.Latest(ctx, nftID)
}

// CollectionSnapshot aggregates the market statistics for a collection,
// reusing a recent snapshot when one is cached. An unreachable market
// upstream yields an all-zero snapshot.
func (s *Service) CollectionSnapshot(ctx context.Context, collection string) models.MarketSnapshot {
	if snap, ok := s.snapshots.Get(ctx, collection); ok {
		return snap
	}

	rows := s.source.FetchMarketRows(ctx, collection)
	enriched := aggregator.Enrich(aggregator.Clean(rows))
	snap := aggregator.Aggregate(collection, enriched)

	s.snapshots.Set(ctx, collection, snap)
	return snap
}

// Collections lists the known collection names.
func (s *Service) Collections(ctx context.Context) []string {
	return s.source.FetchCollections(ctx)
}

// UserNFTs returns the collectible ids a user owns at call time.
func (s *Service) UserNFTs(ctx context.Context, userID string) ([]string, error) {
	return s.source.FetchUserNFTs(ctx, userID)
}
