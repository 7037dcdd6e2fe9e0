package valuation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftadvisor/valuation-go/internal/cache"
	"github.com/nftadvisor/valuation-go/internal/models"
	"github.com/nftadvisor/valuation-go/internal/scorer"
)

type stubSource struct {
	nfts      map[string]*models.NFT
	holdings  map[string][]string
	rows      map[string][]models.MarketRow
	sentiment map[string]models.Sentiment
	rarity    map[string]string

	nftCalls       int
	marketCalls    int
	sentimentCalls int
	rarityCalls    int
}

func (s *stubSource) FetchNFT(_ context.Context, nftID string) (*models.NFT, error) {
	s.nftCalls++
	nft, ok := s.nfts[nftID]
	if !ok {
		return nil, fmt.Errorf("nft %s: %w", nftID, models.ErrNotFound)
	}
	cp := *nft
	return &cp, nil
}

func (s *stubSource) FetchUserNFTs(_ context.Context, userID string) ([]string, error) {
	ids, ok := s.holdings[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return ids, nil
}

func (s *stubSource) FetchMarketRows(_ context.Context, collection string) []models.MarketRow {
	s.marketCalls++
	return s.rows[collection]
}

func (s *stubSource) FetchSentiment(_ context.Context, nftID string) models.Sentiment {
	s.sentimentCalls++
	if sent, ok := s.sentiment[nftID]; ok {
		return sent
	}
	return models.SentimentNeutral
}

func (s *stubSource) FetchRarity(_ context.Context, nftID string) string {
	s.rarityCalls++
	return s.rarity[nftID]
}

func (s *stubSource) FetchCollections(_ context.Context) []string {
	return []string{"boredapes"}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, source DataSource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		s.Close()
	})

	logger := testLogger()
	valCache := cache.NewValuationCache(client, time.Hour, logger)
	snapCache := cache.NewSnapshotCache(client, 10*time.Minute, logger)

	// Valuation is the collection's average price plus a fixed intercept,
	// which makes expected outputs easy to compute by hand.
	model := &scorer.Model{
		Version:   models.FeatureEncodingVersion,
		Intercept: 400,
		Weights:   scorer.Weights{MarketTrend: 1},
	}
	sc := scorer.New(model, valCache, logger)

	return NewService(source, valCache, snapCache, sc, logger), s
}

func nft123Source() *stubSource {
	return &stubSource{
		nfts: map[string]*models.NFT{
			"nft123": {
				ID:         "nft123",
				Name:       "Bored Specimen",
				Collection: "boredapes",
				Rarity:     "rare",
				HistoricalPrices: []decimal.Decimal{
					decimal.NewFromInt(1000),
					decimal.NewFromInt(1500),
					decimal.NewFromInt(2000),
				},
			},
		},
		holdings: map[string][]string{"user123": {"nft123", "nft456"}},
		rows: map[string][]models.MarketRow{
			"boredapes": {
				{Date: day(1), Price: decimal.NewFromInt(1600), Volume: decimal.NewFromInt(10)},
				{Date: day(2), Price: decimal.NewFromInt(2000), Volume: decimal.NewFromInt(12)},
			},
		},
		sentiment: map[string]models.Sentiment{"nft123": models.SentimentPositive},
	}
}

func TestValuateComputesAndCaches(t *testing.T) {
	source := nft123Source()
	svc, redisSrv := newTestService(t, source)
	ctx := context.Background()

	// avg market price 1800 -> 400 + 1800 = 2200
	rec, err := svc.Valuate(ctx, "nft123")
	require.NoError(t, err)
	assert.Equal(t, "nft123", rec.NFTID)
	assert.True(t, rec.Valuation.Equal(decimal.NewFromInt(2200)), "got %s", rec.Valuation)
	assert.WithinDuration(t, time.Now().UTC(), rec.ComputedAt, 5*time.Second)

	key := fmt.Sprintf("valuation:v%d:nft123", models.FeatureEncodingVersion)
	assert.True(t, redisSrv.Exists(key))
	assert.Equal(t, time.Hour, redisSrv.TTL(key))

	// The second call resolves from cache: no new market or sentiment
	// lookups, same value.
	rec2, err := svc.Valuate(ctx, "nft123")
	require.NoError(t, err)
	assert.True(t, rec2.Valuation.Equal(rec.Valuation))
	assert.Equal(t, 1, source.marketCalls)
	assert.Equal(t, 1, source.sentimentCalls)
	assert.Equal(t, 2, source.nftCalls)
}

func TestValuateRecomputesAfterExpiry(t *testing.T) {
	source := nft123Source()
	svc, redisSrv := newTestService(t, source)
	ctx := context.Background()

	_, err := svc.Valuate(ctx, "nft123")
	require.NoError(t, err)

	redisSrv.FastForward(time.Hour + time.Minute)

	_, err = svc.Valuate(ctx, "nft123")
	require.NoError(t, err)
	assert.Equal(t, 2, source.marketCalls)
}

func TestValuateUnknownCollectible(t *testing.T) {
	svc, _ := newTestService(t, nft123Source())

	_, err := svc.Valuate(context.Background(), "nft456")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestValuateRequiresID(t *testing.T) {
	svc, _ := newTestService(t, nft123Source())

	_, err := svc.Valuate(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestValuateFallsBackToRarityService(t *testing.T) {
	source := nft123Source()
	source.nfts["nft123"].Rarity = ""
	source.rarity = map[string]string{"nft123": "epic"}
	svc, _ := newTestService(t, source)

	_, err := svc.Valuate(context.Background(), "nft123")
	require.NoError(t, err)
	assert.Equal(t, 1, source.rarityCalls)
}

func TestValuateSurvivesEmptyMarket(t *testing.T) {
	source := nft123Source()
	source.rows = nil
	svc, _ := newTestService(t, source)

	// No market data means an all-zero snapshot: valuation degrades to the
	// intercept instead of failing.
	rec, err := svc.Valuate(context.Background(), "nft123")
	require.NoError(t, err)
	assert.True(t, rec.Valuation.Equal(decimal.NewFromInt(400)), "got %s", rec.Valuation)
}

func TestCollectionSnapshotIsCached(t *testing.T) {
	source := nft123Source()
	svc, _ := newTestService(t, source)
	ctx := context.Background()

	first := svc.CollectionSnapshot(ctx, "boredapes")
	assert.True(t, first.AveragePrice.Equal(decimal.NewFromInt(1800)), "got %s", first.AveragePrice)

	second := svc.CollectionSnapshot(ctx, "boredapes")
	assert.True(t, second.AveragePrice.Equal(first.AveragePrice))
	assert.Equal(t, 1, source.marketCalls)
}

func TestLatestValuation(t *testing.T) {
	svc, _ := newTestService(t, nft123Source())
	ctx := context.Background()

	_, err := svc.LatestValuation(ctx, "nft123")
	assert.ErrorIs(t, err, models.ErrUnavailable)

	_, err = svc.Valuate(ctx, "nft123")
	require.NoError(t, err)

	val, err := svc.LatestValuation(ctx, "nft123")
	require.NoError(t, err)
	assert.True(t, val.Equal(decimal.NewFromInt(2200)))
}

func TestUserNFTs(t *testing.T) {
	svc, _ := newTestService(t, nft123Source())

	ids, err := svc.UserNFTs(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, []string{"nft123", "nft456"}, ids)

	_, err = svc.UserNFTs(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
