package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftadvisor/valuation-go/internal/cache"
	"github.com/nftadvisor/valuation-go/internal/models"
	"github.com/nftadvisor/valuation-go/internal/report"
	"github.com/nftadvisor/valuation-go/internal/scorer"
	"github.com/nftadvisor/valuation-go/internal/valuation"
)

type stubSource struct {
	nfts     map[string]*models.NFT
	holdings map[string][]string
}

func (s *stubSource) FetchNFT(_ context.Context, nftID string) (*models.NFT, error) {
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

func (s *stubSource) FetchMarketRows(_ context.Context, _ string) []models.MarketRow { return nil }

func (s *stubSource) FetchSentiment(_ context.Context, _ string) models.Sentiment {
	return models.SentimentPositive
}

func (s *stubSource) FetchRarity(_ context.Context, _ string) string { return "" }

func (s *stubSource) FetchCollections(_ context.Context) []string {
	return []string{"boredapes"}
}

func newTestHandler(t *testing.T) *ValuationHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		s.Close()
	})

	source := &stubSource{
		nfts: map[string]*models.NFT{
			"nft123": {
				ID:         "nft123",
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
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	valCache := cache.NewValuationCache(client, time.Hour, logger)
	snapCache := cache.NewSnapshotCache(client, 10*time.Minute, logger)
	model := &scorer.Model{
		Version:   models.FeatureEncodingVersion,
		Intercept: 1000,
		Weights:   scorer.Weights{Rarity: 400},
	}
	sc := scorer.New(model, valCache, logger)
	svc := valuation.NewService(source, valCache, snapCache, sc, logger)
	assembler := report.NewAssembler(svc, nil, nil, logger)

	return NewValuationHandler(svc, assembler)
}

func performValuate(t *testing.T, h *ValuationHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/valuate", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Valuate(c)
	return w
}

func TestValuate(t *testing.T) {
	h := newTestHandler(t)

	w := performValuate(t, h, `{"user_id": "user123", "nft_id": "nft123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "nft123", resp["nft_id"])
	// rarity "rare" encodes to 3: 1000 + 3*400 = 2200
	assert.Equal(t, "2200", resp["valuation"])
}

func TestValuateMissingFields(t *testing.T) {
	h := newTestHandler(t)

	w := performValuate(t, h, `{"user_id": "user123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performValuate(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValuateUnknownUser(t *testing.T) {
	h := newTestHandler(t)

	w := performValuate(t, h, `{"user_id": "ghost", "nft_id": "nft123"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValuateUnknownCollectible(t *testing.T) {
	h := newTestHandler(t)

	w := performValuate(t, h, `{"user_id": "user123", "nft_id": "nft999"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetValuationColdIs404(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/valuation/nft123", nil)
	c.Params = gin.Params{{Key: "nft_id", Value: "nft123"}}
	h.GetValuation(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetValuationAfterCompute(t *testing.T) {
	h := newTestHandler(t)

	performValuate(t, h, `{"user_id": "user123", "nft_id": "nft123"}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/valuation/nft123", nil)
	c.Params = gin.Params{{Key: "nft_id", Value: "nft123"}}
	h.GetValuation(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2200", resp["valuation"])
}

func TestGetReport(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/report/user123", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "user123"}}
	h.GetReport(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Report models.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user123", resp.Report.UserID)
	require.Len(t, resp.Report.Valuations, 1)
	assert.Equal(t, "nft123", resp.Report.Valuations[0].NFTID)
	assert.Equal(t, []string{"nft456"}, resp.Report.Skipped)
}

func TestGetReportUnknownUser(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/report/ghost", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "ghost"}}
	h.GetReport(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
