package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/config"
	"github.com/nftadvisor/valuation-go/internal/models"
)

const collectionsCacheKey = "all"

// Collector fetches raw facts from the blockchain, market, rarity and
// sentiment upstreams. Secondary signals fail soft: a degraded signal is
// preferable to aborting the whole valuation, so transport failures on
// those calls are logged and converted into defaults. Only identity
// lookups (the collectible itself, a user's holdings) surface NotFound.
type Collector struct {
	client      *Client
	cfg         config.UpstreamConfig
	logger      *logrus.Logger
	collections *expirable.LRU[string, []string]
}

func New(cfg config.UpstreamConfig, client *Client, logger *logrus.Logger, collectionsTTL time.Duration) *Collector {
	return &Collector{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		collections: expirable.NewLRU[string, []string](1, nil, collectionsTTL),
	}
}

// FetchNFT retrieves a collectible's on-chain details. A 404 is a
// definitive NotFound; a transient upstream failure is treated as not
// found for now and the caller may retry.
func (c *Collector) FetchNFT(ctx context.Context, nftID string) (*models.NFT, error) {
	if nftID == "" {
		return nil, fmt.Errorf("nft id is required: %w", models.ErrInvalid)
	}

	var resp nftResponse
	url := fmt.Sprintf("%s/nfts/%s", c.cfg.BlockchainURL, nftID)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("nft %s: %w", nftID, models.ErrNotFound)
		}
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Transient failure fetching collectible, treating as not found")
		return nil, fmt.Errorf("nft %s: %w", nftID, models.ErrNotFound)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("nft %s: %w", nftID, models.ErrNotFound)
	}

	return &models.NFT{
		ID:               resp.ID,
		Name:             resp.Name,
		Description:      resp.Description,
		Creator:          resp.Creator,
		Collection:       resp.Collection,
		Rarity:           resp.Rarity,
		HistoricalPrices: resp.HistoricalPrices,
		Metadata:         resp.Metadata,
	}, nil
}

// FetchUserNFTs returns the collectible ids a user owns at call time.
func (c *Collector) FetchUserNFTs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", models.ErrInvalid)
	}

	var resp userNFTsResponse
	url := fmt.Sprintf("%s/users/%s/nfts", c.cfg.BlockchainURL, userID)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		c.logger.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).
			Warn("Transient failure fetching user holdings, treating as not found")
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return resp.NFTIDs, nil
}

// FetchMarketRows retrieves raw market transactions for a collection.
// Failures degrade to an empty set.
func (c *Collector) FetchMarketRows(ctx context.Context, collection string) []models.MarketRow {
	var resp marketTrendsResponse
	url := fmt.Sprintf("%s/market_trends/%s", c.cfg.MarketURL, collection)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		c.logger.WithFields(logrus.Fields{"collection": collection, "error": err.Error()}).
			Warn("Failed to fetch market trends, continuing with empty data")
		return nil
	}

	rows := make([]models.MarketRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, models.MarketRow{Date: r.Date, Price: r.Price, Volume: r.Volume})
	}
	return rows
}

// FetchSentiment retrieves the directional sentiment signal for a
// collectible. Failures degrade to neutral.
func (c *Collector) FetchSentiment(ctx context.Context, nftID string) models.Sentiment {
	var resp sentimentResponse
	url := fmt.Sprintf("%s/sentiment/%s", c.cfg.MarketURL, nftID)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Failed to fetch sentiment, defaulting to neutral")
		return models.SentimentNeutral
	}
	return models.ParseSentiment(resp.Sentiment)
}

// FetchRarity retrieves the rarity label for a collectible. Failures
// degrade to an empty label, which later encodes as the lowest tier.
func (c *Collector) FetchRarity(ctx context.Context, nftID string) string {
	var resp rarityResponse
	url := fmt.Sprintf("%s/rarity/%s", c.cfg.RarityURL, nftID)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Failed to fetch rarity, continuing without it")
		return ""
	}
	return resp.Rarity
}

// FetchCollections returns the known collection names. Results are
// memoized briefly since the list changes rarely; failures degrade to an
// empty set.
func (c *Collector) FetchCollections(ctx context.Context) []string {
	if cached, ok := c.collections.Get(collectionsCacheKey); ok {
		return cached
	}

	var resp collectionsResponse
	url := fmt.Sprintf("%s/collections", c.cfg.MarketURL)
	if err := c.client.getJSON(ctx, url, &resp); err != nil {
		c.logger.WithError(err).Warn("Failed to fetch collection list, continuing with empty set")
		return nil
	}

	c.collections.Add(collectionsCacheKey, resp.Collections)
	return resp.Collections
}
