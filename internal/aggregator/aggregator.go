package aggregator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nftadvisor/valuation-go/internal/models"
)

// rollingWindow is the number of rows the enrichment statistics look back
// over. Changing it changes derived features, so it moves only together
// with models.FeatureEncodingVersion.
const rollingWindow = 7

// Clean drops market rows with missing fields or non-positive prices and
// sorts the remainder by transaction date ascending. The rolling-window
// statistics downstream require monotonic time order and are undefined
// over invalid prices.
func Clean(rows []models.MarketRow) []models.MarketRow {
	cleaned := make([]models.MarketRow, 0, len(rows))
	for _, r := range rows {
		if r.Date.IsZero() {
			continue
		}
		if !r.Price.IsPositive() {
			continue
		}
		cleaned = append(cleaned, r)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})
	return cleaned
}

// Enrich derives per-row columns over a cleaned series: percentage price
// change from the prior row, a 7-row rolling mean backfilled so no row is
// left undefined, and a 7-row rolling standard deviation that is zero
// where fewer than two samples exist.
func Enrich(rows []models.MarketRow) []models.MarketRow {
	if len(rows) == 0 {
		return rows
	}

	prices := make([]float64, len(rows))
	for i, r := range rows {
		prices[i] = r.Price.InexactFloat64()
	}

	enriched := make([]models.MarketRow, len(rows))
	copy(enriched, rows)

	for i := range enriched {
		if i == 0 {
			enriched[i].PriceChange = 0
		} else if prices[i-1] != 0 {
			enriched[i].PriceChange = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	means := rollingMeans(prices)
	stds := rollingStdDevs(prices)
	for i := range enriched {
		enriched[i].RollingMean = means[i]
		enriched[i].RollingStd = stds[i]
	}
	return enriched
}

// rollingMeans computes the trailing rolling mean per index. Indices
// before the first full window are backfilled with the first defined
// value; a series shorter than the window falls back to the overall mean
// so every row stays defined.
func rollingMeans(prices []float64) []float64 {
	out := make([]float64, len(prices))
	if len(prices) < rollingWindow {
		m := mean(prices)
		for i := range out {
			out[i] = m
		}
		return out
	}

	for i := rollingWindow - 1; i < len(prices); i++ {
		out[i] = mean(prices[i-rollingWindow+1 : i+1])
	}
	for i := 0; i < rollingWindow-1; i++ {
		out[i] = out[rollingWindow-1]
	}
	return out
}

// rollingStdDevs computes the trailing sample standard deviation per
// index, zero wherever a full window is not yet available.
func rollingStdDevs(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i := rollingWindow - 1; i < len(prices); i++ {
		out[i] = stdDev(prices[i-rollingWindow+1 : i+1])
	}
	return out
}

// Aggregate reduces an enriched series to its per-collection summary
// statistics. An empty input yields an all-zero snapshot.
func Aggregate(collection string, rows []models.MarketRow) models.MarketSnapshot {
	snap := models.MarketSnapshot{
		Collection:   collection,
		AveragePrice: decimal.Zero,
		MedianPrice:  decimal.Zero,
		MinPrice:     decimal.Zero,
		MaxPrice:     decimal.Zero,
		StdDevPrice:  decimal.Zero,
		TotalVolume:  decimal.Zero,
	}
	if len(rows) == 0 {
		return snap
	}

	prices := make([]float64, len(rows))
	volume := decimal.Zero
	minP, maxP := rows[0].Price, rows[0].Price
	for i, r := range rows {
		prices[i] = r.Price.InexactFloat64()
		volume = volume.Add(r.Volume)
		if r.Price.LessThan(minP) {
			minP = r.Price
		}
		if r.Price.GreaterThan(maxP) {
			maxP = r.Price
		}
	}

	snap.AveragePrice = decimal.NewFromFloat(mean(prices))
	snap.MedianPrice = decimal.NewFromFloat(median(prices))
	snap.MinPrice = minP
	snap.MaxPrice = maxP
	snap.StdDevPrice = decimal.NewFromFloat(stdDev(prices))
	snap.TotalVolume = volume
	return snap
}

// ClassifyTrend labels a chronological price series. Fewer than two
// points classify as stable; otherwise the last price is compared with
// the first, and an exact tie classifies as down. The tie rule is a
// compatibility boundary: cached reports were computed under it, so it
// must not drift.
func ClassifyTrend(prices []decimal.Decimal) string {
	if len(prices) < 2 {
		return models.TrendStable
	}
	if prices[len(prices)-1].GreaterThan(prices[0]) {
		return models.TrendUp
	}
	return models.TrendDown
}

// BuildFeatureVector assembles the fixed-shape scoring input from a
// collectible, its collection snapshot and an externally supplied
// sentiment. Identical inputs always yield an identical vector.
func BuildFeatureVector(nft *models.NFT, snap models.MarketSnapshot, sentiment models.Sentiment) (models.FeatureVector, error) {
	if nft == nil || nft.ID == "" {
		return models.FeatureVector{}, fmt.Errorf("collectible is required: %w", models.ErrInvalid)
	}

	return models.FeatureVector{
		Version:         models.FeatureEncodingVersion,
		Rarity:          models.EncodeRarity(nft.Rarity),
		HistoricalCount: len(nft.HistoricalPrices),
		MarketTrend:     snap.AveragePrice.InexactFloat64(),
		SentimentSign:   sentiment.Sign(),
	}, nil
}
