package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketRow is a single observed transaction for a collection. Price and
// Volume come from the market upstream; the remaining columns are derived
// by the Aggregator during enrichment.
type MarketRow struct {
	Date   time.Time       `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`

	// Derived during enrichment.
	PriceChange float64 `json:"price_change"`
	RollingMean float64 `json:"rolling_avg_7"`
	RollingStd  float64 `json:"rolling_std_7"`
}

// MarketSnapshot holds per-collection aggregate statistics over the
// observed transaction window. It is recomputed on demand and never
// persisted by the valuation core.
type MarketSnapshot struct {
	Collection   string          `json:"collection"`
	AveragePrice decimal.Decimal `json:"average_price"`
	MedianPrice  decimal.Decimal `json:"median_price"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	StdDevPrice  decimal.Decimal `json:"std_dev_price"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
}

// Price trend labels produced by the aggregator's trend classification.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)
