package models

// FeatureEncodingVersion identifies the FeatureVector field encoding.
// Cache keys are namespaced by this version, so bumping it implicitly
// invalidates every valuation computed under the previous encoding.
const FeatureEncodingVersion = 1

// FeatureVector is the fixed-shape input to the scoring model. It must be
// built deterministically: identical NFT, snapshot and sentiment inputs
// always produce an identical vector.
type FeatureVector struct {
	Version         int     `json:"version"`
	Rarity          int     `json:"rarity"`
	HistoricalCount int     `json:"historical_count"`
	MarketTrend     float64 `json:"market_trend"`
	SentimentSign   int     `json:"sentiment"`
}
