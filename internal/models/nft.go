package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NFT represents a digital collectible as observed on chain. The Collector
// produces it; the Aggregator only adds derived data, never mutates the
// fields below.
type NFT struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Creator          string            `json:"creator,omitempty"`
	Collection       string            `json:"collection"`
	Rarity           string            `json:"rarity"`
	HistoricalPrices []decimal.Decimal `json:"historical_prices"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Rarity tiers in their fixed total order. Encoding is advisory, not
// safety-critical, so unrecognized labels map to the lowest tier instead
// of failing.
const (
	RarityCommon    = 1
	RarityUncommon  = 2
	RarityRare      = 3
	RarityEpic      = 4
	RarityLegendary = 5
)

var rarityEncoding = map[string]int{
	"common":    RarityCommon,
	"uncommon":  RarityUncommon,
	"rare":      RarityRare,
	"epic":      RarityEpic,
	"legendary": RarityLegendary,
}

// EncodeRarity maps a rarity label to its numeric tier. Matching is
// case-insensitive; unknown labels encode as common.
func EncodeRarity(label string) int {
	if tier, ok := rarityEncoding[strings.ToLower(strings.TrimSpace(label))]; ok {
		return tier
	}
	return RarityCommon
}
