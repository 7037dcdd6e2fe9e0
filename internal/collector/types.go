package collector

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire types for the upstream data sources. Each upstream is independently
// failable; the collector converts failures into defaults rather than
// surfacing transport errors.

type nftResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Creator          string            `json:"creator"`
	Collection       string            `json:"collection"`
	Rarity           string            `json:"rarity"`
	HistoricalPrices []decimal.Decimal `json:"historical_prices"`
	Metadata         map[string]string `json:"metadata"`
}

type userNFTsResponse struct {
	UserID string   `json:"user_id"`
	NFTIDs []string `json:"nft_ids"`
}

type marketRowPayload struct {
	Date   time.Time       `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

type marketTrendsResponse struct {
	Collection string             `json:"collection"`
	Rows       []marketRowPayload `json:"rows"`
}

type sentimentResponse struct {
	Sentiment string `json:"sentiment"`
}

type rarityResponse struct {
	Rarity string `json:"rarity"`
}

type collectionsResponse struct {
	Collections []string `json:"collections"`
}
