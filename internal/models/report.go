package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationRecord is the result of one valuation computation. Records are
// immutable: a recomputation produces a new record with a new timestamp.
type ValuationRecord struct {
	NFTID      string          `json:"nft_id"`
	Valuation  decimal.Decimal `json:"valuation"`
	ComputedAt time.Time       `json:"timestamp"`
}

// Report is a per-user valuation report. GeneratedAt is assigned once per
// report; the records it contains carry their own computation timestamps.
// Skipped lists collectibles whose valuation failed and were left out
// rather than failing the whole report.
type Report struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Valuations  []ValuationRecord `json:"valuations"`
	Skipped     []string          `json:"skipped,omitempty"`
	Narrative   string            `json:"narrative,omitempty"`
}
