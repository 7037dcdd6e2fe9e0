package models

import "errors"

// Error taxonomy shared by the valuation pipeline. The HTTP layer maps
// these to status codes; nothing below it inspects transport errors.
var (
	// ErrNotFound means the primary entity (collectible or user) does not
	// exist upstream. A definitive negative, not a transient failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalid means a public operation received malformed input. It is
	// raised before any upstream call is made.
	ErrInvalid = errors.New("invalid input")

	// ErrUnavailable means a previously computed valuation does not exist
	// and no value can be returned without recomputing.
	ErrUnavailable = errors.New("valuation unavailable")

	// ErrModelUnavailable means the scoring artifact failed to load. It is
	// fatal at startup, never per-request.
	ErrModelUnavailable = errors.New("scoring model unavailable")
)
