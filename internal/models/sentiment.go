package models

import "strings"

// Sentiment is a coarse directional signal about a collectible, sourced
// from an external analysis service.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment normalizes an upstream sentiment label. Anything
// unrecognized is treated as neutral.
func ParseSentiment(label string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Sign encodes sentiment for the scoring model: +1 for positive, -1
// otherwise. Neutral deliberately encodes as -1 to stay compatible with
// valuations already cached by earlier deployments.
func (s Sentiment) Sign() int {
	if s == SentimentPositive {
		return 1
	}
	return -1
}
