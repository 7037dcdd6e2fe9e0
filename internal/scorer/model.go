package scorer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nftadvisor/valuation-go/internal/models"
)

// Weights are the trained regression coefficients, one per feature in the
// vector encoding.
type Weights struct {
	Rarity          float64 `json:"rarity"`
	HistoricalCount float64 `json:"historical_count"`
	MarketTrend     float64 `json:"market_trend"`
	Sentiment       float64 `json:"sentiment"`
}

// Model is the persisted regression artifact. It is loaded once at
// startup and read-only thereafter, so concurrent Predict calls need no
// synchronization.
type Model struct {
	Version   int     `json:"version"`
	Intercept float64 `json:"intercept"`
	Weights   Weights `json:"weights"`
}

// LoadModel reads the model artifact from disk. A missing or malformed
// artifact is fatal: the scorer cannot substitute a default model whose
// predictions would be meaningless.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %v: %w", path, err, models.ErrModelUnavailable)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model artifact %s is malformed: %v: %w", path, err, models.ErrModelUnavailable)
	}

	if m.Version != models.FeatureEncodingVersion {
		return nil, fmt.Errorf("model artifact %s was trained for encoding v%d, want v%d: %w",
			path, m.Version, models.FeatureEncodingVersion, models.ErrModelUnavailable)
	}

	return &m, nil
}
