package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/models"
	"github.com/nftadvisor/valuation-go/internal/valuation"
)

// Narrator produces the optional narrative text of a report. The actual
// text generation lives outside the valuation core; a nil Narrator simply
// leaves the narrative empty.
type Narrator interface {
	Narrate(ctx context.Context, report *models.Report) (string, error)
}

// Store persists generated reports. Persistence is best-effort: a report
// is still returned to the caller when the store is down.
type Store interface {
	InsertReport(ctx context.Context, report *models.Report) error
}

// Assembler fans a user's collectible set through the valuation pipeline
// and composes the per-user report.
type Assembler struct {
	svc      *valuation.Service
	store    Store
	narrator Narrator
	logger   *logrus.Logger
}

func NewAssembler(svc *valuation.Service, store Store, narrator Narrator, logger *logrus.Logger) *Assembler {
	return &Assembler{svc: svc, store: store, narrator: narrator, logger: logger}
}

// Generate builds a report over everything the user owns at generation
// time. An unknown user propagates NotFound; a failure on an individual
// collectible is recorded as skipped rather than failing the report.
func (a *Assembler) Generate(ctx context.Context, userID string) (*models.Report, error) {
	nftIDs, err := a.svc.UserNFTs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.GenerateFor(ctx, userID, nftIDs), nil
}

// GenerateFor builds a report over an explicit collectible list. The
// report-level timestamp is assigned once here; each record keeps its own
// computation timestamp.
func (a *Assembler) GenerateFor(ctx context.Context, userID string, nftIDs []string) *models.Report {
	rep := &models.Report{
		ID:          uuid.NewString(),
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	for _, id := range nftIDs {
		record, err := a.svc.Valuate(ctx, id)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"nft_id":  id,
				"error":   err.Error(),
			}).Warn("Skipping collectible in report")
			rep.Skipped = append(rep.Skipped, id)
			continue
		}
		rep.Valuations = append(rep.Valuations, record)
	}

	if a.narrator != nil {
		if narrative, err := a.narrator.Narrate(ctx, rep); err != nil {
			a.logger.WithError(err).Warn("Narrative generation failed, report continues without it")
		} else {
			rep.Narrative = narrative
		}
	}

	if a.store != nil {
		if err := a.store.InsertReport(ctx, rep); err != nil {
			a.logger.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).
				Warn("Failed to persist report")
		}
	}

	return rep
}
