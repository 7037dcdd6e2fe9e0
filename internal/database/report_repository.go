package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/nftadvisor/valuation-go/internal/models"
)

// PgxIface is the subset of pgxpool.Pool the repository needs. pgxmock
// implements it for tests.
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReportRepository persists generated reports and their valuation records.
type ReportRepository struct {
	db PgxIface
}

func NewReportRepository(db PgxIface) *ReportRepository {
	return &ReportRepository{db: db}
}

// InsertReport stores a report and its valuation records in a single
// transaction.
func (r *ReportRepository) InsertReport(ctx context.Context, report *models.Report) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO reports (id, user_id, generated_at, narrative) VALUES ($1, $2, $3, $4)`,
		report.ID, report.UserID, report.GeneratedAt, report.Narrative,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	for _, v := range report.Valuations {
		_, err = tx.Exec(ctx,
			`INSERT INTO report_valuations (report_id, nft_id, valuation, computed_at) VALUES ($1, $2, $3, $4)`,
			report.ID, v.NFTID, v.Valuation, v.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert valuation record for %s: %w", v.NFTID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetLatestReport returns the most recently generated report for a user,
// or models.ErrNotFound when the user has none.
func (r *ReportRepository) GetLatestReport(ctx context.Context, userID string) (*models.Report, error) {
	var report models.Report
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, generated_at, narrative FROM reports
		 WHERE user_id = $1 ORDER BY generated_at DESC LIMIT 1`,
		userID,
	).Scan(&report.ID, &report.UserID, &report.GeneratedAt, &report.Narrative)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT nft_id, valuation, computed_at FROM report_valuations
		 WHERE report_id = $1 ORDER BY computed_at`,
		report.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch valuation records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.ValuationRecord
		var val decimal.Decimal
		if err := rows.Scan(&rec.NFTID, &val, &rec.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valuation record: %w", err)
		}
		rec.Valuation = val
		report.Valuations = append(report.Valuations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate valuation records: %w", err)
	}

	return &report, nil
}
