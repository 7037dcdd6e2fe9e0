package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftadvisor/valuation-go/internal/models"
)

func sampleReport() *models.Report {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	return &models.Report{
		ID:          "rep-1",
		UserID:      "user123",
		GeneratedAt: now,
		Narrative:   "portfolio looks healthy",
		Valuations: []models.ValuationRecord{
			{NFTID: "nft123", Valuation: decimal.NewFromInt(2200), ComputedAt: now},
			{NFTID: "nft789", Valuation: decimal.NewFromInt(950), ComputedAt: now},
		},
		Skipped: []string{"nft456"},
	}
}

func TestInsertReport(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewReportRepository(mockDB)
	rep := sampleReport()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO reports").
		WithArgs(rep.ID, rep.UserID, rep.GeneratedAt, rep.Narrative).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectExec("INSERT INTO report_valuations").
		WithArgs(rep.ID, "nft123", rep.Valuations[0].Valuation, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectExec("INSERT INTO report_valuations").
		WithArgs(rep.ID, "nft789", rep.Valuations[1].Valuation, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockDB.ExpectCommit()

	err = repo.InsertReport(context.Background(), rep)
	assert.NoError(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestInsertReportRollsBackOnFailure(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewReportRepository(mockDB)
	rep := sampleReport()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("INSERT INTO reports").
		WithArgs(rep.ID, rep.UserID, rep.GeneratedAt, rep.Narrative).
		WillReturnError(errors.New("connection reset"))
	mockDB.ExpectRollback()

	err = repo.InsertReport(context.Background(), rep)
	assert.Error(t, err)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGetLatestReport(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewReportRepository(mockDB)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("SELECT id, user_id, generated_at, narrative FROM reports").
		WithArgs("user123").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "generated_at", "narrative"}).
			AddRow("rep-1", "user123", now, "portfolio looks healthy"))
	mockDB.ExpectQuery("SELECT nft_id, valuation, computed_at FROM report_valuations").
		WithArgs("rep-1").
		WillReturnRows(pgxmock.NewRows([]string{"nft_id", "valuation", "computed_at"}).
			AddRow("nft123", decimal.NewFromInt(2200), now).
			AddRow("nft789", decimal.NewFromInt(950), now))

	rep, err := repo.GetLatestReport(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", rep.ID)
	assert.Equal(t, "user123", rep.UserID)
	require.Len(t, rep.Valuations, 2)
	assert.Equal(t, "nft123", rep.Valuations[0].NFTID)
	assert.True(t, rep.Valuations[0].Valuation.Equal(decimal.NewFromInt(2200)))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGetLatestReportNotFound(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewReportRepository(mockDB)

	mockDB.ExpectQuery("SELECT id, user_id, generated_at, narrative FROM reports").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetLatestReport(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
