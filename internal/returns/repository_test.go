package returns

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwatch/fundwatch/internal/fund"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	return db
}

func f64(v float64) *float64 { return &v }

func sampleResults() []fund.ReturnResult {
	return []fund.ReturnResult{
		{FundName: "Alpha Fund", FundHouse: "Alpha", Category: "Small Cap", ROI1Y: f64(30.5), ROI2Y: f64(28.1), ROI3Y: f64(26.0)},
		{FundName: "Beta Fund", FundHouse: "Beta", Category: "Mid Cap", ROI1Y: f64(20.0), ROI2Y: f64(19.0), ROI3Y: f64(18.5)},
		{FundName: "Gamma Fund", FundHouse: "Gamma", Category: "Large Cap", ROI1Y: f64(12.0), ROI2Y: f64(11.5), ROI3Y: f64(11.0)},
		{FundName: "No ThreeY Fund", FundHouse: "Delta", Category: "ELSS", ROI1Y: f64(9.0)},
	}
}

func TestSaveBatchKeepsTopNWithThreeYearROI(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	// Top 2 of the three funds that have a 3Y figure; the fund without one
	// is never persisted.
	saved, err := repo.SaveBatch(sampleResults(), "2024-08-16", "mfapi", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	rows, err := repo.ReturnsForDate("2024-08-16", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha Fund", rows[0].FundName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Beta Fund", rows[1].FundName)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestSaveBatchUpsertsOnRepeat(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	results := sampleResults()
	_, err := repo.SaveBatch(results, "2024-08-16", "mfapi", 0)
	require.NoError(t, err)

	// Second save for the same date with updated figures replaces rows
	// rather than duplicating them.
	results[0].ROI3Y = f64(27.5)
	_, err = repo.SaveBatch(results, "2024-08-16", "mfapi", 0)
	require.NoError(t, err)

	rows, err := repo.ReturnsForDate("2024-08-16", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha Fund", rows[0].FundName)
	assert.Equal(t, 27.5, *rows[0].ROI3Y)
}

func TestSaveBatchNothingToSave(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	saved, err := repo.SaveBatch([]fund.ReturnResult{
		{FundName: "Young Fund", ROI1Y: f64(5.0)},
	}, "2024-08-16", "mfapi", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestAvailableDates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.SaveBatch(sampleResults(), "2024-07-15", "mfapi", 0)
	require.NoError(t, err)
	_, err = repo.SaveBatch(sampleResults(), "2024-08-16", "mfapi", 0)
	require.NoError(t, err)

	dates, err := repo.AvailableDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-08-16", "2024-07-15"}, dates)
}

func TestComparisonUnionMode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	older := []fund.ReturnResult{
		{FundName: "Alpha Fund", FundHouse: "Alpha", Category: "Small Cap", ROI3Y: f64(20.0)},
		{FundName: "Beta Fund", FundHouse: "Beta", Category: "Mid Cap", ROI3Y: f64(25.0)},
	}
	newer := []fund.ReturnResult{
		{FundName: "Alpha Fund", FundHouse: "Alpha", Category: "Small Cap", ROI3Y: f64(26.0)},
		{FundName: "Gamma Fund", FundHouse: "Gamma", Category: "Large Cap", ROI3Y: f64(15.0)},
	}
	_, err := repo.SaveBatch(older, "2024-07-15", "mfapi", 1)
	require.NoError(t, err)
	_, err = repo.SaveBatch(newer, "2024-08-16", "mfapi", 1)
	require.NoError(t, err)

	// Union of each date's top-1: Beta (older) and Alpha (newer).
	rows, err := repo.Comparison([]string{"2024-07-15", "2024-08-16"}, 1, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ranked by the latest date: Alpha has 26.0 there, Beta has nothing.
	assert.Equal(t, "Alpha Fund", rows[0].FundName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 26.0, *rows[0].ROI3Y["2024-08-16"])
	assert.Nil(t, rows[0].ROI3Y["2024-07-15"])

	assert.Equal(t, "Beta Fund", rows[1].FundName)
	assert.Nil(t, rows[1].ROI3Y["2024-08-16"])
	assert.Equal(t, 25.0, *rows[1].ROI3Y["2024-07-15"])
}

func TestComparisonAbsentRanksAboveNegative(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	older := []fund.ReturnResult{
		{FundName: "Beta Fund", FundHouse: "Beta", Category: "Mid Cap", ROI3Y: f64(25.0)},
	}
	newer := []fund.ReturnResult{
		{FundName: "Alpha Fund", FundHouse: "Alpha", Category: "Small Cap", ROI3Y: f64(26.0)},
		{FundName: "Delta Fund", FundHouse: "Delta", Category: "ELSS", ROI3Y: f64(-5.0)},
	}
	_, err := repo.SaveBatch(older, "2024-07-15", "mfapi", 0)
	require.NoError(t, err)
	_, err = repo.SaveBatch(newer, "2024-08-16", "mfapi", 0)
	require.NoError(t, err)

	rows, err := repo.Comparison([]string{"2024-07-15", "2024-08-16"}, 5, true)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Beta is absent on the latest date and takes a zero sort key, which
	// places it above Delta's negative figure.
	assert.Equal(t, "Alpha Fund", rows[0].FundName)
	assert.Equal(t, "Beta Fund", rows[1].FundName)
	assert.Equal(t, "Delta Fund", rows[2].FundName)
}

func TestComparisonLatestOnlyMode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	older := []fund.ReturnResult{
		{FundName: "Beta Fund", FundHouse: "Beta", Category: "Mid Cap", ROI3Y: f64(25.0)},
	}
	newer := []fund.ReturnResult{
		{FundName: "Alpha Fund", FundHouse: "Alpha", Category: "Small Cap", ROI3Y: f64(26.0)},
	}
	_, err := repo.SaveBatch(older, "2024-07-15", "mfapi", 0)
	require.NoError(t, err)
	_, err = repo.SaveBatch(newer, "2024-08-16", "mfapi", 0)
	require.NoError(t, err)

	rows, err := repo.Comparison([]string{"2024-07-15", "2024-08-16"}, 5, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha Fund", rows[0].FundName)
}

func TestComparisonNoDates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	rows, err := repo.Comparison(nil, 10, true)
	require.NoError(t, err)
	assert.Nil(t, rows)
}
