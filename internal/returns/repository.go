package returns

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/database"
	"github.com/fundwatch/fundwatch/internal/fund"
)

// Schema is the returns database schema, applied via database.DB.Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS funds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    fund_name TEXT NOT NULL UNIQUE,
    fund_house TEXT NOT NULL DEFAULT 'Unknown',
    category TEXT NOT NULL DEFAULT 'Unknown'
);

CREATE TABLE IF NOT EXISTS fund_returns (
    fund_id INTEGER NOT NULL REFERENCES funds(id),
    report_date TEXT NOT NULL,
    roi_1y REAL,
    roi_2y REAL,
    roi_3y REAL,
    source TEXT NOT NULL DEFAULT 'mfapi',
    PRIMARY KEY (fund_id, report_date)
);

CREATE INDEX IF NOT EXISTS idx_fund_returns_date ON fund_returns(report_date);
`

// Repository persists computed returns keyed by fund and report date.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a returns repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "returns_repository").Logger(),
	}
}

// SaveBatch upserts funds and their returns for one report date, keeping
// only the topN funds by 3-year ROI. Returns the number of rows saved.
func (r *Repository) SaveBatch(results []fund.ReturnResult, reportDate, source string, topN int) (int, error) {
	ranked := make([]fund.ReturnResult, 0, len(results))
	for _, res := range results {
		if res.ROI3Y != nil {
			ranked = append(ranked, res)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ROI3Y > *ranked[j].ROI3Y
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	if len(ranked) == 0 {
		return 0, nil
	}
	if source == "" {
		source = "mfapi"
	}

	saved := 0
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		fundStmt, err := tx.Prepare(`
			INSERT INTO funds (fund_name, fund_house, category)
			VALUES (?, ?, ?)
			ON CONFLICT(fund_name) DO UPDATE SET
				fund_house = excluded.fund_house,
				category = excluded.category
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare fund upsert: %w", err)
		}
		defer fundStmt.Close()

		returnsStmt, err := tx.Prepare(`
			INSERT INTO fund_returns (fund_id, report_date, roi_1y, roi_2y, roi_3y, source)
			VALUES ((SELECT id FROM funds WHERE fund_name = ?), ?, ?, ?, ?, ?)
			ON CONFLICT(fund_id, report_date) DO UPDATE SET
				roi_1y = excluded.roi_1y,
				roi_2y = excluded.roi_2y,
				roi_3y = excluded.roi_3y,
				source = excluded.source
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare returns upsert: %w", err)
		}
		defer returnsStmt.Close()

		for _, res := range ranked {
			house := res.FundHouse
			if house == "" {
				house = "Unknown"
			}
			category := res.Category
			if category == "" {
				category = "Unknown"
			}

			if _, err := fundStmt.Exec(res.FundName, house, category); err != nil {
				return fmt.Errorf("failed to upsert fund %q: %w", res.FundName, err)
			}
			if _, err := returnsStmt.Exec(res.FundName, reportDate, res.ROI1Y, res.ROI2Y, res.ROI3Y, source); err != nil {
				return fmt.Errorf("failed to upsert returns for %q: %w", res.FundName, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Info().
		Int("saved", saved).
		Str("report_date", reportDate).
		Msg("Saved fund returns")

	return saved, nil
}

// StoredReturn is one persisted fund/date return row.
type StoredReturn struct {
	Rank      int      `json:"rank"`
	FundName  string   `json:"fund_name"`
	FundHouse string   `json:"fund_house"`
	Category  string   `json:"category"`
	ROI1Y     *float64 `json:"roi_1y"`
	ROI2Y     *float64 `json:"roi_2y"`
	ROI3Y     *float64 `json:"roi_3y"`
}

// ReturnsForDate returns up to top funds for a report date, ranked by
// 3-year ROI descending.
func (r *Repository) ReturnsForDate(reportDate string, top int) ([]StoredReturn, error) {
	query := `
		SELECT f.fund_name, f.fund_house, f.category, fr.roi_1y, fr.roi_2y, fr.roi_3y
		FROM fund_returns fr
		JOIN funds f ON f.id = fr.fund_id
		WHERE fr.report_date = ?
		ORDER BY fr.roi_3y DESC
	`
	args := []interface{}{reportDate}
	if top > 0 {
		query += " LIMIT ?"
		args = append(args, top)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query returns for %s: %w", reportDate, err)
	}
	defer rows.Close()

	var results []StoredReturn
	rank := 0
	for rows.Next() {
		rank++
		row := StoredReturn{Rank: rank}
		if err := rows.Scan(&row.FundName, &row.FundHouse, &row.Category, &row.ROI1Y, &row.ROI2Y, &row.ROI3Y); err != nil {
			return nil, fmt.Errorf("failed to scan return row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return rows: %w", err)
	}

	return results, nil
}

// AvailableDates returns all distinct report dates, newest first.
func (r *Repository) AvailableDates() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT report_date FROM fund_returns ORDER BY report_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan report date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report dates: %w", err)
	}

	return dates, nil
}

// ComparisonRow is one fund's 3-year ROI across several report dates.
type ComparisonRow struct {
	Rank      int                 `json:"rank"`
	FundName  string              `json:"fund_name"`
	FundHouse string              `json:"fund_house"`
	Category  string              `json:"category"`
	ROI3Y     map[string]*float64 `json:"roi_3y_by_date"`
}

// Comparison builds a side-by-side 3-year ROI view over the given report
// dates. In union mode the row set is the union of each date's top-N funds;
// otherwise only the latest date's top-N is shown. Rows are ranked by the
// latest date's ROI descending, funds missing on the latest date last.
func (r *Repository) Comparison(dates []string, topN int, union bool) ([]ComparisonRow, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(dates))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		SELECT f.fund_name, f.fund_house, f.category, fr.report_date, fr.roi_3y
		FROM fund_returns fr
		JOIN funds f ON f.id = fr.fund_id
		WHERE fr.report_date IN (%s)
	`, placeholders)

	args := make([]interface{}, len(dates))
	for i, d := range dates {
		args[i] = d
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison data: %w", err)
	}
	defer rows.Close()

	type fundEntry struct {
		house    string
		category string
		byDate   map[string]*float64
	}
	funds := make(map[string]*fundEntry)

	for rows.Next() {
		var name, house, category, date string
		var roi3y *float64
		if err := rows.Scan(&name, &house, &category, &date, &roi3y); err != nil {
			return nil, fmt.Errorf("failed to scan comparison row: %w", err)
		}
		entry, ok := funds[name]
		if !ok {
			entry = &fundEntry{house: house, category: category, byDate: make(map[string]*float64)}
			funds[name] = entry
		}
		entry.byDate[date] = roi3y
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison rows: %w", err)
	}

	latest := dates[0]
	for _, d := range dates[1:] {
		if d > latest {
			latest = d
		}
	}

	// topFor ranks fund names by ROI for one date, best first.
	topFor := func(date string) []string {
		type pair struct {
			name string
			roi  float64
		}
		var pairs []pair
		for name, entry := range funds {
			if roi := entry.byDate[date]; roi != nil {
				pairs = append(pairs, pair{name, *roi})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].roi != pairs[j].roi {
				return pairs[i].roi > pairs[j].roi
			}
			return pairs[i].name < pairs[j].name
		})
		if topN > 0 && len(pairs) > topN {
			pairs = pairs[:topN]
		}
		names := make([]string, len(pairs))
		for i, p := range pairs {
			names[i] = p.name
		}
		return names
	}

	selected := make(map[string]bool)
	if union {
		for _, d := range dates {
			for _, name := range topFor(d) {
				selected[name] = true
			}
		}
	} else {
		for _, name := range topFor(latest) {
			selected[name] = true
		}
	}

	result := make([]ComparisonRow, 0, len(selected))
	for name := range selected {
		entry := funds[name]
		row := ComparisonRow{
			FundName:  name,
			FundHouse: entry.house,
			Category:  entry.category,
			ROI3Y:     make(map[string]*float64, len(dates)),
		}
		for _, d := range dates {
			row.ROI3Y[d] = entry.byDate[d]
		}
		result = append(result, row)
	}

	// Rank by the latest date's figure. Funds absent on that date take a
	// zero key, so they land below positive performers but above negative
	// ones.
	sortKey := func(row ComparisonRow) float64 {
		if roi := row.ROI3Y[latest]; roi != nil {
			return *roi
		}
		return 0
	}
	sort.Slice(result, func(i, j int) bool {
		ki, kj := sortKey(result[i]), sortKey(result[j])
		if ki != kj {
			return ki > kj
		}
		return result[i].FundName < result[j].FundName
	})
	for i := range result {
		result[i].Rank = i + 1
	}

	return result, nil
}
