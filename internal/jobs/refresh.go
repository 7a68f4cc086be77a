// Package jobs contains the scheduled background jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/database"
	"github.com/fundwatch/fundwatch/internal/fund"
	"github.com/fundwatch/fundwatch/internal/mfapi"
	"github.com/fundwatch/fundwatch/internal/navstore"
	"github.com/fundwatch/fundwatch/internal/returns"
)

// refreshTimeout bounds one full refresh cycle, including the bulk fetch.
const refreshTimeout = 30 * time.Minute

// RefreshConfig holds refresh job tuning.
type RefreshConfig struct {
	MaxFunds     int // Cap on funds taken from the scheme list
	FetchWorkers int // Bulk fetch concurrency
	TopN         int // Funds persisted per report date
}

// RefreshJob repopulates the NAV store and persists a fresh set of top
// funds by 3-year ROI. It prefers the snapshot; a stale or disabled cache
// forces a full fetch from the provider.
type RefreshJob struct {
	client *mfapi.Client
	store  *navstore.Store
	engine *returns.Engine
	repo   *returns.Repository
	db     *database.DB
	cfg    RefreshConfig
	log    zerolog.Logger
}

// NewRefreshJob creates the NAV refresh job.
func NewRefreshJob(
	client *mfapi.Client,
	store *navstore.Store,
	engine *returns.Engine,
	repo *returns.Repository,
	db *database.DB,
	cfg RefreshConfig,
	log zerolog.Logger,
) *RefreshJob {
	return &RefreshJob{
		client: client,
		store:  store,
		engine: engine,
		repo:   repo,
		db:     db,
		cfg:    cfg,
		log:    log.With().Str("component", "refresh_job").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string { return "nav_refresh" }

// Run implements scheduler.Job.
func (j *RefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if !j.store.LoadSnapshot() {
		schemes, err := j.client.FundList(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to fetch scheme list: %w", err)
		}
		if j.cfg.MaxFunds > 0 && len(schemes) > j.cfg.MaxFunds {
			schemes = schemes[:j.cfg.MaxFunds]
		}

		codes := make([]fund.SchemeCode, len(schemes))
		for i, s := range schemes {
			codes[i] = s.SchemeCode
		}

		cached := j.store.FetchBulk(ctx, codes, j.cfg.FetchWorkers)
		if cached == 0 {
			return fmt.Errorf("bulk fetch cached no funds (%d attempted)", len(codes))
		}
	}

	results := j.engine.ComputeAllReturns(ctx, nil, nil)
	if len(results) == 0 {
		return fmt.Errorf("no funds produced a 3-year return")
	}

	reportDate := time.Now().UTC().Format("2006-01-02")
	saved, err := j.repo.SaveBatch(results, reportDate, "mfapi", j.cfg.TopN)
	if err != nil {
		return fmt.Errorf("failed to persist returns: %w", err)
	}

	// The bulk upsert is the only heavy write of the day; checkpoint so the
	// WAL file does not grow across refresh cycles.
	if j.db != nil {
		if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint failed")
		}
	}

	j.log.Info().
		Int("funds", j.store.Len()).
		Int("computed", len(results)).
		Int("saved", saved).
		Str("report_date", reportDate).
		Msg("Refresh complete")

	return nil
}
