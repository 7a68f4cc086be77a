// Package navstore owns fetching, caching, and date-indexed retrieval of
// mutual fund NAV histories.
package navstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/fund"
)

// ToleranceDays is the half-width of the window used for nearest-date
// lookups. Trading calendars have weekends and holidays, so a historical
// target rarely lands on an exact reporting day.
const ToleranceDays = 10

// MinNavPoints is the minimum history length worth caching. Funds with less
// history cannot produce a 3-year return and would pollute the cache with
// unusable partial data.
const MinNavPoints = 100

// NavFetcher retrieves a fund's full NAV history from the external source.
type NavFetcher interface {
	FetchNav(ctx context.Context, code fund.SchemeCode) (*fund.History, error)
}

// Config holds NAV store configuration.
type Config struct {
	SnapshotPath string // Path of the persisted snapshot file
	MaxAgeHours  int    // Snapshot expiry; 0 disables caching entirely
}

// Store holds NAV histories keyed by scheme code. The in-memory map is safe
// for concurrent use; bulk fetches write one entry per completed fetch.
type Store struct {
	mu      sync.RWMutex
	funds   map[fund.SchemeCode]*fund.History
	fetcher NavFetcher
	cfg     Config
	log     zerolog.Logger
}

// New creates a NAV store backed by the given fetcher.
func New(fetcher NavFetcher, cfg Config, log zerolog.Logger) *Store {
	return &Store{
		funds:   make(map[fund.SchemeCode]*fund.History),
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.With().Str("component", "navstore").Logger(),
	}
}

// Len returns the number of cached funds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.funds)
}

// Codes returns the scheme codes currently cached, sorted ascending.
func (s *Store) Codes() []fund.SchemeCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]fund.SchemeCode, 0, len(s.funds))
	for code := range s.funds {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// History returns the cached history for a fund, fetching it from the
// external source on a cache miss. Fetched histories shorter than
// MinNavPoints are discarded: insufficient history is treated the same as
// not-found by callers but logged distinctly for diagnostics.
func (s *Store) History(ctx context.Context, code fund.SchemeCode) (*fund.History, bool) {
	s.mu.RLock()
	h, ok := s.funds[code]
	s.mu.RUnlock()
	if ok {
		return h, true
	}

	h, err := s.fetcher.FetchNav(ctx, code)
	if err != nil {
		s.log.Debug().Err(err).Int("scheme", int(code)).Msg("NAV fetch failed")
		return nil, false
	}
	if len(h.Points) < MinNavPoints {
		s.log.Debug().
			Int("scheme", int(code)).
			Int("points", len(h.Points)).
			Msg("Insufficient NAV history, not caching")
		return nil, false
	}

	s.mu.Lock()
	s.funds[code] = h
	s.mu.Unlock()

	return h, true
}

// Meta returns a fund's metadata, fetching the history on a cache miss.
func (s *Store) Meta(ctx context.Context, code fund.SchemeCode) (fund.Meta, bool) {
	h, ok := s.History(ctx, code)
	if !ok {
		return fund.Meta{}, false
	}
	return h.Meta, true
}

// FindNav locates the NAV for a target date.
//
// In exact mode only a calendar-day match is accepted; there is no fallback
// to nearby dates. Exact mode is for reference (as-of) dates, which must be
// actual reporting days - substituting a neighbor would shift every derived
// return by an unpredictable offset.
//
// In tolerance mode the nearest point within ToleranceDays wins. Ties on
// distance go to the first point encountered in provider order
// (most-recent-first); the strict less-than comparison below fixes that
// tie-break.
func (s *Store) FindNav(ctx context.Context, code fund.SchemeCode, target time.Time, exact bool) (fund.NavPoint, bool) {
	h, ok := s.History(ctx, code)
	if !ok {
		return fund.NavPoint{}, false
	}

	for _, p := range h.Points {
		if fund.SameDay(p.Date, target) {
			return p, true
		}
	}

	if exact {
		return fund.NavPoint{}, false
	}

	var best fund.NavPoint
	bestDiff := -1
	for _, p := range h.Points {
		diff := fund.DaysBetween(p.Date, target)
		if diff <= ToleranceDays && (bestDiff < 0 || diff < bestDiff) {
			best = p
			bestDiff = diff
		}
	}
	if bestDiff < 0 {
		return fund.NavPoint{}, false
	}
	return best, true
}

// FetchBulk retrieves many funds' histories concurrently, bounded by the
// given worker count. Individual fetch failures are isolated; the return
// value counts funds actually cached, not funds attempted. A snapshot is
// saved on completion unless caching is disabled.
func (s *Store) FetchBulk(ctx context.Context, codes []fund.SchemeCode, workers int) int {
	if len(codes) == 0 {
		return s.Len()
	}
	if workers <= 0 {
		workers = 15
	}
	if len(codes) < workers {
		workers = len(codes)
	}

	batchID := uuid.New().String()
	log := s.log.With().Str("batch_id", batchID).Logger()
	log.Info().
		Int("funds", len(codes)).
		Int("workers", workers).
		Msg("Starting bulk NAV fetch")

	jobs := make(chan fund.SchemeCode, len(codes))
	results := make(chan bool, len(codes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				_, ok := s.History(ctx, code)
				results <- ok
			}
		}()
	}

	// Drain results while fetches are still in flight so progress is
	// reported as the batch advances, not dumped after it finishes.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		completed := 0
		for range results {
			completed++
			if completed%100 == 0 {
				log.Debug().Int("completed", completed).Int("total", len(codes)).Msg("Bulk fetch progress")
			}
		}
	}()

	for _, code := range codes {
		jobs <- code
	}
	close(jobs)

	wg.Wait()
	close(results)
	<-drained

	cached := s.Len()
	log.Info().Int("cached", cached).Msg("Bulk NAV fetch complete")

	if s.cfg.MaxAgeHours > 0 {
		s.SaveSnapshot()
	}

	return cached
}

// Clear drops all cached histories.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds = make(map[fund.SchemeCode]*fund.History)
}
