package navstore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fundwatch/fundwatch/internal/fund"
)

// snapshotFile is the on-disk snapshot format. NAV values and dates are
// stored as provider-format strings so they round-trip without precision
// loss.
type snapshotFile struct {
	CachedAt time.Time            `msgpack:"cached_at"`
	Funds    map[int]snapshotFund `msgpack:"funds"`
}

type snapshotFund struct {
	SchemeName     string          `msgpack:"scheme_name"`
	FundHouse      string          `msgpack:"fund_house"`
	SchemeCategory string          `msgpack:"scheme_category"`
	Points         []snapshotPoint `msgpack:"points"`
}

type snapshotPoint struct {
	Date string `msgpack:"date"`
	Nav  string `msgpack:"nav"`
}

// LoadSnapshot attempts to populate the in-memory map from the persisted
// snapshot. It returns false - making no partial changes - when the snapshot
// is missing, unreadable, or older than MaxAgeHours. A MaxAgeHours of zero
// means caching is disabled and the load always fails, forcing a fresh
// fetch.
func (s *Store) LoadSnapshot() bool {
	if s.cfg.MaxAgeHours <= 0 {
		return false
	}

	raw, err := os.ReadFile(s.cfg.SnapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.cfg.SnapshotPath).Msg("Failed to read snapshot")
		}
		return false
	}

	var file snapshotFile
	if err := msgpack.Unmarshal(raw, &file); err != nil {
		s.log.Warn().Err(err).Str("path", s.cfg.SnapshotPath).Msg("Failed to decode snapshot")
		return false
	}

	// Age is computed once, here, against the snapshot's creation timestamp.
	// An expired snapshot is discarded wholesale, never partially reused.
	age := time.Since(file.CachedAt)
	maxAge := time.Duration(s.cfg.MaxAgeHours) * time.Hour
	if age > maxAge {
		s.log.Info().
			Float64("age_hours", age.Hours()).
			Int("max_age_hours", s.cfg.MaxAgeHours).
			Msg("Snapshot expired")
		return false
	}

	funds := make(map[fund.SchemeCode]*fund.History, len(file.Funds))
	for code, sf := range file.Funds {
		h := &fund.History{
			Code: fund.SchemeCode(code),
			Meta: fund.Meta{
				SchemeName:     sf.SchemeName,
				FundHouse:      sf.FundHouse,
				SchemeCategory: sf.SchemeCategory,
			},
			Points: make([]fund.NavPoint, 0, len(sf.Points)),
		}
		for _, p := range sf.Points {
			date, err := fund.ParseDate(p.Date)
			if err != nil {
				s.log.Warn().Err(err).Int("scheme", code).Msg("Corrupt date in snapshot")
				return false
			}
			value, err := decimal.NewFromString(p.Nav)
			if err != nil {
				s.log.Warn().Err(err).Int("scheme", code).Msg("Corrupt NAV value in snapshot")
				return false
			}
			h.Points = append(h.Points, fund.NavPoint{Date: date, Value: value})
		}
		funds[fund.SchemeCode(code)] = h
	}

	s.mu.Lock()
	s.funds = funds
	s.mu.Unlock()

	s.log.Info().
		Int("funds", len(funds)).
		Float64("age_hours", age.Hours()).
		Msg("Loaded NAV snapshot")

	return true
}

// SaveSnapshot serializes the entire in-memory map plus the current
// timestamp, replacing any prior snapshot. Reports false when caching is
// disabled or the write fails. The write goes through a temp file and
// rename so a crashed writer never leaves a truncated snapshot behind.
func (s *Store) SaveSnapshot() bool {
	if s.cfg.MaxAgeHours <= 0 {
		return false
	}

	s.mu.RLock()
	file := snapshotFile{
		CachedAt: time.Now(),
		Funds:    make(map[int]snapshotFund, len(s.funds)),
	}
	for code, h := range s.funds {
		sf := snapshotFund{
			SchemeName:     h.Meta.SchemeName,
			FundHouse:      h.Meta.FundHouse,
			SchemeCategory: h.Meta.SchemeCategory,
			Points:         make([]snapshotPoint, 0, len(h.Points)),
		}
		for _, p := range h.Points {
			sf.Points = append(sf.Points, snapshotPoint{
				Date: p.Date.Format(fund.DateFormat),
				Nav:  p.Value.String(),
			})
		}
		file.Funds[int(code)] = sf
	}
	s.mu.RUnlock()

	raw, err := msgpack.Marshal(&file)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode snapshot")
		return false
	}

	dir := filepath.Dir(s.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error().Err(err).Str("dir", dir).Msg("Failed to create snapshot directory")
		return false
	}

	tmp, err := os.CreateTemp(dir, ".nav_snapshot-*")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create snapshot temp file")
		return false
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		s.log.Error().Err(err).Msg("Failed to write snapshot")
		return false
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		s.log.Error().Err(err).Msg("Failed to close snapshot temp file")
		return false
	}
	if err := os.Rename(tmpName, s.cfg.SnapshotPath); err != nil {
		_ = os.Remove(tmpName)
		s.log.Error().Err(err).Msg("Failed to replace snapshot")
		return false
	}

	s.log.Info().
		Int("funds", len(file.Funds)).
		Str("path", s.cfg.SnapshotPath).
		Msg("Saved NAV snapshot")

	return true
}
