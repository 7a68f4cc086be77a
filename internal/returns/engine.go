// Package returns computes trailing 1/2/3-year returns for mutual funds
// from their NAV histories.
package returns

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/fund"
	"github.com/fundwatch/fundwatch/internal/navstore"
)

// daysPerYear converts a real day count into fractional years.
const daysPerYear = 365.25

// Engine derives return metrics from the NAV store's lookup primitive.
type Engine struct {
	store *navstore.Store
	log   zerolog.Logger
}

// NewEngine creates a return engine backed by the given NAV store.
func NewEngine(store *navstore.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With().Str("component", "returns").Logger(),
	}
}

// ComputeReturns computes 1Y, 2Y and 3Y returns for a fund as of the given
// date. A nil asOf uses the fund's latest NAV point; a non-nil asOf must be
// an actual reporting day (exact match, no nearby-date fallback). The three
// historical lookups use nearest-match within the tolerance window. A fund
// without a 3-year comparison point yields no result at all: downstream
// ranking is defined purely on the 3-year figure, so 1Y/2Y-only results are
// never emitted standalone.
//
// Every failure mode returns (nil, false); this method never errors out of
// a batch.
func (e *Engine) ComputeReturns(ctx context.Context, code fund.SchemeCode, asOf *time.Time) (*fund.ReturnResult, bool) {
	history, ok := e.store.History(ctx, code)
	if !ok {
		return nil, false
	}

	var refNav float64
	var refDate time.Time
	if asOf != nil {
		point, ok := e.store.FindNav(ctx, code, *asOf, true)
		if !ok {
			e.log.Debug().
				Int("scheme", int(code)).
				Time("as_of", *asOf).
				Msg("No NAV on reference date")
			return nil, false
		}
		refNav = point.Value.InexactFloat64()
		refDate = point.Date
	} else {
		latest, ok := history.Latest()
		if !ok {
			return nil, false
		}
		refNav = latest.Value.InexactFloat64()
		refDate = latest.Date
	}

	// Naive calendar targets; the tolerance lookup absorbs weekends and
	// holidays, and the actual elapsed span is measured afterwards.
	nav1, date1, ok1 := e.historical(ctx, code, refDate.AddDate(0, 0, -365))
	nav2, date2, ok2 := e.historical(ctx, code, refDate.AddDate(0, 0, -730))
	nav3, date3, ok3 := e.historical(ctx, code, refDate.AddDate(0, 0, -1095))

	if !ok3 {
		e.log.Debug().Int("scheme", int(code)).Msg("No 3-year NAV within tolerance")
		return nil, false
	}

	result := &fund.ReturnResult{
		SchemeCode: code,
		FundName:   history.Meta.SchemeName,
		FundHouse:  history.Meta.FundHouse,
		Category:   fund.StandardizeCategory(history.Meta.SchemeCategory),
	}

	if ok1 {
		years := float64(fund.DaysBetween(refDate, date1)) / daysPerYear
		result.ROI1Y = round2p(roi(refNav, nav1, years, false))
	}
	if ok2 {
		years := float64(fund.DaysBetween(refDate, date2)) / daysPerYear
		result.ROI2Y = round2p(roi(refNav, nav2, years, true))
	}
	years := float64(fund.DaysBetween(refDate, date3)) / daysPerYear
	result.ROI3Y = round2p(roi(refNav, nav3, years, true))

	return result, true
}

// historical performs one tolerance-bounded lookup.
func (e *Engine) historical(ctx context.Context, code fund.SchemeCode, target time.Time) (float64, time.Time, bool) {
	point, ok := e.store.FindNav(ctx, code, target, false)
	if !ok {
		return 0, time.Time{}, false
	}
	return point.Value.InexactFloat64(), point.Date, true
}

// ComputeAllReturns applies ComputeReturns to every cached fund, discarding
// funds without a result or without a 3-year return, optionally filtered by
// a minimum 3-year ROI. The output carries no ordering guarantee.
func (e *Engine) ComputeAllReturns(ctx context.Context, asOf *time.Time, minROI3Y *float64) []fund.ReturnResult {
	var results []fund.ReturnResult
	skipped := 0

	for _, code := range e.store.Codes() {
		result, ok := e.ComputeReturns(ctx, code, asOf)
		if !ok || result.ROI3Y == nil {
			skipped++
			continue
		}
		if minROI3Y != nil && *result.ROI3Y < *minROI3Y {
			continue
		}
		results = append(results, *result)
	}

	e.log.Info().
		Int("computed", len(results)).
		Int("skipped", skipped).
		Msg("Computed fund returns")

	return results
}

// TopFunds returns the n best funds by 3-year ROI, descending.
func (e *Engine) TopFunds(ctx context.Context, asOf *time.Time, n int) []fund.ReturnResult {
	results := e.ComputeAllReturns(ctx, asOf, nil)

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].ROI3Y > *results[j].ROI3Y
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}
