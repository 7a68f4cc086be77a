// Package fund defines the core domain types for mutual fund NAV histories
// and computed return results.
package fund

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the day-month-year layout used by the NAV provider.
const DateFormat = "02-01-2006"

// SchemeCode is the provider's stable numeric identifier for a fund.
type SchemeCode int

// NavPoint is a single (date, NAV value) observation.
// Date is normalized to midnight UTC; Value is strictly positive.
type NavPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// Meta holds fund metadata as reported by the NAV provider.
type Meta struct {
	SchemeName     string
	FundHouse      string
	SchemeCategory string // Raw category string, see StandardizeCategory
}

// History is a fund's full NAV history. Points are ordered most-recent-first
// as delivered by the provider. The NAV store owns History values; other
// components treat them as read-only.
type History struct {
	Code   SchemeCode
	Meta   Meta
	Points []NavPoint
}

// Latest returns the most recent NAV point.
func (h *History) Latest() (NavPoint, bool) {
	if len(h.Points) == 0 {
		return NavPoint{}, false
	}
	return h.Points[0], true
}

// ReturnResult holds trailing returns for a fund as of a reference date.
// A nil ROI pointer means the value could not be computed for that horizon,
// which is distinct from a zero return.
type ReturnResult struct {
	SchemeCode SchemeCode `json:"scheme_code"`
	FundName   string     `json:"fund_name"`
	FundHouse  string     `json:"fund_house"`
	Category   string     `json:"category"`
	ROI1Y      *float64   `json:"roi_1y"`
	ROI2Y      *float64   `json:"roi_2y"`
	ROI3Y      *float64   `json:"roi_3y"`
}

// ParseDate parses a provider date string (day-month-year) into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Day truncates a timestamp to midnight UTC so calendar-day comparisons
// ignore the time-of-day component.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day (UTC).
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// DaysBetween returns the absolute number of calendar days between two dates.
func DaysBetween(a, b time.Time) int {
	d := int(Day(a).Sub(Day(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// CleanFundHouse strips the redundant " Mutual Fund" suffix from a fund
// house name ("Axis Mutual Fund" -> "Axis").
func CleanFundHouse(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, " Mutual Fund", ""))
}
