package returns

import "math"

// roi computes the percentage return between a reference NAV and a
// historical NAV over the given elapsed years. When annualize is set and
// the span exceeds one year the result is a compound annual growth rate;
// otherwise it is the raw percentage change. Non-positive inputs yield nil,
// never a computed value.
func roi(reference, historical, years float64, annualize bool) *float64 {
	if reference <= 0 || historical <= 0 {
		return nil
	}

	var pct float64
	if annualize && years > 1 {
		// CAGR = (reference/historical)^(1/years) - 1
		pct = (math.Pow(reference/historical, 1/years) - 1) * 100
	} else {
		pct = (reference - historical) / historical * 100
	}
	return &pct
}

// round2 rounds half away from zero to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// round2p rounds a nullable percentage in place.
func round2p(p *float64) *float64 {
	if p == nil {
		return nil
	}
	r := round2(*p)
	return &r
}
