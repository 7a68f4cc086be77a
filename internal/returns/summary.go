package returns

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fundwatch/fundwatch/internal/fund"
)

// CategoryStats aggregates 3-year returns within one normalized category.
type CategoryStats struct {
	Category  string  `json:"category"`
	Count     int     `json:"count"`
	MeanROI3Y float64 `json:"mean_roi_3y"`
	StdROI3Y  float64 `json:"std_roi_3y"` // Sample standard deviation; 0 for a single fund
	BestROI3Y float64 `json:"best_roi_3y"`
}

// SummarizeByCategory aggregates results per normalized category, sorted by
// mean 3-year ROI descending. Results without a 3-year figure are ignored.
func SummarizeByCategory(results []fund.ReturnResult) []CategoryStats {
	byCategory := make(map[string][]float64)
	for _, res := range results {
		if res.ROI3Y == nil {
			continue
		}
		byCategory[res.Category] = append(byCategory[res.Category], *res.ROI3Y)
	}

	summary := make([]CategoryStats, 0, len(byCategory))
	for category, rois := range byCategory {
		cs := CategoryStats{
			Category:  category,
			Count:     len(rois),
			MeanROI3Y: round2(stat.Mean(rois, nil)),
		}
		if len(rois) > 1 {
			cs.StdROI3Y = round2(stat.StdDev(rois, nil))
		}
		best := rois[0]
		for _, roi := range rois[1:] {
			if roi > best {
				best = roi
			}
		}
		cs.BestROI3Y = best
		summary = append(summary, cs)
	}

	sort.Slice(summary, func(i, j int) bool {
		if summary[i].MeanROI3Y != summary[j].MeanROI3Y {
			return summary[i].MeanROI3Y > summary[j].MeanROI3Y
		}
		return summary[i].Category < summary[j].Category
	})

	return summary
}
