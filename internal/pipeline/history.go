package pipeline

import (
	"sort"

	"github.com/theirongolddev/dshield/internal/model"
)

// SummarizeHistory computes a score trend from reports in any order.
func SummarizeHistory(reports []model.Report) model.Trend {
	if len(reports) == 0 {
		return model.Trend{}
	}

	sorted := make([]model.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	t := model.Trend{
		Runs:   len(sorted),
		Best:   sorted[0].ShieldScore,
		Worst:  sorted[0].ShieldScore,
		Scores: make([]float64, len(sorted)),
	}
	for i, r := range sorted {
		t.Scores[i] = r.ShieldScore
		t.Best = max(t.Best, r.ShieldScore)
		t.Worst = min(t.Worst, r.ShieldScore)
	}
	t.Latest = t.Scores[len(t.Scores)-1]
	t.Change = t.Latest - t.Scores[0]
	return t
}

// FilterByProfile returns reports whose profile name matches exactly.
func FilterByProfile(reports []model.Report, name string) []model.Report {
	var out []model.Report
	for _, r := range reports {
		if r.Profile == name {
			out = append(out, r)
		}
	}
	return out
}
