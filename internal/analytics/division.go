package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// DivisionComparison is the per-division mean and volume view.
type DivisionComparison struct {
	DivisionID     string   `json:"division_id"`
	DivisionName   string   `json:"division_name"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
}

// ComputeDivisionComparisons aggregates per division, sorted by division id.
// Snapshots without a division id are skipped. For a batch comparison scoped
// to one division, pre-filter the input with Apply before calling.
func ComputeDivisionComparisons(snapshots []models.FeedbackSnapshot) []DivisionComparison {
	type divisionAcc struct {
		name    string
		ratings ratingAccumulator
		total   int
	}
	groups := make(map[string]*divisionAcc)
	for _, s := range snapshots {
		if s.DivisionID == "" {
			continue
		}
		acc, ok := groups[s.DivisionID]
		if !ok {
			acc = &divisionAcc{name: s.DivisionName}
			groups[s.DivisionID] = acc
		}
		acc.ratings.add(s.Rating)
		acc.total++
	}

	comparisons := make([]DivisionComparison, 0, len(groups))
	for divisionID, acc := range groups {
		comparisons = append(comparisons, DivisionComparison{
			DivisionID:     divisionID,
			DivisionName:   acc.name,
			AverageRating:  acc.ratings.mean(),
			TotalResponses: acc.total,
		})
	}
	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].DivisionID < comparisons[j].DivisionID
	})
	return comparisons
}
