package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// FacultyPerformance ranks one faculty member by mean rating. Rank 1 is the
// highest mean; faculty with no rated responses sort last. TotalResponses
// counts every snapshot for the faculty including unrated ones, unlike
// SubjectRating.TotalResponses which counts rated responses only.
type FacultyPerformance struct {
	FacultyID      string   `json:"faculty_id"`
	FacultyName    string   `json:"faculty_name"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
	Rank           int      `json:"rank"`
	SubjectCount   int      `json:"subject_count"`
	DivisionCount  int      `json:"division_count"`
}

// ComputeFacultyPerformance aggregates per faculty and assigns 1-based ranks
// by descending mean rating. Exact ties keep the order in which the faculty
// first appeared in the input. Snapshots without a faculty id are skipped.
func ComputeFacultyPerformance(snapshots []models.FeedbackSnapshot) []FacultyPerformance {
	type facultyAcc struct {
		name      string
		ratings   ratingAccumulator
		total     int
		subjects  stringSet
		divisions stringSet
	}
	groups := make(map[string]*facultyAcc)
	order := make([]string, 0)
	for _, s := range snapshots {
		if s.FacultyID == "" {
			continue
		}
		acc, ok := groups[s.FacultyID]
		if !ok {
			acc = &facultyAcc{name: s.FacultyName, subjects: stringSet{}, divisions: stringSet{}}
			groups[s.FacultyID] = acc
			order = append(order, s.FacultyID)
		}
		acc.ratings.add(s.Rating)
		acc.total++
		acc.subjects.add(s.SubjectID)
		acc.divisions.add(s.DivisionID)
	}

	performances := make([]FacultyPerformance, 0, len(order))
	for _, facultyID := range order {
		acc := groups[facultyID]
		performances = append(performances, FacultyPerformance{
			FacultyID:      facultyID,
			FacultyName:    acc.name,
			AverageRating:  acc.ratings.mean(),
			TotalResponses: acc.total,
			SubjectCount:   len(acc.subjects),
			DivisionCount:  len(acc.divisions),
		})
	}
	sort.SliceStable(performances, func(i, j int) bool {
		return lessByRating(performances[i].AverageRating, performances[j].AverageRating)
	})
	for i := range performances {
		performances[i].Rank = i + 1
	}
	return performances
}

// lessByRating orders descending by mean; nil means (no rated responses)
// sort after any numeric mean.
func lessByRating(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
