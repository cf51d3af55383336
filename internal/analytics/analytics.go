// Package analytics derives statistical views from feedback snapshot sets.
//
// Every Compute function is pure: it reads its input slice, allocates fresh
// output, and touches no shared state. Calling a function twice on the same
// unmodified input yields deep-equal output. Snapshots with a nil Rating
// never contribute to a mean and never count toward a rated-response total;
// snapshots missing the id a grouping keys on are skipped for that grouping
// only. List outputs are sorted by their grouping key so results do not
// depend on input ordering (faculty ranking ties are the one exception and
// preserve first-seen order).
package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// Filter restricts a snapshot set before aggregation. Empty fields match
// everything.
type Filter struct {
	SubjectID      string
	FacultyID      string
	DivisionID     string
	DepartmentID   string
	AcademicYearID string
	SemesterID     string
}

// Matches reports whether the snapshot satisfies every set field.
func (f Filter) Matches(s models.FeedbackSnapshot) bool {
	if f.SubjectID != "" && s.SubjectID != f.SubjectID {
		return false
	}
	if f.FacultyID != "" && s.FacultyID != f.FacultyID {
		return false
	}
	if f.DivisionID != "" && s.DivisionID != f.DivisionID {
		return false
	}
	if f.DepartmentID != "" && s.DepartmentID != f.DepartmentID {
		return false
	}
	if f.AcademicYearID != "" && s.AcademicYearID != f.AcademicYearID {
		return false
	}
	if f.SemesterID != "" && s.SemesterID != f.SemesterID {
		return false
	}
	return true
}

// FilterFromScope converts the transport-level filter into an engine filter.
func FilterFromScope(scope models.SnapshotFilter) Filter {
	return Filter{
		SubjectID:      scope.SubjectID,
		FacultyID:      scope.FacultyID,
		DivisionID:     scope.DivisionID,
		DepartmentID:   scope.DepartmentID,
		AcademicYearID: scope.AcademicYearID,
		SemesterID:     scope.SemesterID,
	}
}

// Apply returns the snapshots matching the filter. The input is never
// mutated; a zero filter returns a copy so callers can treat the result as
// their own.
func Apply(snapshots []models.FeedbackSnapshot, f Filter) []models.FeedbackSnapshot {
	out := make([]models.FeedbackSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// ratingAccumulator collects the running sum and count of non-nil ratings.
type ratingAccumulator struct {
	sum   float64
	count int
}

func (a *ratingAccumulator) add(rating *float64) {
	if rating == nil {
		return
	}
	a.sum += *rating
	a.count++
}

// mean returns the average rating, or nil when nothing was rated.
func (a ratingAccumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	m := a.sum / float64(a.count)
	return &m
}

// weightedMean combines two segment accumulators proportionally to their
// rated-response counts: (sumA + sumB) / (countA + countB).
func weightedMean(a, b ratingAccumulator) *float64 {
	total := a.count + b.count
	if total == 0 {
		return nil
	}
	m := (a.sum + b.sum) / float64(total)
	return &m
}

// stringSet tracks distinct non-empty identifiers.
type stringSet map[string]struct{}

func (s stringSet) add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
