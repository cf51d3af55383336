package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// TrendCell is one (academic year, sub-key) aggregation cell shared by the
// year-scoped trend views.
type TrendCell struct {
	AcademicYearID string   `json:"academic_year_id"`
	AcademicYear   string   `json:"academic_year"`
	KeyID          string   `json:"key_id"`
	KeyName        string   `json:"key_name"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
}

// YearDepartmentTrend holds one row per (year, department) cell.
type YearDepartmentTrend = TrendCell

// YearDivisionTrend holds one row per (year, division) cell.
type YearDivisionTrend = TrendCell

// ComputeYearDepartmentTrends groups by academic year then department,
// producing one cell per pair sorted by year string then department id.
func ComputeYearDepartmentTrends(snapshots []models.FeedbackSnapshot) []YearDepartmentTrend {
	return computeYearTrends(snapshots, func(s models.FeedbackSnapshot) (string, string) {
		return s.DepartmentID, s.DepartmentName
	})
}

// ComputeYearDivisionTrends groups by academic year then division.
func ComputeYearDivisionTrends(snapshots []models.FeedbackSnapshot) []YearDivisionTrend {
	return computeYearTrends(snapshots, func(s models.FeedbackSnapshot) (string, string) {
		return s.DivisionID, s.DivisionName
	})
}

func computeYearTrends(snapshots []models.FeedbackSnapshot, key func(models.FeedbackSnapshot) (string, string)) []TrendCell {
	type cellKey struct {
		yearID string
		keyID  string
	}
	type cellAcc struct {
		year    string
		keyName string
		ratings ratingAccumulator
		total   int
	}
	groups := make(map[cellKey]*cellAcc)
	for _, s := range snapshots {
		keyID, keyName := key(s)
		if s.AcademicYearID == "" || keyID == "" {
			continue
		}
		ck := cellKey{yearID: s.AcademicYearID, keyID: keyID}
		acc, ok := groups[ck]
		if !ok {
			acc = &cellAcc{year: s.AcademicYear, keyName: keyName}
			groups[ck] = acc
		}
		acc.ratings.add(s.Rating)
		acc.total++
	}

	cells := make([]TrendCell, 0, len(groups))
	for ck, acc := range groups {
		cells = append(cells, TrendCell{
			AcademicYearID: ck.yearID,
			AcademicYear:   acc.year,
			KeyID:          ck.keyID,
			KeyName:        acc.keyName,
			AverageRating:  acc.ratings.mean(),
			TotalResponses: acc.total,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].AcademicYear != cells[j].AcademicYear {
			return cells[i].AcademicYear < cells[j].AcademicYear
		}
		return cells[i].KeyID < cells[j].KeyID
	})
	return cells
}

// YearPoint is one academic year's aggregate inside a semester series.
type YearPoint struct {
	AcademicYearID string   `json:"academic_year_id"`
	AcademicYear   string   `json:"academic_year"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
}

// SemesterTrend is a semester's rating trajectory across academic years.
type SemesterTrend struct {
	SemesterNumber int         `json:"semester_number"`
	Series         []YearPoint `json:"series"`
}

// ComputeSemesterTrends groups by semester number, listing the per-year
// series sorted by year string. Semesters are sorted ascending; snapshots
// with a non-positive semester number or a missing academic year id are
// skipped.
func ComputeSemesterTrends(snapshots []models.FeedbackSnapshot) []SemesterTrend {
	type pointKey struct {
		semester int
		yearID   string
	}
	type pointAcc struct {
		year    string
		ratings ratingAccumulator
		total   int
	}
	groups := make(map[pointKey]*pointAcc)
	for _, s := range snapshots {
		if s.SemesterNumber <= 0 || s.AcademicYearID == "" {
			continue
		}
		pk := pointKey{semester: s.SemesterNumber, yearID: s.AcademicYearID}
		acc, ok := groups[pk]
		if !ok {
			acc = &pointAcc{year: s.AcademicYear}
			groups[pk] = acc
		}
		acc.ratings.add(s.Rating)
		acc.total++
	}

	bySemester := make(map[int][]YearPoint)
	for pk, acc := range groups {
		bySemester[pk.semester] = append(bySemester[pk.semester], YearPoint{
			AcademicYearID: pk.yearID,
			AcademicYear:   acc.year,
			AverageRating:  acc.ratings.mean(),
			TotalResponses: acc.total,
		})
	}

	trends := make([]SemesterTrend, 0, len(bySemester))
	for semester, series := range bySemester {
		sort.Slice(series, func(i, j int) bool {
			if series[i].AcademicYear != series[j].AcademicYear {
				return series[i].AcademicYear < series[j].AcademicYear
			}
			return series[i].AcademicYearID < series[j].AcademicYearID
		})
		trends = append(trends, SemesterTrend{SemesterNumber: semester, Series: series})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].SemesterNumber < trends[j].SemesterNumber
	})
	return trends
}
