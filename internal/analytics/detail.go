package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// SubjectFacultyBreakdown is the per-faculty slice of a subject detail view.
type SubjectFacultyBreakdown struct {
	FacultyID      string   `json:"faculty_id"`
	FacultyName    string   `json:"faculty_name"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
	Divisions      []string `json:"divisions"`
}

// SubjectDivisionBreakdown is the per-division slice of a subject detail view.
type SubjectDivisionBreakdown struct {
	DivisionID     string   `json:"division_id"`
	DivisionName   string   `json:"division_name"`
	LectureRating  *float64 `json:"lecture_rating"`
	LabRating      *float64 `json:"lab_rating"`
	OverallRating  *float64 `json:"overall_rating"`
	TotalResponses int      `json:"total_responses"`
}

// SubjectCategoryBreakdown is the per-question-category slice.
type SubjectCategoryBreakdown struct {
	CategoryID     string   `json:"category_id"`
	CategoryName   string   `json:"category_name"`
	AverageRating  *float64 `json:"average_rating"`
	TotalResponses int      `json:"total_responses"`
}

// SubjectDetail is the drill-down view for a single subject.
type SubjectDetail struct {
	SubjectID   string                     `json:"subject_id"`
	SubjectName string                     `json:"subject_name"`
	Faculty     []SubjectFacultyBreakdown  `json:"faculty"`
	Divisions   []SubjectDivisionBreakdown `json:"divisions"`
	Categories  []SubjectCategoryBreakdown `json:"categories"`
}

// ComputeSubjectDetail builds the faculty, division, and question-category
// breakdowns for one subject. Returns nil when the subject id does not occur
// in the snapshot set.
func ComputeSubjectDetail(snapshots []models.FeedbackSnapshot, subjectID string) *SubjectDetail {
	if subjectID == "" {
		return nil
	}
	scoped := Apply(snapshots, Filter{SubjectID: subjectID})
	if len(scoped) == 0 {
		return nil
	}

	detail := &SubjectDetail{
		SubjectID:   subjectID,
		SubjectName: scoped[0].SubjectName,
		Faculty:     facultyBreakdown(scoped),
		Divisions:   divisionBreakdown(scoped),
		Categories:  categoryBreakdown(scoped),
	}
	return detail
}

func facultyBreakdown(scoped []models.FeedbackSnapshot) []SubjectFacultyBreakdown {
	type acc struct {
		name      string
		ratings   ratingAccumulator
		total     int
		divisions stringSet
	}
	groups := make(map[string]*acc)
	for _, s := range scoped {
		if s.FacultyID == "" {
			continue
		}
		a, ok := groups[s.FacultyID]
		if !ok {
			a = &acc{name: s.FacultyName, divisions: stringSet{}}
			groups[s.FacultyID] = a
		}
		a.ratings.add(s.Rating)
		a.total++
		a.divisions.add(s.DivisionName)
	}

	rows := make([]SubjectFacultyBreakdown, 0, len(groups))
	for facultyID, a := range groups {
		rows = append(rows, SubjectFacultyBreakdown{
			FacultyID:      facultyID,
			FacultyName:    a.name,
			AverageRating:  a.ratings.mean(),
			TotalResponses: a.total,
			Divisions:      a.divisions.sorted(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].FacultyID < rows[j].FacultyID })
	return rows
}

func divisionBreakdown(scoped []models.FeedbackSnapshot) []SubjectDivisionBreakdown {
	type acc struct {
		name    string
		lecture ratingAccumulator
		lab     ratingAccumulator
		total   int
	}
	groups := make(map[string]*acc)
	for _, s := range scoped {
		if s.DivisionID == "" {
			continue
		}
		a, ok := groups[s.DivisionID]
		if !ok {
			a = &acc{name: s.DivisionName}
			groups[s.DivisionID] = a
		}
		switch s.LectureType {
		case models.LectureTypeLecture:
			a.lecture.add(s.Rating)
		case models.LectureTypeLab:
			a.lab.add(s.Rating)
		}
		a.total++
	}

	rows := make([]SubjectDivisionBreakdown, 0, len(groups))
	for divisionID, a := range groups {
		rows = append(rows, SubjectDivisionBreakdown{
			DivisionID:     divisionID,
			DivisionName:   a.name,
			LectureRating:  a.lecture.mean(),
			LabRating:      a.lab.mean(),
			OverallRating:  weightedMean(a.lecture, a.lab),
			TotalResponses: a.total,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DivisionID < rows[j].DivisionID })
	return rows
}

func categoryBreakdown(scoped []models.FeedbackSnapshot) []SubjectCategoryBreakdown {
	type acc struct {
		name    string
		ratings ratingAccumulator
		total   int
	}
	groups := make(map[string]*acc)
	for _, s := range scoped {
		if s.QuestionCategoryID == "" {
			continue
		}
		a, ok := groups[s.QuestionCategoryID]
		if !ok {
			a = &acc{name: s.QuestionCategory}
			groups[s.QuestionCategoryID] = a
		}
		a.ratings.add(s.Rating)
		a.total++
	}

	rows := make([]SubjectCategoryBreakdown, 0, len(groups))
	for categoryID, a := range groups {
		rows = append(rows, SubjectCategoryBreakdown{
			CategoryID:     categoryID,
			CategoryName:   a.name,
			AverageRating:  a.ratings.mean(),
			TotalResponses: a.total,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CategoryID < rows[j].CategoryID })
	return rows
}
