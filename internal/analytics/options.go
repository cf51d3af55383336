package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// Option is one selectable id/label pair for a filter dropdown.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SemesterOption carries the semester number alongside its id.
type SemesterOption struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

// FilterOptions lists every distinct value a filter field can take within a
// snapshot set.
type FilterOptions struct {
	AcademicYears []Option         `json:"academic_years"`
	Departments   []Option         `json:"departments"`
	Semesters     []SemesterOption `json:"semesters"`
	Divisions     []Option         `json:"divisions"`
	Subjects      []Option         `json:"subjects"`
	Faculty       []Option         `json:"faculty"`
}

// ComputeFilterOptions collects the distinct ids appearing in the snapshot
// set, labelled with the first name seen for each id. Lists are sorted by id;
// snapshots missing an id simply do not contribute to that list. An empty
// input yields empty lists, never nil.
func ComputeFilterOptions(snapshots []models.FeedbackSnapshot) FilterOptions {
	years := map[string]string{}
	departments := map[string]string{}
	semesters := map[string]int{}
	divisions := map[string]string{}
	subjects := map[string]string{}
	faculty := map[string]string{}
	for _, s := range snapshots {
		collectOption(years, s.AcademicYearID, s.AcademicYear)
		collectOption(departments, s.DepartmentID, s.DepartmentName)
		collectOption(divisions, s.DivisionID, s.DivisionName)
		collectOption(subjects, s.SubjectID, s.SubjectName)
		collectOption(faculty, s.FacultyID, s.FacultyName)
		if s.SemesterID != "" {
			if _, ok := semesters[s.SemesterID]; !ok {
				semesters[s.SemesterID] = s.SemesterNumber
			}
		}
	}
	return FilterOptions{
		AcademicYears: sortedOptions(years),
		Departments:   sortedOptions(departments),
		Semesters:     sortedSemesters(semesters),
		Divisions:     sortedOptions(divisions),
		Subjects:      sortedOptions(subjects),
		Faculty:       sortedOptions(faculty),
	}
}

func collectOption(dst map[string]string, id, name string) {
	if id == "" {
		return
	}
	if _, ok := dst[id]; !ok {
		dst[id] = name
	}
}

func sortedOptions(src map[string]string) []Option {
	out := make([]Option, 0, len(src))
	for id, name := range src {
		out = append(out, Option{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedSemesters(src map[string]int) []SemesterOption {
	out := make([]SemesterOption, 0, len(src))
	for id, number := range src {
		out = append(out, SemesterOption{ID: id, Number: number})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out
}
