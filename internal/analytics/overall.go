package analytics

import "github.com/noah-isme/feedback-analytics-api/internal/models"

// OverallStats summarises an entire snapshot set.
type OverallStats struct {
	TotalResponses  int      `json:"total_responses"`
	AverageRating   *float64 `json:"average_rating"`
	SubjectCount    int      `json:"subject_count"`
	FacultyCount    int      `json:"faculty_count"`
	StudentCount    int      `json:"student_count"`
	DivisionCount   int      `json:"division_count"`
	DepartmentCount int      `json:"department_count"`
}

// ComputeOverallStats returns summary statistics for the snapshot set, or nil
// when the set is empty. TotalResponses counts every snapshot; AverageRating
// only averages snapshots that carry a numeric rating and is nil when none do.
func ComputeOverallStats(snapshots []models.FeedbackSnapshot) *OverallStats {
	if len(snapshots) == 0 {
		return nil
	}
	var acc ratingAccumulator
	subjects := stringSet{}
	faculty := stringSet{}
	students := stringSet{}
	divisions := stringSet{}
	departments := stringSet{}
	for _, s := range snapshots {
		acc.add(s.Rating)
		subjects.add(s.SubjectID)
		faculty.add(s.FacultyID)
		students.add(s.StudentID)
		divisions.add(s.DivisionID)
		departments.add(s.DepartmentID)
	}
	return &OverallStats{
		TotalResponses:  len(snapshots),
		AverageRating:   acc.mean(),
		SubjectCount:    len(subjects),
		FacultyCount:    len(faculty),
		StudentCount:    len(students),
		DivisionCount:   len(divisions),
		DepartmentCount: len(departments),
	}
}

// LectureLabComparison contrasts aggregate lecture and lab means.
type LectureLabComparison struct {
	LectureRating    *float64 `json:"lecture_rating"`
	LabRating        *float64 `json:"lab_rating"`
	LectureResponses int      `json:"lecture_responses"`
	LabResponses     int      `json:"lab_responses"`
}

// ComputeLectureLabComparison aggregates rated responses by session type.
// Returns nil when the snapshot set is empty.
func ComputeLectureLabComparison(snapshots []models.FeedbackSnapshot) *LectureLabComparison {
	if len(snapshots) == 0 {
		return nil
	}
	var lecture, lab ratingAccumulator
	for _, s := range snapshots {
		switch s.LectureType {
		case models.LectureTypeLecture:
			lecture.add(s.Rating)
		case models.LectureTypeLab:
			lab.add(s.Rating)
		}
	}
	return &LectureLabComparison{
		LectureRating:    lecture.mean(),
		LabRating:        lab.mean(),
		LectureResponses: lecture.count,
		LabResponses:     lab.count,
	}
}

// DefaultResponsesPerStudent is the assumed number of feedback prompts each
// student receives. The response-rate formula is a rough participation
// heuristic; deployments tune the denominator through configuration.
const DefaultResponsesPerStudent = 10

// ComputeResponseRate estimates participation as a percentage:
// responses / (uniqueStudents * perStudentExpected), capped at 100.
func ComputeResponseRate(snapshots []models.FeedbackSnapshot, perStudentExpected int) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	if perStudentExpected <= 0 {
		perStudentExpected = DefaultResponsesPerStudent
	}
	students := stringSet{}
	for _, s := range snapshots {
		students.add(s.StudentID)
	}
	if len(students) == 0 {
		return 0
	}
	rate := float64(len(snapshots)) / float64(len(students)*perStudentExpected) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
