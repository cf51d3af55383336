package models

import "time"

// LectureType distinguishes classroom sessions from practical lab sessions.
type LectureType string

const (
	LectureTypeLecture LectureType = "LECTURE"
	LectureTypeLab     LectureType = "LAB"
)

// Valid reports whether the value is one of the two known session kinds.
func (t LectureType) Valid() bool {
	switch t {
	case LectureTypeLecture, LectureTypeLab:
		return true
	default:
		return false
	}
}

// FeedbackSnapshot is one student response for a subject/faculty/session-type
// combination. Rows are produced by the collection pipeline and are read-only
// inside this service; Rating is nil when the student skipped the question.
type FeedbackSnapshot struct {
	StudentID          string      `db:"student_id" json:"student_id"`
	SubjectID          string      `db:"subject_id" json:"subject_id"`
	SubjectName        string      `db:"subject_name" json:"subject_name"`
	FacultyID          string      `db:"faculty_id" json:"faculty_id"`
	FacultyName        string      `db:"faculty_name" json:"faculty_name"`
	DivisionID         string      `db:"division_id" json:"division_id"`
	DivisionName       string      `db:"division_name" json:"division_name"`
	DepartmentID       string      `db:"department_id" json:"department_id"`
	DepartmentName     string      `db:"department_name" json:"department_name"`
	AcademicYearID     string      `db:"academic_year_id" json:"academic_year_id"`
	AcademicYear       string      `db:"academic_year" json:"academic_year"`
	SemesterID         string      `db:"semester_id" json:"semester_id"`
	SemesterNumber     int         `db:"semester_number" json:"semester_number"`
	LectureType        LectureType `db:"lecture_type" json:"lecture_type"`
	Rating             *float64    `db:"rating" json:"rating,omitempty"`
	QuestionCategoryID string      `db:"question_category_id" json:"question_category_id"`
	QuestionCategory   string      `db:"question_category" json:"question_category"`
	SubmittedAt        *time.Time  `db:"submitted_at" json:"submitted_at,omitempty"`
}

// SnapshotFilter scopes snapshot retrieval before aggregation. Empty fields
// are ignored; the filter restricts the input set, it is not part of the
// aggregation math itself.
type SnapshotFilter struct {
	SubjectID      string `json:"subject_id,omitempty"`
	FacultyID      string `json:"faculty_id,omitempty"`
	DivisionID     string `json:"division_id,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	AcademicYearID string `json:"academic_year_id,omitempty"`
	SemesterID     string `json:"semester_id,omitempty"`
}

// IsZero reports whether no scope restriction is set.
func (f SnapshotFilter) IsZero() bool {
	return f == SnapshotFilter{}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
