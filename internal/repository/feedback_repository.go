package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// FeedbackRepository reads immutable feedback snapshots from the reporting
// view populated by the collection pipeline.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

const snapshotColumns = `student_id, subject_id, subject_name, faculty_id, faculty_name,
        division_id, division_name, department_id, department_name,
        academic_year_id, academic_year, semester_id, semester_number,
        lecture_type, rating, question_category_id, question_category, submitted_at`

// Snapshots retrieves the snapshot set scoped by the filter. Rows are ordered
// by submission time then student id so repeated fetches of the same scope
// return the same sequence.
func (r *FeedbackRepository) Snapshots(ctx context.Context, filter models.SnapshotFilter) ([]models.FeedbackSnapshot, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(snapshotColumns)
	builder.WriteString(" FROM feedback_snapshots WHERE 1=1")
	var args []interface{}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		builder.WriteString(fmt.Sprintf(" AND subject_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		builder.WriteString(fmt.Sprintf(" AND faculty_id = $%d", len(args)))
	}
	if filter.DivisionID != "" {
		args = append(args, filter.DivisionID)
		builder.WriteString(fmt.Sprintf(" AND division_id = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		builder.WriteString(fmt.Sprintf(" AND department_id = $%d", len(args)))
	}
	if filter.AcademicYearID != "" {
		args = append(args, filter.AcademicYearID)
		builder.WriteString(fmt.Sprintf(" AND academic_year_id = $%d", len(args)))
	}
	if filter.SemesterID != "" {
		args = append(args, filter.SemesterID)
		builder.WriteString(fmt.Sprintf(" AND semester_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY submitted_at, student_id")

	var snapshots []models.FeedbackSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query feedback snapshots: %w", err)
	}
	return snapshots, nil
}

// CountSnapshots returns the number of snapshots in scope without loading
// them, used by health and dashboard volume checks.
func (r *FeedbackRepository) CountSnapshots(ctx context.Context, filter models.SnapshotFilter) (int, error) {
	var builder strings.Builder
	builder.WriteString("SELECT COUNT(*) FROM feedback_snapshots WHERE 1=1")
	var args []interface{}
	if filter.AcademicYearID != "" {
		args = append(args, filter.AcademicYearID)
		builder.WriteString(fmt.Sprintf(" AND academic_year_id = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		builder.WriteString(fmt.Sprintf(" AND department_id = $%d", len(args)))
	}
	if filter.SemesterID != "" {
		args = append(args, filter.SemesterID)
		builder.WriteString(fmt.Sprintf(" AND semester_id = $%d", len(args)))
	}
	if filter.DivisionID != "" {
		args = append(args, filter.DivisionID)
		builder.WriteString(fmt.Sprintf(" AND division_id = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		builder.WriteString(fmt.Sprintf(" AND subject_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		builder.WriteString(fmt.Sprintf(" AND faculty_id = $%d", len(args)))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, builder.String(), args...); err != nil {
		return 0, fmt.Errorf("count feedback snapshots: %w", err)
	}
	return count, nil
}
