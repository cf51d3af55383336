package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

func newFeedbackRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func snapshotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"student_id", "subject_id", "subject_name", "faculty_id", "faculty_name",
		"division_id", "division_name", "department_id", "department_name",
		"academic_year_id", "academic_year", "semester_id", "semester_number",
		"lecture_type", "rating", "question_category_id", "question_category", "submitted_at",
	})
}

func TestFeedbackRepositorySnapshotsUnfiltered(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	submitted := time.Now()
	rows := snapshotRows().
		AddRow("s1", "CS101", "Data Structures", "F1", "Dr. Rao",
			"div-1", "Division A", "dept-1", "Computer Engineering",
			"ay-2024", "2024-25", "sem-3", 3,
			"LECTURE", 4.0, "qc-1", "Teaching Quality", submitted).
		AddRow("s2", "CS101", "Data Structures", "F1", "Dr. Rao",
			"div-1", "Division A", "dept-1", "Computer Engineering",
			"ay-2024", "2024-25", "sem-3", 3,
			"LAB", nil, "qc-1", "Teaching Quality", submitted)

	mock.ExpectQuery("SELECT (.+) FROM feedback_snapshots WHERE 1=1 ORDER BY submitted_at, student_id").
		WillReturnRows(rows)

	snapshots, err := repo.Snapshots(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, "CS101", snapshots[0].SubjectID)
	require.NotNil(t, snapshots[0].Rating)
	require.Nil(t, snapshots[1].Rating)
}

func TestFeedbackRepositorySnapshotsFiltered(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND subject_id = $1 AND academic_year_id = $2 ORDER BY submitted_at, student_id")).
		WithArgs("CS101", "ay-2024").
		WillReturnRows(snapshotRows())

	snapshots, err := repo.Snapshots(context.Background(), models.SnapshotFilter{
		SubjectID:      "CS101",
		AcademicYearID: "ay-2024",
	})
	require.NoError(t, err)
	require.Empty(t, snapshots)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryCountSnapshots(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM feedback_snapshots WHERE 1=1 AND academic_year_id = $1")).
		WithArgs("ay-2024").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountSnapshots(context.Background(), models.SnapshotFilter{AcademicYearID: "ay-2024"})
	require.NoError(t, err)
	require.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
