package dto

import "github.com/noah-isme/feedback-analytics-api/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Type           models.ExportType   `json:"type" binding:"required" validate:"required"`
	Format         models.ExportFormat `json:"format" binding:"required" validate:"required"`
	SubjectID      string              `json:"subjectId,omitempty"`
	FacultyID      string              `json:"facultyId,omitempty"`
	DivisionID     string              `json:"divisionId,omitempty"`
	DepartmentID   string              `json:"departmentId,omitempty"`
	AcademicYearID string              `json:"academicYearId,omitempty"`
	SemesterID     string              `json:"semesterId,omitempty"`
}

// Filter converts the request scope into a snapshot filter.
func (r ExportRequest) Filter() models.SnapshotFilter {
	return models.SnapshotFilter{
		SubjectID:      r.SubjectID,
		FacultyID:      r.FacultyID,
		DivisionID:     r.DivisionID,
		DepartmentID:   r.DepartmentID,
		AcademicYearID: r.AcademicYearID,
		SemesterID:     r.SemesterID,
	}
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
