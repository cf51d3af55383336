package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/analytics"
	"github.com/noah-isme/feedback-analytics-api/internal/models"
	"github.com/noah-isme/feedback-analytics-api/pkg/export"
	"github.com/noah-isme/feedback-analytics-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds analytics datasets and persists rendered files.
type ExportService struct {
	snapshots SnapshotRepository
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(snapshots SnapshotRepository, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		snapshots: snapshots,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the dataset defined by the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scopePart := sanitizeFilename(job.Params.Filter.AcademicYearID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scopePart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	snapshots, err := s.snapshots.Snapshots(ctx, job.Params.Filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	switch job.Type {
	case models.ExportTypeSubjects:
		return buildSubjectDataset(snapshots), "Subject Ratings", nil
	case models.ExportTypeFaculty:
		return buildFacultyDataset(snapshots), "Faculty Performance", nil
	case models.ExportTypeDivisions:
		return buildDivisionDataset(snapshots), "Division Comparison", nil
	case models.ExportTypeTrends:
		return buildTrendDataset(snapshots), "Year and Department Trends", nil
	case models.ExportTypeSummary:
		return buildSummaryDataset(snapshots), "Feedback Summary", nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func buildSubjectDataset(snapshots []models.FeedbackSnapshot) export.Dataset {
	ratings := analytics.ComputeSubjectRatings(snapshots)
	rows := make([]map[string]string, 0, len(ratings))
	for _, r := range ratings {
		rows = append(rows, map[string]string{
			"Subject ID":       r.SubjectID,
			"Subject":          r.SubjectName,
			"Lecture Rating":   formatRating(r.LectureRating),
			"Lab Rating":       formatRating(r.LabRating),
			"Overall Rating":   formatRating(r.OverallRating),
			"Responses":        fmt.Sprintf("%d", r.TotalResponses),
			"Faculty Members":  fmt.Sprintf("%d", r.FacultyCount),
			"Divisions Taught": fmt.Sprintf("%d", r.DivisionCount),
		})
	}
	return export.Dataset{
		Headers: []string{"Subject ID", "Subject", "Lecture Rating", "Lab Rating", "Overall Rating", "Responses", "Faculty Members", "Divisions Taught"},
		Rows:    rows,
	}
}

func buildFacultyDataset(snapshots []models.FeedbackSnapshot) export.Dataset {
	performances := analytics.ComputeFacultyPerformance(snapshots)
	rows := make([]map[string]string, 0, len(performances))
	for _, p := range performances {
		rows = append(rows, map[string]string{
			"Rank":           fmt.Sprintf("%d", p.Rank),
			"Faculty ID":     p.FacultyID,
			"Faculty":        p.FacultyName,
			"Average Rating": formatRating(p.AverageRating),
			"Responses":      fmt.Sprintf("%d", p.TotalResponses),
			"Subjects":       fmt.Sprintf("%d", p.SubjectCount),
			"Divisions":      fmt.Sprintf("%d", p.DivisionCount),
		})
	}
	return export.Dataset{
		Headers: []string{"Rank", "Faculty ID", "Faculty", "Average Rating", "Responses", "Subjects", "Divisions"},
		Rows:    rows,
	}
}

func buildDivisionDataset(snapshots []models.FeedbackSnapshot) export.Dataset {
	comparisons := analytics.ComputeDivisionComparisons(snapshots)
	rows := make([]map[string]string, 0, len(comparisons))
	for _, c := range comparisons {
		rows = append(rows, map[string]string{
			"Division ID":    c.DivisionID,
			"Division":       c.DivisionName,
			"Average Rating": formatRating(c.AverageRating),
			"Responses":      fmt.Sprintf("%d", c.TotalResponses),
		})
	}
	return export.Dataset{
		Headers: []string{"Division ID", "Division", "Average Rating", "Responses"},
		Rows:    rows,
	}
}

func buildTrendDataset(snapshots []models.FeedbackSnapshot) export.Dataset {
	cells := analytics.ComputeYearDepartmentTrends(snapshots)
	rows := make([]map[string]string, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, map[string]string{
			"Academic Year":  c.AcademicYear,
			"Department":     c.KeyName,
			"Average Rating": formatRating(c.AverageRating),
			"Responses":      fmt.Sprintf("%d", c.TotalResponses),
		})
	}
	return export.Dataset{
		Headers: []string{"Academic Year", "Department", "Average Rating", "Responses"},
		Rows:    rows,
	}
}

func buildSummaryDataset(snapshots []models.FeedbackSnapshot) export.Dataset {
	stats := analytics.ComputeOverallStats(snapshots)
	rate := analytics.ComputeResponseRate(snapshots, analytics.DefaultResponsesPerStudent)
	rows := []map[string]string{}
	if stats != nil {
		rows = append(rows,
			map[string]string{"Metric": "Total Responses", "Value": fmt.Sprintf("%d", stats.TotalResponses)},
			map[string]string{"Metric": "Average Rating", "Value": formatRating(stats.AverageRating)},
			map[string]string{"Metric": "Subjects", "Value": fmt.Sprintf("%d", stats.SubjectCount)},
			map[string]string{"Metric": "Faculty Members", "Value": fmt.Sprintf("%d", stats.FacultyCount)},
			map[string]string{"Metric": "Students", "Value": fmt.Sprintf("%d", stats.StudentCount)},
			map[string]string{"Metric": "Divisions", "Value": fmt.Sprintf("%d", stats.DivisionCount)},
			map[string]string{"Metric": "Departments", "Value": fmt.Sprintf("%d", stats.DepartmentCount)},
			map[string]string{"Metric": "Response Rate (%)", "Value": fmt.Sprintf("%.2f", rate)},
		)
	}
	return export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

func formatRating(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *r)
}
