package dto

import "github.com/noah-isme/feedback-analytics-api/internal/analytics"

// DashboardResponse aggregates the headline feedback indicators served on the
// landing dashboard.
type DashboardResponse struct {
	OverallStats *analytics.OverallStats         `json:"overallStats"`
	ResponseRate float64                         `json:"responseRate"`
	TopFaculty   []analytics.FacultyPerformance  `json:"topFaculty"`
	LectureLab   *analytics.LectureLabComparison `json:"lectureLab"`
	Divisions    []analytics.DivisionComparison  `json:"divisions"`
}
