package analytics

import (
	"sort"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

// SubjectRating is the per-subject view combining lecture and lab segments.
// Segment ratings are nil when the segment has no rated responses; the
// overall rating is the response-weighted mean of both segments.
type SubjectRating struct {
	SubjectID        string   `json:"subject_id"`
	SubjectName      string   `json:"subject_name"`
	LectureRating    *float64 `json:"lecture_rating"`
	LabRating        *float64 `json:"lab_rating"`
	OverallRating    *float64 `json:"overall_rating"`
	LectureResponses int      `json:"lecture_responses"`
	LabResponses     int      `json:"lab_responses"`
	TotalResponses   int      `json:"total_responses"`
	FacultyCount     int      `json:"faculty_count"`
	DivisionCount    int      `json:"division_count"`
}

// ComputeSubjectRatings produces one entry per distinct subject id, sorted by
// subject id. Snapshots without a subject id are skipped.
func ComputeSubjectRatings(snapshots []models.FeedbackSnapshot) []SubjectRating {
	type subjectAcc struct {
		name      string
		lecture   ratingAccumulator
		lab       ratingAccumulator
		faculty   stringSet
		divisions stringSet
	}
	groups := make(map[string]*subjectAcc)
	for _, s := range snapshots {
		if s.SubjectID == "" {
			continue
		}
		acc, ok := groups[s.SubjectID]
		if !ok {
			acc = &subjectAcc{name: s.SubjectName, faculty: stringSet{}, divisions: stringSet{}}
			groups[s.SubjectID] = acc
		}
		switch s.LectureType {
		case models.LectureTypeLecture:
			acc.lecture.add(s.Rating)
		case models.LectureTypeLab:
			acc.lab.add(s.Rating)
		}
		acc.faculty.add(s.FacultyID)
		acc.divisions.add(s.DivisionID)
	}

	ratings := make([]SubjectRating, 0, len(groups))
	for subjectID, acc := range groups {
		ratings = append(ratings, SubjectRating{
			SubjectID:        subjectID,
			SubjectName:      acc.name,
			LectureRating:    acc.lecture.mean(),
			LabRating:        acc.lab.mean(),
			OverallRating:    weightedMean(acc.lecture, acc.lab),
			LectureResponses: acc.lecture.count,
			LabResponses:     acc.lab.count,
			TotalResponses:   acc.lecture.count + acc.lab.count,
			FacultyCount:     len(acc.faculty),
			DivisionCount:    len(acc.divisions),
		})
	}
	sort.Slice(ratings, func(i, j int) bool {
		return ratings[i].SubjectID < ratings[j].SubjectID
	})
	return ratings
}

// SubjectFacultyPerformance is one cell of the subject × faculty
// cross-tabulation.
type SubjectFacultyPerformance struct {
	SubjectID      string   `json:"subject_id"`
	SubjectName    string   `json:"subject_name"`
	FacultyID      string   `json:"faculty_id"`
	FacultyName    string   `json:"faculty_name"`
	AverageRating  *float64 `json:"average_rating"`
	RatedResponses int      `json:"rated_responses"`
}

// ComputeSubjectFacultyPerformance cross-tabulates rated responses by
// (subject, faculty) pair, sorted by subject id then faculty id. Snapshots
// missing either id are skipped.
func ComputeSubjectFacultyPerformance(snapshots []models.FeedbackSnapshot) []SubjectFacultyPerformance {
	type pairKey struct {
		subjectID string
		facultyID string
	}
	type pairAcc struct {
		subjectName string
		facultyName string
		ratings     ratingAccumulator
	}
	groups := make(map[pairKey]*pairAcc)
	for _, s := range snapshots {
		if s.SubjectID == "" || s.FacultyID == "" {
			continue
		}
		key := pairKey{subjectID: s.SubjectID, facultyID: s.FacultyID}
		acc, ok := groups[key]
		if !ok {
			acc = &pairAcc{subjectName: s.SubjectName, facultyName: s.FacultyName}
			groups[key] = acc
		}
		acc.ratings.add(s.Rating)
	}

	cells := make([]SubjectFacultyPerformance, 0, len(groups))
	for key, acc := range groups {
		cells = append(cells, SubjectFacultyPerformance{
			SubjectID:      key.subjectID,
			SubjectName:    acc.subjectName,
			FacultyID:      key.facultyID,
			FacultyName:    acc.facultyName,
			AverageRating:  acc.ratings.mean(),
			RatedResponses: acc.ratings.count,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].SubjectID != cells[j].SubjectID {
			return cells[i].SubjectID < cells[j].SubjectID
		}
		return cells[i].FacultyID < cells[j].FacultyID
	})
	return cells
}
