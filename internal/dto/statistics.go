package dto

import (
	"time"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

// ExamStatistics aggregates every result recorded for one exam.
type ExamStatistics struct {
	ExamID            string          `json:"exam_id"`
	ExamName          string          `json:"exam_name"`
	ExamType          models.ExamType `json:"exam_type"`
	Course            string          `json:"course"`
	Semester          string          `json:"semester"`
	TotalMarks        int             `json:"total_marks"`
	TotalStudents     int             `json:"total_students"`
	AverageMarks      float64         `json:"average_marks"`
	HighestMarks      float64         `json:"highest_marks"`
	LowestMarks       float64         `json:"lowest_marks"`
	PassedStudents    int             `json:"passed_students"`
	FailedStudents    int             `json:"failed_students"`
	PassRate          float64         `json:"pass_rate"`
	GradeDistribution map[string]int  `json:"grade_distribution"`
	ComputedAt        time.Time       `json:"computed_at"`
}

// ExamSummary lists statistics for a set of exams.
type ExamSummary struct {
	Exams []ExamStatistics `json:"exams"`
	Count int              `json:"count"`
}
