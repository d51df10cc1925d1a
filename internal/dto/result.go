package dto

import (
	"time"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

// UpsertResultRequest records marks for one (student, exam, subject).
type UpsertResultRequest struct {
	StudentID      string   `json:"student_id" validate:"required"`
	ExamID         string   `json:"exam_id" validate:"required"`
	SubjectID      string   `json:"subject_id" validate:"required"`
	MarksObtained  *float64 `json:"marks_obtained" validate:"required,gte=0"`
	Remarks        *string  `json:"remarks,omitempty" validate:"omitempty,max=500"`
	TeacherComment *string  `json:"teacher_comment,omitempty" validate:"omitempty,max=1000"`
}

// BulkResultRow is one spreadsheet row. StudentID is the external student id.
type BulkResultRow struct {
	StudentID     string   `json:"student_id" validate:"required"`
	SubjectCode   string   `json:"subject_code" validate:"required"`
	MarksObtained *float64 `json:"marks_obtained" validate:"required,gte=0"`
	Remarks       *string  `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// BulkResultsRequest uploads many rows for one exam.
type BulkResultsRequest struct {
	ExamID string          `json:"exam_id" validate:"required"`
	Rows   []BulkResultRow `json:"results" validate:"required,min=1"`
}

// BulkRowError reports a rejected row. Row is 1-based.
type BulkRowError struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id,omitempty"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error"`
}

// BulkResultsResponse summarises a bulk upload. Created counts every row that
// was stored, Inserted and Updated split it by outcome.
type BulkResultsResponse struct {
	Created      int              `json:"created"`
	Inserted     int              `json:"inserted"`
	Updated      int              `json:"updated"`
	Errors       int              `json:"errors"`
	Results      []ResultListItem `json:"results"`
	ErrorDetails []BulkRowError   `json:"error_details"`
}

// ResultListItem is the list projection of a result.
type ResultListItem struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"student_id"`
	StudentNumber string          `json:"student_number"`
	StudentName   string          `json:"student_name"`
	ExamID        string          `json:"exam_id"`
	ExamName      string          `json:"exam_name"`
	ExamType      models.ExamType `json:"exam_type"`
	SubjectID     string          `json:"subject_id"`
	SubjectCode   string          `json:"subject_code"`
	SubjectName   string          `json:"subject_name"`
	MarksObtained float64         `json:"marks_obtained"`
	TotalMarks    int             `json:"total_marks"`
	Percentage    float64         `json:"percentage"`
	Grade         string          `json:"grade"`
	GradePoint    float64         `json:"grade_point"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ResultDetail is the single-result projection.
type ResultDetail struct {
	ResultListItem
	ExamTypeLabel  string    `json:"exam_type_label"`
	ExamDate       time.Time `json:"exam_date"`
	ExamTotalMarks int       `json:"exam_total_marks"`
	Remarks        *string   `json:"remarks,omitempty"`
	TeacherComment *string   `json:"teacher_comment,omitempty"`
	GradingTable   string    `json:"grading_table"`
	CreatedAt      time.Time `json:"created_at"`
}

// GradeComputation answers an ad-hoc grading query.
type GradeComputation struct {
	MarksObtained float64 `json:"marks_obtained"`
	TotalMarks    float64 `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
	GradePoint    float64 `json:"grade_point"`
	Table         string  `json:"table"`
}
