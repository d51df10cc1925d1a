package dto

import (
	"time"

	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/pkg/export"
)

// ReportCardMode selects single-exam or whole-semester composition.
type ReportCardMode string

const (
	ReportCardModeExam     ReportCardMode = "exam"
	ReportCardModeSemester ReportCardMode = "semester"
)

type ReportCardStudent struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_id"`
	Name          string `json:"name"`
	Course        string `json:"course"`
	Intake        string `json:"intake"`
	Semester      string `json:"semester"`
	Session       string `json:"session"`
}

type ReportCardExam struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       models.ExamType `json:"type"`
	TypeLabel  string          `json:"type_label"`
	Date       time.Time       `json:"date"`
	TotalMarks int             `json:"total_marks"`
}

// ReportCardLine is one row of the results table. Comment holds the truncated
// teacher comment in exam mode and the exam type label in semester mode.
type ReportCardLine struct {
	SubjectName   string          `json:"subject_name"`
	SubjectCode   string          `json:"subject_code"`
	ExamType      models.ExamType `json:"exam_type,omitempty"`
	TotalMarks    int             `json:"total_marks"`
	MarksObtained float64         `json:"marks_obtained"`
	Percentage    float64         `json:"percentage"`
	Grade         string          `json:"grade"`
	GradePoint    float64         `json:"grade_point"`
	Comment       string          `json:"comment"`
}

type ReportCardTotals struct {
	TotalMarks    int     `json:"total_marks"`
	MarksObtained float64 `json:"marks_obtained"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
}

type ReportCardSummary struct {
	OverallPercentage float64 `json:"overall_percentage"`
	OverallGrade      string  `json:"overall_grade"`
	GPA               float64 `json:"gpa"`
	Passed            bool    `json:"passed"`
	Result            string  `json:"result"`
}

// ReportCard is the composed, renderer independent report card.
type ReportCard struct {
	Mode         ReportCardMode    `json:"mode"`
	Student      ReportCardStudent `json:"student"`
	Exam         *ReportCardExam   `json:"exam,omitempty"`
	Lines        []ReportCardLine  `json:"lines"`
	Totals       ReportCardTotals  `json:"totals"`
	Summary      ReportCardSummary `json:"summary"`
	GradingTable string            `json:"grading_table"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Document     export.Document   `json:"document"`
}

// FileName is the download name for the rendered card.
func (r *ReportCard) FileName() string {
	name := "report_card_" + r.Student.StudentNumber
	if r.Exam != nil {
		name += "_" + string(r.Exam.Type)
	} else {
		name += "_semester"
	}
	return name + ".pdf"
}

// BulkReportCard pairs a student with the composed card.
type BulkReportCard struct {
	StudentID     string      `json:"student_id"`
	StudentNumber string      `json:"student_number"`
	StudentName   string      `json:"student_name"`
	ReportCard    *ReportCard `json:"report_card"`
}

// BulkReportResult is the outcome of composing a cohort's report cards.
type BulkReportResult struct {
	ExamID  string           `json:"exam_id"`
	Cards   []BulkReportCard `json:"cards"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
}

// BulkReportArchive points at a stored bundle of rendered cards.
type BulkReportArchive struct {
	ArchiveID   string    `json:"archive_id"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Generated   int       `json:"generated"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
}
