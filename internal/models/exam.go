package models

import (
	"strings"
	"time"
)

// ExamType identifies the sitting within a semester.
type ExamType string

const (
	ExamTypeIncourse1st ExamType = "incourse_1st"
	ExamTypeIncourse2nd ExamType = "incourse_2nd"
	ExamTypeFinal       ExamType = "final"
)

// ExamTypes lists the canonical exam types in sitting order.
var ExamTypes = []ExamType{ExamTypeIncourse1st, ExamTypeIncourse2nd, ExamTypeFinal}

var legacyExamTypes = map[string]ExamType{
	"midterm":    ExamTypeIncourse1st,
	"quiz":       ExamTypeIncourse1st,
	"ssc":        ExamTypeIncourse2nd,
	"hsc":        ExamTypeIncourse2nd,
	"assignment": ExamTypeIncourse2nd,
}

// NormalizeExamType maps canonical and legacy names onto a canonical type.
func NormalizeExamType(raw string) (ExamType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range ExamTypes {
		if string(t) == key {
			return t, true
		}
	}
	t, ok := legacyExamTypes[key]
	return t, ok
}

// Label is the human readable exam type.
func (t ExamType) Label() string {
	switch t {
	case ExamTypeIncourse1st:
		return "1st Incourse"
	case ExamTypeIncourse2nd:
		return "2nd Incourse"
	case ExamTypeFinal:
		return "Final Exam"
	default:
		return string(t)
	}
}

// Rank orders exam types by sitting. Unknown types sort last.
func (t ExamType) Rank() int {
	for i, et := range ExamTypes {
		if et == t {
			return i
		}
	}
	return len(ExamTypes)
}

// Exam is a single assessment sitting. When SubjectID is set, TotalMarks
// mirrors the subject's total marks.
type Exam struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ExamType    ExamType  `db:"exam_type" json:"exam_type"`
	Course      string    `db:"course" json:"course"`
	Semester    string    `db:"semester" json:"semester"`
	SubjectID   *string   `db:"subject_id" json:"subject_id,omitempty"`
	ExamDate    time.Time `db:"exam_date" json:"exam_date"`
	TotalMarks  int       `db:"total_marks" json:"total_marks"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ExamFilter scopes exam listings.
type ExamFilter struct {
	Course    string
	Semester  string
	SubjectID string
	ExamType  ExamType
	Page      int
	PageSize  int
}
