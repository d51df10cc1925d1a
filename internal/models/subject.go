package models

import "time"

// SubjectType classifies a subject within a programme.
type SubjectType string

const (
	SubjectTypeCore     SubjectType = "core"
	SubjectTypeMajor    SubjectType = "major"
	SubjectTypeElective SubjectType = "elective"
	SubjectTypeLab      SubjectType = "lab"
	SubjectTypeProject  SubjectType = "project"
	SubjectTypeViva     SubjectType = "viva"
)

// Subject is a course unit taught in one (course, semester) slot. TotalMarks is
// the denominator every result for the subject is graded against.
type Subject struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Code        string      `db:"code" json:"code"`
	Course      string      `db:"course" json:"course"`
	Semester    string      `db:"semester" json:"semester"`
	SubjectType SubjectType `db:"subject_type" json:"subject_type"`
	CreditHours float64     `db:"credit_hours" json:"credit_hours"`
	TotalMarks  int         `db:"total_marks" json:"total_marks"`
	Active      bool        `db:"active" json:"active"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Course    string
	Semester  string
	Type      SubjectType
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
