package models

import "time"

// Student is the read model of the student directory. StudentNumber is the
// externally issued identifier used by uploads and printed on report cards.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Course        string    `db:"course" json:"course"`
	Intake        string    `db:"intake" json:"intake"`
	Semester      string    `db:"semester" json:"semester"`
	Session       string    `db:"session" json:"session"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Cohort groups students sharing course, intake, semester and session. Empty
// fields do not filter.
type Cohort struct {
	Course   string `form:"course" json:"course,omitempty"`
	Intake   string `form:"intake" json:"intake,omitempty"`
	Semester string `form:"semester" json:"semester,omitempty"`
	Session  string `form:"session" json:"session,omitempty"`
}

// IsEmpty reports whether no cohort field is set.
func (c Cohort) IsEmpty() bool {
	return c.Course == "" && c.Intake == "" && c.Semester == "" && c.Session == ""
}
