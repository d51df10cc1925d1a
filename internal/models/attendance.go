package models

import "time"

// AttendanceStatus is the mark recorded for a student in one class meeting.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is unique per (student, subject, date).
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SubjectID string           `db:"subject_id" json:"subject_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Course    string           `db:"course" json:"course"`
	Intake    string           `db:"intake" json:"intake"`
	Semester  string           `db:"semester" json:"semester"`
	Session   string           `db:"session" json:"session"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// RosterEntry is a cohort student with any status already recorded for the day.
type RosterEntry struct {
	StudentID     string            `db:"student_id"`
	StudentNumber string            `db:"student_number"`
	FullName      string            `db:"full_name"`
	Status        *AttendanceStatus `db:"status"`
	Remarks       *string           `db:"remarks"`
}

// AttendanceSession aggregates one subject meeting of a cohort.
type AttendanceSession struct {
	Date        time.Time `db:"date" json:"date"`
	Course      string    `db:"course" json:"course"`
	Intake      string    `db:"intake" json:"intake"`
	Semester    string    `db:"semester" json:"semester"`
	Session     string    `db:"session" json:"session"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	Total       int       `db:"total" json:"total_students"`
	Present     int       `db:"present" json:"present_count"`
	Absent      int       `db:"absent" json:"absent_count"`
}

// AttendanceHistoryFilter scopes the session history.
type AttendanceHistoryFilter struct {
	Cohort
	SubjectID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
}
