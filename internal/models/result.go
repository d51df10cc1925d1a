package models

import "time"

// Result records the marks one student obtained in one subject of one exam.
// (StudentID, ExamID, SubjectID) is unique.
type Result struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	ExamID         string    `db:"exam_id" json:"exam_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	MarksObtained  float64   `db:"marks_obtained" json:"marks_obtained"`
	Remarks        *string   `db:"remarks" json:"remarks,omitempty"`
	TeacherComment *string   `db:"teacher_comment" json:"teacher_comment,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ResultRecord is a result joined with the student, subject and exam columns
// needed to grade and present it.
type ResultRecord struct {
	Result
	StudentNumber     string    `db:"student_number"`
	StudentName       string    `db:"student_name"`
	SubjectName       string    `db:"subject_name"`
	SubjectCode       string    `db:"subject_code"`
	SubjectTotalMarks int       `db:"subject_total_marks"`
	ExamName          string    `db:"exam_name"`
	ExamType          ExamType  `db:"exam_type"`
	ExamDate          time.Time `db:"exam_date"`
	ExamTotalMarks    int       `db:"exam_total_marks"`
}

// ResultFilter scopes result listings.
type ResultFilter struct {
	StudentID string
	ExamID    string
	SubjectID string
	Course    string
	Intake    string
	Semester  string
	// ByStudent orders by student number, subject and id instead of recency.
	ByStudent bool
	Page      int
	PageSize  int
}
