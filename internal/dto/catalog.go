package dto

import "github.com/noah-isme/univ-academics-api/internal/models"

// CreateSubjectRequest payload.
type CreateSubjectRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Code        string             `json:"code" validate:"required,max=20"`
	Course      string             `json:"course" validate:"required"`
	Semester    string             `json:"semester" validate:"required"`
	SubjectType models.SubjectType `json:"subject_type" validate:"omitempty,oneof=core major elective lab project viva"`
	CreditHours float64            `json:"credit_hours" validate:"gte=0"`
	TotalMarks  int                `json:"total_marks" validate:"required,gt=0"`
}

// UpdateSubjectRequest payload. Nil fields are left unchanged.
type UpdateSubjectRequest struct {
	Name        *string             `json:"name" validate:"omitempty,max=200"`
	Code        *string             `json:"code" validate:"omitempty,max=20"`
	SubjectType *models.SubjectType `json:"subject_type" validate:"omitempty,oneof=core major elective lab project viva"`
	CreditHours *float64            `json:"credit_hours" validate:"omitempty,gte=0"`
	TotalMarks  *int                `json:"total_marks" validate:"omitempty,gt=0"`
	Active      *bool               `json:"active"`
}

// CreateExamRequest payload. ExamType accepts legacy names.
type CreateExamRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	ExamType    string  `json:"exam_type" validate:"required"`
	Course      string  `json:"course" validate:"required"`
	Semester    string  `json:"semester" validate:"required"`
	SubjectID   *string `json:"subject_id"`
	ExamDate    string  `json:"exam_date" validate:"required"`
	TotalMarks  *int    `json:"total_marks" validate:"omitempty,gt=0"`
	Description *string `json:"description"`
}

// UpdateExamRequest payload. Nil fields are left unchanged.
type UpdateExamRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	ExamDate    *string `json:"exam_date"`
	TotalMarks  *int    `json:"total_marks" validate:"omitempty,gt=0"`
	Description *string `json:"description"`
}

// EnsureExamsResponse reports the canonical exams of a subject.
type EnsureExamsResponse struct {
	SubjectID string        `json:"subject_id"`
	Created   int           `json:"created"`
	Existing  int           `json:"existing"`
	Synced    int64         `json:"synced"`
	Exams     []models.Exam `json:"exams"`
}
