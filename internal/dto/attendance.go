package dto

import "github.com/noah-isme/univ-academics-api/internal/models"

// RosterQuery selects a cohort, subject and day.
type RosterQuery struct {
	models.Cohort
	SubjectID string `form:"subject_id" validate:"required"`
	Date      string `form:"date" validate:"required"`
}

type RosterStudent struct {
	ID            string                  `json:"id"`
	StudentNumber string                  `json:"student_id"`
	FullName      string                  `json:"full_name"`
	Status        models.AttendanceStatus `json:"status"`
	Remarks       *string                 `json:"remarks,omitempty"`
	HasExisting   bool                    `json:"has_existing"`
}

type RosterResponse struct {
	Date      string          `json:"date"`
	SubjectID string          `json:"subject_id"`
	Students  []RosterStudent `json:"students"`
	Total     int             `json:"total"`
}

type BulkAttendanceItem struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	Remarks   *string                 `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// BulkAttendanceRequest submits a roster for one subject meeting.
type BulkAttendanceRequest struct {
	Course    string               `json:"course" validate:"required"`
	Intake    string               `json:"intake"`
	Semester  string               `json:"semester" validate:"required"`
	Session   string               `json:"session"`
	SubjectID string               `json:"subject_id" validate:"required"`
	Date      string               `json:"date" validate:"required"`
	Records   []BulkAttendanceItem `json:"attendance_data" validate:"required,min=1,dive"`
}

type BulkAttendanceResponse struct {
	Created      int            `json:"created"`
	Updated      int            `json:"updated"`
	Errors       int            `json:"errors"`
	ErrorDetails []BulkRowError `json:"error_details"`
}

// AttendanceHistoryQuery filters session history.
type AttendanceHistoryQuery struct {
	models.Cohort
	SubjectID string `form:"subject_id"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Limit     int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

type AttendanceHistoryResponse struct {
	Sessions []models.AttendanceSession `json:"sessions"`
	Count    int                        `json:"count"`
}
