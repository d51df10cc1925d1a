package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/response"
)

type attendanceService interface {
	Roster(ctx context.Context, q dto.RosterQuery) (*dto.RosterResponse, error)
	BulkSubmit(ctx context.Context, req dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error)
	History(ctx context.Context, q dto.AttendanceHistoryQuery) (*dto.AttendanceHistoryResponse, error)
}

// AttendanceHandler exposes roster taking endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Roster godoc
// @Summary Roster for a subject meeting
// @Tags Attendance
// @Produce json
// @Param course query string true "Course"
// @Param intake query string false "Intake"
// @Param semester query string true "Semester"
// @Param session query string false "Session"
// @Param subject_id query string true "Subject ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/roster [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	var q dto.RosterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid roster query"))
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Bulk godoc
// @Summary Submit attendance for a subject meeting
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.BulkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	var req dto.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	resp, err := h.service.BulkSubmit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// History godoc
// @Summary Recent attendance sessions
// @Tags Attendance
// @Produce json
// @Param course query string false "Course"
// @Param intake query string false "Intake"
// @Param semester query string false "Semester"
// @Param session query string false "Session"
// @Param subject_id query string false "Subject ID"
// @Param date_from query string false "From date (YYYY-MM-DD)"
// @Param date_to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Maximum sessions"
// @Success 200 {object} response.Envelope
// @Router /attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	var q dto.AttendanceHistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid history query"))
		return
	}
	history, err := h.service.History(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}
