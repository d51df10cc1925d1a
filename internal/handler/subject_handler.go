package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/response"
)

type subjectService interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error)
	Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error)
}

type subjectExamEnsurer interface {
	EnsureSubjectExams(ctx context.Context, subjectID string, baseDate time.Time) (*dto.EnsureExamsResponse, error)
}

// SubjectHandler handles subject endpoints.
type SubjectHandler struct {
	service subjectService
	exams   subjectExamEnsurer
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectService, exams subjectExamEnsurer) *SubjectHandler {
	return &SubjectHandler{service: svc, exams: exams}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Param course query string false "Course"
// @Param semester query string false "Semester"
// @Param type query string false "Subject type"
// @Param active query bool false "Active flag"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	filter := models.SubjectFilter{
		Course:    c.Query("course"),
		Semester:  c.Query("semester"),
		Type:      models.SubjectType(c.Query("type")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.Page, filter.PageSize = pageParams(c)

	subjects, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination)
}

// Get godoc
// @Summary Get subject by id
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body dto.UpdateSubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	subject, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// EnsureExams godoc
// @Summary Ensure the canonical exams of a subject
// @Description Creates missing 1st incourse, 2nd incourse and final exams and syncs their total marks.
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Param base_date query string false "Date of the first sitting (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/exams/ensure [post]
func (h *SubjectHandler) EnsureExams(c *gin.Context) {
	var base time.Time
	if raw := c.Query("base_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "base_date must be YYYY-MM-DD"))
			return
		}
		base = parsed
	}
	resp, err := h.exams.EnsureSubjectExams(c.Request.Context(), c.Param("id"), base)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
