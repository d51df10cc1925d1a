package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/middleware"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error)
	Update(ctx context.Context, id string, req dto.UpdateExamRequest) (*models.Exam, error)
	ExamsForCohort(ctx context.Context, course, semester string) ([]models.Exam, error)
}

type statisticsService interface {
	ExamStatistics(ctx context.Context, examID string) (*dto.ExamStatistics, bool, error)
	ExamSummary(ctx context.Context, filter models.ExamFilter) (*dto.ExamSummary, error)
}

type examResultLister interface {
	List(ctx context.Context, filter models.ResultFilter) ([]dto.ResultListItem, *models.Pagination, error)
}

type resultSheetExporter interface {
	ExamResultsCSV(ctx context.Context, examID string) (string, []byte, error)
	ExamResultsPDF(ctx context.Context, examID string) (string, []byte, error)
}

// ExamHandler exposes the exam catalog with its results and statistics.
type ExamHandler struct {
	exams    examService
	stats    statisticsService
	results  examResultLister
	exporter resultSheetExporter
}

// NewExamHandler constructs an exam handler.
func NewExamHandler(exams examService, stats statisticsService, results examResultLister, exporter resultSheetExporter) *ExamHandler {
	return &ExamHandler{exams: exams, stats: stats, results: results, exporter: exporter}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param course query string false "Course"
// @Param semester query string false "Semester"
// @Param subject_id query string false "Subject ID"
// @Param exam_type query string false "Exam type"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter, ok := examFilter(c)
	if !ok {
		return
	}
	filter.Page, filter.PageSize = pageParams(c)
	exams, pagination, err := h.exams.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination)
}

// Cohort godoc
// @Summary Exams sat by a course semester
// @Tags Exams
// @Produce json
// @Param course query string true "Course"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /exams/cohort [get]
func (h *ExamHandler) Cohort(c *gin.Context) {
	exams, err := h.exams.ExamsForCohort(c.Request.Context(), c.Query("course"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Get godoc
// @Summary Get exam by id
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.UpdateExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Results godoc
// @Summary Results of an exam
// @Tags Exams
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Exam ID"
// @Param format query string false "json (default), csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	examID := c.Param("id")
	switch c.DefaultQuery("format", "json") {
	case "csv":
		filename, body, err := h.exporter.ExamResultsCSV(c.Request.Context(), examID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, filename, "text/csv", body)
	case "pdf":
		filename, body, err := h.exporter.ExamResultsPDF(c.Request.Context(), examID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, filename, "application/pdf", body)
	case "json":
		if _, err := h.exams.Get(c.Request.Context(), examID); err != nil {
			response.Error(c, err)
			return
		}
		filter := models.ResultFilter{ExamID: examID, SubjectID: c.Query("subject_id")}
		filter.Page, filter.PageSize = pageParams(c)
		items, pagination, err := h.results.List(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, items, pagination)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf"))
	}
}

// Statistics godoc
// @Summary Exam statistics
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/statistics [get]
func (h *ExamHandler) Statistics(c *gin.Context) {
	stats, cached, err := h.stats.ExamStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Summary godoc
// @Summary Statistics for every matching exam
// @Tags Reports
// @Produce json
// @Param course query string false "Course"
// @Param semester query string false "Semester"
// @Param subject_id query string false "Subject ID"
// @Param exam_type query string false "Exam type"
// @Success 200 {object} response.Envelope
// @Router /reports/exams/summary [get]
func (h *ExamHandler) Summary(c *gin.Context) {
	filter, ok := examFilter(c)
	if !ok {
		return
	}
	summary, err := h.stats.ExamSummary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

func examFilter(c *gin.Context) (models.ExamFilter, bool) {
	filter := models.ExamFilter{
		Course:    c.Query("course"),
		Semester:  c.Query("semester"),
		SubjectID: c.Query("subject_id"),
	}
	if raw := c.Query("exam_type"); raw != "" {
		t, ok := models.NormalizeExamType(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown exam_type"))
			return filter, false
		}
		filter.ExamType = t
	}
	return filter, true
}
