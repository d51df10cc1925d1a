package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/response"
)

type resultService interface {
	Upsert(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, bool, error)
	Create(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, error)
	BulkUpsert(ctx context.Context, req dto.BulkResultsRequest) (*dto.BulkResultsResponse, error)
	Get(ctx context.Context, id string) (*dto.ResultDetail, error)
	List(ctx context.Context, filter models.ResultFilter) ([]dto.ResultListItem, *models.Pagination, error)
	Compute(marks, total float64) (*dto.GradeComputation, error)
}

// ResultHandler exposes result recording and grading endpoints.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs a result handler.
func NewResultHandler(svc resultService) *ResultHandler {
	return &ResultHandler{service: svc}
}

// List godoc
// @Summary List results
// @Description Students only see their own results.
// @Tags Results
// @Produce json
// @Param student_id query string false "Student ID"
// @Param exam_id query string false "Exam ID"
// @Param subject_id query string false "Subject ID"
// @Param course query string false "Course"
// @Param intake query string false "Intake"
// @Param semester query string false "Semester"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	filter := models.ResultFilter{
		StudentID: c.Query("student_id"),
		ExamID:    c.Query("exam_id"),
		SubjectID: c.Query("subject_id"),
		Course:    c.Query("course"),
		Intake:    c.Query("intake"),
		Semester:  c.Query("semester"),
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		filter.StudentID = claims.UserID
	}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get result detail
// @Tags Results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Record a new result
// @Description Fails with 409 when the student already has a result for the exam subject.
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.UpsertResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Create(c *gin.Context) {
	var req dto.UpsertResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	detail, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Upsert godoc
// @Summary Create or update a result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.UpsertResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /results [put]
func (h *ResultHandler) Upsert(c *gin.Context) {
	var req dto.UpsertResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	detail, inserted, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	response.JSON(c, status, detail, nil, map[string]interface{}{"created": inserted})
}

// Bulk godoc
// @Summary Upload results for an exam
// @Description Rows are stored independently; rejected rows are listed in error_details.
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.BulkResultsRequest true "Bulk payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results/bulk [post]
func (h *ResultHandler) Bulk(c *gin.Context) {
	var req dto.BulkResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	resp, err := h.service.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Created == 0 {
		status = http.StatusBadRequest
	}
	response.JSON(c, status, resp, nil)
}

// Compute godoc
// @Summary Grade an arbitrary score
// @Tags Grading
// @Produce json
// @Param marks query number true "Marks obtained"
// @Param total query number true "Total marks"
// @Success 200 {object} response.Envelope
// @Router /grading/compute [get]
func (h *ResultHandler) Compute(c *gin.Context) {
	marks, err := strconv.ParseFloat(c.Query("marks"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "marks must be a number"))
		return
	}
	total, err := strconv.ParseFloat(c.Query("total"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "total must be a number"))
		return
	}
	g, err := h.service.Compute(marks, total)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, g, nil)
}
