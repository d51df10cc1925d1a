package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/service"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/response"
)

type reportCardComposer interface {
	Compose(ctx context.Context, studentID, examID string) (*dto.ReportCard, error)
}

type bulkReportGenerator interface {
	Generate(ctx context.Context, cohort models.Cohort, examID string) (*dto.BulkReportResult, error)
}

type reportExporter interface {
	ReportCardPDF(card *dto.ReportCard) ([]byte, error)
	ArchiveReportCards(bulk *dto.BulkReportResult) (*dto.BulkReportArchive, error)
	Resolve(token string) (*service.Download, error)
}

// ReportHandler exposes report card endpoints.
type ReportHandler struct {
	cards    reportCardComposer
	bulk     bulkReportGenerator
	exporter reportExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(cards reportCardComposer, bulk bulkReportGenerator, exporter reportExporter) *ReportHandler {
	return &ReportHandler{cards: cards, bulk: bulk, exporter: exporter}
}

// ReportCard godoc
// @Summary Student report card
// @Description With exam_id the card covers that exam, otherwise every result of the student.
// @Tags Reports
// @Produce json
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param exam_id query string false "Exam ID"
// @Param format query string false "json (default) or pdf"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/students/{id}/report-card [get]
func (h *ReportHandler) ReportCard(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json or pdf"))
		return
	}
	studentID := c.Param("id")
	if !canViewStudent(c, studentID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	card, err := h.cards.Compose(c.Request.Context(), studentID, c.Query("exam_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == "json" {
		response.JSON(c, http.StatusOK, card, nil)
		return
	}
	body, err := h.exporter.ReportCardPDF(card)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, card.FileName(), "application/pdf", body)
}

// BulkReportCards godoc
// @Summary Report cards for a cohort
// @Description format=zip stores a bundle of PDFs and returns a signed download URL.
// @Tags Reports
// @Produce json
// @Param exam_id query string true "Exam ID"
// @Param course query string false "Course"
// @Param intake query string false "Intake"
// @Param semester query string false "Semester"
// @Param session query string false "Session"
// @Param format query string false "json (default) or zip"
// @Success 200 {object} response.Envelope
// @Router /reports/report-cards/bulk [get]
func (h *ReportHandler) BulkReportCards(c *gin.Context) {
	var cohort models.Cohort
	if err := c.ShouldBindQuery(&cohort); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid cohort filter"))
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "zip" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json or zip"))
		return
	}
	result, err := h.bulk.Generate(c.Request.Context(), cohort, c.Query("exam_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == "json" {
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	archive, err := h.exporter.ArchiveReportCards(result)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, archive, nil)
}

// Download godoc
// @Summary Download a stored archive
// @Tags Reports
// @Produce application/zip
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.exporter.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, download.Filename, "application/zip", download.Body)
}
