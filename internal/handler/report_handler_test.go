package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/service"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

func sampleCard() *dto.ReportCard {
	return &dto.ReportCard{
		Mode:    dto.ReportCardModeSemester,
		Student: dto.ReportCardStudent{ID: "stu-1", StudentNumber: "S001", Name: "Amina"},
	}
}

func TestReportHandlerReportCardJSON(t *testing.T) {
	composer := &composerMock{card: sampleCard()}
	h := NewReportHandler(composer, &bulkGeneratorMock{}, &exporterMock{})

	c, w := newContext(t, http.MethodGet, "/reports/students/stu-1/report-card?exam_id=exam-1", nil, staffClaims)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	h.ReportCard(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1", composer.lastStudentID)
	assert.Equal(t, "exam-1", composer.lastExamID)

	var card dto.ReportCard
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &card))
	assert.Equal(t, "S001", card.Student.StudentNumber)
}

func TestReportHandlerReportCardPDF(t *testing.T) {
	h := NewReportHandler(&composerMock{card: sampleCard()}, &bulkGeneratorMock{}, &exporterMock{})

	c, w := newContext(t, http.MethodGet, "/reports/students/stu-1/report-card?format=pdf", nil, staffClaims)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	h.ReportCard(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report_card_S001_semester.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestReportHandlerReportCardErrors(t *testing.T) {
	composer := &composerMock{}
	h := NewReportHandler(composer, &bulkGeneratorMock{}, &exporterMock{})

	c, w := newContext(t, http.MethodGet, "/reports/students/stu-1/report-card?format=docx", nil, staffClaims)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	h.ReportCard(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(t, http.MethodGet, "/reports/students/stu-1/report-card", nil, staffClaims)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	h.ReportCard(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrNoData.Code, decode(t, w).Error.Code)

	c, w = newContext(t, http.MethodGet, "/reports/students/stu-2/report-card", nil, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "stu-2"}}
	h.ReportCard(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, composer.lastStudentID)
}

func TestReportHandlerBulkReportCards(t *testing.T) {
	bulk := &bulkGeneratorMock{result: &dto.BulkReportResult{ExamID: "exam-1", Cards: []dto.BulkReportCard{{StudentNumber: "S001", ReportCard: sampleCard()}}}}
	exporter := &exporterMock{archive: &dto.BulkReportArchive{ArchiveID: "a1", DownloadURL: "/api/v1/export/tok", Generated: 1}}
	h := NewReportHandler(&composerMock{}, bulk, exporter)

	c, w := newContext(t, http.MethodGet, "/reports/report-cards/bulk?exam_id=exam-1&course=BSc&semester=1", nil, staffClaims)
	h.BulkReportCards(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BSc", bulk.lastCohort.Course)
	assert.Equal(t, "1", bulk.lastCohort.Semester)
	assert.Nil(t, exporter.archivedFor)

	c, w = newContext(t, http.MethodGet, "/reports/report-cards/bulk?exam_id=exam-1&format=zip", nil, staffClaims)
	h.BulkReportCards(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, exporter.archivedFor)

	var archive dto.BulkReportArchive
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &archive))
	assert.Equal(t, "/api/v1/export/tok", archive.DownloadURL)

	c, w = newContext(t, http.MethodGet, "/reports/report-cards/bulk", nil, staffClaims)
	h.BulkReportCards(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	exporter := &exporterMock{download: &service.Download{Filename: "a1.zip", Body: []byte("PK"), ExpiresAt: time.Now().Add(time.Hour)}}
	h := NewReportHandler(&composerMock{}, &bulkGeneratorMock{}, exporter)

	c, w := newContext(t, http.MethodGet, "/export/tok", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", w.Body.String())

	exporter.resolveErr = appErrors.Clone(appErrors.ErrForbidden, "invalid or expired link")
	c, w = newContext(t, http.MethodGet, "/export/bad", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
