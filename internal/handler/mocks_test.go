package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/middleware"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/service"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

type resultServiceMock struct {
	upsertResp   *dto.ResultDetail
	upsertNew    bool
	createErr    error
	bulkResp     *dto.BulkResultsResponse
	bulkErr      error
	listItems    []dto.ResultListItem
	lastFilter   models.ResultFilter
	lastUpsert   dto.UpsertResultRequest
	bulkCalled   bool
	computeCalls int
}

func (m *resultServiceMock) Upsert(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, bool, error) {
	m.lastUpsert = req
	return m.upsertResp, m.upsertNew, nil
}

func (m *resultServiceMock) Create(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, error) {
	m.lastUpsert = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.upsertResp, nil
}

func (m *resultServiceMock) BulkUpsert(ctx context.Context, req dto.BulkResultsRequest) (*dto.BulkResultsResponse, error) {
	m.bulkCalled = true
	return m.bulkResp, m.bulkErr
}

func (m *resultServiceMock) Get(ctx context.Context, id string) (*dto.ResultDetail, error) {
	return nil, appErrors.ErrNotFound
}

func (m *resultServiceMock) List(ctx context.Context, filter models.ResultFilter) ([]dto.ResultListItem, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listItems, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.listItems)}, nil
}

func (m *resultServiceMock) Compute(marks, total float64) (*dto.GradeComputation, error) {
	m.computeCalls++
	return &dto.GradeComputation{MarksObtained: marks, TotalMarks: total, Grade: "B", Table: "NU10"}, nil
}

type examServiceMock struct {
	exams  map[string]models.Exam
	cohort []models.Exam
}

func (m *examServiceMock) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	out := make([]models.Exam, 0, len(m.exams))
	for _, e := range m.exams {
		out = append(out, e)
	}
	return out, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(out)}, nil
}

func (m *examServiceMock) Get(ctx context.Context, id string) (*models.Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	return &e, nil
}

func (m *examServiceMock) Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	return &models.Exam{ID: "new", Name: req.Name}, nil
}

func (m *examServiceMock) Update(ctx context.Context, id string, req dto.UpdateExamRequest) (*models.Exam, error) {
	return m.Get(ctx, id)
}

func (m *examServiceMock) ExamsForCohort(ctx context.Context, course, semester string) ([]models.Exam, error) {
	if course == "" || semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course and semester are required")
	}
	return m.cohort, nil
}

type statisticsMock struct {
	stats  *dto.ExamStatistics
	cached bool
}

func (m *statisticsMock) ExamStatistics(ctx context.Context, examID string) (*dto.ExamStatistics, bool, error) {
	if m.stats == nil {
		return nil, false, appErrors.ErrNotFound
	}
	return m.stats, m.cached, nil
}

func (m *statisticsMock) ExamSummary(ctx context.Context, filter models.ExamFilter) (*dto.ExamSummary, error) {
	return &dto.ExamSummary{}, nil
}

type exporterMock struct {
	archive     *dto.BulkReportArchive
	download    *service.Download
	resolveErr  error
	archivedFor *dto.BulkReportResult
}

func (m *exporterMock) ExamResultsCSV(ctx context.Context, examID string) (string, []byte, error) {
	return "results_" + examID + ".csv", []byte("Student ID\nS001\n"), nil
}

func (m *exporterMock) ExamResultsPDF(ctx context.Context, examID string) (string, []byte, error) {
	return "results_" + examID + ".pdf", []byte("%PDF-1.3"), nil
}

func (m *exporterMock) ReportCardPDF(card *dto.ReportCard) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func (m *exporterMock) ArchiveReportCards(bulk *dto.BulkReportResult) (*dto.BulkReportArchive, error) {
	m.archivedFor = bulk
	return m.archive, nil
}

func (m *exporterMock) Resolve(token string) (*service.Download, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.download, nil
}

type composerMock struct {
	card          *dto.ReportCard
	lastStudentID string
	lastExamID    string
}

func (m *composerMock) Compose(ctx context.Context, studentID, examID string) (*dto.ReportCard, error) {
	m.lastStudentID = studentID
	m.lastExamID = examID
	if m.card == nil {
		return nil, appErrors.ErrNoData
	}
	return m.card, nil
}

type bulkGeneratorMock struct {
	result     *dto.BulkReportResult
	lastCohort models.Cohort
}

func (m *bulkGeneratorMock) Generate(ctx context.Context, cohort models.Cohort, examID string) (*dto.BulkReportResult, error) {
	m.lastCohort = cohort
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam_id is required")
	}
	return m.result, nil
}

type subjectServiceMock struct{}

func (subjectServiceMock) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	return []models.Subject{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (subjectServiceMock) Get(ctx context.Context, id string) (*models.Subject, error) {
	return &models.Subject{ID: id}, nil
}

func (subjectServiceMock) Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	return &models.Subject{ID: "sub-new", Code: req.Code}, nil
}

func (subjectServiceMock) Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	return &models.Subject{ID: id}, nil
}

func (subjectServiceMock) EnsureSubjectExams(ctx context.Context, subjectID string, baseDate time.Time) (*dto.EnsureExamsResponse, error) {
	return &dto.EnsureExamsResponse{}, nil
}

type attendanceServiceMock struct{}

func (attendanceServiceMock) Roster(ctx context.Context, q dto.RosterQuery) (*dto.RosterResponse, error) {
	return &dto.RosterResponse{}, nil
}

func (attendanceServiceMock) BulkSubmit(ctx context.Context, req dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error) {
	return &dto.BulkAttendanceResponse{}, nil
}

func (attendanceServiceMock) History(ctx context.Context, q dto.AttendanceHistoryQuery) (*dto.AttendanceHistoryResponse, error) {
	return &dto.AttendanceHistoryResponse{}, nil
}

var (
	staffClaims   = &models.JWTClaims{UserID: "staff-1", Role: models.RoleTeacher}
	studentClaims = &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}
)

// newContext builds a test context with an optional JSON body and caller.
func newContext(t *testing.T, method, target string, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
