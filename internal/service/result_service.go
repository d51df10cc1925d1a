package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/repository"
	"github.com/noah-isme/univ-academics-api/pkg/database"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
)

type resultStore interface {
	Upsert(ctx context.Context, result *models.Result) (bool, error)
	Insert(ctx context.Context, result *models.Result) error
	FindByID(ctx context.Context, id string) (*models.ResultRecord, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, int, error)
}

type statisticsInvalidator interface {
	InvalidateExam(ctx context.Context, examID string)
}

func invalidateExamStatistics(ctx context.Context, stats statisticsInvalidator, examIDs []string) {
	if stats == nil {
		return
	}
	for _, id := range examIDs {
		stats.InvalidateExam(ctx, id)
	}
}

// ResultService records exam results and serves their graded projections.
type ResultService struct {
	results   resultStore
	students  studentReader
	exams     examReader
	subjects  subjectReader
	stats     statisticsInvalidator
	calc      *grading.Calculator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService constructs ResultService.
func NewResultService(results resultStore, students studentReader, exams examReader, subjects subjectReader, stats statisticsInvalidator, calc *grading.Calculator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = grading.MustCalculator(grading.NU10)
	}
	return &ResultService{
		results:   results,
		students:  students,
		exams:     exams,
		subjects:  subjects,
		stats:     stats,
		calc:      calc,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Upsert creates or updates the result for (student, exam, subject).
func (s *ResultService) Upsert(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, bool, error) {
	result, student, exam, subject, err := s.prepare(ctx, req)
	if err != nil {
		return nil, false, err
	}
	inserted, err := s.results.Upsert(ctx, result)
	if err != nil {
		return nil, false, internalError(err, "failed to save result")
	}
	s.afterWrite(ctx, "single", exam.ID, inserted)
	detail := toResultDetail(composeRecord(*result, student, exam, subject), s.calc)
	return &detail, inserted, nil
}

// Create inserts a result and rejects an existing (student, exam, subject) row.
func (s *ResultService) Create(ctx context.Context, req dto.UpsertResultRequest) (*dto.ResultDetail, error) {
	result, student, exam, subject, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.results.Insert(ctx, result); err != nil {
		if database.IsUniqueViolation(err, repository.ResultUniqueConstraint) {
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicateResult.Code, appErrors.ErrDuplicateResult.Status,
				fmt.Sprintf("result already recorded for student %s in %s (%s)", student.StudentNumber, subject.Code, exam.Name))
		}
		return nil, internalError(err, "failed to create result")
	}
	s.afterWrite(ctx, "single", exam.ID, true)
	detail := toResultDetail(composeRecord(*result, student, exam, subject), s.calc)
	return &detail, nil
}

func (s *ResultService) prepare(ctx context.Context, req dto.UpsertResultRequest) (*models.Result, *models.Student, *models.Exam, *models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, nil, nil, validationError(err, "invalid result payload")
	}
	student, err := loadStudent(ctx, s.students, req.StudentID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	exam, err := loadExam(ctx, s.exams, req.ExamID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	subject, err := loadSubject(ctx, s.subjects, req.SubjectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	marks := grading.Round(*req.MarksObtained, 2)
	if err := checkResult(exam, subject, marks); err != nil {
		return nil, nil, nil, nil, err
	}
	result := &models.Result{
		StudentID:      student.ID,
		ExamID:         exam.ID,
		SubjectID:      subject.ID,
		MarksObtained:  marks,
		Remarks:        trimmed(req.Remarks),
		TeacherComment: trimmed(req.TeacherComment),
	}
	return result, student, exam, subject, nil
}

// BulkUpsert stores each row independently. A rejected row is reported with
// its 1-based position and never aborts the batch. Only an unknown exam fails
// the whole call.
func (s *ResultService) BulkUpsert(ctx context.Context, req dto.BulkResultsRequest) (*dto.BulkResultsResponse, error) {
	if strings.TrimSpace(req.ExamID) == "" {
		return nil, appErrors.Validation("exam_id is required")
	}
	if len(req.Rows) == 0 {
		return nil, appErrors.Validation("results must contain at least one row")
	}
	exam, err := loadExam(ctx, s.exams, req.ExamID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkResultsResponse{Results: []dto.ResultListItem{}, ErrorDetails: []dto.BulkRowError{}}
	students := map[string]*models.Student{}
	subjects := map[string]*models.Subject{}

	for i, row := range req.Rows {
		if err := ctx.Err(); err != nil {
			return nil, internalError(err, "bulk upload cancelled")
		}
		item, inserted, rowErr := s.storeRow(ctx, exam, row, students, subjects)
		if rowErr != nil {
			resp.ErrorDetails = append(resp.ErrorDetails, dto.BulkRowError{
				Row:       i + 1,
				StudentID: row.StudentID,
				Reference: row.SubjectCode,
				Error:     rowErr.Error(),
			})
			continue
		}
		resp.Created++
		if inserted {
			resp.Inserted++
		} else {
			resp.Updated++
		}
		resp.Results = append(resp.Results, *item)
	}
	resp.Errors = len(resp.ErrorDetails)

	if resp.Created > 0 && s.stats != nil {
		s.stats.InvalidateExam(ctx, exam.ID)
	}
	s.logger.Info("bulk results processed",
		zap.String("exam_id", exam.ID),
		zap.Int("created", resp.Created),
		zap.Int("errors", resp.Errors))
	return resp, nil
}

func (s *ResultService) storeRow(ctx context.Context, exam *models.Exam, row dto.BulkResultRow, students map[string]*models.Student, subjects map[string]*models.Subject) (*dto.ResultListItem, bool, error) {
	if err := s.validator.Struct(row); err != nil {
		return nil, false, fmt.Errorf("%s", validationMessage(err))
	}
	number := strings.TrimSpace(row.StudentID)
	student, ok := students[number]
	if !ok {
		found, err := s.students.FindByNumber(ctx, number)
		if err != nil {
			if isNoRows(err) {
				return nil, false, fmt.Errorf("student with ID %s not found", number)
			}
			return nil, false, fmt.Errorf("failed to load student %s", number)
		}
		students[number] = found
		student = found
	}

	code := strings.ToUpper(strings.TrimSpace(row.SubjectCode))
	subject, ok := subjects[code]
	if !ok {
		found, err := s.subjects.FindByCode(ctx, code)
		if err != nil {
			if isNoRows(err) {
				return nil, false, fmt.Errorf("subject with code %s not found", code)
			}
			return nil, false, fmt.Errorf("failed to load subject %s", code)
		}
		subjects[code] = found
		subject = found
	}

	marks := grading.Round(*row.MarksObtained, 2)
	if err := checkResult(exam, subject, marks); err != nil {
		return nil, false, fmt.Errorf("%s", err.Message)
	}

	result := &models.Result{
		StudentID:     student.ID,
		ExamID:        exam.ID,
		SubjectID:     subject.ID,
		MarksObtained: marks,
		Remarks:       trimmed(row.Remarks),
	}
	inserted, err := s.results.Upsert(ctx, result)
	if err != nil {
		s.logger.Warn("bulk result row failed", zap.String("exam_id", exam.ID), zap.String("student", number), zap.Error(err))
		return nil, false, fmt.Errorf("failed to save result")
	}
	s.metrics.RecordResultWrite("bulk", inserted)
	item := toResultListItem(composeRecord(*result, student, exam, subject), s.calc)
	return &item, inserted, nil
}

// Get returns one result.
func (s *ResultService) Get(ctx context.Context, id string) (*dto.ResultDetail, error) {
	record, err := s.results.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.NotFound("result")
		}
		return nil, internalError(err, "failed to load result")
	}
	detail := toResultDetail(*record, s.calc)
	return &detail, nil
}

// List returns graded results matching filter.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]dto.ResultListItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	records, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list results")
	}
	items := make([]dto.ResultListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, toResultListItem(rec, s.calc))
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Compute grades an arbitrary score with the active table.
func (s *ResultService) Compute(marks, total float64) (*dto.GradeComputation, error) {
	if total <= 0 {
		return nil, appErrors.Validation("total_marks must be greater than zero")
	}
	if marks < 0 || marks > total {
		return nil, appErrors.Validation(fmt.Sprintf("marks must be between 0 and %g", total))
	}
	g := s.calc.Compute(marks, total)
	return &dto.GradeComputation{
		MarksObtained: marks,
		TotalMarks:    total,
		Percentage:    grading.Round(g.Percentage, 2),
		Grade:         g.Grade,
		GradePoint:    g.GradePoint,
		Table:         s.calc.TableName(),
	}, nil
}

func (s *ResultService) afterWrite(ctx context.Context, path, examID string, inserted bool) {
	s.metrics.RecordResultWrite(path, inserted)
	if s.stats != nil {
		s.stats.InvalidateExam(ctx, examID)
	}
}

// checkResult enforces the marks range and exam/subject consistency.
func checkResult(exam *models.Exam, subject *models.Subject, marks float64) *appErrors.Error {
	if subject.TotalMarks <= 0 {
		return appErrors.Validation(fmt.Sprintf("subject %s has no total marks configured", subject.Code))
	}
	if marks < 0 || marks > float64(subject.TotalMarks) {
		return appErrors.Validation(fmt.Sprintf("marks must be between 0 and %d for %s", subject.TotalMarks, subject.Code))
	}
	if exam.SubjectID != nil && *exam.SubjectID != subject.ID {
		return appErrors.Validation(fmt.Sprintf("subject %s does not belong to exam %s", subject.Code, exam.Name))
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
