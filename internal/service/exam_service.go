package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/repository"
	"github.com/noah-isme/univ-academics-api/pkg/database"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

// Days between the canonical sittings created by EnsureSubjectExams.
var examSittingOffsets = map[models.ExamType]int{
	models.ExamTypeIncourse1st: 0,
	models.ExamTypeIncourse2nd: 30,
	models.ExamTypeFinal:       60,
}

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	ListByCohort(ctx context.Context, course, semester string) ([]models.Exam, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	FindByKey(ctx context.Context, course, semester, subjectID string, examType models.ExamType) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	SyncTotalMarks(ctx context.Context, subjectID string, totalMarks int) ([]string, error)
}

// ExamService manages the exam catalog.
type ExamService struct {
	repo      examRepository
	subjects  subjectReader
	stats     statisticsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs ExamService.
func NewExamService(repo examRepository, subjects subjectReader, stats statisticsInvalidator, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, subjects: subjects, stats: stats, validator: validate, logger: logger}
}

// List returns paginated exams.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list exams")
	}
	return exams, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns an exam by id.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	return loadExam(ctx, s.repo, id)
}

// Create adds an exam. Legacy exam type names are normalized and a subject
// linked exam takes its total marks from the subject.
func (s *ExamService) Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	examType, ok := models.NormalizeExamType(req.ExamType)
	if !ok {
		return nil, appErrors.Validation(fmt.Sprintf("unknown exam type %q", req.ExamType))
	}
	date, err := parseDate(req.ExamDate)
	if err != nil {
		return nil, err
	}
	exam := &models.Exam{
		Name:        strings.TrimSpace(req.Name),
		ExamType:    examType,
		Course:      strings.TrimSpace(req.Course),
		Semester:    strings.TrimSpace(req.Semester),
		ExamDate:    date,
		Description: req.Description,
		TotalMarks:  100,
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}
	if req.SubjectID != nil && *req.SubjectID != "" {
		subject, err := loadSubject(ctx, s.subjects, *req.SubjectID)
		if err != nil {
			return nil, err
		}
		exam.SubjectID = &subject.ID
		exam.TotalMarks = subject.TotalMarks
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, s.writeError(err, exam, "failed to create exam")
	}
	return exam, nil
}

// Update applies the non-nil fields of req. Subject linked exams keep the
// subject's total marks.
func (s *ExamService) Update(ctx context.Context, id string, req dto.UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		exam.Name = strings.TrimSpace(*req.Name)
	}
	if req.ExamDate != nil {
		date, err := parseDate(*req.ExamDate)
		if err != nil {
			return nil, err
		}
		exam.ExamDate = date
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.TotalMarks != nil {
		if exam.SubjectID != nil {
			return nil, appErrors.Validation("total_marks of a subject exam follows the subject")
		}
		exam.TotalMarks = *req.TotalMarks
	}
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, s.writeError(err, exam, "failed to update exam")
	}
	if s.stats != nil {
		s.stats.InvalidateExam(ctx, exam.ID)
	}
	return exam, nil
}

// EnsureSubjectExams creates any missing canonical exam of the subject and
// aligns the total marks of the existing ones. Calling it again is a no-op.
func (s *ExamService) EnsureSubjectExams(ctx context.Context, subjectID string, baseDate time.Time) (*dto.EnsureExamsResponse, error) {
	subject, err := loadSubject(ctx, s.subjects, subjectID)
	if err != nil {
		return nil, err
	}
	if baseDate.IsZero() {
		baseDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	resp := &dto.EnsureExamsResponse{SubjectID: subject.ID, Exams: make([]models.Exam, 0, len(models.ExamTypes))}

	for _, examType := range models.ExamTypes {
		existing, err := s.repo.FindByKey(ctx, subject.Course, subject.Semester, subject.ID, examType)
		if err == nil {
			resp.Existing++
			resp.Exams = append(resp.Exams, *existing)
			continue
		}
		if !isNoRows(err) {
			return nil, internalError(err, "failed to load exam")
		}
		exam := &models.Exam{
			Name:       fmt.Sprintf("%s %s", subject.Code, examType.Label()),
			ExamType:   examType,
			Course:     subject.Course,
			Semester:   subject.Semester,
			SubjectID:  &subject.ID,
			ExamDate:   baseDate.AddDate(0, 0, examSittingOffsets[examType]),
			TotalMarks: subject.TotalMarks,
		}
		if err := s.repo.Create(ctx, exam); err != nil {
			if database.IsUniqueViolation(err, repository.ExamKeyConstraint) {
				raced, ferr := s.repo.FindByKey(ctx, subject.Course, subject.Semester, subject.ID, examType)
				if ferr != nil {
					return nil, internalError(ferr, "failed to load exam")
				}
				resp.Existing++
				resp.Exams = append(resp.Exams, *raced)
				continue
			}
			return nil, internalError(err, "failed to create exam")
		}
		resp.Created++
		resp.Exams = append(resp.Exams, *exam)
	}

	synced, err := s.repo.SyncTotalMarks(ctx, subject.ID, subject.TotalMarks)
	if err != nil {
		return nil, internalError(err, "failed to sync exam total marks")
	}
	resp.Synced = int64(len(synced))
	invalidateExamStatistics(ctx, s.stats, synced)
	for i := range resp.Exams {
		resp.Exams[i].TotalMarks = subject.TotalMarks
	}
	s.logger.Info("subject exams ensured",
		zap.String("subject_id", subject.ID),
		zap.Int("created", resp.Created),
		zap.Int("existing", resp.Existing),
		zap.Int("synced", len(synced)),
	)
	return resp, nil
}

// ExamsForCohort returns the subject exams a (course, semester) sits. Every
// intake of the course shares them.
func (s *ExamService) ExamsForCohort(ctx context.Context, course, semester string) ([]models.Exam, error) {
	if course == "" || semester == "" {
		return nil, appErrors.Validation("course and semester are required")
	}
	exams, err := s.repo.ListByCohort(ctx, course, semester)
	if err != nil {
		return nil, internalError(err, "failed to list cohort exams")
	}
	return exams, nil
}

func (s *ExamService) writeError(err error, exam *models.Exam, message string) error {
	if database.IsUniqueViolation(err, repository.ExamKeyConstraint) {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("%s exam already exists for %s semester %s", exam.ExamType.Label(), exam.Course, exam.Semester))
	}
	return internalError(err, message)
}
