package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/repository"
	"github.com/noah-isme/univ-academics-api/pkg/database"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
}

type examTotalSyncer interface {
	SyncTotalMarks(ctx context.Context, subjectID string, totalMarks int) ([]string, error)
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	exams     examTotalSyncer
	stats     statisticsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, exams examTotalSyncer, stats statisticsInvalidator, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, exams: exams, stats: stats, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subjects")
	}
	return subjects, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.NotFound("subject")
		}
		return nil, internalError(err, "failed to load subject")
	}
	return subject, nil
}

// Create registers a subject. Codes are stored upper case and must be unique.
func (s *SubjectService) Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Course:      strings.TrimSpace(req.Course),
		Semester:    strings.TrimSpace(req.Semester),
		SubjectType: req.SubjectType,
		CreditHours: req.CreditHours,
		TotalMarks:  req.TotalMarks,
		Active:      true,
	}
	if subject.SubjectType == "" {
		subject.SubjectType = models.SubjectTypeCore
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, s.writeError(err, subject.Code, "failed to create subject")
	}
	return subject, nil
}

// Update applies the non-nil fields of req. A total marks change is pushed to
// every exam of the subject.
func (s *SubjectService) Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousTotal := subject.TotalMarks

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.SubjectType != nil {
		subject.SubjectType = *req.SubjectType
	}
	if req.CreditHours != nil {
		subject.CreditHours = *req.CreditHours
	}
	if req.TotalMarks != nil {
		subject.TotalMarks = *req.TotalMarks
	}
	if req.Active != nil {
		subject.Active = *req.Active
	}
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, s.writeError(err, subject.Code, "failed to update subject")
	}

	if subject.TotalMarks != previousTotal && s.exams != nil {
		synced, err := s.exams.SyncTotalMarks(ctx, subject.ID, subject.TotalMarks)
		if err != nil {
			return nil, internalError(err, "failed to sync exam total marks")
		}
		invalidateExamStatistics(ctx, s.stats, synced)
		s.logger.Info("exam totals synced", zap.String("subject_id", subject.ID), zap.Int("total_marks", subject.TotalMarks), zap.Int("exams", len(synced)))
	}
	return subject, nil
}

func (s *SubjectService) writeError(err error, code, message string) error {
	if database.IsUniqueViolation(err, repository.SubjectCodeConstraint) {
		return appErrors.Clone(appErrors.ErrConflict, "subject code "+code+" already exists")
	}
	return internalError(err, message)
}
