package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

type cohortLister interface {
	ListByCohort(ctx context.Context, cohort models.Cohort) ([]models.Student, error)
}

type examParticipants interface {
	StudentIDsWithResults(ctx context.Context, examID string) (map[string]struct{}, error)
}

type reportComposer interface {
	Compose(ctx context.Context, studentID, examID string) (*dto.ReportCard, error)
}

// BulkReportService composes the report cards of a whole cohort for one exam.
type BulkReportService struct {
	students    cohortLister
	results     examParticipants
	exams       examReader
	composer    reportComposer
	concurrency int
	logger      *zap.Logger
}

// NewBulkReportService constructs BulkReportService.
func NewBulkReportService(students cohortLister, results examParticipants, exams examReader, composer reportComposer, concurrency int, logger *zap.Logger) *BulkReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BulkReportService{
		students:    students,
		results:     results,
		exams:       exams,
		composer:    composer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Generate composes a card for every cohort student holding a result in examID.
// Cards keep the cohort order.
func (s *BulkReportService) Generate(ctx context.Context, cohort models.Cohort, examID string) (*dto.BulkReportResult, error) {
	if examID == "" {
		return nil, appErrors.Validation("exam_id is required")
	}
	exam, err := loadExam(ctx, s.exams, examID)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListByCohort(ctx, cohort)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	participants, err := s.results.StudentIDsWithResults(ctx, exam.ID)
	if err != nil {
		return nil, internalError(err, "failed to load exam participants")
	}

	result := &dto.BulkReportResult{ExamID: exam.ID}
	slots := make([]*dto.ReportCard, len(students))
	failed := make([]bool, len(students))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range students {
		if _, ok := participants[students[i].ID]; !ok {
			result.Skipped++
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			card, err := s.composer.Compose(gctx, students[i].ID, exam.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Warn("report card composition failed",
					zap.String("student_id", students[i].ID),
					zap.String("student_number", students[i].StudentNumber),
					zap.String("exam_id", exam.ID),
					zap.Error(err),
				)
				failed[i] = true
				return nil
			}
			slots[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk report generation aborted")
	}

	for i, card := range slots {
		if failed[i] {
			result.Failed++
			continue
		}
		if card == nil {
			continue
		}
		result.Cards = append(result.Cards, dto.BulkReportCard{
			StudentID:     students[i].ID,
			StudentNumber: students[i].StudentNumber,
			StudentName:   students[i].FullName,
			ReportCard:    card,
		})
	}
	if len(result.Cards) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no report cards could be generated for this cohort")
	}
	s.logger.Info("bulk report cards generated",
		zap.String("exam_id", exam.ID),
		zap.Int("generated", len(result.Cards)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
