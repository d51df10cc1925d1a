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
	"github.com/noah-isme/univ-academics-api/pkg/database"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceStore interface {
	Roster(ctx context.Context, cohort models.Cohort, subjectID string, date time.Time) ([]models.RosterEntry, error)
	Upsert(ctx context.Context, record *models.Attendance) (bool, error)
	History(ctx context.Context, filter models.AttendanceHistoryFilter) ([]models.AttendanceSession, error)
}

// AttendanceConfig tunes roster defaults.
type AttendanceConfig struct {
	DefaultStatus models.AttendanceStatus
	HistoryLimit  int
}

// AttendanceService coordinates roster taking and session history.
type AttendanceService struct {
	repo      attendanceStore
	subjects  subjectReader
	cfg       AttendanceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceStore, subjects subjectReader, cfg AttendanceConfig, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.DefaultStatus.Valid() {
		cfg.DefaultStatus = models.AttendanceStatusPresent
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	return &AttendanceService{repo: repo, subjects: subjects, cfg: cfg, validator: validate, logger: logger}
}

// Roster lists the cohort for a subject meeting, prefilled with marks already taken.
func (s *AttendanceService) Roster(ctx context.Context, q dto.RosterQuery) (*dto.RosterResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, validationError(err, "invalid roster query")
	}
	if q.Course == "" || q.Semester == "" {
		return nil, appErrors.Validation("course and semester are required")
	}
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	if _, err := loadSubject(ctx, s.subjects, q.SubjectID); err != nil {
		return nil, err
	}
	entries, err := s.repo.Roster(ctx, q.Cohort, q.SubjectID, date)
	if err != nil {
		return nil, internalError(err, "failed to load roster")
	}

	resp := &dto.RosterResponse{
		Date:      date.Format(dateLayout),
		SubjectID: q.SubjectID,
		Students:  make([]dto.RosterStudent, 0, len(entries)),
		Total:     len(entries),
	}
	for _, e := range entries {
		student := dto.RosterStudent{
			ID:            e.StudentID,
			StudentNumber: e.StudentNumber,
			FullName:      e.FullName,
			Status:        s.cfg.DefaultStatus,
			Remarks:       e.Remarks,
		}
		if e.Status != nil {
			student.Status = *e.Status
			student.HasExisting = true
		}
		resp.Students = append(resp.Students, student)
	}
	return resp, nil
}

// BulkSubmit upserts every mark of the request. A failing item is reported and
// the rest of the batch continues.
func (s *AttendanceService) BulkSubmit(ctx context.Context, req dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := loadSubject(ctx, s.subjects, req.SubjectID); err != nil {
		return nil, err
	}

	resp := &dto.BulkAttendanceResponse{ErrorDetails: []dto.BulkRowError{}}
	for i, item := range req.Records {
		record := &models.Attendance{
			StudentID: strings.TrimSpace(item.StudentID),
			SubjectID: req.SubjectID,
			Date:      date,
			Status:    item.Status,
			Course:    req.Course,
			Intake:    req.Intake,
			Semester:  req.Semester,
			Session:   req.Session,
			Remarks:   item.Remarks,
		}
		created, err := s.repo.Upsert(ctx, record)
		if err != nil {
			msg := "failed to save attendance"
			if database.IsForeignKeyViolation(err) {
				msg = fmt.Sprintf("student with ID %s not found", record.StudentID)
			} else {
				s.logger.Warn("attendance upsert failed", zap.String("student_id", record.StudentID), zap.Error(err))
			}
			resp.ErrorDetails = append(resp.ErrorDetails, dto.BulkRowError{Row: i + 1, StudentID: record.StudentID, Error: msg})
			continue
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}
	}
	resp.Errors = len(resp.ErrorDetails)
	return resp, nil
}

// History returns recent sessions grouped by date, subject and cohort.
func (s *AttendanceService) History(ctx context.Context, q dto.AttendanceHistoryQuery) (*dto.AttendanceHistoryResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, validationError(err, "invalid history query")
	}
	filter := models.AttendanceHistoryFilter{Cohort: q.Cohort, SubjectID: q.SubjectID, Limit: q.Limit}
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.HistoryLimit
	}
	if q.DateFrom != "" {
		from, err := parseDate(q.DateFrom)
		if err != nil {
			return nil, err
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := parseDate(q.DateTo)
		if err != nil {
			return nil, err
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, appErrors.Validation("date_to must not be before date_from")
	}
	sessions, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load attendance history")
	}
	if sessions == nil {
		sessions = []models.AttendanceSession{}
	}
	return &dto.AttendanceHistoryResponse{Sessions: sessions, Count: len(sessions)}, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return t, nil
}
