package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

// AttendanceRepository persists subject attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// Roster lists the active students of a cohort with any mark already taken for
// subjectID on date.
func (r *AttendanceRepository) Roster(ctx context.Context, cohort models.Cohort, subjectID string, date time.Time) ([]models.RosterEntry, error) {
	b := r.sb.Select("s.id AS student_id", "s.student_number", "s.full_name", "a.status", "a.remarks").
		From("students s").
		LeftJoin("attendance a ON a.student_id = s.id AND a.subject_id = ? AND a.date = ?", subjectID, date.Format("2006-01-02")).
		Where(squirrel.Eq{"s.active": true})
	b = whereCohort(b, "s", cohort)
	query, args, err := b.OrderBy("s.student_number").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roster query: %w", err)
	}
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}

// Upsert writes the mark for (student, subject, date) and reports whether a
// new row was inserted.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO attendance (id, student_id, subject_id, date, status, course, intake, semester, session, remarks, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
        ON CONFLICT (student_id, subject_id, date) DO UPDATE SET
            status = EXCLUDED.status,
            remarks = EXCLUDED.remarks,
            course = EXCLUDED.course,
            intake = EXCLUDED.intake,
            semester = EXCLUDED.semester,
            session = EXCLUDED.session,
            updated_at = EXCLUDED.updated_at
        RETURNING id, (xmax = 0) AS inserted`
	var row struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query,
		record.ID, record.StudentID, record.SubjectID, record.Date.Format("2006-01-02"), record.Status,
		record.Course, record.Intake, record.Semester, record.Session, record.Remarks, now,
	); err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	record.ID = row.ID
	return row.Inserted, nil
}

// History aggregates attendance into per-meeting sessions, newest first.
func (r *AttendanceRepository) History(ctx context.Context, filter models.AttendanceHistoryFilter) ([]models.AttendanceSession, error) {
	b := r.sb.Select(
		"a.date", "a.course", "a.intake", "a.semester", "a.session",
		"a.subject_id", "sub.name AS subject_name", "sub.code AS subject_code",
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE a.status = 'present') AS present",
		"COUNT(*) FILTER (WHERE a.status = 'absent') AS absent",
	).
		From("attendance a").
		Join("subjects sub ON sub.id = a.subject_id")
	b = whereCohort(b, "a", filter.Cohort)
	if filter.SubjectID != "" {
		b = b.Where(squirrel.Eq{"a.subject_id": filter.SubjectID})
	}
	if filter.DateFrom != nil {
		b = b.Where(squirrel.GtOrEq{"a.date": filter.DateFrom.Format("2006-01-02")})
	}
	if filter.DateTo != nil {
		b = b.Where(squirrel.LtOrEq{"a.date": filter.DateTo.Format("2006-01-02")})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	b = b.GroupBy("a.date", "a.course", "a.intake", "a.semester", "a.session", "a.subject_id", "sub.name", "sub.code").
		OrderBy("a.date DESC", "sub.name").
		Limit(uint64(limit))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build attendance history: %w", err)
	}
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return sessions, nil
}
