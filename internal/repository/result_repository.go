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

// ResultUniqueConstraint guards one result per (student, exam, subject).
const ResultUniqueConstraint = "results_student_exam_subject_key"

var resultRecordColumns = []string{
	"r.id", "r.student_id", "r.exam_id", "r.subject_id", "r.marks_obtained", "r.remarks", "r.teacher_comment", "r.created_at", "r.updated_at",
	"st.student_number", "st.full_name AS student_name",
	"sub.name AS subject_name", "sub.code AS subject_code", "sub.total_marks AS subject_total_marks",
	"e.name AS exam_name", "e.exam_type", "e.exam_date", "e.total_marks AS exam_total_marks",
}

const resultRecordFrom = `FROM results r
        JOIN students st ON st.id = r.student_id
        JOIN subjects sub ON sub.id = r.subject_id
        JOIN exams e ON e.id = r.exam_id`

// ResultRepository persists exam results.
type ResultRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// Upsert writes result keyed on (student, exam, subject) in a single statement
// and reports whether a new row was inserted. Concurrent writers for the same
// key converge on one row.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO results (id, student_id, exam_id, subject_id, marks_obtained, remarks, teacher_comment, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (student_id, exam_id, subject_id) DO UPDATE SET
            marks_obtained = EXCLUDED.marks_obtained,
            remarks = EXCLUDED.remarks,
            teacher_comment = COALESCE(EXCLUDED.teacher_comment, results.teacher_comment),
            updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

	var row struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
		Inserted  bool      `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query,
		result.ID, result.StudentID, result.ExamID, result.SubjectID, result.MarksObtained, result.Remarks, result.TeacherComment, now,
	); err != nil {
		return false, fmt.Errorf("upsert result: %w", err)
	}
	result.ID = row.ID
	result.CreatedAt = row.CreatedAt
	result.UpdatedAt = row.UpdatedAt
	return row.Inserted, nil
}

// Insert creates a result and fails on an existing (student, exam, subject) row.
func (r *ResultRepository) Insert(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now
	const query = `INSERT INTO results (id, student_id, exam_id, subject_id, marks_obtained, remarks, teacher_comment, created_at, updated_at)
        VALUES (:id, :student_id, :exam_id, :subject_id, :marks_obtained, :remarks, :teacher_comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// FindByID loads one result with its joined context.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.ResultRecord, error) {
	query, args, err := r.sb.Select(resultRecordColumns...).
		From("results r").
		Join("students st ON st.id = r.student_id").
		Join("subjects sub ON sub.id = r.subject_id").
		Join("exams e ON e.id = r.exam_id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find result: %w", err)
	}
	var record models.ResultRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns results matching filter with the total count. Results come
// newest first unless filter.ByStudent asks for student order.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, int, error) {
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	order := []string{"r.updated_at DESC", "r.id"}
	if filter.ByStudent {
		order = []string{"st.student_number", "sub.name", "r.id"}
	}
	base := applyResultFilter(r.sb.Select(resultRecordColumns...), filter).
		OrderBy(order...).
		Limit(uint64(size)).
		Offset(uint64((page - 1) * size))
	query, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list results: %w", err)
	}
	var records []models.ResultRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	countQuery, countArgs, err := applyResultFilter(r.sb.Select("COUNT(*)"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count results: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return records, total, nil
}

func applyResultFilter(b squirrel.SelectBuilder, filter models.ResultFilter) squirrel.SelectBuilder {
	b = b.From("results r").
		Join("students st ON st.id = r.student_id").
		Join("subjects sub ON sub.id = r.subject_id").
		Join("exams e ON e.id = r.exam_id")
	if filter.StudentID != "" {
		b = b.Where(squirrel.Eq{"r.student_id": filter.StudentID})
	}
	if filter.ExamID != "" {
		b = b.Where(squirrel.Eq{"r.exam_id": filter.ExamID})
	}
	if filter.SubjectID != "" {
		b = b.Where(squirrel.Eq{"r.subject_id": filter.SubjectID})
	}
	if filter.Course != "" {
		b = b.Where(squirrel.Eq{"st.course": filter.Course})
	}
	if filter.Intake != "" {
		b = b.Where(squirrel.Eq{"st.intake": filter.Intake})
	}
	if filter.Semester != "" {
		b = b.Where(squirrel.Eq{"st.semester": filter.Semester})
	}
	return b
}

// ListForStudent returns every result of a student, limited to examID when set.
func (r *ResultRepository) ListForStudent(ctx context.Context, studentID, examID string) ([]models.ResultRecord, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.student_id = $1", joinColumns(resultRecordColumns), resultRecordFrom)
	args := []interface{}{studentID}
	if examID != "" {
		query += " AND r.exam_id = $2"
		args = append(args, examID)
	}
	query += " ORDER BY sub.name, e.exam_type"

	var records []models.ResultRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	return records, nil
}

// MarksByExam returns the marks of every result recorded for an exam.
func (r *ResultRepository) MarksByExam(ctx context.Context, examID string) ([]float64, error) {
	var marks []float64
	if err := r.db.SelectContext(ctx, &marks, `SELECT marks_obtained FROM results WHERE exam_id = $1`, examID); err != nil {
		return nil, fmt.Errorf("list exam marks: %w", err)
	}
	return marks, nil
}

// StudentIDsWithResults returns the ids of students holding at least one result for examID.
func (r *ResultRepository) StudentIDsWithResults(ctx context.Context, examID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT student_id FROM results WHERE exam_id = $1`, examID); err != nil {
		return nil, fmt.Errorf("list exam students: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
