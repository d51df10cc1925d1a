package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

// ExamKeyConstraint keeps one exam per (course, semester, subject, exam type).
const ExamKeyConstraint = "exams_course_semester_subject_type_key"

const examColumns = "id, name, exam_type, course, semester, subject_id, exam_date, total_marks, description, created_at, updated_at"

// ExamRepository manages exam persistence.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams ordered by course, semester and sitting date.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.Course != "" {
		args = append(args, filter.Course)
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if filter.ExamType != "" {
		args = append(args, filter.ExamType)
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")
	page, size := models.NormalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM exams WHERE %s ORDER BY course, semester, exam_date, name LIMIT %d OFFSET %d",
		examColumns, where, size, (page-1)*size)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exams WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// ListByCohort returns every subject-linked exam a (course, semester) cohort sits.
func (r *ExamRepository) ListByCohort(ctx context.Context, course, semester string) ([]models.Exam, error) {
	var exams []models.Exam
	query := "SELECT " + examColumns + " FROM exams WHERE course = $1 AND semester = $2 AND subject_id IS NOT NULL ORDER BY subject_id, exam_type"
	if err := r.db.SelectContext(ctx, &exams, query, course, semester); err != nil {
		return nil, fmt.Errorf("list cohort exams: %w", err)
	}
	return exams, nil
}

// FindByID retrieves an exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, "SELECT "+examColumns+" FROM exams WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// FindByKey retrieves the exam for a subject sitting.
func (r *ExamRepository) FindByKey(ctx context.Context, course, semester, subjectID string, examType models.ExamType) (*models.Exam, error) {
	var exam models.Exam
	query := "SELECT " + examColumns + " FROM exams WHERE course = $1 AND semester = $2 AND subject_id = $3 AND exam_type = $4"
	if err := r.db.GetContext(ctx, &exam, query, course, semester, subjectID, examType); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, name, exam_type, course, semester, subject_id, exam_date, total_marks, description, created_at, updated_at)
        VALUES (:id, :name, :exam_type, :course, :semester, :subject_id, :exam_date, :total_marks, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update modifies an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, exam_type = :exam_type, course = :course, semester = :semester, subject_id = :subject_id,
        exam_date = :exam_date, total_marks = :total_marks, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// SyncTotalMarks aligns every exam of subjectID with the subject's total marks
// and returns the ids of the exams it changed.
func (r *ExamRepository) SyncTotalMarks(ctx context.Context, subjectID string, totalMarks int) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`UPDATE exams SET total_marks = $1, updated_at = $2 WHERE subject_id = $3 AND total_marks <> $1 RETURNING id`,
		totalMarks, time.Now().UTC(), subjectID)
	if err != nil {
		return nil, fmt.Errorf("sync exam total marks: %w", err)
	}
	return ids, nil
}
