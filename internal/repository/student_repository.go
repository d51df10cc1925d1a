package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

var studentColumns = []string{
	"id", "student_number", "full_name", "email", "course", "intake", "semester", "session", "active", "created_at", "updated_at",
}

// StudentRepository reads the student directory.
type StudentRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// FindByID fetches a student by internal id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByNumber fetches a student by the externally issued student id.
func (r *StudentRepository) FindByNumber(ctx context.Context, number string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"student_number": number})
}

func (r *StudentRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Student, error) {
	query, args, err := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find student: %w", err)
	}
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, args...); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByCohort returns active students of a cohort ordered by student number.
// Empty cohort fields do not filter.
func (r *StudentRepository) ListByCohort(ctx context.Context, cohort models.Cohort) ([]models.Student, error) {
	b := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"active": true})
	b = whereCohort(b, "", cohort)
	query, args, err := b.OrderBy("student_number").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cohort query: %w", err)
	}
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list cohort students: %w", err)
	}
	return students, nil
}

// whereCohort adds equality filters for the non-empty cohort fields. alias
// qualifies the columns when set.
func whereCohort(b squirrel.SelectBuilder, alias string, cohort models.Cohort) squirrel.SelectBuilder {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	if cohort.Course != "" {
		b = b.Where(squirrel.Eq{col("course"): cohort.Course})
	}
	if cohort.Intake != "" {
		b = b.Where(squirrel.Eq{col("intake"): cohort.Intake})
	}
	if cohort.Semester != "" {
		b = b.Where(squirrel.Eq{col("semester"): cohort.Semester})
	}
	if cohort.Session != "" {
		b = b.Where(squirrel.Eq{col("session"): cohort.Session})
	}
	return b
}
