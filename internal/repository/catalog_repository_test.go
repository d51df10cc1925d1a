package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/univ-academics-api/internal/models"
)

var subjectMockColumns = []string{"id", "name", "code", "course", "semester", "subject_type", "credit_hours", "total_marks", "active", "created_at", "updated_at"}

func TestSubjectRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+subjectColumns+" FROM subjects WHERE 1=1 AND course = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("BBA").
		WillReturnRows(sqlmock.NewRows(subjectMockColumns).AddRow("sub-1", "Accounting", "ACC101", "BBA", "1", "core", 3.0, 100, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE 1=1 AND course = $1")).
		WithArgs("BBA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	subjects, total, err := repo.List(context.Background(), models.SubjectFilter{Course: "BBA"})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 100, subjects[0].TotalMarks)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{Name: "Accounting", Code: "ACC101", TotalMarks: 100, Active: true}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryFindByKey(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM exams WHERE course = \$1 AND semester = \$2 AND subject_id = \$3 AND exam_type = \$4`).
		WithArgs("BBA", "1", "sub-1", models.ExamTypeFinal).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "exam_type", "course", "semester", "subject_id", "exam_date", "total_marks", "description", "created_at", "updated_at"}).
			AddRow("exam-1", "Final", "final", "BBA", "1", "sub-1", now, 100, nil, now, now))

	exam, err := repo.FindByKey(context.Background(), "BBA", "1", "sub-1", models.ExamTypeFinal)
	require.NoError(t, err)
	require.NotNil(t, exam.SubjectID)
	assert.Equal(t, "sub-1", *exam.SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositorySyncTotalMarks(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE exams SET total_marks = $1, updated_at = $2 WHERE subject_id = $3 AND total_marks <> $1 RETURNING id")).
		WithArgs(50, sqlmock.AnyArg(), "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("exam-1").AddRow("exam-2"))

	ids, err := repo.SyncTotalMarks(context.Background(), "sub-1", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"exam-1", "exam-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByCohort(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_number, full_name, email, course, intake, semester, session, active, created_at, updated_at FROM students WHERE active = $1 AND course = $2 AND intake = $3 ORDER BY student_number")).
		WithArgs(true, "BBA", "2023").
		WillReturnRows(sqlmock.NewRows(studentColumns).AddRow("stu-1", "S-001", "Ada", nil, "BBA", "2023", "1", "2023-24", true, now, now))

	students, err := repo.ListByCohort(context.Background(), models.Cohort{Course: "BBA", Intake: "2023"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "S-001", students[0].StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByNumber(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM students WHERE student_number = \$1 LIMIT 1`).
		WithArgs("S-001").
		WillReturnRows(sqlmock.NewRows(studentColumns).AddRow("stu-1", "S-001", "Ada", nil, "BBA", "2023", "1", "2023-24", true, now, now))

	student, err := repo.FindByNumber(context.Background(), "S-001")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", student.ID)
}
