package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/pkg/database"
)

func TestResultRepositoryUpsertReportsInsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO results .* ON CONFLICT \(student_id, exam_id, subject_id\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "stu-1", "exam-1", "sub-1", 72.5, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).AddRow("res-1", now, now, true))

	result := &models.Result{StudentID: "stu-1", ExamID: "exam-1", SubjectID: "sub-1", MarksObtained: 72.5}
	created, err := repo.Upsert(context.Background(), result)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "res-1", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO results`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).AddRow("existing", now.Add(-time.Hour), now, false))

	result := &models.Result{StudentID: "stu-1", ExamID: "exam-1", SubjectID: "sub-1", MarksObtained: 40}
	created, err := repo.Upsert(context.Background(), result)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "existing", result.ID)
}

func TestResultRepositoryInsertSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec(`INSERT INTO results`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: ResultUniqueConstraint})

	err := repo.Insert(context.Background(), &models.Result{StudentID: "s", ExamID: "e", SubjectID: "sub"})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err, ResultUniqueConstraint))
}

func TestResultRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(resultRecordMockColumns).
		AddRow("res-1", "stu-1", "exam-1", "sub-1", 55.0, nil, nil, now, now, "S-001", "Ada", "Mathematics", "MATH101", 100, "Final", "final", now, 100)
	mock.ExpectQuery(`SELECT r.id, .* FROM results r JOIN students st ON st.id = r.student_id .* WHERE r.exam_id = \$1 AND st.course = \$2 ORDER BY r.updated_at DESC, r.id LIMIT 20 OFFSET 0`).
		WithArgs("exam-1", "BBA").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results r")).
		WithArgs("exam-1", "BBA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.ResultFilter{ExamID: "exam-1", Course: "BBA"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "MATH101", records[0].SubjectCode)
	assert.Equal(t, models.ExamTypeFinal, records[0].ExamType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListByStudentUsesStableOrder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(`FROM results r .* WHERE r.exam_id = \$1 ORDER BY st.student_number, sub.name, r.id LIMIT 200 OFFSET 200`).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows(resultRecordMockColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results r")).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(250))

	records, total, err := repo.List(context.Background(), models.ResultFilter{ExamID: "exam-1", ByStudent: true, Page: 2, PageSize: 200})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 250, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(`FROM results r .* WHERE r.id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestResultRepositoryListForStudentScopesExam(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(`WHERE r.student_id = \$1 AND r.exam_id = \$2 ORDER BY sub.name, e.exam_type`).
		WithArgs("stu-1", "exam-1").
		WillReturnRows(sqlmock.NewRows(resultRecordMockColumns))

	records, err := repo.ListForStudent(context.Background(), "stu-1", "exam-1")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryMarksAndStudents(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT marks_obtained FROM results WHERE exam_id = $1")).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"marks_obtained"}).AddRow(10.0).AddRow(3.3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT student_id FROM results WHERE exam_id = $1")).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("a").AddRow("b"))

	marks, err := repo.MarksByExam(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 3.3}, marks)

	ids, err := repo.StudentIDsWithResults(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "a")
	assert.NoError(t, mock.ExpectationsWereMet())
}
