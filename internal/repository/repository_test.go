package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var resultRecordMockColumns = []string{
	"id", "student_id", "exam_id", "subject_id", "marks_obtained", "remarks", "teacher_comment", "created_at", "updated_at",
	"student_number", "student_name", "subject_name", "subject_code", "subject_total_marks",
	"exam_name", "exam_type", "exam_date", "exam_total_marks",
}
