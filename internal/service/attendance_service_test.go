package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

type fakeAttendanceStore struct {
	roster      []models.RosterEntry
	rosterDate  time.Time
	upserted    []models.Attendance
	known       map[string]bool
	existing    map[string]bool
	sessions    []models.AttendanceSession
	lastHistory models.AttendanceHistoryFilter
}

func (f *fakeAttendanceStore) Roster(ctx context.Context, cohort models.Cohort, subjectID string, date time.Time) ([]models.RosterEntry, error) {
	f.rosterDate = date
	return f.roster, nil
}

func (f *fakeAttendanceStore) Upsert(ctx context.Context, record *models.Attendance) (bool, error) {
	if !f.known[record.StudentID] {
		return false, foreignKeyViolation()
	}
	f.upserted = append(f.upserted, *record)
	return !f.existing[record.StudentID], nil
}

func (f *fakeAttendanceStore) History(ctx context.Context, filter models.AttendanceHistoryFilter) ([]models.AttendanceSession, error) {
	f.lastHistory = filter
	return f.sessions, nil
}

func newAttendanceFixture(store *fakeAttendanceStore, cfg AttendanceConfig) *AttendanceService {
	subjects := newFakeSubjects(models.Subject{ID: "sub-phy", Code: "PHY101", TotalMarks: 100})
	return NewAttendanceService(store, subjects, cfg, nil, zap.NewNop())
}

func TestAttendanceServiceRosterPrefillsStatus(t *testing.T) {
	late := models.AttendanceStatusLate
	store := &fakeAttendanceStore{roster: []models.RosterEntry{
		{StudentID: "stu-1", StudentNumber: "S001", FullName: "Amina"},
		{StudentID: "stu-2", StudentNumber: "S002", FullName: "Bilal", Status: &late},
	}}
	svc := newAttendanceFixture(store, AttendanceConfig{DefaultStatus: models.AttendanceStatusAbsent})

	roster, err := svc.Roster(context.Background(), dto.RosterQuery{
		Cohort:    models.Cohort{Course: "BSc", Semester: "1"},
		SubjectID: "sub-phy",
		Date:      "2024-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", roster.Date)
	assert.Equal(t, 2, roster.Total)
	assert.Equal(t, models.AttendanceStatusAbsent, roster.Students[0].Status)
	assert.False(t, roster.Students[0].HasExisting)
	assert.Equal(t, models.AttendanceStatusLate, roster.Students[1].Status)
	assert.True(t, roster.Students[1].HasExisting)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), store.rosterDate)
}

func TestAttendanceServiceRosterValidation(t *testing.T) {
	svc := newAttendanceFixture(&fakeAttendanceStore{}, AttendanceConfig{})

	_, err := svc.Roster(context.Background(), dto.RosterQuery{Cohort: models.Cohort{Course: "BSc"}, SubjectID: "sub-phy", Date: "2024-03-04"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Roster(context.Background(), dto.RosterQuery{Cohort: models.Cohort{Course: "BSc", Semester: "1"}, SubjectID: "sub-phy", Date: "04-03-2024"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Roster(context.Background(), dto.RosterQuery{Cohort: models.Cohort{Course: "BSc", Semester: "1"}, SubjectID: "sub-x", Date: "2024-03-04"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceBulkSubmitContinuesPastFailures(t *testing.T) {
	store := &fakeAttendanceStore{
		known:    map[string]bool{"stu-1": true, "stu-3": true},
		existing: map[string]bool{"stu-3": true},
	}
	svc := newAttendanceFixture(store, AttendanceConfig{})

	resp, err := svc.BulkSubmit(context.Background(), dto.BulkAttendanceRequest{
		Course: "BSc", Semester: "1", SubjectID: "sub-phy", Date: "2024-03-04",
		Records: []dto.BulkAttendanceItem{
			{StudentID: "stu-1", Status: models.AttendanceStatusPresent},
			{StudentID: "stu-2", Status: models.AttendanceStatusAbsent},
			{StudentID: "stu-3", Status: models.AttendanceStatusExcused},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.Errors)
	require.Len(t, resp.ErrorDetails, 1)
	assert.Equal(t, 2, resp.ErrorDetails[0].Row)
	assert.Equal(t, "student with ID stu-2 not found", resp.ErrorDetails[0].Error)
	require.Len(t, store.upserted, 2)
	assert.Equal(t, "BSc", store.upserted[0].Course)
}

func TestAttendanceServiceBulkSubmitRejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceFixture(&fakeAttendanceStore{}, AttendanceConfig{})

	_, err := svc.BulkSubmit(context.Background(), dto.BulkAttendanceRequest{
		Course: "BSc", Semester: "1", SubjectID: "sub-phy", Date: "2024-03-04",
		Records: []dto.BulkAttendanceItem{{StudentID: "stu-1", Status: "sleeping"}},
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceHistory(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := newAttendanceFixture(store, AttendanceConfig{HistoryLimit: 7})

	resp, err := svc.History(context.Background(), dto.AttendanceHistoryQuery{DateFrom: "2024-03-01", DateTo: "2024-03-31"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Sessions)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 7, store.lastHistory.Limit)
	require.NotNil(t, store.lastHistory.DateFrom)
	assert.Equal(t, 1, store.lastHistory.DateFrom.Day())

	_, err = svc.History(context.Background(), dto.AttendanceHistoryQuery{DateFrom: "2024-03-31", DateTo: "2024-03-01"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
