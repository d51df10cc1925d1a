package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
)

type fakeStudents struct {
	byID map[string]models.Student
	err  error
}

func newFakeStudents(students ...models.Student) *fakeStudents {
	f := &fakeStudents{byID: map[string]models.Student{}}
	for _, s := range students {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.byID[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudents) FindByNumber(ctx context.Context, number string) (*models.Student, error) {
	for _, s := range f.byID {
		if s.StudentNumber == number {
			s := s
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudents) ListByCohort(ctx context.Context, cohort models.Cohort) ([]models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Student, 0, len(f.byID))
	for _, s := range f.byID {
		if cohort.Course != "" && s.Course != cohort.Course {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentNumber < out[j].StudentNumber })
	return out, nil
}

type fakeSubjects struct {
	byID      map[string]models.Subject
	createErr error
	updateErr error
}

func newFakeSubjects(subjects ...models.Subject) *fakeSubjects {
	f := &fakeSubjects{byID: map[string]models.Subject{}}
	for _, s := range subjects {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSubjects) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := f.byID[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubjects) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	for _, s := range f.byID {
		if s.Code == code {
			s := s
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubjects) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	out := make([]models.Subject, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeSubjects) Create(ctx context.Context, subject *models.Subject) error {
	if f.createErr != nil {
		return f.createErr
	}
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	f.byID[subject.ID] = *subject
	return nil
}

func (f *fakeSubjects) Update(ctx context.Context, subject *models.Subject) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.byID[subject.ID] = *subject
	return nil
}

type fakeExams struct {
	byID      map[string]models.Exam
	createErr error
	// raceOn simulates a concurrent writer creating the exam of that type
	// between the lookup and the insert.
	raceOn models.ExamType
	synced map[string]int
}

func newFakeExams(exams ...models.Exam) *fakeExams {
	f := &fakeExams{byID: map[string]models.Exam{}, synced: map[string]int{}}
	for _, e := range exams {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeExams) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if e, ok := f.byID[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeExams) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	out := make([]models.Exam, 0, len(f.byID))
	for _, e := range f.byID {
		if filter.Course != "" && e.Course != filter.Course {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeExams) ListByCohort(ctx context.Context, course, semester string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range f.byID {
		if e.Course == course && e.Semester == semester && e.SubjectID != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExams) FindByKey(ctx context.Context, course, semester, subjectID string, examType models.ExamType) (*models.Exam, error) {
	for _, e := range f.byID {
		if e.Course == course && e.Semester == semester && e.SubjectID != nil && *e.SubjectID == subjectID && e.ExamType == examType {
			e := e
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeExams) Create(ctx context.Context, exam *models.Exam) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.raceOn != "" && exam.ExamType == f.raceOn {
		raced := *exam
		raced.ID = "raced-" + string(exam.ExamType)
		f.byID[raced.ID] = raced
		f.raceOn = ""
		return uniqueViolation("exams_course_semester_subject_type_key")
	}
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	f.byID[exam.ID] = *exam
	return nil
}

func (f *fakeExams) Update(ctx context.Context, exam *models.Exam) error {
	f.byID[exam.ID] = *exam
	return nil
}

func (f *fakeExams) SyncTotalMarks(ctx context.Context, subjectID string, totalMarks int) ([]string, error) {
	f.synced[subjectID] = totalMarks
	var ids []string
	for id, e := range f.byID {
		if e.SubjectID != nil && *e.SubjectID == subjectID && e.TotalMarks != totalMarks {
			e.TotalMarks = totalMarks
			f.byID[id] = e
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type resultKey struct{ student, exam, subject string }

type fakeResults struct {
	mu         sync.Mutex
	rows       map[resultKey]models.Result
	records    []models.ResultRecord
	marks      map[string][]float64
	insertErr  error
	upsertErr  error
	marksCalls int
	filters    []models.ResultFilter
}

func newFakeResults() *fakeResults {
	return &fakeResults{rows: map[resultKey]models.Result{}, marks: map[string][]float64{}}
}

func (f *fakeResults) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	key := resultKey{result.StudentID, result.ExamID, result.SubjectID}
	existing, ok := f.rows[key]
	if ok {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
	} else {
		result.ID = uuid.NewString()
		result.CreatedAt = time.Now()
	}
	f.rows[key] = *result
	return !ok, nil
}

func (f *fakeResults) Insert(ctx context.Context, result *models.Result) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	_, err := f.Upsert(ctx, result)
	return err
}

func (f *fakeResults) FindByID(ctx context.Context, id string) (*models.ResultRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			rec := rec
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeResults) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, int, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	var matched []models.ResultRecord
	for _, rec := range f.records {
		if filter.ExamID != "" && rec.ExamID != filter.ExamID {
			continue
		}
		matched = append(matched, rec)
	}
	start := (filter.Page - 1) * filter.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (f *fakeResults) ListForStudent(ctx context.Context, studentID, examID string) ([]models.ResultRecord, error) {
	var out []models.ResultRecord
	for _, rec := range f.records {
		if rec.StudentID != studentID {
			continue
		}
		if examID != "" && rec.ExamID != examID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeResults) MarksByExam(ctx context.Context, examID string) ([]float64, error) {
	f.mu.Lock()
	f.marksCalls++
	f.mu.Unlock()
	return f.marks[examID], nil
}

func (f *fakeResults) StudentIDsWithResults(ctx context.Context, examID string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, rec := range f.records {
		if rec.ExamID == examID {
			out[rec.StudentID] = struct{}{}
		}
	}
	return out, nil
}

type recordingInvalidator struct {
	examIDs []string
}

func (r *recordingInvalidator) InvalidateExam(ctx context.Context, examID string) {
	r.examIDs = append(r.examIDs, examID)
}

// memoryCache stores JSON payloads the way the Redis repository does.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

func foreignKeyViolation() error {
	return &pq.Error{Code: "23503", Constraint: "attendance_student_id_fkey"}
}
