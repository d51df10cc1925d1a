package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/pkg/cache"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
)

type examMarksReader interface {
	MarksByExam(ctx context.Context, examID string) ([]float64, error)
}

type examLister interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
}

// StatisticsService computes exam statistics on read, memoised in Redis until
// a result of the exam changes.
type StatisticsService struct {
	exams    examLister
	results  examMarksReader
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatisticsService constructs StatisticsService.
func NewStatisticsService(exams examLister, results examMarksReader, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{exams: exams, results: results, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// ExamStatistics returns the statistics of one exam and whether they came from cache.
func (s *StatisticsService) ExamStatistics(ctx context.Context, examID string) (*dto.ExamStatistics, bool, error) {
	var cached dto.ExamStatistics
	if s.cache.Get(ctx, examStatsKey(examID), &cached) {
		return &cached, true, nil
	}

	exam, err := loadExam(ctx, s.exams, examID)
	if err != nil {
		return nil, false, err
	}
	stats, err := s.compute(ctx, exam)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, examStatsKey(examID), stats, s.cacheTTL)
	return stats, false, nil
}

// ExamSummary returns statistics for every exam matching filter.
func (s *StatisticsService) ExamSummary(ctx context.Context, filter models.ExamFilter) (*dto.ExamSummary, error) {
	if filter.PageSize == 0 {
		filter.PageSize = 200
	}
	exams, _, err := s.exams.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list exams")
	}
	summary := &dto.ExamSummary{Exams: make([]dto.ExamStatistics, 0, len(exams))}
	for i := range exams {
		var stats dto.ExamStatistics
		if !s.cache.Get(ctx, examStatsKey(exams[i].ID), &stats) {
			computed, err := s.compute(ctx, &exams[i])
			if err != nil {
				return nil, err
			}
			s.cache.Set(ctx, examStatsKey(exams[i].ID), computed, s.cacheTTL)
			stats = *computed
		}
		summary.Exams = append(summary.Exams, stats)
	}
	summary.Count = len(summary.Exams)
	return summary, nil
}

// InvalidateExam drops the cached statistics of examID.
func (s *StatisticsService) InvalidateExam(ctx context.Context, examID string) {
	s.cache.Invalidate(ctx, examStatsKey(examID))
}

func (s *StatisticsService) compute(ctx context.Context, exam *models.Exam) (*dto.ExamStatistics, error) {
	start := time.Now()
	marks, err := s.results.MarksByExam(ctx, exam.ID)
	if err != nil {
		return nil, internalError(err, "failed to load exam results")
	}
	stats := BuildExamStatistics(exam, marks)
	stats.ComputedAt = s.now().UTC()
	s.metrics.ObserveStatistics(time.Since(start))
	return &stats, nil
}

// BuildExamStatistics aggregates marks against exam.TotalMarks. Passing is
// judged on the fixed statistics fraction and buckets follow the seven band
// table regardless of the configured grading table. An empty set yields zero
// averages and rates.
func BuildExamStatistics(exam *models.Exam, marks []float64) dto.ExamStatistics {
	bucketTable := grading.Coarse7
	stats := dto.ExamStatistics{
		ExamID:            exam.ID,
		ExamName:          exam.Name,
		ExamType:          exam.ExamType,
		Course:            exam.Course,
		Semester:          exam.Semester,
		TotalMarks:        exam.TotalMarks,
		TotalStudents:     len(marks),
		GradeDistribution: make(map[string]int, len(bucketTable.Bands)),
	}
	for _, g := range bucketTable.Grades() {
		stats.GradeDistribution[g] = 0
	}
	if len(marks) == 0 {
		return stats
	}

	total := float64(exam.TotalMarks)
	sum := 0.0
	stats.HighestMarks = marks[0]
	stats.LowestMarks = marks[0]
	for _, m := range marks {
		sum += m
		if m > stats.HighestMarks {
			stats.HighestMarks = m
		}
		if m < stats.LowestMarks {
			stats.LowestMarks = m
		}
		if grading.Passed(m, total, grading.StatisticsPassFraction) {
			stats.PassedStudents++
		}
		band := bucketTable.Lookup(grading.Percentage(m, total))
		stats.GradeDistribution[band.Grade]++
	}
	stats.FailedStudents = stats.TotalStudents - stats.PassedStudents
	stats.AverageMarks = grading.Round(sum/float64(len(marks)), 2)
	stats.PassRate = grading.Round(float64(stats.PassedStudents)/float64(len(marks))*100, 2)
	return stats
}

func examStatsKey(examID string) string {
	return cache.Key("stats", "exam", examID)
}
