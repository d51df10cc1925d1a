package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/repository"
	"github.com/noah-isme/univ-academics-api/internal/service"
	"github.com/noah-isme/univ-academics-api/pkg/cache"
	"github.com/noah-isme/univ-academics-api/pkg/config"
	"github.com/noah-isme/univ-academics-api/pkg/database"
	"github.com/noah-isme/univ-academics-api/pkg/logger"
	"github.com/noah-isme/univ-academics-api/pkg/seed"
)

const (
	seededRemark  = "Auto-seeded result"
	seededComment = "Auto-generated teacher comment"
)

func main() {
	studentLimit := flag.Int("student-limit", 0, "limit number of students (0 = all)")
	baseDate := flag.String("base-date", "", "date of the first sitting for newly created exams (YYYY-MM-DD)")
	dryRun := flag.Bool("dry-run", false, "compute marks without writing results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	var base time.Time
	if *baseDate != "" {
		if base, err = time.Parse("2006-01-02", *baseDate); err != nil {
			logr.Fatal("invalid base-date", zap.Error(err))
		}
	}

	if err := run(context.Background(), cfg, logr, *studentLimit, base, *dryRun); err != nil {
		logr.Fatal("seeding failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, studentLimit int, base time.Time, dryRun bool) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	subjectRepo := repository.NewSubjectRepository(db)
	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	examSvc := service.NewExamService(examRepo, subjectRepo, nil, validator.New(), logr)

	subjects, err := subjectRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	for _, subject := range subjects {
		if _, err := examSvc.EnsureSubjectExams(ctx, subject.ID, base); err != nil {
			return fmt.Errorf("ensure exams for %s: %w", subject.Code, err)
		}
	}

	students, err := studentRepo.ListByCohort(ctx, models.Cohort{})
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	if studentLimit > 0 && len(students) > studentLimit {
		students = students[:studentLimit]
	}

	type cohortKey struct{ course, semester string }
	examsByCohort := map[cohortKey][]models.Exam{}
	subjectTotals := make(map[string]int, len(subjects))
	for _, s := range subjects {
		subjectTotals[s.ID] = s.TotalMarks
	}

	var processed, skipped, inserted, updated int
	for _, student := range students {
		if student.Course == "" || student.Semester == "" {
			skipped++
			continue
		}
		key := cohortKey{student.Course, student.Semester}
		exams, ok := examsByCohort[key]
		if !ok {
			if exams, err = examRepo.ListByCohort(ctx, key.course, key.semester); err != nil {
				return fmt.Errorf("list exams for %s/%s: %w", key.course, key.semester, err)
			}
			examsByCohort[key] = exams
		}
		if len(exams) == 0 {
			skipped++
			continue
		}
		processed++

		for _, exam := range exams {
			total, ok := subjectTotals[*exam.SubjectID]
			if !ok {
				continue
			}
			marks := seed.Marks(student.ID, exam.ID, string(exam.ExamType), total)
			if dryRun {
				continue
			}
			remark, comment := seededRemark, seededComment
			created, err := resultRepo.Upsert(ctx, &models.Result{
				StudentID:      student.ID,
				ExamID:         exam.ID,
				SubjectID:      *exam.SubjectID,
				MarksObtained:  marks,
				Remarks:        &remark,
				TeacherComment: &comment,
			})
			if err != nil {
				return fmt.Errorf("seed result for %s: %w", student.StudentNumber, err)
			}
			if created {
				inserted++
			} else {
				updated++
			}
		}
	}

	if !dryRun {
		invalidateStatistics(ctx, cfg, logr)
	}
	logr.Info("results seeded",
		zap.Int("students_processed", processed),
		zap.Int("students_skipped", skipped),
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Bool("dry_run", dryRun),
	)
	return nil
}

// invalidateStatistics drops every cached exam statistic so the API recomputes them.
func invalidateStatistics(ctx context.Context, cfg *config.Config, logr *zap.Logger) {
	if !cfg.Statistics.CacheEnabled {
		return
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cached statistics left in place", zap.Error(err))
		return
	}
	defer client.Close()
	svc := service.NewCacheService(repository.NewCacheRepository(client, logr), nil, cfg.Statistics.CacheTTL, logr, true)
	svc.InvalidatePattern(ctx, cache.Key("stats", "exam", "*"))
}
