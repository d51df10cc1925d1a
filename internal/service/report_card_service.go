package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/pkg/config"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/export"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
)

const (
	SectionStudentInfo    = "Student Information"
	SectionExamDetails    = "Examination Details"
	SectionExamResults    = "Subject-wise Performance"
	SectionSemesterResult = "Semester Results Summary"
	SectionSummary        = "Performance Summary"

	examSubjectWidth     = 20
	semesterSubjectWidth = 25
	commentWidth         = 30
)

type studentResultReader interface {
	ListForStudent(ctx context.Context, studentID, examID string) ([]models.ResultRecord, error)
}

// ReportCardService composes report cards from stored results.
type ReportCardService struct {
	results  studentResultReader
	students studentReader
	exams    examReader
	calc     *grading.Calculator
	metrics  *MetricsService
	cfg      config.ReportsConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportCardService constructs ReportCardService.
func NewReportCardService(results studentResultReader, students studentReader, exams examReader, calc *grading.Calculator, metrics *MetricsService, cfg config.ReportsConfig, logger *zap.Logger) *ReportCardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = grading.MustCalculator(grading.NU10)
	}
	if cfg.InstitutionName == "" {
		cfg.InstitutionName = "University"
	}
	if cfg.Subtitle == "" {
		cfg.Subtitle = "Academic Report Card"
	}
	return &ReportCardService{
		results:  results,
		students: students,
		exams:    exams,
		calc:     calc,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Compose builds the report card of studentID. A non-empty examID restricts it
// to that exam; an empty one covers every result of the student.
func (s *ReportCardService) Compose(ctx context.Context, studentID, examID string) (*dto.ReportCard, error) {
	mode := dto.ReportCardModeSemester
	if examID != "" {
		mode = dto.ReportCardModeExam
	}
	card, err := s.compose(ctx, studentID, examID, mode)
	s.metrics.RecordReportCard(string(mode), err)
	return card, err
}

func (s *ReportCardService) compose(ctx context.Context, studentID, examID string, mode dto.ReportCardMode) (*dto.ReportCard, error) {
	student, err := loadStudent(ctx, s.students, studentID)
	if err != nil {
		return nil, err
	}
	var exam *models.Exam
	if mode == dto.ReportCardModeExam {
		if exam, err = loadExam(ctx, s.exams, examID); err != nil {
			return nil, err
		}
	}

	records, err := s.results.ListForStudent(ctx, student.ID, examID)
	if err != nil {
		return nil, internalError(err, "failed to load student results")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no results found for this student")
	}
	sortRecords(records, mode)

	card := &dto.ReportCard{
		Mode: mode,
		Student: dto.ReportCardStudent{
			ID:            student.ID,
			StudentNumber: student.StudentNumber,
			Name:          student.FullName,
			Course:        student.Course,
			Intake:        student.Intake,
			Semester:      student.Semester,
			Session:       student.Session,
		},
		Lines:        make([]dto.ReportCardLine, 0, len(records)),
		GradingTable: s.calc.TableName(),
		GeneratedAt:  s.now(),
	}
	if exam != nil {
		card.Exam = &dto.ReportCardExam{
			ID:         exam.ID,
			Name:       exam.Name,
			Type:       exam.ExamType,
			TypeLabel:  exam.ExamType.Label(),
			Date:       exam.ExamDate,
			TotalMarks: exam.TotalMarks,
		}
	}

	var totalMarks int
	var obtained float64
	for _, rec := range records {
		g := s.calc.Compute(rec.MarksObtained, float64(rec.SubjectTotalMarks))
		line := dto.ReportCardLine{
			SubjectName:   rec.SubjectName,
			SubjectCode:   rec.SubjectCode,
			ExamType:      rec.ExamType,
			TotalMarks:    rec.SubjectTotalMarks,
			MarksObtained: rec.MarksObtained,
			Percentage:    grading.Round(g.Percentage, 1),
			Grade:         g.Grade,
			GradePoint:    g.GradePoint,
		}
		if mode == dto.ReportCardModeExam {
			if rec.TeacherComment != nil {
				line.Comment = truncate(*rec.TeacherComment, commentWidth, "...")
			}
		} else {
			line.Comment = rec.ExamType.Label()
		}
		card.Lines = append(card.Lines, line)
		totalMarks += rec.SubjectTotalMarks
		obtained += rec.MarksObtained
	}

	overall := s.calc.Compute(obtained, float64(totalMarks))
	card.Totals = dto.ReportCardTotals{
		TotalMarks:    totalMarks,
		MarksObtained: grading.Round(obtained, 2),
		Percentage:    grading.Round(overall.Percentage, 2),
		Grade:         overall.Grade,
	}
	passed := grading.ReachesPercentage(overall.Percentage, grading.ReportCardPassPercentage)
	card.Summary = dto.ReportCardSummary{
		OverallPercentage: grading.Round(overall.Percentage, 2),
		OverallGrade:      overall.Grade,
		GPA:               s.calc.GPA(overall.Percentage),
		Passed:            passed,
		Result:            passFail(passed),
	}
	card.Document = s.document(card, overall.Percentage)
	return card, nil
}

// sortRecords orders by subject name and, in semester mode, by exam type rank.
func sortRecords(records []models.ResultRecord, mode dto.ReportCardMode) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		if mode == dto.ReportCardModeSemester {
			return a.ExamType.Rank() < b.ExamType.Rank()
		}
		return false
	})
}

func (s *ReportCardService) document(card *dto.ReportCard, overallPct float64) export.Document {
	doc := export.Document{
		Title:    s.cfg.InstitutionName,
		Subtitle: s.cfg.Subtitle,
		Footer:   "Generated: " + card.GeneratedAt.Format("January 02, 2006 03:04 PM") + " | Computer-generated document",
	}
	doc.Sections = append(doc.Sections, export.Section{
		Heading: SectionStudentInfo,
		Kind:    export.SectionKeyValue,
		Fields: []export.Field{
			{Label: "Student ID", Value: card.Student.StudentNumber},
			{Label: "Name", Value: card.Student.Name},
			{Label: "Course", Value: card.Student.Course},
			{Label: "Intake", Value: card.Student.Intake},
			{Label: "Semester", Value: card.Student.Semester},
			{Label: "Session", Value: card.Student.Session},
		},
	})

	totals := []string{
		"TOTAL",
		"",
		fmt.Sprintf("%d", card.Totals.TotalMarks),
		fmt.Sprintf("%.1f", card.Totals.MarksObtained),
		fmt.Sprintf("%.1f%%", overallPct),
		card.Totals.Grade,
	}

	if card.Exam != nil {
		doc.Sections = append(doc.Sections, export.Section{
			Heading: SectionExamDetails,
			Kind:    export.SectionKeyValue,
			Fields: []export.Field{
				{Label: "Exam Name", Value: card.Exam.Name},
				{Label: "Exam Type", Value: card.Exam.TypeLabel},
				{Label: "Exam Date", Value: card.Exam.Date.Format("January 02, 2006")},
			},
		})
		rows := make([][]string, 0, len(card.Lines))
		for _, l := range card.Lines {
			rows = append(rows, []string{
				truncate(l.SubjectName, examSubjectWidth, ""),
				l.SubjectCode,
				fmt.Sprintf("%d", l.TotalMarks),
				fmt.Sprintf("%.1f", l.MarksObtained),
				fmt.Sprintf("%.1f%%", l.Percentage),
				l.Grade,
				l.Comment,
			})
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: SectionExamResults,
			Kind:    export.SectionLineItems,
			Columns: []export.Column{
				{Header: "Subject", Width: 1.4, Align: "L"},
				{Header: "Code", Width: 0.7, Align: "C"},
				{Header: "Marks", Width: 0.6, Align: "C"},
				{Header: "Obtained", Width: 0.7, Align: "C"},
				{Header: "%", Width: 0.6, Align: "C"},
				{Header: "Grade", Width: 0.5, Align: "C"},
				{Header: "Comment", Width: 1.6, Align: "L"},
			},
			Rows:   rows,
			Totals: append(totals, ""),
		})
	} else {
		rows := make([][]string, 0, len(card.Lines))
		for _, l := range card.Lines {
			rows = append(rows, []string{
				truncate(l.SubjectName, semesterSubjectWidth, ""),
				l.Comment,
				fmt.Sprintf("%d", l.TotalMarks),
				fmt.Sprintf("%.1f", l.MarksObtained),
				fmt.Sprintf("%.1f%%", l.Percentage),
				l.Grade,
			})
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: SectionSemesterResult,
			Kind:    export.SectionLineItems,
			Columns: []export.Column{
				{Header: "Subject", Width: 1.8, Align: "L"},
				{Header: "Exam Type", Width: 1.0, Align: "C"},
				{Header: "Marks", Width: 0.7, Align: "C"},
				{Header: "Obtained", Width: 0.7, Align: "C"},
				{Header: "%", Width: 0.7, Align: "C"},
				{Header: "Grade", Width: 0.6, Align: "C"},
			},
			Rows:   rows,
			Totals: totals,
		})
	}

	doc.Sections = append(doc.Sections, export.Section{
		Heading: SectionSummary,
		Kind:    export.SectionKeyValue,
		Fields: []export.Field{
			{Label: "Total Marks", Value: fmt.Sprintf("%d", card.Totals.TotalMarks)},
			{Label: "Marks Obtained", Value: fmt.Sprintf("%.1f", card.Totals.MarksObtained)},
			{Label: "Overall Percentage", Value: fmt.Sprintf("%.1f%%", overallPct)},
			{Label: "Overall Grade", Value: card.Summary.OverallGrade},
			{Label: "GPA", Value: fmt.Sprintf("%.2f", card.Summary.GPA)},
			{Label: "Result", Value: card.Summary.Result},
		},
	})
	return doc
}

func passFail(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// truncate cuts s to width runes, appending suffix when anything was removed.
func truncate(s string, width int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width]) + suffix
}
