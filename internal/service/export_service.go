package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/univ-academics-api/internal/dto"
	"github.com/noah-isme/univ-academics-api/internal/models"
	appErrors "github.com/noah-isme/univ-academics-api/pkg/errors"
	"github.com/noah-isme/univ-academics-api/pkg/export"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
	"github.com/noah-isme/univ-academics-api/pkg/storage"
)

const (
	archiveDir     = "report-cards"
	exportPageSize = 200
)

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Read(relPath string) ([]byte, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type resultLister interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
	RenderTable(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// Download is a resolved signed download.
type Download struct {
	Filename  string
	Body      []byte
	ExpiresAt time.Time
}

// ExportService renders report cards and result sheets and manages stored archives.
type ExportService struct {
	results resultLister
	exams   examReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	calc    *grading.Calculator
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(results resultLister, exams examReader, store fileStorage, signer *storage.SignedURLSigner, calc *grading.Calculator, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if calc == nil {
		calc = grading.MustCalculator(grading.NU10)
	}
	return &ExportService{
		results: results,
		exams:   exams,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		calc:    calc,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ReportCardPDF renders a composed card.
func (s *ExportService) ReportCardPDF(card *dto.ReportCard) ([]byte, error) {
	if card == nil {
		return nil, fmt.Errorf("report card nil")
	}
	body, err := s.pdf.RenderDocument(card.Document)
	if err != nil {
		return nil, internalError(err, "failed to render report card")
	}
	return body, nil
}

// ExamResultsCSV renders every result of examID as a CSV sheet.
func (s *ExportService) ExamResultsCSV(ctx context.Context, examID string) (string, []byte, error) {
	exam, data, err := s.examResultsDataset(ctx, examID)
	if err != nil {
		return "", nil, err
	}
	body, err := s.csv.Render(data)
	if err != nil {
		return "", nil, internalError(err, "failed to render results")
	}
	return fmt.Sprintf("results_%s.csv", sanitizeFilename(exam.Name)), body, nil
}

// ExamResultsPDF renders the same sheet as ExamResultsCSV onto a printable table.
func (s *ExportService) ExamResultsPDF(ctx context.Context, examID string) (string, []byte, error) {
	exam, data, err := s.examResultsDataset(ctx, examID)
	if err != nil {
		return "", nil, err
	}
	body, err := s.pdf.RenderTable(data, exam.Name+" Results")
	if err != nil {
		return "", nil, internalError(err, "failed to render results")
	}
	return fmt.Sprintf("results_%s.pdf", sanitizeFilename(exam.Name)), body, nil
}

func (s *ExportService) examResultsDataset(ctx context.Context, examID string) (*models.Exam, export.Dataset, error) {
	exam, err := loadExam(ctx, s.exams, examID)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	var records []models.ResultRecord
	for page := 1; ; page++ {
		batch, total, err := s.results.List(ctx, models.ResultFilter{ExamID: exam.ID, ByStudent: true, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, export.Dataset{}, internalError(err, "failed to list exam results")
		}
		records = append(records, batch...)
		if len(batch) == 0 || len(records) >= total {
			break
		}
	}
	data := export.Dataset{
		Headers: []string{"Student ID", "Student Name", "Subject Code", "Subject", "Marks Obtained", "Total Marks", "Percentage", "Grade", "Grade Point"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, rec := range records {
		item := toResultListItem(rec, s.calc)
		data.Rows = append(data.Rows, []string{
			item.StudentNumber,
			item.StudentName,
			item.SubjectCode,
			item.SubjectName,
			fmt.Sprintf("%.2f", item.MarksObtained),
			fmt.Sprintf("%d", item.TotalMarks),
			fmt.Sprintf("%.2f", item.Percentage),
			item.Grade,
			fmt.Sprintf("%.2f", item.GradePoint),
		})
	}
	return exam, data, nil
}

// ArchiveReportCards renders every card of bulk, zips them and stores the bundle
// behind a signed download URL.
func (s *ExportService) ArchiveReportCards(bulk *dto.BulkReportResult) (*dto.BulkReportArchive, error) {
	if bulk == nil || len(bulk.Cards) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no report cards to archive")
	}
	files := make([]export.File, 0, len(bulk.Cards))
	for _, c := range bulk.Cards {
		body, err := s.ReportCardPDF(c.ReportCard)
		if err != nil {
			return nil, err
		}
		files = append(files, export.File{Name: c.ReportCard.FileName(), Body: body})
	}
	now := s.now()
	zipped, err := export.Bundle(files, now)
	if err != nil {
		return nil, internalError(err, "failed to bundle report cards")
	}

	archiveID := strings.ReplaceAll(uuid.NewString(), "-", "")
	relPath, err := s.storage.Save(path.Join(archiveDir, archiveID+".zip"), zipped)
	if err != nil {
		return nil, internalError(err, "failed to store report card archive")
	}
	token, expiresAt, err := s.signer.Generate(archiveID, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign archive url")
	}
	s.logger.Info("report card archive stored",
		zap.String("archive_id", archiveID),
		zap.String("exam_id", bulk.ExamID),
		zap.Int("files", len(files)),
	)
	return &dto.BulkReportArchive{
		ArchiveID:   archiveID,
		DownloadURL: s.downloadURL(token),
		ExpiresAt:   expiresAt,
		Generated:   len(bulk.Cards),
		Skipped:     bulk.Skipped,
		Failed:      bulk.Failed,
	}, nil
}

// Resolve validates a download token and loads the file it grants.
func (s *ExportService) Resolve(token string) (*Download, error) {
	grant, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link invalid or expired")
	}
	body, err := s.storage.Read(grant.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "archive no longer available")
	}
	return &Download{Filename: path.Base(grant.Path), Body: body, ExpiresAt: grant.ExpiresAt}, nil
}

// Cleanup removes stored archives older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/%s", prefix, token)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
