package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/college-portal-api/internal/models"
	"github.com/campushq/college-portal-api/pkg/export"
	"github.com/campushq/college-portal-api/pkg/storage"
)

type gradeSheetSource interface {
	BatchGradeSheet(ctx context.Context, collegeID, batchID string) ([]models.StudentGradeCardView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders batch grade sheets and persists the files.
type ExportService struct {
	sheets  gradeSheetSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sheets gradeSheetSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
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
	return &ExportService{
		sheets:  sheets,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the grade-sheet dataset for a job and stores the
// rendered file, returning a signed download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.GradeExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	views, err := s.sheets.BatchGradeSheet(ctx, job.Params.CollegeID, job.Params.BatchID)
	if err != nil {
		return nil, err
	}
	dataset := buildGradeSheetDataset(views)
	title := fmt.Sprintf("Grade Sheet %s", job.Params.BatchID)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/grade-card/exports/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.GradeExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	batchPart := sanitizeFilename(job.Params.BatchID)
	return fmt.Sprintf("grade_sheet_%s_%s.%s", batchPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

var gradeSheetHeaders = []string{
	"Enrollment No", "Student", "Semester", "Subject", "Class Type", "Credit",
	"Internal", "External", "Total", "Grade", "Grade Point", "Quality Point",
	"GPA", "CGPA",
}

func buildGradeSheetDataset(views []models.StudentGradeCardView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, view := range views {
		for _, subject := range view.Subjects {
			row := map[string]string{
				"Enrollment No": view.Card.EnrollmentNumber,
				"Student":       view.Card.StudentName,
				"Semester":      view.Card.SemesterName,
				"Subject":       subject.SubjectName,
				"Class Type":    string(subject.ClassType),
				"Credit":        fmt.Sprintf("%.1f", subject.Credit),
				"Internal":      formatMark(subject.InternalMarks),
				"External":      formatMark(subject.ExternalMarks),
				"Grade":         derefString(subject.Grade),
				"Quality Point": formatMark(subject.QualityPoint),
				"GPA":           formatMark(view.Card.GPA),
				"CGPA":          formatMark(view.Card.CGPA),
			}
			if subject.InternalMarks != nil && subject.ExternalMarks != nil {
				row["Total"] = fmt.Sprintf("%.0f", *subject.InternalMarks+*subject.ExternalMarks)
			} else {
				row["Total"] = ""
			}
			if subject.GradePoint != nil {
				row["Grade Point"] = fmt.Sprintf("%d", *subject.GradePoint)
			} else {
				row["Grade Point"] = ""
			}
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: gradeSheetHeaders, Rows: rows}
}

func formatMark(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
