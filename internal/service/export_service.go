package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/dice205/omr-results-api/internal/models"
	appErrors "github.com/dice205/omr-results-api/pkg/errors"
	"github.com/dice205/omr-results-api/pkg/export"
)

// Export formats supported for score reports.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type detailProvider interface {
	GetDetail(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error)
}

// ExportResult carries a rendered report ready to be served as an attachment.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders per-subject score reports for single scans.
type ExportService struct {
	sheets detailProvider
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(sheets detailProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sheets: sheets,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ScoreReport renders the per-subject score table for one scan in the
// requested format. Unknown formats are validation errors; a missing scan
// surfaces as not-found from the detail lookup.
func (s *ExportService) ScoreReport(ctx context.Context, scanID int64, format string) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	detail, err := s.sheets.GetDetail(ctx, scanID)
	if err != nil {
		return nil, err
	}

	dataset := scoreDataset(detail)
	title := fmt.Sprintf("Answer Sheet %d Score Report", detail.OmrScan.ID)

	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("answer-sheet-%d.pdf", detail.OmrScan.ID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("answer-sheet-%d.csv", detail.OmrScan.ID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}

func scoreDataset(detail *models.AnswerSheetDetail) export.Dataset {
	subjects := make([]string, 0, len(detail.Answers))
	for subject := range detail.Answers {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	rows := make([]map[string]string, 0, len(subjects))
	for _, subject := range subjects {
		result := detail.Answers[subject]
		rows = append(rows, map[string]string{
			"Subject":   subject,
			"Questions": strconv.Itoa(len(result.Answers)),
			"Score":     strconv.Itoa(result.Score),
		})
	}

	return export.Dataset{
		Headers: []string{"Subject", "Questions", "Score"},
		Rows:    rows,
	}
}
