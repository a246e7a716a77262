package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dice205/omr-results-api/internal/models"
	appErrors "github.com/dice205/omr-results-api/pkg/errors"
)

type mockDetailProvider struct {
	detail *models.AnswerSheetDetail
	err    error
}

func (m *mockDetailProvider) GetDetail(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func scoredDetail() *models.AnswerSheetDetail {
	return &models.AnswerSheetDetail{
		OmrScan: models.ScanSummary{ID: 7, Status: "completed"},
		Answers: map[string]models.SubjectResult{
			"math": {Score: 1, Answers: []models.StudentAnswer{
				{Subject: "math", QuestionNumber: 1, IsCorrect: true},
				{Subject: "math", QuestionNumber: 2},
			}},
			"english": {Score: 1, Answers: []models.StudentAnswer{
				{Subject: "english", QuestionNumber: 1, IsCorrect: true},
			}},
		},
	}
}

func TestScoreReportCSV(t *testing.T) {
	svc := NewExportService(&mockDetailProvider{detail: scoredDetail()}, nil)

	result, err := svc.ScoreReport(context.Background(), 7, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "answer-sheet-7.csv", result.FileName)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := bytes.Split(bytes.TrimSpace(result.Content), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "Subject,Questions,Score", string(lines[0]))
	// Subjects are sorted so the output is deterministic.
	assert.Equal(t, "english,1,1", string(lines[1]))
	assert.Equal(t, "math,2,1", string(lines[2]))
}

func TestScoreReportDefaultsToCSV(t *testing.T) {
	svc := NewExportService(&mockDetailProvider{detail: scoredDetail()}, nil)

	result, err := svc.ScoreReport(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestScoreReportPDF(t *testing.T) {
	svc := NewExportService(&mockDetailProvider{detail: scoredDetail()}, nil)

	result, err := svc.ScoreReport(context.Background(), 7, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "answer-sheet-7.pdf", result.FileName)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestScoreReportUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockDetailProvider{detail: scoredDetail()}, nil)

	_, err := svc.ScoreReport(context.Background(), 7, "xlsx")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScoreReportPropagatesNotFound(t *testing.T) {
	svc := NewExportService(&mockDetailProvider{err: appErrors.Clone(appErrors.ErrNotFound, "answer sheet not found")}, nil)

	_, err := svc.ScoreReport(context.Background(), 99, ExportFormatCSV)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
