package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dice205/omr-results-api/internal/models"
	"github.com/dice205/omr-results-api/internal/service"
)

type sheetRepoStub struct {
	items      []models.AnswerSheetListItem
	total      int
	detail     *models.AnswerSheetDetail
	detailErr  error
	answers    []models.StudentAnswer
	lastFilter models.AnswerSheetFilter
}

func (s *sheetRepoStub) List(ctx context.Context, filter models.AnswerSheetFilter) ([]models.AnswerSheetListItem, int, error) {
	s.lastFilter = filter
	return s.items, s.total, nil
}

func (s *sheetRepoStub) FindByID(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

func (s *sheetRepoStub) ListAnswers(ctx context.Context, scanID int64) ([]models.StudentAnswer, error) {
	return s.answers, nil
}

func newSheetHandler(repo *sheetRepoStub) *AnswerSheetHandler {
	sheets := service.NewAnswerSheetService(repo, nil, nil, nil)
	exports := service.NewExportService(sheets, nil)
	return NewAnswerSheetHandler(sheets, exports)
}

func TestAnswerSheetHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sheetRepoStub{items: []models.AnswerSheetListItem{{ScanID: 1}}, total: 1}
	handler := newSheetHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet?keyword=santos&sortBy=name&sortOrder=asc", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "santos", repo.lastFilter.Keyword)
	assert.Equal(t, models.SortByName, repo.lastFilter.SortBy)

	var body struct {
		Data models.AnswerSheetPage `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Total)
	assert.Equal(t, 1, body.Data.Page)
	assert.Equal(t, 20, body.Data.Limit)
	assert.Equal(t, false, body.Meta["cache_hit"])
}

func TestAnswerSheetHandlerListBadPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet?page=abc", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerSheetHandlerListBadLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet?limit=abc", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerSheetHandlerListBadSortKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet?sortBy=confidence", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerSheetHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sheetRepoStub{
		detail: &models.AnswerSheetDetail{OmrScan: models.ScanSummary{ID: 7, Status: "completed"}},
		answers: []models.StudentAnswer{
			{ScanID: 7, Subject: "math", QuestionNumber: 1, IsCorrect: true},
		},
	}
	handler := newSheetHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet/7", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.AnswerSheetDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.Data.OmrScan.ID)
	assert.Equal(t, 1, body.Data.Answers["math"].Score)
}

func TestAnswerSheetHandlerGetBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet/abc", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerSheetHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{detailErr: sql.ErrNoRows})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet/99", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnswerSheetHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sheetRepoStub{
		detail: &models.AnswerSheetDetail{OmrScan: models.ScanSummary{ID: 7}},
		answers: []models.StudentAnswer{
			{ScanID: 7, Subject: "math", QuestionNumber: 1, IsCorrect: true},
		},
	}
	handler := newSheetHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet/7/export?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "answer-sheet-7.csv")
	assert.Contains(t, w.Body.String(), "Subject,Questions,Score")
}

func TestAnswerSheetHandlerExportBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSheetHandler(&sheetRepoStub{detail: &models.AnswerSheetDetail{OmrScan: models.ScanSummary{ID: 7}}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/answer-sheet/7/export?format=xlsx", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
