package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dice205/omr-results-api/internal/models"
	"github.com/dice205/omr-results-api/internal/service"
	appErrors "github.com/dice205/omr-results-api/pkg/errors"
	"github.com/dice205/omr-results-api/pkg/response"
)

// AnswerSheetHandler exposes the answer sheet listing and detail endpoints.
type AnswerSheetHandler struct {
	sheets  *service.AnswerSheetService
	exports *service.ExportService
}

// NewAnswerSheetHandler constructs AnswerSheetHandler.
func NewAnswerSheetHandler(sheets *service.AnswerSheetService, exports *service.ExportService) *AnswerSheetHandler {
	return &AnswerSheetHandler{sheets: sheets, exports: exports}
}

// List godoc
// @Summary List answer sheets
// @Tags Answer Sheets
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param keyword query string false "Substring match on student name or school id"
// @Param sortBy query string false "name | school | created_at"
// @Param sortOrder query string false "asc | desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /answer-sheet [get]
func (h *AnswerSheetHandler) List(c *gin.Context) {
	var filter models.AnswerSheetFilter

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be an integer"))
		return
	}
	filter.Page = page

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
		return
	}
	filter.Limit = limit

	filter.Keyword = strings.TrimSpace(c.Query("keyword"))
	filter.SortBy = c.Query("sortBy")
	filter.SortOrder = c.Query("sortOrder")

	pageRecord, cacheHit, err := h.sheets.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pageRecord, map[string]interface{}{"cache_hit": cacheHit})
}

// Get godoc
// @Summary Get answer sheet detail
// @Tags Answer Sheets
// @Produce json
// @Param id path int true "Scan ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /answer-sheet/{id} [get]
func (h *AnswerSheetHandler) Get(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}

	detail, err := h.sheets.GetDetail(c.Request.Context(), scanID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// Export godoc
// @Summary Export a per-subject score report
// @Tags Answer Sheets
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Scan ID"
// @Param format query string false "csv | pdf"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /answer-sheet/{id}/export [get]
func (h *AnswerSheetHandler) Export(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}

	result, err := h.exports.ScoreReport(c.Request.Context(), scanID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
