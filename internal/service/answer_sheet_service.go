package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dice205/omr-results-api/internal/models"
	appErrors "github.com/dice205/omr-results-api/pkg/errors"
)

type answerSheetRepository interface {
	List(ctx context.Context, filter models.AnswerSheetFilter) ([]models.AnswerSheetListItem, int, error)
	FindByID(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error)
	ListAnswers(ctx context.Context, scanID int64) ([]models.StudentAnswer, error)
}

// AnswerSheetService implements the list and detail use cases over scan
// aggregates.
type AnswerSheetService struct {
	repo      answerSheetRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnswerSheetService constructs the answer sheet service.
func NewAnswerSheetService(repo answerSheetRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnswerSheetService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerSheetService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns one page of answer sheets. The second return value reports
// whether the page was served from cache.
func (s *AnswerSheetService) List(ctx context.Context, filter models.AnswerSheetFilter) (*models.AnswerSheetPage, bool, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list parameters")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.SortBy == "" {
		filter.SortBy = models.SortByCreatedAt
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	cacheKey := listCacheKey(filter)
	if s.cache.Enabled() {
		var cached models.AnswerSheetPage
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list answer sheets")
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	page := &models.AnswerSheetPage{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
		Data:       items,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, page, 0); err != nil {
			s.logger.Warn("failed to cache answer sheet page", zap.Error(err))
		}
	}

	return page, false, nil
}

// GetDetail returns one scan with its dependents and the answers grouped by
// subject. The score per subject counts correct answers.
func (s *AnswerSheetService) GetDetail(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error) {
	detail, err := s.repo.FindByID(ctx, scanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "answer sheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answer sheet")
	}

	answers, err := s.repo.ListAnswers(ctx, scanID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answers")
	}

	grouped := make(map[string]models.SubjectResult, len(answers))
	for _, ans := range answers {
		entry := grouped[ans.Subject]
		entry.Answers = append(entry.Answers, ans)
		if ans.IsCorrect {
			entry.Score++
		}
		grouped[ans.Subject] = entry
	}
	detail.Answers = grouped

	return detail, nil
}

func listCacheKey(filter models.AnswerSheetFilter) string {
	return fmt.Sprintf("answer-sheet:list:%d:%d:%s:%s:%s",
		filter.Page, filter.Limit, filter.Keyword, filter.SortBy, filter.SortOrder)
}
