package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dice205/omr-results-api/internal/models"
)

// AnswerSheetRepository reads scan aggregates written by the OMR pipeline.
type AnswerSheetRepository struct {
	db *sqlx.DB
}

// NewAnswerSheetRepository constructs an AnswerSheetRepository.
func NewAnswerSheetRepository(db *sqlx.DB) *AnswerSheetRepository {
	return &AnswerSheetRepository{db: db}
}

// Each dependent table holds at most one row per scan, so the triple join
// never fans out the scan row count.
const answerSheetJoins = `FROM omr_scan o
        LEFT JOIN student s ON s.scan_id = o.id
        LEFT JOIN current_school cs ON cs.scan_id = o.id
        LEFT JOIN previous_school ps ON ps.scan_id = o.id`

// List returns one page of answer sheets plus the total match count. The
// count query repeats the joins and filter without limit/offset so the total
// is independent of pagination.
func (r *AnswerSheetRepository) List(ctx context.Context, filter models.AnswerSheetFilter) ([]models.AnswerSheetListItem, int, error) {
	base := answerSheetJoins
	var args []interface{}

	if filter.Keyword != "" {
		base += fmt.Sprintf(" WHERE (s.first_name LIKE $%d OR s.last_name LIKE $%d OR cs.school_id LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Keyword+"%")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// o.id keeps the ordering stable when sort keys collide.
	var orderBy string
	switch filter.SortBy {
	case models.SortByName:
		orderBy = fmt.Sprintf("s.last_name %s, s.first_name %s, o.id ASC", order, order)
	case models.SortBySchool:
		orderBy = fmt.Sprintf("cs.school_id %s, o.id ASC", order)
	default:
		orderBy = fmt.Sprintf("o.created_at %s, o.id ASC", order)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT o.id AS scan_id, s.first_name, s.last_name, cs.school_id, o.created_at,
        COALESCE(s.review_required, FALSE) AS students_review_required,
        COALESCE(cs.review_required, FALSE) AS current_schools_review_required,
        COALESCE(ps.review_required, FALSE) AS previous_schools_review_required
        %s ORDER BY %s LIMIT %d OFFSET %d`, base, orderBy, limit, offset)

	items := []models.AnswerSheetListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list answer sheets: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count answer sheets: %w", err)
	}

	return items, total, nil
}

// answerSheetDetailRow flattens the joined detail projection. Dependent
// columns are nullable because each left-joined row may be absent.
type answerSheetDetailRow struct {
	ID             int64     `db:"id"`
	FileName       *string   `db:"file_name"`
	FilePath       *string   `db:"file_path"`
	FileURL        *string   `db:"file_url"`
	Status         string    `db:"status"`
	Confidence     *float64  `db:"confidence"`
	ReviewRequired bool      `db:"review_required"`
	CreatedAt      time.Time `db:"created_at"`

	StudentID             *int64     `db:"s_id"`
	StudentScanID         *int64     `db:"s_scan_id"`
	StudentLastName       *string    `db:"s_last_name"`
	StudentFirstName      *string    `db:"s_first_name"`
	StudentMiddleInitial  *string    `db:"s_middle_initial"`
	StudentBirthMonth     *string    `db:"s_birth_month"`
	StudentBirthDay       *string    `db:"s_birth_day"`
	StudentBirthYear      *string    `db:"s_birth_year"`
	StudentGender         *string    `db:"s_gender"`
	StudentLRN            *string    `db:"s_lrn"`
	StudentSSC            *string    `db:"s_ssc"`
	StudentFourPs         *string    `db:"s_four_ps"`
	StudentSpecialClasses *string    `db:"s_special_classes"`
	StudentReviewRequired *bool      `db:"s_review_required"`
	StudentCreatedAt      *time.Time `db:"s_created_at"`

	CurrentID             *int64     `db:"cs_id"`
	CurrentScanID         *int64     `db:"cs_scan_id"`
	CurrentRegion         *string    `db:"cs_region"`
	CurrentDivision       *string    `db:"cs_division"`
	CurrentSchoolID       *string    `db:"cs_school_id"`
	CurrentSchoolType     *string    `db:"cs_school_type"`
	CurrentReviewRequired *bool      `db:"cs_review_required"`
	CurrentCreatedAt      *time.Time `db:"cs_created_at"`

	PreviousID             *int64     `db:"ps_id"`
	PreviousScanID         *int64     `db:"ps_scan_id"`
	PreviousSchoolID       *string    `db:"ps_school_id"`
	PreviousClassSize      *string    `db:"ps_class_size"`
	PreviousSchoolYear     *string    `db:"ps_school_year"`
	PreviousMathGrade      *string    `db:"ps_math_grade"`
	PreviousEnglishGrade   *string    `db:"ps_english_grade"`
	PreviousScienceGrade   *string    `db:"ps_science_grade"`
	PreviousFilipinoGrade  *string    `db:"ps_filipino_grade"`
	PreviousAPGrade        *string    `db:"ps_ap_grade"`
	PreviousReviewRequired *bool      `db:"ps_review_required"`
	PreviousCreatedAt      *time.Time `db:"ps_created_at"`
}

const answerSheetDetailQuery = `SELECT o.id, o.file_name, o.file_path, o.file_url, o.status, o.confidence, o.review_required, o.created_at,
        s.id AS s_id, s.scan_id AS s_scan_id, s.last_name AS s_last_name, s.first_name AS s_first_name, s.middle_initial AS s_middle_initial,
        s.birth_month AS s_birth_month, s.birth_day AS s_birth_day, s.birth_year AS s_birth_year, s.gender AS s_gender,
        s.lrn AS s_lrn, s.ssc AS s_ssc, s.four_ps AS s_four_ps, s.special_classes AS s_special_classes,
        s.review_required AS s_review_required, s.created_at AS s_created_at,
        cs.id AS cs_id, cs.scan_id AS cs_scan_id, cs.region AS cs_region, cs.division AS cs_division,
        cs.school_id AS cs_school_id, cs.school_type AS cs_school_type, cs.review_required AS cs_review_required, cs.created_at AS cs_created_at,
        ps.id AS ps_id, ps.scan_id AS ps_scan_id, ps.school_id AS ps_school_id, ps.class_size AS ps_class_size, ps.school_year AS ps_school_year,
        ps.math_grade AS ps_math_grade, ps.english_grade AS ps_english_grade, ps.science_grade AS ps_science_grade,
        ps.filipino_grade AS ps_filipino_grade, ps.ap_grade AS ps_ap_grade, ps.review_required AS ps_review_required, ps.created_at AS ps_created_at
        ` + answerSheetJoins + `
        WHERE o.id = $1 LIMIT 1`

// FindByID returns the scan with its singleton dependents, raw payloads
// excluded. sql.ErrNoRows propagates when the scan does not exist.
func (r *AnswerSheetRepository) FindByID(ctx context.Context, scanID int64) (*models.AnswerSheetDetail, error) {
	var row answerSheetDetailRow
	if err := r.db.GetContext(ctx, &row, answerSheetDetailQuery, scanID); err != nil {
		return nil, err
	}
	return assembleDetail(&row), nil
}

// ListAnswers fetches all answer rows for a scan. Answers fan out 1:N so they
// are fetched apart from the singleton join.
func (r *AnswerSheetRepository) ListAnswers(ctx context.Context, scanID int64) ([]models.StudentAnswer, error) {
	const query = `SELECT id, scan_id, subject, question_number, answer, confidence, is_correct, review_required, created_at
        FROM student_answer WHERE scan_id = $1`
	answers := []models.StudentAnswer{}
	if err := r.db.SelectContext(ctx, &answers, query, scanID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

func assembleDetail(row *answerSheetDetailRow) *models.AnswerSheetDetail {
	detail := &models.AnswerSheetDetail{
		OmrScan: models.ScanSummary{
			ID:             row.ID,
			FileName:       stringOrEmpty(row.FileName),
			FilePath:       stringOrEmpty(row.FilePath),
			FileURL:        stringOrEmpty(row.FileURL),
			Status:         row.Status,
			Confidence:     row.Confidence,
			ReviewRequired: row.ReviewRequired,
			CreatedAt:      row.CreatedAt,
		},
	}

	if row.StudentID != nil {
		detail.Student = &models.Student{
			ID:             *row.StudentID,
			ScanID:         derefInt64(row.StudentScanID),
			LastName:       row.StudentLastName,
			FirstName:      row.StudentFirstName,
			MiddleInitial:  row.StudentMiddleInitial,
			BirthMonth:     row.StudentBirthMonth,
			BirthDay:       row.StudentBirthDay,
			BirthYear:      row.StudentBirthYear,
			Gender:         row.StudentGender,
			LRN:            row.StudentLRN,
			SSC:            row.StudentSSC,
			FourPs:         row.StudentFourPs,
			SpecialClasses: row.StudentSpecialClasses,
			ReviewRequired: derefBool(row.StudentReviewRequired),
			CreatedAt:      derefTime(row.StudentCreatedAt),
		}
	}

	if row.CurrentID != nil {
		detail.CurrentSchool = &models.CurrentSchool{
			ID:             *row.CurrentID,
			ScanID:         derefInt64(row.CurrentScanID),
			Region:         row.CurrentRegion,
			Division:       row.CurrentDivision,
			SchoolID:       row.CurrentSchoolID,
			SchoolType:     row.CurrentSchoolType,
			ReviewRequired: derefBool(row.CurrentReviewRequired),
			CreatedAt:      derefTime(row.CurrentCreatedAt),
		}
	}

	if row.PreviousID != nil {
		detail.PreviousSchool = &models.PreviousSchool{
			ID:             *row.PreviousID,
			ScanID:         derefInt64(row.PreviousScanID),
			SchoolID:       row.PreviousSchoolID,
			ClassSize:      row.PreviousClassSize,
			SchoolYear:     row.PreviousSchoolYear,
			MathGrade:      row.PreviousMathGrade,
			EnglishGrade:   row.PreviousEnglishGrade,
			ScienceGrade:   row.PreviousScienceGrade,
			FilipinoGrade:  row.PreviousFilipinoGrade,
			APGrade:        row.PreviousAPGrade,
			ReviewRequired: derefBool(row.PreviousReviewRequired),
			CreatedAt:      derefTime(row.PreviousCreatedAt),
		}
	}

	return detail
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefBool(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}

func derefTime(v *time.Time) time.Time {
	if v == nil {
		return time.Time{}
	}
	return *v
}
