package models

import "time"

// Scan sort keys accepted by the list endpoint.
const (
	SortByName      = "name"
	SortBySchool    = "school"
	SortByCreatedAt = "created_at"
)

// Scan is one ingested answer sheet, the aggregate root of a submission.
// Rows are written by the upstream OMR pipeline and only read here.
type Scan struct {
	ID             int64     `db:"id" json:"id"`
	FileName       *string   `db:"file_name" json:"fileName"`
	FilePath       *string   `db:"file_path" json:"filePath"`
	FileURL        *string   `db:"file_url" json:"fileUrl"`
	Status         string    `db:"status" json:"status"`
	Confidence     *float64  `db:"confidence" json:"confidence"`
	ReviewRequired bool      `db:"review_required" json:"reviewRequired"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Student holds the identity block read off a scan. At most one per scan.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	ScanID         int64     `db:"scan_id" json:"scanId"`
	LastName       *string   `db:"last_name" json:"lastName"`
	FirstName      *string   `db:"first_name" json:"firstName"`
	MiddleInitial  *string   `db:"middle_initial" json:"middleInitial"`
	BirthMonth     *string   `db:"birth_month" json:"birthMonth"`
	BirthDay       *string   `db:"birth_day" json:"birthDay"`
	BirthYear      *string   `db:"birth_year" json:"birthYear"`
	Gender         *string   `db:"gender" json:"gender"`
	LRN            *string   `db:"lrn" json:"lrn"`
	SSC            *string   `db:"ssc" json:"ssc"`
	FourPs         *string   `db:"four_ps" json:"fourPs"`
	SpecialClasses *string   `db:"special_classes" json:"specialClasses"`
	ReviewRequired bool      `db:"review_required" json:"reviewRequired"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// CurrentSchool identifies the school the sheet was scanned at. At most one
// per scan.
type CurrentSchool struct {
	ID             int64     `db:"id" json:"id"`
	ScanID         int64     `db:"scan_id" json:"scanId"`
	Region         *string   `db:"region" json:"region"`
	Division       *string   `db:"division" json:"division"`
	SchoolID       *string   `db:"school_id" json:"schoolId"`
	SchoolType     *string   `db:"school_type" json:"schoolType"`
	ReviewRequired bool      `db:"review_required" json:"reviewRequired"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// PreviousSchool carries the prior-school block including per-subject final
// grades. At most one per scan.
type PreviousSchool struct {
	ID             int64     `db:"id" json:"id"`
	ScanID         int64     `db:"scan_id" json:"scanId"`
	SchoolID       *string   `db:"school_id" json:"schoolId"`
	ClassSize      *string   `db:"class_size" json:"classSize"`
	SchoolYear     *string   `db:"school_year" json:"schoolYear"`
	MathGrade      *string   `db:"math_grade" json:"mathGrade"`
	EnglishGrade   *string   `db:"english_grade" json:"englishGrade"`
	ScienceGrade   *string   `db:"science_grade" json:"scienceGrade"`
	FilipinoGrade  *string   `db:"filipino_grade" json:"filipinoGrade"`
	APGrade        *string   `db:"ap_grade" json:"apGrade"`
	ReviewRequired bool      `db:"review_required" json:"reviewRequired"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// StudentAnswer is one bubbled answer. Unique per (scan, subject, question).
type StudentAnswer struct {
	ID             int64     `db:"id" json:"id"`
	ScanID         int64     `db:"scan_id" json:"scanId"`
	Subject        string    `db:"subject" json:"subject"`
	QuestionNumber int       `db:"question_number" json:"questionNumber"`
	Answer         *string   `db:"answer" json:"answer"`
	Confidence     *float64  `db:"confidence" json:"confidence"`
	IsCorrect      bool      `db:"is_correct" json:"isCorrect"`
	ReviewRequired bool      `db:"review_required" json:"reviewRequired"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// AnswerSheetFilter captures list query parameters after validation.
type AnswerSheetFilter struct {
	Keyword   string `validate:"omitempty"`
	Page      int    `validate:"omitempty,min=1"`
	Limit     int    `validate:"omitempty,min=1"`
	SortBy    string `validate:"omitempty,oneof=name school created_at"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

// AnswerSheetListItem is one row of the paginated listing. Review flags are
// coalesced to false when the dependent row is absent.
type AnswerSheetListItem struct {
	ScanID                        int64     `db:"scan_id" json:"scanId"`
	FirstName                     *string   `db:"first_name" json:"firstName"`
	LastName                      *string   `db:"last_name" json:"lastName"`
	SchoolID                      *string   `db:"school_id" json:"schoolId"`
	CreatedAt                     time.Time `db:"created_at" json:"createdAt"`
	StudentsReviewRequired        bool      `db:"students_review_required" json:"studentsReviewRequired"`
	CurrentSchoolsReviewRequired  bool      `db:"current_schools_review_required" json:"currentSchoolsReviewRequired"`
	PreviousSchoolsReviewRequired bool      `db:"previous_schools_review_required" json:"previousSchoolsReviewRequired"`
}

// AnswerSheetPage is the full list response record.
type AnswerSheetPage struct {
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
	Data       []AnswerSheetListItem `json:"data"`
}

// ScanSummary is the scan projection returned on detail, with file fields
// defaulted to empty strings and the raw payload excluded.
type ScanSummary struct {
	ID             int64     `json:"id"`
	FileName       string    `json:"fileName"`
	FilePath       string    `json:"filePath"`
	FileURL        string    `json:"fileUrl"`
	Status         string    `json:"status"`
	Confidence     *float64  `json:"confidence"`
	ReviewRequired bool      `json:"reviewRequired"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SubjectResult groups one subject's answers with its score: the count of
// correct answers in that subject.
type SubjectResult struct {
	Score   int             `json:"score"`
	Answers []StudentAnswer `json:"answers"`
}

// AnswerSheetDetail is the detail response for a single scan.
type AnswerSheetDetail struct {
	OmrScan        ScanSummary              `json:"omrScan"`
	Student        *Student                 `json:"student"`
	CurrentSchool  *CurrentSchool           `json:"currentSchool"`
	PreviousSchool *PreviousSchool          `json:"previousSchool"`
	Answers        map[string]SubjectResult `json:"answers"`
}
