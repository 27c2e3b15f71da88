package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionCategory classifies the kind of interview question.
type QuestionCategory string

// Valid question categories.
const (
	CategoryTechnical   QuestionCategory = "Technical"
	CategoryBehavioral  QuestionCategory = "Behavioral"
	CategorySituational QuestionCategory = "Situational"
)

// QuestionDifficulty grades how demanding a question is.
type QuestionDifficulty string

// Valid question difficulties.
const (
	DifficultyNovice   QuestionDifficulty = "Novice"
	DifficultyAdvanced QuestionDifficulty = "Advanced"
	DifficultyHard     QuestionDifficulty = "Hard"
)

// Question-specific validation errors.
var (
	ErrEmptyQuestionID      = errors.New("question ID cannot be empty")
	ErrEmptyQuestionOwnerID = errors.New("question owner ID cannot be empty")
	ErrEmptyQuestionText    = errors.New("question text cannot be empty")
	ErrInvalidCategory      = errors.New("invalid question category")
	ErrInvalidDifficulty    = errors.New("invalid question difficulty")
)

// TechnicalTerm is a term/definition pair attached to a question to help
// the user prepare an answer.
type TechnicalTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Question is a single interview question owned by exactly one user.
// Questions are soft-deleted by clearing IsActive; normal flows never
// remove the row. Text uniqueness is enforced logically by the duplicate
// detector, not by a database constraint.
type Question struct {
	ID             uuid.UUID          `json:"id"`
	OwnerID        uuid.UUID          `json:"owner_id"`
	Text           string             `json:"text"`
	Category       QuestionCategory   `json:"category"`
	Difficulty     QuestionDifficulty `json:"difficulty"`
	Explanation    string             `json:"explanation"`
	Example        string             `json:"example"`
	TechnicalTerms []TechnicalTerm    `json:"technical_terms"`
	GeneratedDate  time.Time          `json:"generated_date"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewQuestion creates an active Question with the given owner, text,
// category and difficulty. Optional fields (explanation, example,
// technical terms) are set by the caller afterwards.
// Returns an error if validation fails.
func NewQuestion(
	ownerID uuid.UUID,
	text string,
	category QuestionCategory,
	difficulty QuestionDifficulty,
) (*Question, error) {
	now := time.Now().UTC()
	q := &Question{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Text:          text,
		Category:      category,
		Difficulty:    difficulty,
		GeneratedDate: now,
		IsActive:      true,
		CreatedAt:     now,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks that the Question has valid data.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return ErrEmptyQuestionID
	}

	if q.OwnerID == uuid.Nil {
		return ErrEmptyQuestionOwnerID
	}

	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuestionText
	}

	if !IsValidCategory(q.Category) {
		return ErrInvalidCategory
	}

	if !IsValidDifficulty(q.Difficulty) {
		return ErrInvalidDifficulty
	}

	return nil
}

// NormalizedText returns the question text lowered and trimmed. Two
// questions are considered duplicates iff their normalized texts are equal.
func (q *Question) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}

// IsValidCategory reports whether the given value is a known category.
func IsValidCategory(c QuestionCategory) bool {
	switch c {
	case CategoryTechnical, CategoryBehavioral, CategorySituational:
		return true
	default:
		return false
	}
}

// IsValidDifficulty reports whether the given value is a known difficulty.
func IsValidDifficulty(d QuestionDifficulty) bool {
	switch d {
	case DifficultyNovice, DifficultyAdvanced, DifficultyHard:
		return true
	default:
		return false
	}
}
