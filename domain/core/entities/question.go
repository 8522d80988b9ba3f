package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"questions-service/domain/core/valueobjects"
	pkgerrors "questions-service/pkg/errors"
)

// Question is a multiple-choice practice question owned by a Domain.
// Inactive questions stay in storage but are hidden from readers.
type Question struct {
	ID                 string                  `json:"id"`
	DomainID           string                  `json:"domainId"`
	Domain             *DomainRef              `json:"domain,omitempty"`
	QuestionText       string                  `json:"questionText"`
	Scenario           *string                 `json:"scenario"`
	Choices            valueobjects.Choices    `json:"choices"`
	CorrectAnswerIndex int                     `json:"correctAnswerIndex"`
	Explanation        string                  `json:"explanation"`
	Difficulty         valueobjects.Difficulty `json:"difficulty"`
	IsActive           bool                    `json:"isActive"`
	CreatedBy          string                  `json:"createdBy"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

// QuestionDraft carries the fields needed to author a question
type QuestionDraft struct {
	DomainID           string
	QuestionText       string
	Scenario           *string
	Choices            []string
	CorrectAnswerIndex int
	Explanation        string
	Difficulty         valueobjects.Difficulty
	CreatedBy          string
}

// QuestionPatch is a partial update; nil fields are left unchanged
type QuestionPatch struct {
	DomainID           *string
	QuestionText       *string
	Scenario           *string
	Choices            []string
	CorrectAnswerIndex *int
	Explanation        *string
	Difficulty         *valueobjects.Difficulty
	IsActive           *bool
}

// NewQuestion creates an active question after validating the draft
func NewQuestion(d QuestionDraft, now time.Time) (*Question, error) {
	if d.Difficulty == "" {
		d.Difficulty = valueobjects.DefaultDifficulty
	}
	if d.CreatedBy == "" {
		d.CreatedBy = "admin"
	}

	choices, err := valueobjects.NewChoices(d.Choices)
	if err != nil {
		return nil, err
	}

	q := &Question{
		ID:                 uuid.NewString(),
		DomainID:           strings.TrimSpace(d.DomainID),
		QuestionText:       strings.TrimSpace(d.QuestionText),
		Scenario:           normalizeOptional(d.Scenario),
		Choices:            choices,
		CorrectAnswerIndex: d.CorrectAnswerIndex,
		Explanation:        strings.TrimSpace(d.Explanation),
		Difficulty:         d.Difficulty,
		IsActive:           true,
		CreatedBy:          d.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the invariants every stored question must hold
func (q *Question) Validate() error {
	if q.DomainID == "" {
		return pkgerrors.NewValidationError("domainId is required")
	}
	if q.QuestionText == "" {
		return pkgerrors.NewValidationError("questionText is required")
	}
	if q.Explanation == "" {
		return pkgerrors.NewValidationError("explanation is required")
	}
	if !q.Difficulty.IsValid() {
		return pkgerrors.NewValidationError("difficulty must be one of: EASY, MEDIUM, HARD")
	}
	if len(q.Choices) < valueobjects.MinChoices {
		return pkgerrors.NewValidationError("choices must have at least 2 options")
	}
	return valueobjects.ValidateIndex(q.CorrectAnswerIndex, len(q.Choices), "correctAnswerIndex")
}

// Apply merges a patch into the question and re-validates the result.
// The question is left untouched when validation fails.
func (q *Question) Apply(p QuestionPatch, now time.Time) error {
	next := *q

	if p.DomainID != nil {
		next.DomainID = strings.TrimSpace(*p.DomainID)
		next.Domain = nil
	}
	if p.QuestionText != nil {
		next.QuestionText = strings.TrimSpace(*p.QuestionText)
	}
	if p.Scenario != nil {
		next.Scenario = normalizeOptional(p.Scenario)
	}
	if p.Choices != nil {
		choices, err := valueobjects.NewChoices(p.Choices)
		if err != nil {
			return err
		}
		next.Choices = choices
	}
	if p.CorrectAnswerIndex != nil {
		next.CorrectAnswerIndex = *p.CorrectAnswerIndex
	}
	if p.Explanation != nil {
		next.Explanation = strings.TrimSpace(*p.Explanation)
	}
	if p.Difficulty != nil {
		next.Difficulty = *p.Difficulty
	}
	if p.IsActive != nil {
		next.IsActive = *p.IsActive
	}

	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*q = next
	return nil
}

// ToggleActive flips the activation flag
func (q *Question) ToggleActive(now time.Time) {
	q.IsActive = !q.IsActive
	q.UpdatedAt = now
}

// QuestionView is the client-safe projection handed out during a practice
// session. It carries no answer key and no explanation.
type QuestionView struct {
	ID           string                  `json:"id"`
	DomainID     string                  `json:"domainId"`
	Domain       *DomainRef              `json:"domain,omitempty"`
	QuestionText string                  `json:"questionText"`
	Scenario     *string                 `json:"scenario"`
	Choices      valueobjects.Choices    `json:"choices"`
	Difficulty   valueobjects.Difficulty `json:"difficulty"`
	OrderIndex   int                     `json:"orderIndex"`
}

// View projects the question for an examinee
func (q *Question) View(orderIndex int) QuestionView {
	return QuestionView{
		ID:           q.ID,
		DomainID:     q.DomainID,
		Domain:       q.Domain,
		QuestionText: q.QuestionText,
		Scenario:     q.Scenario,
		Choices:      q.Choices,
		Difficulty:   q.Difficulty,
		OrderIndex:   orderIndex,
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
