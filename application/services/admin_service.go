package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/domain/events"
	"questions-service/pkg/utils"
)

// CreateQuestionInput is the payload of a question creation
type CreateQuestionInput struct {
	DomainID           string   `json:"domainId" validate:"required,max=64"`
	QuestionText       string   `json:"questionText" validate:"required"`
	Scenario           *string  `json:"scenario"`
	Choices            []string `json:"choices" validate:"min=2,dive,required"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" validate:"required,min=0"`
	Explanation        string   `json:"explanation" validate:"required"`
	Difficulty         string   `json:"difficulty"`
	CreatedBy          string   `json:"createdBy" validate:"max=255"`
}

// UpdateQuestionInput is a partial update; absent fields keep their value
type UpdateQuestionInput struct {
	DomainID           *string  `json:"domainId" validate:"omitempty,min=1,max=64"`
	QuestionText       *string  `json:"questionText" validate:"omitempty,min=1"`
	Scenario           *string  `json:"scenario"`
	Choices            []string `json:"choices" validate:"omitempty,min=2,dive,required"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" validate:"omitempty,min=0"`
	Explanation        *string  `json:"explanation" validate:"omitempty,min=1"`
	Difficulty         *string  `json:"difficulty"`
	IsActive           *bool    `json:"isActive"`
}

// AdminService authors questions. Every write goes through the question
// store, which drops the affected cache entries once the write succeeds.
type AdminService struct {
	store     ports.QuestionStore
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(store ports.QuestionStore, publisher ports.EventPublisher, logger *zap.Logger) *AdminService {
	return &AdminService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

// CreateQuestion validates and stores a new active question. The author is
// the authenticated subject when there is one, then the body, then "admin".
func (s *AdminService) CreateQuestion(ctx context.Context, in CreateQuestionInput, actor string) (*entities.Question, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	difficulty, err := valueobjects.ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}

	createdBy := firstNonEmpty(actor, in.CreatedBy, "admin")
	q, err := entities.NewQuestion(entities.QuestionDraft{
		DomainID:           in.DomainID,
		QuestionText:       in.QuestionText,
		Scenario:           in.Scenario,
		Choices:            in.Choices,
		CorrectAnswerIndex: *in.CorrectAnswerIndex,
		Explanation:        in.Explanation,
		Difficulty:         difficulty,
		CreatedBy:          createdBy,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("Question created",
		zap.String("questionID", q.ID),
		zap.String("domainID", q.DomainID),
		zap.String("createdBy", createdBy),
	)
	s.publishChange(ctx, events.TypeQuestionCreated, q, createdBy)
	return q, nil
}

// UpdateQuestion merges a partial update into an existing question
func (s *AdminService) UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput, actor string) (*entities.Question, error) {
	if err := utils.ValidateVar(id, "required,uuid", "id"); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	patch := entities.QuestionPatch{
		DomainID:           in.DomainID,
		QuestionText:       in.QuestionText,
		Scenario:           in.Scenario,
		Choices:            in.Choices,
		CorrectAnswerIndex: in.CorrectAnswerIndex,
		Explanation:        in.Explanation,
		IsActive:           in.IsActive,
	}
	if in.Difficulty != nil {
		d, err := valueobjects.ParseDifficulty(*in.Difficulty)
		if err != nil {
			return nil, err
		}
		if d != "" {
			patch.Difficulty = &d
		}
	}

	q, err := s.store.FindQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.Apply(patch, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("Question updated", zap.String("questionID", q.ID), zap.String("actor", actor))
	s.publishChange(ctx, events.TypeQuestionUpdated, q, actor)
	return q, nil
}

// ToggleQuestion flips the activation flag of a question
func (s *AdminService) ToggleQuestion(ctx context.Context, id string, actor string) (*entities.Question, error) {
	if err := utils.ValidateVar(id, "required,uuid", "id"); err != nil {
		return nil, err
	}

	q, err := s.store.ToggleQuestion(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question toggled",
		zap.String("questionID", q.ID),
		zap.Bool("isActive", q.IsActive),
		zap.String("actor", actor),
	)
	s.publishChange(ctx, events.TypeQuestionToggled, q, actor)
	return q, nil
}

func (s *AdminService) publishChange(ctx context.Context, eventType string, q *entities.Question, actor string) {
	publishBestEffort(ctx, s.publisher, s.logger,
		events.NewQuestionChanged(eventType, q.ID, q.DomainID, q.IsActive, actor, s.now()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
