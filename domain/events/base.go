package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeSessionStarted   = "practice.session.started"
	TypeSessionCompleted = "practice.session.completed"
	TypeQuestionCreated  = "question.created"
	TypeQuestionUpdated  = "question.updated"
	TypeQuestionToggled  = "question.toggled"
)

// Session Events

// SessionStarted is raised when a user begins a practice test
type SessionStarted struct {
	BaseEvent
	SessionID      string `json:"sessionId"`
	UserID         string `json:"userId"`
	TestID         string `json:"testId"`
	TotalQuestions int    `json:"totalQuestions"`
}

// NewSessionStarted creates a SessionStarted event
func NewSessionStarted(sessionID, userID, testID string, totalQuestions int, timestamp time.Time) SessionStarted {
	return SessionStarted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   TypeSessionStarted,
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID:      sessionID,
		UserID:         userID,
		TestID:         testID,
		TotalQuestions: totalQuestions,
	}
}

// SessionCompleted is raised once, when a session is scored
type SessionCompleted struct {
	BaseEvent
	SessionID         string `json:"sessionId"`
	UserID            string `json:"userId"`
	TestID            string `json:"testId"`
	Score             int    `json:"score"`
	CorrectAnswers    int    `json:"correctAnswers"`
	AnsweredQuestions int    `json:"answeredQuestions"`
	TotalQuestions    int    `json:"totalQuestions"`
}

// NewSessionCompleted creates a SessionCompleted event
func NewSessionCompleted(sessionID, userID, testID string, score, correct, answered, total int, timestamp time.Time) SessionCompleted {
	return SessionCompleted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   TypeSessionCompleted,
			Timestamp:   timestamp,
			Version:     2,
		},
		SessionID:         sessionID,
		UserID:            userID,
		TestID:            testID,
		Score:             score,
		CorrectAnswers:    correct,
		AnsweredQuestions: answered,
		TotalQuestions:    total,
	}
}

// Question Events

// QuestionChanged is raised by every admin write to a question
type QuestionChanged struct {
	BaseEvent
	QuestionID string `json:"questionId"`
	DomainID   string `json:"domainId"`
	IsActive   bool   `json:"isActive"`
	ChangedBy  string `json:"changedBy,omitempty"`
}

// NewQuestionChanged creates a QuestionChanged event of the given type
func NewQuestionChanged(eventType, questionID, domainID string, isActive bool, changedBy string, timestamp time.Time) QuestionChanged {
	return QuestionChanged{
		BaseEvent: BaseEvent{
			AggregateID: questionID,
			EventType:   eventType,
			Timestamp:   timestamp,
			Version:     1,
		},
		QuestionID: questionID,
		DomainID:   domainID,
		IsActive:   isActive,
		ChangedBy:  changedBy,
	}
}
