package queries

import (
	"questions-service/domain/core/aggregates"
)

// GetSessionQuery represents a query for a session and its answers
type GetSessionQuery struct {
	SessionID string
}

// Validate validates the GetSessionQuery
func (q GetSessionQuery) Validate() error {
	return ValidateID("session id", q.SessionID)
}

// GetSessionResult is a session with its current answers. Result is set once
// the session is completed.
type GetSessionResult struct {
	Session *aggregates.Session `json:"session"`
	Answers []aggregates.Answer `json:"answers"`
	Result  *aggregates.Result  `json:"result,omitempty"`
}
