package aggregates

import "time"

// Answer is a user's current choice for one question of a session.
// There is at most one per (SessionID, QuestionID); resubmitting overwrites it.
type Answer struct {
	SessionID           string    `json:"sessionId"`
	QuestionID          string    `json:"questionId"`
	SelectedAnswerIndex int       `json:"selectedAnswerIndex"`
	IsCorrect           bool      `json:"isCorrect"`
	TimeSpentSeconds    int       `json:"timeSpentSeconds"`
	AnsweredAt          time.Time `json:"answeredAt"`
}
