package queries

// GetQuestionQuery represents a query to get a single active question
type GetQuestionQuery struct {
	QuestionID string
}

// Validate validates the GetQuestionQuery
func (q GetQuestionQuery) Validate() error {
	return ValidateID("question id", q.QuestionID)
}
