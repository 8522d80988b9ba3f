package entities

import (
	"sort"
)

// PracticeTest is a fixed, ordered set of questions. Sessions reference it,
// so its question list is treated as append-only.
type PracticeTest struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	IsActive         bool           `json:"isActive"`
	TimeLimitMinutes int            `json:"timeLimitMinutes"`
	Questions        []TestQuestion `json:"testQuestions"`
}

// TestQuestion places a question at a position within a test
type TestQuestion struct {
	QuestionID string    `json:"questionId"`
	OrderIndex int       `json:"orderIndex"`
	Question   *Question `json:"-"`
}

// PracticeTestSummary is the listing row for available tests
type PracticeTestSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
	QuestionCount    int    `json:"questionCount"`
}

// AnswerKey is the server-side grading data for one question of a test
type AnswerKey struct {
	QuestionID         string
	CorrectAnswerIndex int
	ChoiceCount        int
}

// OrderedQuestions returns the test's questions sorted by orderIndex
func (t *PracticeTest) OrderedQuestions() []TestQuestion {
	out := make([]TestQuestion, len(t.Questions))
	copy(out, t.Questions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// Views projects every question of the test in order, without answer keys
func (t *PracticeTest) Views() []QuestionView {
	ordered := t.OrderedQuestions()
	views := make([]QuestionView, 0, len(ordered))
	for _, tq := range ordered {
		if tq.Question == nil {
			continue
		}
		views = append(views, tq.Question.View(tq.OrderIndex))
	}
	return views
}
