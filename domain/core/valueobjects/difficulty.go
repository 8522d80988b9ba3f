package valueobjects

import (
	"strings"

	pkgerrors "questions-service/pkg/errors"
)

// Difficulty grades a question or flashcard
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// DefaultDifficulty is assigned to new questions that do not specify one
const DefaultDifficulty = DifficultyMedium

// ParseDifficulty accepts EASY, MEDIUM or HARD in any case. An empty string
// yields the zero Difficulty, meaning "no filter".
func ParseDifficulty(raw string) (Difficulty, error) {
	if raw == "" {
		return "", nil
	}
	d := Difficulty(strings.ToUpper(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", pkgerrors.NewValidationError("difficulty must be one of: EASY, MEDIUM, HARD").
			WithDetails(map[string]interface{}{"field": "difficulty", "value": raw})
	}
	return d, nil
}

// IsValid reports whether d is a known difficulty
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// String returns the string representation
func (d Difficulty) String() string {
	return string(d)
}
