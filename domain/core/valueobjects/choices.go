package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "questions-service/pkg/errors"
)

// MinChoices is the smallest number of answer options a question may have
const MinChoices = 2

// Choices is the ordered list of answer options of a question
type Choices []string

// NewChoices trims every option and rejects blank options or short lists
func NewChoices(options []string) (Choices, error) {
	if len(options) < MinChoices {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("choices must have at least %d options", MinChoices))
	}
	out := make(Choices, len(options))
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("choice %d cannot be empty", i))
		}
		out[i] = opt
	}
	return out, nil
}

// ValidateIndex returns a validation error when index is out of range
func ValidateIndex(index, count int, field string) error {
	if index < 0 || index >= count {
		return pkgerrors.NewValidationError(fmt.Sprintf("%s must be between 0 and %d", field, count-1)).
			WithCode(pkgerrors.CodeInvalidAnswerIndex)
	}
	return nil
}
