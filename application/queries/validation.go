package queries

import (
	"github.com/google/uuid"

	"questions-service/domain/core/valueobjects"
	"questions-service/pkg/common"
	pkgerrors "questions-service/pkg/errors"
)

// ValidateID rejects identifiers that are not UUIDs
func ValidateID(field, id string) error {
	if id == "" {
		return pkgerrors.NewValidationError(field + " is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return pkgerrors.NewValidationError(field + " must be a valid UUID").WithCode(pkgerrors.CodeInvalidID)
	}
	return nil
}

func validatePage(p common.PageRequest) error {
	if p.Page < 1 || p.Limit < 1 {
		return pkgerrors.NewValidationError("page and limit must be positive")
	}
	return nil
}

func validateDifficulty(d valueobjects.Difficulty) error {
	if d != "" && !d.IsValid() {
		return pkgerrors.NewValidationError("difficulty must be one of EASY, MEDIUM, HARD")
	}
	return nil
}
