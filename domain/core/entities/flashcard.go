package entities

import (
	"time"

	"questions-service/domain/core/valueobjects"
)

// Flashcard is a front/back study card. Activation gating matches Question.
type Flashcard struct {
	ID         string                  `json:"id"`
	DomainID   string                  `json:"domainId"`
	Domain     *DomainRef              `json:"domain,omitempty"`
	Category   string                  `json:"category"`
	Difficulty valueobjects.Difficulty `json:"difficulty"`
	Front      string                  `json:"front"`
	Back       string                  `json:"back"`
	IsActive   bool                    `json:"isActive"`
	CreatedAt  time.Time               `json:"createdAt"`
}
