package memory

import (
	"time"

	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
)

// Fixed identifiers of the demo content
const (
	DemoTestID = "8a1f5e0c-3c1e-4f0e-9d7a-2b6f1c9e4a01"
)

// SeedDemo loads a small PMP content set so a local server without Postgres
// has something to serve.
func (s *Store) SeedDemo(now time.Time) {
	for _, d := range []entities.Domain{
		{ID: "people", Name: "People", Color: "#2563eb"},
		{ID: "process", Name: "Process", Color: "#16a34a"},
		{ID: "business-environment", Name: "Business Environment", Color: "#d97706"},
	} {
		s.PutDomain(d)
	}

	questions := []entities.Question{
		{
			ID:                 "0f6b2d4e-1a2b-4c3d-8e9f-000000000001",
			DomainID:           "people",
			QuestionText:       "Two senior developers disagree about the architecture and the conflict is slowing the team. What should the project manager do first?",
			Choices:            valueobjects.Choices{"Escalate to the sponsor", "Meet with both to understand the root cause", "Pick the better design", "Replace one of them"},
			CorrectAnswerIndex: 1,
			Explanation:        "Collaborating to find the root cause is the preferred conflict resolution technique.",
			Difficulty:         valueobjects.DifficultyMedium,
		},
		{
			ID:                 "0f6b2d4e-1a2b-4c3d-8e9f-000000000002",
			DomainID:           "process",
			QuestionText:       "A stakeholder requests a change to an approved deliverable. What is the next step?",
			Choices:            valueobjects.Choices{"Implement the change", "Reject the request", "Assess the impact of the change", "Update the baseline"},
			CorrectAnswerIndex: 2,
			Explanation:        "Impact analysis precedes submitting the change to integrated change control.",
			Difficulty:         valueobjects.DifficultyEasy,
		},
		{
			ID:                 "0f6b2d4e-1a2b-4c3d-8e9f-000000000003",
			DomainID:           "process",
			QuestionText:       "The CPI is 0.8 and the SPI is 1.1. How is the project performing?",
			Choices:            valueobjects.Choices{"Over budget and ahead of schedule", "Under budget and behind schedule", "Over budget and behind schedule", "Under budget and ahead of schedule"},
			CorrectAnswerIndex: 0,
			Explanation:        "CPI below 1 means over budget; SPI above 1 means ahead of schedule.",
			Difficulty:         valueobjects.DifficultyHard,
		},
		{
			ID:                 "0f6b2d4e-1a2b-4c3d-8e9f-000000000004",
			DomainID:           "business-environment",
			QuestionText:       "A new regulation affects the product being built. Who should the project manager engage first?",
			Choices:            valueobjects.Choices{"The compliance officer", "The development team", "The customer", "Procurement"},
			CorrectAnswerIndex: 0,
			Explanation:        "Compliance requirements are clarified with the responsible compliance function.",
			Difficulty:         valueobjects.DifficultyMedium,
		},
	}

	test := entities.PracticeTest{
		ID:               DemoTestID,
		Name:             "PMP Warm-up",
		Description:      "A short mixed-domain practice set",
		IsActive:         true,
		TimeLimitMinutes: 10,
	}
	for i, q := range questions {
		q.IsActive = true
		q.CreatedBy = "seed"
		q.CreatedAt = now.Add(time.Duration(i) * time.Second)
		q.UpdatedAt = q.CreatedAt
		s.PutQuestion(q)
		test.Questions = append(test.Questions, entities.TestQuestion{QuestionID: q.ID, OrderIndex: i + 1})
	}
	s.PutTest(test)

	for i, f := range []entities.Flashcard{
		{ID: "5c9d3e2f-6a7b-4c8d-9e0f-000000000001", DomainID: "process", Category: "Earned Value", Difficulty: valueobjects.DifficultyMedium, Front: "CPI formula", Back: "EV / AC"},
		{ID: "5c9d3e2f-6a7b-4c8d-9e0f-000000000002", DomainID: "process", Category: "Earned Value", Difficulty: valueobjects.DifficultyMedium, Front: "SPI formula", Back: "EV / PV"},
		{ID: "5c9d3e2f-6a7b-4c8d-9e0f-000000000003", DomainID: "people", Category: "Leadership", Difficulty: valueobjects.DifficultyEasy, Front: "Servant leadership", Back: "Leading by removing impediments and supporting the team"},
	} {
		f.IsActive = true
		f.CreatedAt = now.Add(time.Duration(i) * time.Second)
		s.PutFlashcard(f)
	}
}
