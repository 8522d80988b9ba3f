package entities

// Domain is a PMP exam domain (People, Process, Business Environment).
// Domains are seeded reference data.
type Domain struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DomainRef is the domain summary embedded in content reads
type DomainRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DomainSummary is a domain with its number of active questions
type DomainSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// CategorySummary is a flashcard category with its number of active cards
type CategorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
