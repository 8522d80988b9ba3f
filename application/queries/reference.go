package queries

// ListDomainsQuery lists domains with their active question counts
type ListDomainsQuery struct{}

// Validate validates the ListDomainsQuery
func (ListDomainsQuery) Validate() error { return nil }

// ListCategoriesQuery lists flashcard categories with their counts
type ListCategoriesQuery struct{}

// Validate validates the ListCategoriesQuery
func (ListCategoriesQuery) Validate() error { return nil }

// ListPracticeTestsQuery lists the tests a user can start
type ListPracticeTestsQuery struct{}

// Validate validates the ListPracticeTestsQuery
func (ListPracticeTestsQuery) Validate() error { return nil }
