package cache

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"questions-service/application/ports"
	"questions-service/pkg/common"
)

// Standard TTLs
const (
	TTLMedium  = 5 * time.Minute
	TTLLong    = time.Hour
	TTLDomains = time.Hour
)

// TTLs groups the expirations applied by the read-through repository
type TTLs struct {
	List      time.Duration // paginated listings
	Detail    time.Duration // single rows
	Reference time.Duration // domains and categories
}

// DefaultTTLs returns the standard expirations
func DefaultTTLs() TTLs {
	return TTLs{
		List:      TTLMedium,
		Detail:    TTLLong,
		Reference: TTLDomains,
	}
}

// Key prefixes used for invalidation
const (
	PrefixQuestionList  = "questions:"
	PrefixQuestion      = "question:"
	PrefixDomains       = "domains:"
	PrefixFlashcardList = "flashcards:"
	PrefixFlashcard     = "flashcard:"

	KeyDomains    = "domains:all"
	KeyCategories = "flashcard:categories"
)

// unset marks an absent filter; QueryEscape turns a literal * into %2A
const unset = "*"

// QuestionListKey builds questions:{domain}:{difficulty}:{page}:{limit}
func QuestionListKey(f ports.QuestionFilter, p common.PageRequest) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", PrefixQuestionList,
		segment(f.DomainID), segment(string(f.Difficulty)), p.Page, p.Limit)
}

// QuestionKey builds question:{id}
func QuestionKey(id string) string {
	return PrefixQuestion + segment(id)
}

// FlashcardListKey builds flashcards:{domain}:{category}:{difficulty}:{page}:{limit}
func FlashcardListKey(f ports.FlashcardFilter, p common.PageRequest) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", PrefixFlashcardList,
		segment(f.DomainID), segment(f.Category), segment(string(f.Difficulty)), p.Page, p.Limit)
}

// FlashcardKey builds flashcard:{id}
func FlashcardKey(id string) string {
	return PrefixFlashcard + segment(id)
}

// segment escapes a filter value so it can never introduce a separator
func segment(v string) string {
	if v == "" {
		return unset
	}
	return url.QueryEscape(v)
}

// resourceOf returns the part of a key before the first separator, used as a metric label
func resourceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
