package common

import (
	"math"
	"net/http"
	"strconv"

	apperrors "questions-service/pkg/errors"
)

// PageBounds describes the default and maximum page size of a listing.
type PageBounds struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	// ContentPageBounds applies to public question and flashcard listings.
	ContentPageBounds = PageBounds{DefaultLimit: 20, MaxLimit: 100}
	// AdminPageBounds applies to the admin question listing.
	AdminPageBounds = PageBounds{DefaultLimit: 50, MaxLimit: 200}
)

// PageRequest is a clamped page/limit pair.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// maxOffset keeps (page-1)*limit inside a Postgres int4 OFFSET
const maxOffset = math.MaxInt32

// Clamp forces limit into [1, MaxLimit] and page into [1, MaxPage(limit)].
func (b PageBounds) Clamp(page, limit int) PageRequest {
	if limit < 1 {
		limit = 1
	}
	if limit > b.MaxLimit {
		limit = b.MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := MaxPage(limit); page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Limit: limit}
}

// MaxPage is the last page whose offset cannot overflow for the given limit.
func MaxPage(limit int) int {
	if limit < 1 {
		limit = 1
	}
	return maxOffset/limit + 1
}

// ExtractPageRequest reads page and limit from the query string. Missing
// values take defaults, out of range values are clamped and non-numeric
// values are rejected.
func ExtractPageRequest(r *http.Request, bounds PageBounds) (PageRequest, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return PageRequest{}, err
	}
	limit, err := queryInt(r, "limit", bounds.DefaultLimit)
	if err != nil {
		return PageRequest{}, err
	}
	return bounds.Clamp(page, limit), nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer").
			WithDetails(map[string]interface{}{"field": name, "value": raw})
	}
	return v, nil
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata block returned with every listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds pagination metadata for a page of a result set.
func NewPagination(req PageRequest, total int) Pagination {
	return Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: CalculateTotalPages(total, req.Limit),
	}
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
