package model

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination normalises page/limit and derives the page count.
func NewPagination(page, limit, total int) Pagination {
	page, limit = NormalizePage(page, limit)
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// NormalizePage clamps page to >= 1 and limit to [1, MaxPageLimit],
// substituting DefaultPageLimit for a non-positive limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// Offset is the number of rows to skip for the page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }
