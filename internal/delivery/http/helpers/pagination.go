package helpers

import (
	"net/http"
	"strconv"

	"communityevents/internal/domain"
)

// ParsePagination reads page and page_size from the query string. Missing, malformed
// or non-positive values fall back to the first page and the default size.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page")),
		PageSize: positiveInt(q.Get("page_size")),
	}.Normalize()
}

func positiveInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0
	}
	return v
}

// PaginationMeta describes the page returned by a paginated listing.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta reports the page served and how many pages total rows span.
func NewPaginationMeta(page domain.PaginationParams, total int) PaginationMeta {
	page = page.Normalize()
	return PaginationMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}
