package domain

// Page size bounds applied to every paginated listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of a listing. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Normalize returns p with Page at least 1 and PageSize within (0, MaxPageSize];
// a non-positive PageSize becomes DefaultPageSize.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Limit is the number of rows a page holds.
func (p PaginationParams) Limit() int {
	return p.Normalize().PageSize
}

// Offset is the number of rows that precede the page.
func (p PaginationParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// TotalPages is the number of pages needed to show total rows.
func (p PaginationParams) TotalPages(total int) int {
	size := p.Limit()
	return (total + size - 1) / size
}
