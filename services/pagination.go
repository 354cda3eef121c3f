package services

// Pagination describes one page of a paginated list response.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Paginate clamps page/perPage to sane bounds and computes the page count
// for a list of total items. Page numbers are 1-based; an empty list still
// reports one (empty) page.
func Paginate(total, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}

	if page <= 0 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	return Pagination{Page: page, PerPage: perPage, Pages: pages, Total: total}
}

// PageBounds returns the half-open [start, end) slice bounds for the page.
func (p Pagination) PageBounds() (int, int) {
	start := (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}
