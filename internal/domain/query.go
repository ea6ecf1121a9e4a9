package domain

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

// CatalogQuery describes which page of the catalog to request.
// Search and Sort are mutually exclusive; changing either resets Page to 1.
type CatalogQuery struct {
	Page     int
	PageSize int
	Search   string
	Sort     Sort // Zero value means unsorted
}

// NewCatalogQuery returns the first, unfiltered page
func NewCatalogQuery(pageSize int) CatalogQuery {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return CatalogQuery{Page: 1, PageSize: pageSize}
}

// Sorted reports whether a sort is applied
func (q CatalogQuery) Sorted() bool {
	return q.Sort.Field != ""
}

// Offset is the number of records skipped before this page
func (q CatalogQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// PageCount returns how many pages total records span
func (q CatalogQuery) PageCount(total int) int {
	if q.PageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + q.PageSize - 1) / q.PageSize
}

// WithPage moves to page n (clamped to 1)
func (q CatalogQuery) WithPage(n int) CatalogQuery {
	if n < 1 {
		n = 1
	}
	q.Page = n
	return q
}

// WithSearch sets the free-text search, dropping any sort
func (q CatalogQuery) WithSearch(text string) CatalogQuery {
	q.Search = text
	q.Sort = Sort{}
	q.Page = 1
	return q
}

// WithSort sets the sort, dropping any search
func (q CatalogQuery) WithSort(field SortField, dir SortDirection) CatalogQuery {
	if dir != SortDesc {
		dir = SortAsc
	}
	q.Sort = Sort{Field: field, Direction: dir}
	q.Search = ""
	q.Page = 1
	return q
}

// WithoutSort clears the sort and returns to the first page
func (q CatalogQuery) WithoutSort() CatalogQuery {
	q.Sort = Sort{}
	q.Page = 1
	return q
}
