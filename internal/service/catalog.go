package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/kiosk/internal/domain"
)

// CatalogState is a snapshot of the catalog controller
type CatalogState struct {
	Query  domain.CatalogQuery
	Items  []domain.Product
	Total  int
	Busy   bool
	Error  string
	Loaded bool // At least one fetch has succeeded
}

// PageCount returns the number of pages Total spans
func (s CatalogState) PageCount() int {
	return s.Query.PageCount(s.Total)
}

// CatalogController owns the query state and the last fetched page.
// Setters only change the query; Refetch performs the I/O. Only the most
// recently issued Refetch may apply its result.
type CatalogController struct {
	gateway domain.ProductGateway
	logger  *slog.Logger

	mu     sync.Mutex
	query  domain.CatalogQuery
	items  []domain.Product
	total  int
	busy   bool
	err    string
	loaded bool
	seq    uint64
}

// NewCatalogController starts at page 1 with no search or sort
func NewCatalogController(gateway domain.ProductGateway, pageSize int, logger *slog.Logger) *CatalogController {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogController{
		gateway: gateway,
		logger:  logger,
		query:   domain.NewCatalogQuery(pageSize),
	}
}

// State returns a copy of the controller state
func (c *CatalogController) State() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CatalogState{
		Query:  c.query,
		Items:  slices.Clone(c.items),
		Total:  c.total,
		Busy:   c.busy,
		Error:  c.err,
		Loaded: c.loaded,
	}
}

// Query returns the current query
func (c *CatalogController) Query() domain.CatalogQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetPage moves to page n
func (c *CatalogController) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithPage(n)
}

// SetSearch sets the search text, clears any sort and returns to page 1
func (c *CatalogController) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithSearch(text)
}

// SetSort sets the sort, clears any search and returns to page 1
func (c *CatalogController) SetSort(field domain.SortField, dir domain.SortDirection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithSort(field, dir)
}

// ClearSort removes the sort and returns to page 1
func (c *CatalogController) ClearSort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithoutSort()
}

// Refetch loads the page for the current query. On failure the previous
// items stay in place and Error is set. A result that arrives after a newer
// Refetch was issued is discarded.
func (c *CatalogController) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := c.query
	c.busy = true
	c.mu.Unlock()

	res, err := c.gateway.Fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("discarding stale catalog result", "seq", seq, "latest", c.seq)
		return nil
	}
	c.busy = false

	if err != nil {
		c.err = domain.UserMessage(err)
		c.logger.Error("failed to fetch products", "page", q.Page, "search", q.Search, "error", err)
		return err
	}

	c.items = res.Items
	c.total = res.Total
	c.err = ""
	c.loaded = true
	c.logger.Debug("fetched products", "page", q.Page, "count", len(res.Items), "total", res.Total)
	return nil
}

// CreateLocal prepends p to the current page and counts it in Total.
// The remote catalog is not changed; the next Refetch drops it.
func (c *CatalogController) CreateLocal(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]domain.Product{p}, c.items...)
	c.total++
}

// UpdateLocal replaces the item with p.ID in place. It reports false if no
// such item is on the current page.
func (c *CatalogController) UpdateLocal(p domain.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(item domain.Product) bool { return item.ID == p.ID })
	if i < 0 {
		return false
	}
	c.items[i] = p
	return true
}

// Find returns the item with id from the current page
func (c *CatalogController) Find(id string) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(item domain.Product) bool { return item.ID == id })
	if i < 0 {
		return domain.Product{}, false
	}
	return c.items[i], true
}

// ClearError dismisses the last fetch failure
func (c *CatalogController) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
}

// Reset returns to a fresh first page with no search or sort and drops the
// loaded items. A Refetch still in flight is discarded.
func (c *CatalogController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = domain.NewCatalogQuery(c.query.PageSize)
	c.items = nil
	c.total = 0
	c.busy = false
	c.err = ""
	c.loaded = false
	c.seq++
}
