package offline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/kiosk/internal/domain"
)

// DefaultCatalogSize is the number of seeded demo products
const DefaultCatalogSize = 100

// SeedProducts returns n deterministic demo products with ids "1".."n"
func SeedProducts(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		num := i + 1
		products[i] = domain.Product{
			ID:          strconv.Itoa(num),
			Name:        fmt.Sprintf("Product %d", num),
			Price:       float64(100 + (num*7919)%10000),
			Vendor:      fmt.Sprintf("Vendor %d", i%5+1),
			SKU:         fmt.Sprintf("SKU-%04d", num),
			Rating:      float64((num*3)%5 + 1),
			Description: fmt.Sprintf("Description of product %d", num),
			Image:       fmt.Sprintf("https://picsum.photos/seed/product%d/48/48.jpg", num),
			Category:    fmt.Sprintf("Category %d", i%8+1),
		}
	}
	return products
}

// ProductGateway serves an in-memory catalog with the remote paging,
// search and sort semantics
type ProductGateway struct {
	mu       sync.RWMutex
	products []domain.Product
	calls    int
	logger   *slog.Logger
}

var _ domain.ProductGateway = (*ProductGateway)(nil)

// NewProductGateway serves products. A nil slice seeds DefaultCatalogSize items.
func NewProductGateway(products []domain.Product, logger *slog.Logger) *ProductGateway {
	if products == nil {
		products = SeedProducts(DefaultCatalogSize)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductGateway{products: products, logger: logger}
}

// Calls returns how many times Fetch has been invoked
func (g *ProductGateway) Calls() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.calls
}

func (g *ProductGateway) Fetch(ctx context.Context, q domain.CatalogQuery) (domain.CatalogResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.CatalogResult{}, &domain.FetchError{Op: "fetch products", Err: err}
	}

	g.mu.RLock()
	var matched []domain.Product
	if search := strings.TrimSpace(q.Search); search != "" {
		matched = searchProducts(search, g.products)
	} else {
		matched = slices.Clone(g.products)
		if q.Sorted() {
			sortProducts(matched, q.Sort)
		}
	}
	g.mu.RUnlock()

	total := len(matched)
	start := min(q.Offset(), total)
	end := total
	if q.PageSize > 0 {
		end = min(start+q.PageSize, total)
	}

	g.logger.Debug("offline fetch", "page", q.Page, "search", q.Search, "sort", q.Sort.Field, "total", total)
	return domain.CatalogResult{Items: matched[start:end], Total: total}, nil
}

// searchProducts keeps products whose name, SKU or vendor fuzzy-matches
// query, best matches first
func searchProducts(query string, products []domain.Product) []domain.Product {
	type ranked struct {
		product  domain.Product
		distance int
		index    int
	}

	var hits []ranked
	for i, p := range products {
		best := -1
		for _, field := range []string{p.Name, p.SKU, p.Vendor} {
			d := fuzzy.RankMatchFold(query, field)
			if d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			hits = append(hits, ranked{product: p, distance: best, index: i})
		}
	}

	slices.SortStableFunc(hits, func(a, b ranked) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]domain.Product, len(hits))
	for i, h := range hits {
		out[i] = h.product
	}
	return out
}

func sortProducts(products []domain.Product, s domain.Sort) {
	var compare func(a, b domain.Product) int
	switch s.Field {
	case domain.SortByName:
		compare = func(a, b domain.Product) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case domain.SortByPrice:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortByRating:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Rating, b.Rating) }
	case domain.SortByVendor:
		compare = func(a, b domain.Product) int { return cmp.Compare(strings.ToLower(a.Vendor), strings.ToLower(b.Vendor)) }
	case domain.SortBySKU:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.SKU, b.SKU) }
	default:
		return
	}

	if s.Direction == domain.SortDesc {
		asc := compare
		compare = func(a, b domain.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(products, compare)
}
