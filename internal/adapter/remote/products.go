package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/kiosk/internal/domain"
)

// remoteSortFields translates sortable fields to catalog API names.
// Fields missing here are sent unsorted.
var remoteSortFields = map[domain.SortField]string{
	domain.SortByName:   "title",
	domain.SortByVendor: "brand",
	domain.SortBySKU:    "sku",
	domain.SortByRating: "rating",
	domain.SortByPrice:  "price",
}

// ProductGateway implements domain.ProductGateway against /products
type ProductGateway struct {
	client *Client
}

var _ domain.ProductGateway = (*ProductGateway)(nil)

// NewProductGateway creates a catalog gateway
func NewProductGateway(client *Client) *ProductGateway {
	return &ProductGateway{client: client}
}

// Fetch loads one page of the catalog with a single request
func (g *ProductGateway) Fetch(ctx context.Context, q domain.CatalogQuery) (domain.CatalogResult, error) {
	path, query := productsRequest(q)

	resp, err := g.client.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return domain.CatalogResult{}, &domain.FetchError{Op: "fetch products", Err: err}
	}
	if !resp.ok() {
		return domain.CatalogResult{}, &domain.FetchError{Op: "fetch products", Err: domain.ErrProductsUnavailable}
	}

	var out productsResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return domain.CatalogResult{}, &domain.FetchError{
			Op:  "fetch products",
			Err: fmt.Errorf("%w: %v", domain.ErrProductsUnavailable, err),
		}
	}
	return mapCatalog(out), nil
}

// productsRequest picks the endpoint and query string for q.
// A search ignores sort; limit and skip are omitted when zero.
func productsRequest(q domain.CatalogQuery) (string, url.Values) {
	query := url.Values{}
	if q.PageSize > 0 {
		query.Set("limit", strconv.Itoa(q.PageSize))
	}
	if skip := q.Offset(); skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		query.Set("q", search)
		return "/products/search", query
	}

	if field, ok := remoteSortFields[q.Sort.Field]; ok {
		query.Set("sortBy", field)
		order := q.Sort.Direction
		if order == "" {
			order = domain.SortAsc
		}
		query.Set("order", string(order))
	}
	return "/products", query
}
