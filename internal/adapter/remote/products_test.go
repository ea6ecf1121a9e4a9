package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/obs"
)

// catalogStub serves a catalog of total items and records every request
type catalogStub struct {
	mu       sync.Mutex
	total    int
	requests []*url.URL
}

func (s *catalogStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL)
	s.mu.Unlock()

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	skip, _ := strconv.Atoi(q.Get("skip"))
	if limit == 0 {
		limit = 30
	}

	var items []string
	for i := skip; i < skip+limit && i < s.total; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"title":"Item %d","price":%d,"brand":"Acme","sku":"S%d","rating":4.5,"thumbnail":"t%d.png"}`, i+1, i+1, i+1, i+1, i+1))
	}
	fmt.Fprintf(w, `{"products":[%s],"total":%d,"skip":%d,"limit":%d}`, strings.Join(items, ","), s.total, skip, limit)
}

func (s *catalogStub) last() *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func TestFetchSecondPage(t *testing.T) {
	stub := &catalogStub{total: 25}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	gw := NewProductGateway(NewClient(srv.URL, nil))
	q := domain.NewCatalogQuery(10).WithPage(2)

	res, err := gw.Fetch(context.Background(), q)
	require.NoError(t, err)

	req := stub.last()
	assert.Equal(t, "/products", req.Path)
	assert.Equal(t, "10", req.Query().Get("skip"))
	assert.Equal(t, "10", req.Query().Get("limit"))
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, "11", res.Items[0].ID)
	assert.Len(t, stub.requests, 1)
}

func TestFetchSearchIgnoresSort(t *testing.T) {
	q := domain.NewCatalogQuery(10).WithSearch("phone")
	q.Sort = domain.Sort{Field: domain.SortByPrice, Direction: domain.SortDesc}

	path, query := productsRequest(q)
	assert.Equal(t, "/products/search", path)
	assert.Equal(t, "phone", query.Get("q"))
	assert.Equal(t, "10", query.Get("limit"))
	assert.False(t, query.Has("skip"))
	assert.False(t, query.Has("sortBy"))
	assert.False(t, query.Has("order"))
}

func TestFetchSortMapping(t *testing.T) {
	tests := []struct {
		field  domain.SortField
		remote string
	}{
		{domain.SortByName, "title"},
		{domain.SortByVendor, "brand"},
		{domain.SortBySKU, "sku"},
		{domain.SortByRating, "rating"},
		{domain.SortByPrice, "price"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			q := domain.NewCatalogQuery(10).WithSort(tt.field, domain.SortDesc)
			path, query := productsRequest(q)
			assert.Equal(t, "/products", path)
			assert.Equal(t, tt.remote, query.Get("sortBy"))
			assert.Equal(t, "desc", query.Get("order"))
		})
	}
}

func TestFetchUnknownSortFieldOmitted(t *testing.T) {
	q := domain.NewCatalogQuery(10).WithSort("category", domain.SortAsc)
	_, query := productsRequest(q)
	assert.False(t, query.Has("sortBy"))
	assert.False(t, query.Has("order"))
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewProductGateway(NewClient(srv.URL, nil)).Fetch(context.Background(), domain.NewCatalogQuery(10))
	require.Error(t, err)

	var fetchErr *domain.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, domain.ErrProductsUnavailable)
}

func TestMapProductDefaults(t *testing.T) {
	p := mapProduct(productDTO{ID: "7", Name: "Fallback", Images: []string{"a.png", "b.png"}, Price: 3})
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Fallback", p.Name)
	assert.Equal(t, "-", p.Vendor)
	assert.Equal(t, "SKU-7", p.SKU)
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, "a.png", p.Image)

	p = mapProduct(productDTO{ID: "8"})
	assert.Equal(t, unknownProductName, p.Name)
}

func TestMapCatalogTotalFallback(t *testing.T) {
	res := mapCatalog(productsResponse{Products: []productDTO{{ID: "1"}, {ID: "2"}}})
	assert.Equal(t, 2, res.Total)
}

func TestFetchRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(&catalogStub{total: 3})
	defer srv.Close()

	m := obs.NewMetrics()
	gw := NewProductGateway(NewClient(srv.URL, nil, WithMetrics(m)))
	_, err := gw.Fetch(context.Background(), domain.NewCatalogQuery(10))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "kiosk_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
