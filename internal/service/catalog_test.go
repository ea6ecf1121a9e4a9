package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kiosk/internal/adapter/offline"
	"github.com/mmcdole/kiosk/internal/domain"
)

func TestSearchAndSortAreMutuallyExclusive(t *testing.T) {
	c := NewCatalogController(offline.NewProductGateway(nil, nil), 10, nil)
	c.SetPage(4)

	c.SetSearch("x")
	q := c.Query()
	assert.Equal(t, "x", q.Search)
	assert.Equal(t, 1, q.Page)

	c.SetSort(domain.SortByPrice, domain.SortAsc)
	q = c.Query()
	assert.Equal(t, "", q.Search)
	assert.Equal(t, domain.Sort{Field: domain.SortByPrice, Direction: domain.SortAsc}, q.Sort)
	assert.Equal(t, 1, q.Page)

	c.SetPage(3)
	c.SetSearch("y")
	q = c.Query()
	assert.False(t, q.Sorted())
	assert.Equal(t, 1, q.Page)
}

func TestSettersDoNotFetch(t *testing.T) {
	gw := offline.NewProductGateway(nil, nil)
	c := NewCatalogController(gw, 10, nil)

	c.SetPage(2)
	c.SetSearch("a")
	c.SetSort(domain.SortByName, domain.SortDesc)
	c.ClearSort()

	assert.Zero(t, gw.Calls())
}

func TestRefetchSecondPage(t *testing.T) {
	gw := &recordingGateway{next: offline.NewProductGateway(offline.SeedProducts(25), nil)}
	c := NewCatalogController(gw, 10, nil)

	c.SetPage(2)
	require.NoError(t, c.Refetch(context.Background()))

	require.Len(t, gw.queries, 1)
	assert.Equal(t, 10, gw.queries[0].Offset())
	assert.Equal(t, 10, gw.queries[0].PageSize)

	st := c.State()
	assert.Len(t, st.Items, 10)
	assert.Equal(t, 25, st.Total)
	assert.Equal(t, 3, st.PageCount())
	assert.False(t, st.Busy)
	assert.True(t, st.Loaded)
}

func TestCreateLocalThenRefetchReplacesItems(t *testing.T) {
	c := NewCatalogController(offline.NewProductGateway(offline.SeedProducts(25), nil), 10, nil)
	require.NoError(t, c.Refetch(context.Background()))
	before := c.State().Total

	local := domain.Product{ID: "product-local", Name: "Local", Price: 5, Vendor: "V", SKU: "S", Rating: 2}
	c.CreateLocal(local)

	st := c.State()
	assert.Equal(t, before+1, st.Total)
	assert.Equal(t, "product-local", st.Items[0].ID)
	assert.Len(t, st.Items, 11)

	// The remote catalog never saw the local item, so a refetch drops it
	require.NoError(t, c.Refetch(context.Background()))
	st = c.State()
	assert.Equal(t, before, st.Total)
	for _, p := range st.Items {
		assert.NotEqual(t, "product-local", p.ID)
	}
}

func TestUpdateLocal(t *testing.T) {
	c := NewCatalogController(offline.NewProductGateway(offline.SeedProducts(5), nil), 10, nil)
	require.NoError(t, c.Refetch(context.Background()))

	p, ok := c.Find("3")
	require.True(t, ok)
	p.Name = "Renamed"
	assert.True(t, c.UpdateLocal(p))

	st := c.State()
	assert.Equal(t, "Renamed", st.Items[2].Name)
	assert.Equal(t, "3", st.Items[2].ID)
	assert.Equal(t, 5, st.Total)

	assert.False(t, c.UpdateLocal(domain.Product{ID: "missing"}))
	assert.Len(t, c.State().Items, 5)
}

func TestRefetchFailureKeepsItems(t *testing.T) {
	gw := &scriptedGateway{}
	c := NewCatalogController(gw, 10, nil)

	done := make(chan error, 1)
	go func() { done <- c.Refetch(context.Background()) }()
	require.Eventually(t, func() bool { return gw.pending() == 1 }, time.Second, time.Millisecond)
	assert.True(t, c.State().Busy)
	gw.reply(0, domain.CatalogResult{Items: products("1", "2"), Total: 2}, nil)
	require.NoError(t, <-done)

	go func() { done <- c.Refetch(context.Background()) }()
	require.Eventually(t, func() bool { return gw.pending() == 2 }, time.Second, time.Millisecond)
	gw.reply(1, domain.CatalogResult{}, &domain.FetchError{Op: "fetch products", Err: domain.ErrProductsUnavailable})
	err := <-done
	assert.ErrorIs(t, err, domain.ErrProductsUnavailable)

	st := c.State()
	assert.Equal(t, "products unavailable", st.Error)
	assert.Len(t, st.Items, 2, "stale items stay visible")
	assert.False(t, st.Busy)

	c.ClearError()
	assert.Empty(t, c.State().Error)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	gw := &scriptedGateway{}
	c := NewCatalogController(gw, 10, nil)
	ctx := context.Background()

	first := make(chan error, 1)
	c.SetSearch("slow")
	go func() { first <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return gw.pending() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	c.SetSort(domain.SortByPrice, domain.SortAsc)
	go func() { second <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return gw.pending() == 2 }, time.Second, time.Millisecond)

	// Newer request resolves first
	gw.reply(1, domain.CatalogResult{Items: products("new"), Total: 1}, nil)
	require.NoError(t, <-second)

	gw.reply(0, domain.CatalogResult{Items: products("old-1", "old-2"), Total: 2}, nil)
	require.NoError(t, <-first)

	st := c.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "new", st.Items[0].ID)
	assert.Equal(t, 1, st.Total)
	assert.False(t, st.Busy)
}

func TestBusyUntilLatestResolves(t *testing.T) {
	gw := &scriptedGateway{}
	c := NewCatalogController(gw, 10, nil)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return gw.pending() == 1 }, time.Second, time.Millisecond)
	go func() { done <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return gw.pending() == 2 }, time.Second, time.Millisecond)

	gw.reply(0, domain.CatalogResult{Items: products("a")}, nil)
	<-done
	assert.True(t, c.State().Busy, "older completion must not end the busy period")

	gw.reply(1, domain.CatalogResult{Items: products("b"), Total: 1}, nil)
	<-done
	assert.False(t, c.State().Busy)
}

func TestResetDropsQueryAndInFlightResult(t *testing.T) {
	gw := &scriptedGateway{}
	c := NewCatalogController(gw, 5, nil)
	ctx := context.Background()

	c.SetSearch("previous user")
	c.SetPage(3)
	done := make(chan error, 1)
	go func() { done <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return gw.pending() == 1 }, time.Second, time.Millisecond)

	c.Reset()
	gw.reply(0, domain.CatalogResult{Items: products("stale"), Total: 1}, nil)
	require.NoError(t, <-done)

	st := c.State()
	assert.Equal(t, domain.NewCatalogQuery(5), st.Query)
	assert.Empty(t, st.Items)
	assert.Zero(t, st.Total)
	assert.False(t, st.Loaded)
	assert.False(t, st.Busy)
}
