package offline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kiosk/internal/domain"
)

func TestSeedProductsDeterministic(t *testing.T) {
	a := SeedProducts(10)
	b := SeedProducts(10)
	assert.Equal(t, a, b)

	for _, p := range a {
		assert.Greater(t, p.Price, 0.0)
		assert.GreaterOrEqual(t, p.Rating, 1.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
	}
	assert.Equal(t, "SKU-0001", a[0].SKU)
}

func TestOfflineFetchPaging(t *testing.T) {
	gw := NewProductGateway(SeedProducts(25), nil)

	res, err := gw.Fetch(context.Background(), domain.NewCatalogQuery(10).WithPage(2))
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, "11", res.Items[0].ID)

	res, err = gw.Fetch(context.Background(), domain.NewCatalogQuery(10).WithPage(3))
	require.NoError(t, err)
	assert.Len(t, res.Items, 5)

	res, err = gw.Fetch(context.Background(), domain.NewCatalogQuery(10).WithPage(9))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, gw.Calls())
}

func TestOfflineFetchSearch(t *testing.T) {
	gw := NewProductGateway(nil, nil)

	res, err := gw.Fetch(context.Background(), domain.NewCatalogQuery(10).WithSearch("sku-0042"))
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "42", res.Items[0].ID)

	res, err = gw.Fetch(context.Background(), domain.NewCatalogQuery(50).WithSearch("vendor 3"))
	require.NoError(t, err)
	assert.Equal(t, 20, res.Total)
	for _, p := range res.Items {
		assert.Equal(t, "Vendor 3", p.Vendor)
	}
}

func TestOfflineFetchSort(t *testing.T) {
	gw := NewProductGateway(SeedProducts(30), nil)

	res, err := gw.Fetch(context.Background(), domain.NewCatalogQuery(30).WithSort(domain.SortByPrice, domain.SortDesc))
	require.NoError(t, err)
	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].Price, res.Items[i].Price)
	}

	res, err = gw.Fetch(context.Background(), domain.NewCatalogQuery(30).WithSort(domain.SortBySKU, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, "SKU-0001", res.Items[0].SKU)
}

func TestOfflineFetchDoesNotMutateCatalog(t *testing.T) {
	seed := SeedProducts(5)
	gw := NewProductGateway(seed, nil)

	_, err := gw.Fetch(context.Background(), domain.NewCatalogQuery(5).WithSort(domain.SortByName, domain.SortDesc))
	require.NoError(t, err)
	assert.Equal(t, "1", seed[0].ID)
}

func TestOfflineFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProductGateway(nil, nil).Fetch(ctx, domain.NewCatalogQuery(10))
	assert.ErrorIs(t, err, context.Canceled)
}
