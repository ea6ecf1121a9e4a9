package remote

import "github.com/mmcdole/kiosk/internal/domain"

const unknownProductName = "Unknown Product"

func mapProduct(p productDTO) domain.Product {
	name := p.Title
	if name == "" {
		name = p.Name
	}
	if name == "" {
		name = unknownProductName
	}

	vendor := p.Brand
	if vendor == "" {
		vendor = "-"
	}

	sku := p.SKU
	if sku == "" {
		sku = "SKU-" + string(p.ID)
	}

	image := p.Thumbnail
	if image == "" && len(p.Images) > 0 {
		image = p.Images[0]
	}

	return domain.Product{
		ID:          string(p.ID),
		Name:        name,
		Price:       p.Price,
		Vendor:      vendor,
		SKU:         sku,
		Rating:      p.Rating,
		Description: p.Description,
		Image:       image,
		Category:    p.Category,
	}
}

func mapCatalog(resp productsResponse) domain.CatalogResult {
	items := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		items = append(items, mapProduct(p))
	}

	total := resp.Total
	if total == 0 {
		total = len(items)
	}
	return domain.CatalogResult{Items: items, Total: total}
}
