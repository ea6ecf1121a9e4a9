package service

import (
	"log/slog"
	"math/rand/v2"

	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/ids"
)

const (
	msgProductAdded   = "product added"
	msgProductUpdated = "product updated"
)

// EditorOption configures a ProductEditor
type EditorOption func(*ProductEditor)

// WithRating overrides how new products get their rating
func WithRating(fn func() float64) EditorOption {
	return func(e *ProductEditor) { e.rating = fn }
}

// WithIDs overrides product id generation
func WithIDs(fn func() string) EditorOption {
	return func(e *ProductEditor) { e.newID = fn }
}

// ProductEditor turns form input into local catalog mutations
type ProductEditor struct {
	catalog *CatalogController
	notes   Notifications
	rating  func() float64
	newID   func() string
	logger  *slog.Logger
}

// NewProductEditor creates an editor over catalog. notes may be nil.
func NewProductEditor(catalog *CatalogController, notes Notifications, logger *slog.Logger, opts ...EditorOption) *ProductEditor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &ProductEditor{
		catalog: catalog,
		notes:   notes,
		rating:  func() float64 { return float64(rand.IntN(5) + 1) },
		newID:   ids.NewProductID,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create validates form and inserts a new product at the top of the page
func (e *ProductEditor) Create(form domain.ProductForm) (domain.Product, error) {
	form, price, err := ParseProductForm(form)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:     e.newID(),
		Name:   form.Name,
		Price:  price,
		Vendor: form.Vendor,
		SKU:    form.SKU,
		Rating: clampRating(e.rating()),
	}
	e.catalog.CreateLocal(p)

	e.logger.Info("product created locally", "id", p.ID, "sku", p.SKU)
	e.notify(msgProductAdded, domain.NotifySuccess)
	return p, nil
}

// Update applies form to the product with id, keeping its id and the
// fields the form does not cover
func (e *ProductEditor) Update(id string, form domain.ProductForm) (domain.Product, error) {
	form, price, err := ParseProductForm(form)
	if err != nil {
		return domain.Product{}, err
	}

	p, ok := e.catalog.Find(id)
	if !ok {
		e.notify(domain.UserMessage(domain.ErrProductNotFound), domain.NotifyError)
		return domain.Product{}, domain.ErrProductNotFound
	}

	p.Name = form.Name
	p.Price = price
	p.Vendor = form.Vendor
	p.SKU = form.SKU

	if !e.catalog.UpdateLocal(p) {
		e.notify(domain.UserMessage(domain.ErrProductNotFound), domain.NotifyError)
		return domain.Product{}, domain.ErrProductNotFound
	}

	e.logger.Info("product updated locally", "id", p.ID)
	e.notify(msgProductUpdated, domain.NotifySuccess)
	return p, nil
}

func (e *ProductEditor) notify(text string, kind domain.NotificationKind) {
	if e.notes != nil {
		e.notes.Show(text, kind)
	}
}

func clampRating(r float64) float64 {
	return min(max(r, 1), 5)
}
