package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/mmcdole/kiosk/internal/domain"
)

// Field names used in ValidationError
const (
	FieldLogin    = "login"
	FieldPassword = "password"
	FieldName     = "name"
	FieldPrice    = "price"
	FieldVendor   = "vendor"
	FieldSKU      = "sku"
)

const (
	msgRequired      = "is required"
	msgPricePositive = "must be a positive number"
)

// ValidateLogin checks that both credentials were entered
func ValidateLogin(login, password string) error {
	fields := map[string]string{}
	if strings.TrimSpace(login) == "" {
		fields[FieldLogin] = "login " + msgRequired
	}
	if password == "" {
		fields[FieldPassword] = "password " + msgRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ParseProductForm validates form input and returns the trimmed values with
// the parsed price
func ParseProductForm(form domain.ProductForm) (domain.ProductForm, float64, error) {
	form = domain.ProductForm{
		Name:   strings.TrimSpace(form.Name),
		Price:  strings.TrimSpace(form.Price),
		Vendor: strings.TrimSpace(form.Vendor),
		SKU:    strings.TrimSpace(form.SKU),
	}

	fields := map[string]string{}
	if form.Name == "" {
		fields[FieldName] = "name " + msgRequired
	}

	var price float64
	if form.Price == "" {
		fields[FieldPrice] = "price " + msgRequired
	} else {
		p, err := strconv.ParseFloat(form.Price, 64)
		if err != nil || p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			fields[FieldPrice] = "price " + msgPricePositive
		}
		price = p
	}

	if form.Vendor == "" {
		fields[FieldVendor] = "vendor " + msgRequired
	}
	if form.SKU == "" {
		fields[FieldSKU] = "sku " + msgRequired
	}

	if len(fields) > 0 {
		return form, 0, &domain.ValidationError{Fields: fields}
	}
	return form, price, nil
}
