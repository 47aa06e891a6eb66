// Package shipping prices delivery by total parcel weight.
//
// UK parcels are charged per kilogram at the standard or next-day rate,
// everything else at the international rate. When the goods subtotal reaches
// the free-shipping threshold the cost is waived. Results are rounded half-up
// to two decimal places.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-order-service/internal/config"
	"storefront-order-service/internal/model"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// ProductLookup resolves product ids. Implementations return a nil product
// (and nil error) when the id is unknown.
type ProductLookup interface {
	Lookup(ctx context.Context, productIDs []string) (map[string]*model.Product, error)
}

type Item struct {
	ProductID string
	Quantity  int
}

type Rates struct {
	UKStandardPerKg    decimal.Decimal
	UKNextDayPerKg     decimal.Decimal
	InternationalPerKg decimal.Decimal
	// FreeThreshold of zero disables free shipping.
	FreeThreshold    decimal.Decimal
	FallbackWeightKg decimal.Decimal
}

func RatesFromConfig(cfg config.Shipping) Rates {
	return Rates{
		UKStandardPerKg:    decimal.NewFromFloat(cfg.UKStandardRatePerKg),
		UKNextDayPerKg:     decimal.NewFromFloat(cfg.UKNextDayRatePerKg),
		InternationalPerKg: decimal.NewFromFloat(cfg.InternationalRatePerKg),
		FreeThreshold:      decimal.NewFromFloat(cfg.FreeShippingThreshold),
		FallbackWeightKg:   decimal.NewFromFloat(cfg.FallbackWeightKg),
	}
}

type Calculator struct {
	rates    Rates
	products ProductLookup
}

func NewCalculator(rates Rates, products ProductLookup) *Calculator {
	return &Calculator{
		rates:    rates,
		products: products,
	}
}

// Compute resolves every item's product and prices the parcel.
func (c *Calculator) Compute(ctx context.Context, items []Item, country string, method model.ShippingMethod) (decimal.Decimal, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := c.products.Lookup(ctx, ids)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lookup products: %w", err)
	}

	return c.Price(items, products, country, method)
}

// Price is Compute over products that are already resolved.
func (c *Calculator) Price(items []Item, products map[string]*model.Product, country string, method model.ShippingMethod) (decimal.Decimal, error) {
	weight := decimal.Zero
	subtotal := decimal.Zero

	for _, item := range items {
		product := products[item.ProductID]
		if product == nil {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}

		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		q := decimal.NewFromInt(int64(qty))

		itemWeight := product.WeightKg
		if !itemWeight.IsPositive() {
			itemWeight = c.rates.FallbackWeightKg
		}

		weight = weight.Add(itemWeight.Mul(q))
		subtotal = subtotal.Add(product.Price.Mul(q))
	}

	if c.rates.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(c.rates.FreeThreshold) {
		return decimal.Zero, nil
	}

	return weight.Mul(c.rateFor(country, method)).Round(2), nil
}

func (c *Calculator) rateFor(country string, method model.ShippingMethod) decimal.Decimal {
	if !strings.EqualFold(strings.TrimSpace(country), "uk") {
		return c.rates.InternationalPerKg
	}
	if method == model.ShippingNextDay {
		return c.rates.UKNextDayPerKg
	}
	return c.rates.UKStandardPerKg
}
