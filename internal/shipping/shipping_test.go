package shipping

import (
	"context"
	"errors"
	"testing"

	"storefront-order-service/internal/config"
	"storefront-order-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]*model.Product

func (m mapLookup) Lookup(_ context.Context, ids []string) (map[string]*model.Product, error) {
	out := make(map[string]*model.Product, len(ids))
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type failingLookup struct{ err error }

func (f failingLookup) Lookup(context.Context, []string) (map[string]*model.Product, error) {
	return nil, f.err
}

func product(id, price, weight string) *model.Product {
	return &model.Product{
		ID:       id,
		Price:    decimal.RequireFromString(price),
		WeightKg: decimal.RequireFromString(weight),
	}
}

func defaultRates() Rates {
	return RatesFromConfig(config.Shipping{
		UKStandardRatePerKg:    4.99,
		UKNextDayRatePerKg:     8.99,
		InternationalRatePerKg: 9.99,
		FreeShippingThreshold:  100,
		FallbackWeightKg:       0.5,
	})
}

func TestCompute(t *testing.T) {
	products := mapLookup{
		"bag":   product("bag", "20.00", "2"),
		"light": product("light", "5.00", "0.333"),
		"bare":  product("bare", "10.00", "0"),
		"pricy": product("pricy", "60.00", "1"),
	}
	calc := NewCalculator(defaultRates(), products)

	tests := []struct {
		name    string
		items   []Item
		country string
		method  model.ShippingMethod
		want    string
	}{
		{"uk standard", []Item{{"bag", 1}}, "UK", model.ShippingStandard, "9.98"},
		{"uk next day", []Item{{"bag", 1}}, "UK", model.ShippingNextDay, "17.98"},
		{"uk lowercase", []Item{{"bag", 1}}, "uk", model.ShippingStandard, "9.98"},
		{"international ignores method", []Item{{"bag", 1}}, "France", model.ShippingNextDay, "19.98"},
		{"international standard", []Item{{"bag", 1}}, "France", model.ShippingStandard, "19.98"},
		{"quantity multiplies weight", []Item{{"bag", 2}}, "UK", model.ShippingStandard, "19.96"},
		{"missing quantity counts as one", []Item{{"bag", 0}}, "UK", model.ShippingStandard, "9.98"},
		{"fallback weight rounds half up", []Item{{"bare", 1}}, "UK", model.ShippingStandard, "2.50"},
		{"rounds to cents", []Item{{"light", 1}}, "UK", model.ShippingStandard, "1.66"},
		{"free at threshold", []Item{{"pricy", 1}, {"bag", 2}}, "UK", model.ShippingNextDay, "0"},
		{"free above threshold", []Item{{"pricy", 2}}, "France", model.ShippingStandard, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Compute(context.Background(), tt.items, tt.country, tt.method)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	calc := NewCalculator(defaultRates(), mapLookup{"bag": product("bag", "20.00", "2")})
	items := []Item{{"bag", 3}}

	first, err := calc.Compute(context.Background(), items, "UK", model.ShippingStandard)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := calc.Compute(context.Background(), items, "UK", model.ShippingStandard)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestCompute_ProductNotFound(t *testing.T) {
	calc := NewCalculator(defaultRates(), mapLookup{"bag": product("bag", "20.00", "2")})

	_, err := calc.Compute(context.Background(), []Item{{"bag", 1}, {"ghost", 1}}, "UK", model.ShippingStandard)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCompute_LookupError(t *testing.T) {
	boom := errors.New("db down")
	calc := NewCalculator(defaultRates(), failingLookup{err: boom})

	_, err := calc.Compute(context.Background(), []Item{{"bag", 1}}, "UK", model.ShippingStandard)
	assert.ErrorIs(t, err, boom)
}

func TestPrice_ThresholdDisabled(t *testing.T) {
	rates := defaultRates()
	rates.FreeThreshold = decimal.Zero
	calc := NewCalculator(rates, nil)

	got, err := calc.Price([]Item{{"pricy", 5}}, map[string]*model.Product{
		"pricy": product("pricy", "60.00", "1"),
	}, "UK", model.ShippingStandard)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("24.95")))
}
