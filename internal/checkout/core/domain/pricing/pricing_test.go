package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

func products(ps ...entity.Product) map[string]entity.Product {
	m := make(map[string]entity.Product, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return m
}

func TestPriceFreeShippingAboveThreshold(t *testing.T) {
	// subtotal 60, tax 10.8, shipping 0, total round(70.8) = 71
	quote, err := Price(
		[]entity.CartLine{{ProductID: "p1", Quantity: 2}},
		products(entity.Product{ID: "p1", Name: "Widget", Price: 30, Stock: 5}),
	)
	require.NoError(t, err)

	assert.Equal(t, 60.0, quote.Subtotal)
	assert.Equal(t, 0.18, quote.TaxRate)
	assert.Equal(t, 0.0, quote.ShippingPrice)
	assert.Equal(t, 71.0, quote.TotalPrice)
}

func TestPriceFlatShippingBelowThreshold(t *testing.T) {
	// subtotal 10, tax 1.8, shipping 2, total round(13.8) = 14
	quote, err := Price(
		[]entity.CartLine{{ProductID: "p1", Quantity: 1}},
		products(entity.Product{ID: "p1", Price: 10, Stock: 1}),
	)
	require.NoError(t, err)

	assert.Equal(t, 2.0, quote.ShippingPrice)
	assert.Equal(t, 14.0, quote.TotalPrice)
}

func TestPriceShippingFreeAtExactThreshold(t *testing.T) {
	// subtotal exactly 50: shipping is free, total 50*1.18 = 59
	quote, err := Price(
		[]entity.CartLine{{ProductID: "p1", Quantity: 2}},
		products(entity.Product{ID: "p1", Price: 25, Stock: 4}),
	)
	require.NoError(t, err)

	assert.Equal(t, 0.0, quote.ShippingPrice)
	assert.Equal(t, 59.0, quote.TotalPrice)
}

func TestPriceRoundsHalfUp(t *testing.T) {
	// subtotal 25, tax 4.5, shipping 2: 31.5 rounds up to 32
	quote, err := Price(
		[]entity.CartLine{{ProductID: "p1", Quantity: 2}},
		products(entity.Product{ID: "p1", Price: 12.5, Stock: 10}),
	)
	require.NoError(t, err)
	assert.Equal(t, 32.0, quote.TotalPrice)

	// subtotal 37.5, tax 6.75, shipping 2: 46.25 rounds down to 46
	quote, err = Price(
		[]entity.CartLine{{ProductID: "p1", Quantity: 3}},
		products(entity.Product{ID: "p1", Price: 12.5, Stock: 10}),
	)
	require.NoError(t, err)
	assert.Equal(t, 46.0, quote.TotalPrice)
}

func TestPriceAccumulatesMultipleLines(t *testing.T) {
	quote, err := Price(
		[]entity.CartLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		products(
			entity.Product{ID: "p1", Price: 19.99, Stock: 5},
			entity.Product{ID: "p2", Price: 5.5, Stock: 5},
		),
	)
	require.NoError(t, err)

	// 39.98 + 5.5 = 45.48; below threshold so shipping 2
	assert.InDelta(t, 45.48, quote.Subtotal, 1e-9)
	assert.Equal(t, 2.0, quote.ShippingPrice)
	// 45.48 * 1.18 = 53.6664; + 2 = 55.6664 -> 56
	assert.Equal(t, 56.0, quote.TotalPrice)

	require.Len(t, quote.Lines, 2)
	assert.Equal(t, 19.99, quote.Lines[0].UnitPrice)
	assert.InDelta(t, 39.98, quote.Lines[0].LineTotal, 1e-9)
}

func TestPriceStockExceeded(t *testing.T) {
	_, err := Price(
		[]entity.CartLine{{ProductID: "p2", Quantity: 4}},
		products(entity.Product{ID: "p2", Name: "Gadget", Price: 10, Stock: 3}),
	)
	require.Error(t, err)

	var stockErr *entity.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Available)
	assert.Contains(t, err.Error(), "Gadget")
	assert.Contains(t, err.Error(), "3 units available")
}

func TestPriceUnknownProduct(t *testing.T) {
	_, err := Price(
		[]entity.CartLine{{ProductID: "ghost", Quantity: 1}},
		products(),
	)
	require.Error(t, err)

	var notFoundErr *entity.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "ghost", notFoundErr.ID)
}

func TestPriceSnapshotMatchesSubtotal(t *testing.T) {
	quote, err := Price(
		[]entity.CartLine{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		},
		products(
			entity.Product{ID: "p1", Price: 7.25, Stock: 10},
			entity.Product{ID: "p2", Price: 3.1, Stock: 10},
		),
	)
	require.NoError(t, err)

	var sum float64
	for _, line := range quote.Lines {
		sum += line.UnitPrice * float64(line.Line.Quantity)
	}
	assert.InDelta(t, quote.Subtotal, sum, 1e-9)
}
