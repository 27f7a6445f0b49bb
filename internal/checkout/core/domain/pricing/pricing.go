// Package pricing computes order totals from validated cart lines and the
// catalog products they reference. It is a pure function of its inputs: no
// I/O, no clock, no side effects.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

const (
	// TaxRate is the flat tax applied to every order's subtotal.
	TaxRate = 0.18

	// FreeShippingThreshold is the subtotal at or above which shipping is
	// free; below it FlatShippingFee applies.
	FreeShippingThreshold = 50
	FlatShippingFee       = 2
)

// PricedLine is one cart line with its unit price snapshotted from the
// catalog at pricing time. The snapshot, not the live catalog price, is what
// gets persisted on the order item.
type PricedLine struct {
	Line      entity.CartLine
	Product   entity.Product
	UnitPrice float64
	LineTotal float64
}

// Quote is the full pricing result for a cart.
type Quote struct {
	Lines         []PricedLine
	Subtotal      float64
	TaxRate       float64
	ShippingPrice float64
	TotalPrice    float64
}

// Price validates each line against the looked-up products and computes the
// quote. It fails with *entity.NotFoundError when a line references a product
// absent from the lookup, and with *entity.StockError when a requested
// quantity exceeds the available stock.
//
// All arithmetic runs on decimals so the final rounding is exact. The grand
// total rounds half-up to the whole currency unit; financial reconciliation
// downstream depends on this exact rule.
func Price(lines []entity.CartLine, products map[string]entity.Product) (*Quote, error) {
	priced := make([]PricedLine, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, &entity.NotFoundError{Kind: "product", ID: line.ProductID}
		}
		if line.Quantity > product.Stock {
			return nil, &entity.StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}

		unit := decimal.NewFromFloat(product.Price)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		priced = append(priced, PricedLine{
			Line:      line,
			Product:   product,
			UnitPrice: unit.InexactFloat64(),
			LineTotal: lineTotal.InexactFloat64(),
		})
	}

	shipping := decimal.NewFromInt(FlatShippingFee)
	if subtotal.GreaterThanOrEqual(decimal.NewFromInt(FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(decimal.NewFromFloat(TaxRate))

	// decimal.Round is half away from zero, which for non-negative money is
	// exactly round-half-up.
	total := subtotal.Add(tax).Add(shipping).Round(0)

	return &Quote{
		Lines:         priced,
		Subtotal:      subtotal.InexactFloat64(),
		TaxRate:       TaxRate,
		ShippingPrice: shipping.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}, nil
}
