// Package app wires the checkout domain logic to its ports: placement
// (order writing), queries, and status administration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/pricing"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/ports"
)

// PlacementService runs the order placement workflow: validation, product
// lookup, pricing, then an atomic commit of order/items/shipping/payment plus
// the stock reservation.
type PlacementService struct {
	catalog  ports.ProductCatalog
	store    ports.OrderStore
	notifier ports.Notifier // nil disables notifications
}

func NewPlacementService(catalog ports.ProductCatalog, store ports.OrderStore, notifier ports.Notifier) *PlacementService {
	return &PlacementService{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
	}
}

// PlaceOrderInput is a fully parsed placement request. Lines come from
// cart.Normalize; BuyerID from the upstream-authenticated identity.
type PlaceOrderInput struct {
	BuyerID  string
	Lines    []entity.CartLine
	Shipping entity.ShippingInfo

	// Email, when set, receives the order confirmation. Sending is
	// fire-and-forget and never affects the placement result.
	Email string
}

// PlaceOrder executes the placement workflow and returns the created order
// with its items and shipping info attached.
func (s *PlacementService) PlaceOrder(ctx context.Context, in *PlaceOrderInput) (*entity.Order, error) {
	if strings.TrimSpace(in.BuyerID) == "" {
		return nil, &entity.ValidationError{Reason: "buyer id is required"}
	}
	if err := validateShipping(&in.Shipping); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, &entity.ValidationError{Reason: "cart is empty"}
	}

	products, err := s.catalog.Lookup(ctx, productIDs(in.Lines))
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}

	// Optimistic check and quote. The authoritative stock check happens
	// again inside the placement transaction.
	quote, err := pricing.Price(in.Lines, products)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := entity.Order{
		ID:            uuid.NewString(),
		BuyerID:       in.BuyerID,
		TotalPrice:    quote.TotalPrice,
		TaxRate:       quote.TaxRate,
		ShippingPrice: quote.ShippingPrice,
		Status:        entity.StatusProcessing,
		PaidAt:        &now,
		CreatedAt:     now,
	}

	items := make([]entity.OrderItem, 0, len(quote.Lines))
	for _, pl := range quote.Lines {
		image := pl.Line.Image
		if image == "" {
			image = pl.Product.Image
		}
		items = append(items, entity.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: pl.Product.ID,
			Quantity:  pl.Line.Quantity,
			Price:     pl.UnitPrice,
			Image:     image,
			Title:     pl.Product.Name,
		})
	}

	shipping := in.Shipping
	shipping.OrderID = order.ID

	placement := ports.Placement{
		Order:    order,
		Items:    items,
		Shipping: shipping,
		Payment: entity.Payment{
			OrderID: order.ID,
			Type:    entity.PaymentTypeOnline,
			Status:  entity.PaymentPaid,
		},
	}

	if err := s.store.CreateOrder(ctx, &placement); err != nil {
		return nil, err
	}

	order.Items = items
	order.Shipping = &shipping

	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"buyer_id", order.BuyerID,
		"total_price", order.TotalPrice,
		"items", len(items),
	)

	// Detach from the request context so the notification survives the HTTP
	// response, while keeping tracing metadata.
	go s.notifyPlaced(context.WithoutCancel(ctx), &order, in.Email)

	return &order, nil
}

func (s *PlacementService) notifyPlaced(ctx context.Context, order *entity.Order, email string) {
	if s.notifier == nil || email == "" {
		return
	}
	subject := fmt.Sprintf("Order confirmation %s", order.ID)
	body := fmt.Sprintf("<p>Your order <b>%s</b> for a total of %.2f has been placed.</p>",
		order.ID, order.TotalPrice)
	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		slog.ErrorContext(ctx, "order confirmation failed", "order_id", order.ID, "error", err)
	}
}

func validateShipping(s *entity.ShippingInfo) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"full_name", &s.FullName},
		{"state", &s.State},
		{"city", &s.City},
		{"country", &s.Country},
		{"address", &s.Address},
		{"pincode", &s.Pincode},
		{"phone", &s.Phone},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return entity.NewValidationError("shipping field %s is required", f.name)
		}
	}
	return nil
}

func productIDs(lines []entity.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
