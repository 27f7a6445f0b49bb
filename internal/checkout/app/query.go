package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/ports"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/cache"
)

const orderCacheTTL = 5 * time.Minute

// QueryService is the read side: orders joined with their items and shipping
// info. All operations are side-effect-free.
type QueryService struct {
	store ports.OrderStore
	cache cache.Cache // nil disables caching
}

func NewQueryService(store ports.OrderStore, c cache.Cache) *QueryService {
	return &QueryService{store: store, cache: c}
}

// GetOrder returns one joined order, read-through cached.
func (s *QueryService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.GenerateKey("order", id)); err == nil && cached != "" {
			var order entity.Order
			if err := json.Unmarshal([]byte(cached), &order); err == nil {
				return &order, nil
			}
			// Undecodable entries are treated as misses.
		}
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.checkAggregate(ctx, order)

	if s.cache != nil {
		if raw, err := json.Marshal(order); err == nil {
			if err := s.cache.Set(ctx, s.cache.GenerateKey("order", id), raw, orderCacheTTL); err != nil {
				slog.WarnContext(ctx, "order cache set failed", "order_id", id, "error", err)
			}
		}
	}
	return order, nil
}

// ListBuyerOrders returns the buyer's paid orders, joined.
func (s *QueryService) ListBuyerOrders(ctx context.Context, buyerID string) ([]entity.Order, error) {
	orders, err := s.store.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.checkAggregate(ctx, &orders[i])
	}
	return orders, nil
}

// ListAllOrders returns every paid order, joined. Administrative use.
func (s *QueryService) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.checkAggregate(ctx, &orders[i])
	}
	return orders, nil
}

// checkAggregate flags a committed order missing its shipping row. The order
// is still returned (with Shipping nil); the condition indicates a bug, not
// bad input.
func (s *QueryService) checkAggregate(ctx context.Context, order *entity.Order) {
	if order.Shipping == nil {
		err := &entity.InvariantError{Reason: "order " + order.ID + " has no shipping info"}
		slog.ErrorContext(ctx, "persistence invariant violated", "order_id", order.ID, "error", err)
	}
}
