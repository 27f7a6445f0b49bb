package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/ports"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/cache"
)

// StatusService handles administrative lifecycle transitions and deletion.
type StatusService struct {
	store ports.OrderStore
	cache cache.Cache // nil disables invalidation
}

func NewStatusService(store ports.OrderStore, c cache.Cache) *StatusService {
	return &StatusService{store: store, cache: c}
}

// UpdateStatus sets the order's status and returns the updated order. The
// status set is open: any non-empty string is accepted, transitions are not
// validated against the current state.
func (s *StatusService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	if strings.TrimSpace(string(status)) == "" {
		return nil, &entity.ValidationError{Reason: "status is required"}
	}

	order, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", string(status))
	return order, nil
}

// DeleteOrder removes the order and all its dependent rows, returning the
// deleted snapshot.
func (s *StatusService) DeleteOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	slog.InfoContext(ctx, "order deleted", "order_id", id)
	return order, nil
}

func (s *StatusService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.GenerateKey("order", id)); err != nil {
		slog.WarnContext(ctx, "order cache invalidation failed", "order_id", id, "error", err)
	}
}
