package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

// Placement bundles every row a successful order placement writes. The store
// persists all of it, plus the matching stock decrements, as one unit of
// work: either everything commits or nothing does.
type Placement struct {
	Order    entity.Order
	Items    []entity.OrderItem
	Shipping entity.ShippingInfo
	Payment  entity.Payment
}

// OrderStore is the persistence port for the checkout workflow. The
// implementation owns transaction boundaries; callers see only whole
// operations.
type OrderStore interface {
	// CreateOrder commits a placement atomically, decrementing stock for
	// every item. It fails with *entity.StockError when a concurrent
	// placement took the units first, with *entity.NotFoundError when an
	// item references a product that no longer exists, and with
	// *entity.TransientError on retry-exhausted store contention. On any
	// failure no row is written and no stock is decremented.
	CreateOrder(ctx context.Context, p *Placement) error

	// GetOrder returns the order joined with its items and shipping info.
	GetOrder(ctx context.Context, id string) (*entity.Order, error)

	// ListOrdersByBuyer returns the buyer's paid orders (non-nil PaidAt),
	// joined, in stable creation order.
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]entity.Order, error)

	// ListOrders returns every paid order, joined. Administrative use.
	ListOrders(ctx context.Context) ([]entity.Order, error)

	// UpdateOrderStatus sets the order's status and returns the updated,
	// joined order.
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error)

	// DeleteOrder removes the order and, through cascade, its items,
	// shipping info and payment. Returns the pre-delete snapshot.
	DeleteOrder(ctx context.Context, id string) (*entity.Order, error)
}
