package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

const orderColumns = `id, buyer_id, total_price, tax_rate, shipping_price, order_status, paid_at, created_at`

// GetOrder returns the order joined with its items and shipping info, or
// *entity.NotFoundError.
func (r *Repository) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Kind: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}

	if err := r.attachAggregates(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrdersByBuyer returns the buyer's paid orders in creation order, each
// joined with items and shipping info.
func (r *Repository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]entity.Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM   orders
		WHERE  buyer_id = ? AND paid_at IS NOT NULL
		ORDER  BY created_at, id`

	return r.listOrders(ctx, q, buyerID)
}

// ListOrders returns every paid order, joined. Administrative use.
func (r *Repository) ListOrders(ctx context.Context) ([]entity.Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM   orders
		WHERE  paid_at IS NOT NULL
		ORDER  BY created_at, id`

	return r.listOrders(ctx, q)
}

func (r *Repository) listOrders(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entity.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}

	for i := range orders {
		if err := r.attachAggregates(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus sets the status and returns the updated, joined order.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET order_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status of %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status of %q: %w", id, err)
	}
	if n == 0 {
		return nil, &entity.NotFoundError{Kind: "order", ID: id}
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrder removes the order row; the schema's ON DELETE CASCADE clauses
// take its items, shipping info and payment with it. Returns the pre-delete
// snapshot.
func (r *Repository) DeleteOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: delete order %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: delete order %q: %w", id, err)
	}
	if n == 0 {
		return nil, &entity.NotFoundError{Kind: "order", ID: id}
	}
	return order, nil
}

// attachAggregates loads the order's items and shipping info. Items is always
// non-nil; a missing shipping row leaves Shipping nil for the caller to flag.
func (r *Repository) attachAggregates(ctx context.Context, order *entity.Order) error {
	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Items = items

	shipping, err := r.loadShipping(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Shipping = shipping
	return nil
}

func (r *Repository) loadItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	const q = `
		SELECT id, order_id, product_id, quantity, price, image, title
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load items for %q: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]entity.OrderItem, 0)
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.Price, &it.Image, &it.Title); err != nil {
			return nil, fmt.Errorf("sqlite: scan item for %q: %w", orderID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load items for %q: %w", orderID, err)
	}
	return items, nil
}

func (r *Repository) loadShipping(ctx context.Context, orderID string) (*entity.ShippingInfo, error) {
	const q = `
		SELECT order_id, full_name, state, city, country, address, pincode, phone
		FROM   shipping_info
		WHERE  order_id = ?`

	var s entity.ShippingInfo
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&s.OrderID, &s.FullName, &s.State, &s.City, &s.Country,
		&s.Address, &s.Pincode, &s.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		// Should not occur for a committed order; the query service logs
		// the invariant violation.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load shipping for %q: %w", orderID, err)
	}
	return &s, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var status string
	var paidAt sql.NullString
	var createdAt string

	err := row.Scan(&o.ID, &o.BuyerID, &o.TotalPrice, &o.TaxRate,
		&o.ShippingPrice, &status, &paidAt, &createdAt)
	if err != nil {
		return nil, err
	}

	o.Status = entity.OrderStatus(status)
	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, err
		}
		o.PaidAt = &t
	}
	return &o, nil
}
