// Package sqlite provides the SQLite-backed implementation of the checkout
// persistence ports (ports.OrderStore and ports.ProductCatalog).
//
// WAL mode is enabled on Open so reads (order queries) never block the writer
// handling a placement. All placement writes — order, items, shipping,
// payment, stock decrements — run inside a single transaction; the stock
// decrement is a conditional UPDATE whose zero-rows result is how a lost race
// for the last units is detected.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/ports"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps the Docker (Alpine) build simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Dependent tables reference
// orders with ON DELETE CASCADE so deleting an order can never strand items,
// shipping info or payment rows.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id         TEXT PRIMARY KEY,
    name       TEXT    NOT NULL,
    price      REAL    NOT NULL CHECK (price >= 0),

    -- Available units. The CHECK is a backstop; the conditional decrement in
    -- reserveStock is what actually prevents negative stock.
    stock      INTEGER NOT NULL CHECK (stock >= 0),

    image      TEXT    NOT NULL DEFAULT '',
    created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id             TEXT PRIMARY KEY,
    buyer_id       TEXT NOT NULL,
    total_price    REAL NOT NULL,
    tax_rate       REAL NOT NULL,
    shipping_price REAL NOT NULL,
    order_status   TEXT NOT NULL,

    -- NULL means unpaid/draft; list endpoints only surface paid orders.
    paid_at        TEXT,

    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id         TEXT PRIMARY KEY,
    order_id   TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,

    -- Weak reference: the product may later disappear from the catalog
    -- without invalidating this historical line.
    product_id TEXT    NOT NULL,

    quantity   INTEGER NOT NULL CHECK (quantity > 0),

    -- Unit price at purchase time. Never updated to track the live price.
    price      REAL    NOT NULL,

    image      TEXT    NOT NULL DEFAULT '',
    title      TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS shipping_info (
    order_id  TEXT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
    full_name TEXT NOT NULL,
    state     TEXT NOT NULL,
    city      TEXT NOT NULL,
    country   TEXT NOT NULL,
    address   TEXT NOT NULL,
    pincode   TEXT NOT NULL,
    phone     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    order_id          TEXT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
    payment_type      TEXT NOT NULL,
    payment_status    TEXT NOT NULL,
    payment_intent_id TEXT
);
`

const (
	// maxRetries bounds transparent retries of transactions that hit
	// transient lock contention.
	maxRetries = 3

	retryBackoff = 50 * time.Millisecond
)

// Ensure Repository satisfies both persistence ports at compile time.
var (
	_ ports.OrderStore     = (*Repository)(nil)
	_ ports.ProductCatalog = (*Repository)(nil)
)

// Repository is the SQLite implementation of the checkout persistence ports.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes pragmas as query parameters. WAL enables
	// concurrent readers; foreign_keys(on) makes the ON DELETE CASCADE
	// clauses effective; busy_timeout waits for locks instead of failing
	// immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection; this also
	// serializes placement transactions so concurrent stock checks cannot
	// interleave.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreateOrder commits the whole placement as one transaction: the order row,
// its items, shipping info, payment, and a conditional stock decrement per
// item. Any failure rolls back everything.
func (r *Repository) CreateOrder(ctx context.Context, p *ports.Placement) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("sqlite: begin placement tx: %w", err)
		}
		// Rollback is a no-op after a successful Commit.
		defer func() { _ = tx.Rollback() }()

		if err := insertOrder(ctx, tx, &p.Order); err != nil {
			return err
		}
		for i := range p.Items {
			if err := insertItem(ctx, tx, &p.Items[i]); err != nil {
				return err
			}
		}
		if err := insertShipping(ctx, tx, &p.Shipping); err != nil {
			return err
		}
		if err := insertPayment(ctx, tx, &p.Payment); err != nil {
			return err
		}
		for i := range p.Items {
			if err := reserveStock(ctx, tx, p.Items[i].ProductID, p.Items[i].Quantity); err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("sqlite: commit placement for order %q: %w", p.Order.ID, err)
		}
		return nil
	})
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *entity.Order) error {
	const q = `
		INSERT INTO orders
			(id, buyer_id, total_price, tax_rate, shipping_price, order_status, paid_at, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, q,
		o.ID,
		o.BuyerID,
		o.TotalPrice,
		o.TaxRate,
		o.ShippingPrice,
		string(o.Status),
		nullableTime(o.PaidAt),
		formatTime(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
	}
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, it *entity.OrderItem) error {
	const q = `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, image, title)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, q,
		it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price, it.Image, it.Title)
	if err != nil {
		return fmt.Errorf("sqlite: insert order item for %q: %w", it.OrderID, err)
	}
	return nil
}

func insertShipping(ctx context.Context, tx *sql.Tx, s *entity.ShippingInfo) error {
	const q = `
		INSERT INTO shipping_info (order_id, full_name, state, city, country, address, pincode, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, q,
		s.OrderID, s.FullName, s.State, s.City, s.Country, s.Address, s.Pincode, s.Phone)
	if err != nil {
		return fmt.Errorf("sqlite: insert shipping info for %q: %w", s.OrderID, err)
	}
	return nil
}

func insertPayment(ctx context.Context, tx *sql.Tx, p *entity.Payment) error {
	const q = `
		INSERT INTO payments (order_id, payment_type, payment_status, payment_intent_id)
		VALUES (?, ?, ?, ?)`

	var intent any
	if p.IntentID != nil {
		intent = *p.IntentID
	}
	_, err := tx.ExecContext(ctx, q, p.OrderID, string(p.Type), string(p.Status), intent)
	if err != nil {
		return fmt.Errorf("sqlite: insert payment for %q: %w", p.OrderID, err)
	}
	return nil
}

// reserveStock performs the conditional decrement that closes the
// check-then-decrement race: the quantity only comes off when enough stock
// remains at commit time. Zero rows affected means a concurrent placement won
// the units (or the product vanished); the caller's transaction then rolls
// back, releasing any decrements already applied for other lines.
func reserveStock(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	const q = `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`

	res, err := tx.ExecContext(ctx, q, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("sqlite: reserve %d of %q: %w", quantity, productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reserve %q rows affected: %w", productID, err)
	}
	if n > 0 {
		return nil
	}

	// Re-read inside the same transaction to build an accurate error.
	var name string
	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT name, stock FROM products WHERE id = ?`, productID).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.NotFoundError{Kind: "product", ID: productID}
	}
	if err != nil {
		return fmt.Errorf("sqlite: read stock for %q: %w", productID, err)
	}
	return &entity.StockError{
		ProductID: productID,
		Name:      name,
		Requested: quantity,
		Available: stock,
	}
}

// withRetry retries fn a bounded number of times when SQLite reports lock
// contention, then surfaces the exhaustion as *entity.TransientError.
// Domain errors (stock, not-found) and context cancellation are never
// retried.
func (r *Repository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
	}
	return &entity.TransientError{Err: err}
}

// isBusy reports whether err is SQLite lock contention. The driver does not
// export a typed error for this, so the message is matched.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
