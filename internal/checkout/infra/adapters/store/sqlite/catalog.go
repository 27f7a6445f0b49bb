package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

// Lookup implements ports.ProductCatalog over the products table. Ids with no
// matching product are absent from the result map.
func (r *Repository) Lookup(ctx context.Context, ids []string) (map[string]entity.Product, error) {
	products := make(map[string]entity.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `SELECT id, name, price, stock, image FROM products WHERE id IN (` + placeholders + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: lookup products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Image); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: lookup products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product or *entity.NotFoundError.
func (r *Repository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	products, err := r.Lookup(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p, ok := products[id]
	if !ok {
		return nil, &entity.NotFoundError{Kind: "product", ID: id}
	}
	return &p, nil
}

// UpsertProduct inserts or replaces a catalog row. Catalog management proper
// is out of scope; this exists for seeding and tests.
func (r *Repository) UpsertProduct(ctx context.Context, p *entity.Product) error {
	const q = `
		INSERT INTO products (id, name, price, stock, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			stock = excluded.stock,
			image = excluded.image`

	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Price, p.Stock, p.Image, formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("sqlite: upsert product %q: %w", p.ID, err)
	}
	return nil
}
