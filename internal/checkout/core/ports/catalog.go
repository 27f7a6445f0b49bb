package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

// ProductCatalog is the read-only product lookup consumed by the placement
// workflow. Catalog management itself lives outside this service.
type ProductCatalog interface {
	// Lookup returns the products for the given ids, keyed by id. Ids with
	// no matching product are simply absent from the result; callers decide
	// whether that is an error.
	Lookup(ctx context.Context, ids []string) (map[string]entity.Product, error)
}
