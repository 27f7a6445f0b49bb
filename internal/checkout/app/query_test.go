package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

// fakeCache is an in-memory cache.Cache for tests.
type fakeCache struct {
	data map[string]string
	sets int
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.sets++
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		return fmt.Errorf("unsupported cache value type %T", value)
	}
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func TestGetOrderReadThroughCache(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProduct(ctx, &entity.Product{
		ID: "p1", Name: "Widget", Price: 30, Stock: 10,
	}))

	placement := NewPlacementService(repo, repo, nil)
	c := newFakeCache()
	query := NewQueryService(repo, c)
	order := placeTestOrder(t, placement)

	first, err := query.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 0, c.hits)

	second, err := query.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, first.TotalPrice, second.TotalPrice)
	require.Len(t, second.Items, len(first.Items))
}

func TestStatusChangesInvalidateCache(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProduct(ctx, &entity.Product{
		ID: "p1", Name: "Widget", Price: 30, Stock: 10,
	}))

	placement := NewPlacementService(repo, repo, nil)
	c := newFakeCache()
	query := NewQueryService(repo, c)
	status := NewStatusService(repo, c)
	order := placeTestOrder(t, placement)

	_, err := query.GetOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = status.UpdateStatus(ctx, order.ID, entity.StatusShipped)
	require.NoError(t, err)

	// The stale cached aggregate is gone; the next read sees the new status.
	fetched, err := query.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, fetched.Status)
}
