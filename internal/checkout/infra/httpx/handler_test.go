package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/app"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/adapters/store/sqlite"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/httpx/middlewares"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Repository) {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	placement := app.NewPlacementService(repo, repo, nil)
	query := app.NewQueryService(repo, nil)
	status := app.NewStatusService(repo, nil)

	srv := httptest.NewServer(NewRouter(NewHandler(placement, query, status, repo)))
	t.Cleanup(srv.Close)
	return srv, repo
}

func seedProduct(t *testing.T, repo *sqlite.Repository, id string, price float64, stock int) {
	t.Helper()
	require.NoError(t, repo.UpsertProduct(context.Background(), &entity.Product{
		ID: id, Name: "Product " + id, Price: price, Stock: stock,
	}))
}

func doJSON(t *testing.T, method, url, buyerID string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if buyerID != "" {
		req.Header.Set(middlewares.HeaderXBuyerID, buyerID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func placeRequestBody(cart any) map[string]any {
	return map[string]any{
		"shipping_info": map[string]string{
			"full_name": "Ada Lovelace",
			"state":     "KA",
			"city":      "Bengaluru",
			"country":   "IN",
			"address":   "12 MG Road",
			"pincode":   "560001",
			"phone":     "+91-9000000000",
		},
		"cart": cart,
	}
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 5)

	cart := []map[string]any{{"product_id": "p1", "quantity": 2}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(cart))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	placed := decode[PlaceOrderResponse](t, resp)
	assert.Equal(t, 71.0, placed.TotalPrice)
	assert.Equal(t, "buyer-1", placed.Order.BuyerID)
	assert.Equal(t, "Processing", placed.Order.Status)
	require.Len(t, placed.Order.Items, 1)
	assert.Equal(t, 30.0, placed.Order.Items[0].Price)
	require.NotNil(t, placed.Order.Shipping)

	// The placement is immediately readable.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+placed.Order.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[OrderResponse](t, resp)
	assert.Equal(t, placed.Order.ID, fetched.ID)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, 2, fetched.Items[0].Quantity)
}

func TestPlaceOrderAcceptsSerializedCart(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 5)

	serialized := `[{"product_id":"p1","quantity":1}]`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(serialized))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestPlaceOrderRequiresBuyer(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 5)

	cart := []map[string]any{{"product_id": "p1", "quantity": 1}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "", placeRequestBody(cart))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlaceOrderFailureStatuses(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 10, 3)

	t.Run("insufficient stock is 400", func(t *testing.T) {
		cart := []map[string]any{{"product_id": "p1", "quantity": 4}}
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(cart))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[ErrorResponse](t, resp)
		assert.Equal(t, "insufficient_stock", body.Error)
		assert.Contains(t, body.Message, "3 units available")
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		cart := []map[string]any{{"product_id": "ghost", "quantity": 1}}
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(cart))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty cart is 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody([]any{}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing shipping field is 400", func(t *testing.T) {
		body := placeRequestBody([]map[string]any{{"product_id": "p1", "quantity": 1}})
		body["shipping_info"].(map[string]string)["phone"] = ""
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decode[ErrorResponse](t, resp)
		assert.Equal(t, "validation_error", errBody.Error)
	})
}

func TestGetOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMyOrders(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 10)

	for i := 0; i < 2; i++ {
		cart := []map[string]any{{"product_id": "p1", "quantity": 1}}
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(cart))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders", "buyer-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decode[[]OrderResponse](t, resp)
	assert.Len(t, mine, 2)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders", "buyer-2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	other := decode[[]OrderResponse](t, resp)
	assert.Empty(t, other)
}

func TestAdminStatusAndDelete(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 10)

	cart := []map[string]any{{"product_id": "p1", "quantity": 1}}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", "buyer-1", placeRequestBody(cart))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	placed := decode[PlaceOrderResponse](t, resp)
	orderID := placed.Order.ID

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/orders/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]OrderResponse](t, resp)
	require.Len(t, all, 1)

	statusURL := fmt.Sprintf("%s/api/admin/orders/%s/status", srv.URL, orderID)
	resp = doJSON(t, http.MethodPut, statusURL, "", UpdateStatusRequest{Status: "Shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[OrderResponse](t, resp)
	assert.Equal(t, "Shipped", updated.Status)

	resp = doJSON(t, http.MethodPut, statusURL, "", UpdateStatusRequest{Status: ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	deleteURL := fmt.Sprintf("%s/api/admin/orders/%s", srv.URL, orderID)
	resp = doJSON(t, http.MethodDelete, deleteURL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snapshot := decode[OrderResponse](t, resp)
	assert.Equal(t, orderID, snapshot.ID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+orderID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetProductEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	seedProduct(t, repo, "p1", 30, 5)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/products/p1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product := decode[ProductResponse](t, resp)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, 30.0, product.Price)
	assert.Equal(t, 5, product.Stock)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/products/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
