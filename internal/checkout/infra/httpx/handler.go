package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/app"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/cart"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/httpx/middlewares"
)

// productGetter is the read-only product lookup exposed to storefront
// clients. The sqlite repository satisfies it.
type productGetter interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
}

// Handler handles the HTTP surface of the checkout service.
type Handler struct {
	placement *app.PlacementService
	query     *app.QueryService
	status    *app.StatusService
	products  productGetter
}

func NewHandler(placement *app.PlacementService, query *app.QueryService, status *app.StatusService, products productGetter) *Handler {
	return &Handler{
		placement: placement,
		query:     query,
		status:    status,
		products:  products,
	}
}

// PlaceOrder runs the placement workflow for the authenticated buyer.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	lines, err := cart.Normalize(req.Cart)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	order, err := h.placement.PlaceOrder(r.Context(), &app.PlaceOrderInput{
		BuyerID: middlewares.BuyerID(r.Context()),
		Lines:   lines,
		Shipping: entity.ShippingInfo{
			FullName: req.Shipping.FullName,
			State:    req.Shipping.State,
			City:     req.Shipping.City,
			Country:  req.Shipping.Country,
			Address:  req.Shipping.Address,
			Pincode:  req.Shipping.Pincode,
			Phone:    req.Shipping.Phone,
		},
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		Order:      mapOrderToResponse(order),
		TotalPrice: order.TotalPrice,
	})
}

// GetOrder returns one order joined with its items and shipping info.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.query.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListMyOrders returns the authenticated buyer's paid orders.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.query.ListBuyerOrders(r.Context(), middlewares.BuyerID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrdersToResponse(orders))
}

// ListAllOrders returns every paid order. Admin surface; upstream gateway
// enforces the admin role.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.query.ListAllOrders(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrdersToResponse(orders))
}

// UpdateStatus sets an order's lifecycle status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	order, err := h.status.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.OrderStatus(req.Status))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// DeleteOrder removes an order and its dependent rows, returning the deleted
// snapshot.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.status.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// GetProduct is a thin read-only pass-through to the catalog for storefront
// clients.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
		Image: product.Image,
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *entity.ValidationError
		notFoundErr   *entity.NotFoundError
		stockErr      *entity.StockError
		transientErr  *entity.TransientError
		invariantErr  *entity.InvariantError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "validation_error", validationErr.Reason)
	case errors.As(err, &stockErr):
		writeError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &transientErr):
		slog.ErrorContext(r.Context(), "store contention exhausted retries", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry")
	case errors.As(err, &invariantErr):
		slog.ErrorContext(r.Context(), "persistence invariant violated", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	default:
		slog.ErrorContext(r.Context(), "unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
