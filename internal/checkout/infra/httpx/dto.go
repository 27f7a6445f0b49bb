package httpx

import (
	"encoding/json"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

// PlaceOrderRequest is the placement payload. Cart is kept raw here because
// clients send it either as a JSON array or as a JSON string containing the
// array; cart.Normalize resolves both.
type PlaceOrderRequest struct {
	Shipping ShippingInfoDTO `json:"shipping_info"`
	Cart     json.RawMessage `json:"cart"`
	Email    string          `json:"email,omitempty"`
}

type ShippingInfoDTO struct {
	FullName string `json:"full_name"`
	State    string `json:"state"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type PlaceOrderResponse struct {
	Order      OrderResponse `json:"order"`
	TotalPrice float64       `json:"total_price"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	BuyerID       string              `json:"buyer_id"`
	TotalPrice    float64             `json:"total_price"`
	TaxRate       float64             `json:"tax_rate"`
	ShippingPrice float64             `json:"shipping_price"`
	Status        string              `json:"status"`
	PaidAt        *string             `json:"paid_at"`
	CreatedAt     string              `json:"created_at"`
	Items         []OrderItemResponse `json:"items"`
	Shipping      *ShippingInfoDTO    `json:"shipping_info"`
}

type OrderItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Title     string  `json:"title"`
}

type ProductResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Image string  `json:"image,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		TotalPrice:    order.TotalPrice,
		TaxRate:       order.TaxRate,
		ShippingPrice: order.ShippingPrice,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt.UTC().Format(time.RFC3339),
		Items:         make([]OrderItemResponse, 0, len(order.Items)),
	}
	if order.PaidAt != nil {
		paidAt := order.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
			Title:     it.Title,
		})
	}
	if order.Shipping != nil {
		resp.Shipping = &ShippingInfoDTO{
			FullName: order.Shipping.FullName,
			State:    order.Shipping.State,
			City:     order.Shipping.City,
			Country:  order.Shipping.Country,
			Address:  order.Shipping.Address,
			Pincode:  order.Shipping.Pincode,
			Phone:    order.Shipping.Phone,
		}
	}
	return resp
}

func mapOrdersToResponse(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, mapOrderToResponse(&orders[i]))
	}
	return out
}
