package entity

import "time"

// OrderStatus is an open set: administrators may set any non-empty value.
// The constants below cover the lifecycle states the service itself uses.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// Order is a buyer's committed purchase record. It is created exactly once by
// the placement workflow; afterwards only Status may change.
type Order struct {
	ID            string
	BuyerID       string
	TotalPrice    float64
	TaxRate       float64
	ShippingPrice float64
	Status        OrderStatus

	// PaidAt is nil for unpaid drafts. Query endpoints only surface orders
	// with a non-nil PaidAt.
	PaidAt    *time.Time
	CreatedAt time.Time

	// Items and Shipping are populated on reads that join the aggregate.
	// Items is never nil on a joined read; an order without items yields
	// an empty slice.
	Items    []OrderItem
	Shipping *ShippingInfo
}

// OrderItem is one purchased product line. Price and Title are snapshots
// taken at purchase time and must not track later catalog changes. ProductID
// is a weak reference: the product may be deleted from the catalog without
// invalidating historical items.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     float64
	Image     string
	Title     string
}

// ShippingInfo is the delivery address captured with the order, one-to-one
// with it and immutable afterwards.
type ShippingInfo struct {
	OrderID  string
	FullName string
	State    string
	City     string
	Country  string
	Address  string
	Pincode  string
	Phone    string
}

type PaymentType string

const (
	PaymentTypeOnline PaymentType = "Online"
	PaymentTypeCOD    PaymentType = "COD"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
	PaymentFailed  PaymentStatus = "Failed"
)

// Payment records the payment outcome for an order, one-to-one with it.
// Capture itself is decided upstream; this core only records the result.
type Payment struct {
	OrderID string
	Type    PaymentType
	Status  PaymentStatus

	// IntentID references an external payment intent when a gateway is
	// involved. Nil when payment was recorded without one.
	IntentID *string
}
