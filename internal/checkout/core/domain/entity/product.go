package entity

// Product is the catalog view consumed by the checkout workflow. The checkout
// core never creates or destroys products; it only reads them and decrements
// Stock as part of a committed placement.
type Product struct {
	ID    string
	Name  string
	Price float64
	Stock int
	Image string
}

// CartLine is one requested line of a cart submission. It is request-scoped:
// lines are consumed to produce OrderItems and never persisted directly.
type CartLine struct {
	ProductID string
	Quantity  int

	// Image optionally overrides the product image for display purposes.
	Image string
}
