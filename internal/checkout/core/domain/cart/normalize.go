// Package cart normalizes the cart payload of a placement request.
//
// Storefront clients historically sent the cart in two shapes: a structured
// JSON array of lines, or that same array serialized into a JSON string.
// Both are accepted here, at the boundary, so the rest of the workflow only
// ever sees validated []entity.CartLine values. Malformed input fails closed
// with *entity.ValidationError.
package cart

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/domain/entity"
)

type lineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// Normalize parses a raw cart payload into validated cart lines.
func Normalize(raw json.RawMessage) ([]entity.CartLine, error) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, &entity.ValidationError{Reason: "cart is required"}
	}

	// Serialized-text form: a JSON string holding the array.
	if payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, entity.NewValidationError("cart is not valid JSON: %v", err)
		}
		payload = bytes.TrimSpace([]byte(inner))
	}

	if len(payload) == 0 || payload[0] != '[' {
		return nil, &entity.ValidationError{Reason: "cart must be a list of items"}
	}

	var dtos []lineDTO
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dtos); err != nil {
		return nil, entity.NewValidationError("cart is malformed: %v", err)
	}
	if len(dtos) == 0 {
		return nil, &entity.ValidationError{Reason: "cart is empty"}
	}

	lines := make([]entity.CartLine, 0, len(dtos))
	for i, d := range dtos {
		if strings.TrimSpace(d.ProductID) == "" {
			return nil, entity.NewValidationError("cart item %d: product_id is required", i)
		}
		if d.Quantity <= 0 {
			return nil, entity.NewValidationError("cart item %d: quantity must be a positive integer", i)
		}
		lines = append(lines, entity.CartLine{
			ProductID: strings.TrimSpace(d.ProductID),
			Quantity:  d.Quantity,
			Image:     d.Image,
		})
	}
	return lines, nil
}
