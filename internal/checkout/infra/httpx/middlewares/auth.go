// Package middlewares holds HTTP middlewares for the checkout API.
package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderXBuyerID carries the already-authenticated buyer identity, injected
// by the upstream auth layer. This service trusts it as-is.
const HeaderXBuyerID = "X-Buyer-ID"

type contextKey string

const contextKeyBuyerID contextKey = "buyer-id"

// RequireBuyer rejects requests without a buyer identity and puts the id on
// the request context for handlers to read via BuyerID.
func RequireBuyer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buyerID := strings.TrimSpace(r.Header.Get(HeaderXBuyerID))
		if buyerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "unauthenticated",
				"message": HeaderXBuyerID + " header is required",
			})
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyBuyerID, buyerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BuyerID returns the authenticated buyer id, or "" when the request did not
// pass through RequireBuyer.
func BuyerID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyBuyerID).(string)
	return id
}
