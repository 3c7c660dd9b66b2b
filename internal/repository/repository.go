package repository

import (
	"context"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

// CartRepository defines the interface for cart persistence. The in-memory
// cart is the source of truth while a user is active; this store exists so
// a cart survives process restarts.
type CartRepository interface {
	// Get retrieves a user's persisted cart. Returns a not-found error
	// when the user has no stored cart.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save upserts a user's cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a user's cart.
	Delete(ctx context.Context, userID string) error
}
