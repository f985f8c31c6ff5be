package usecase

import (
	"context"

	"foodhub/internal/domain/entity"
)

// CartAPI is the remote cart backend. Write operations do not return the
// resulting cart; callers re-fetch with GetCart so the server stays the
// authority on stock and price.
type CartAPI interface {
	GetCart(ctx context.Context, token string) ([]entity.CartItem, error)
	AddToCart(ctx context.Context, token, menuID string, quantity int) error
	UpdateCartItem(ctx context.Context, token, menuID string, quantity int) error
	RemoveFromCart(ctx context.Context, token, menuID string) error
	ClearCart(ctx context.Context, token string) error
}
