package domain

import (
	"context"
	"errors"

	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
)

type Service interface {
	// CreateOrder validates the product, appends the order, and decrements
	// stock. Notification side effects never roll it back.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (catalogdomain.Order, error)
}

type CreateOrderRequest struct {
	ProductID   int64  `json:"productId"`
	UserName    string `json:"userName"`
	RequesterID int64  `json:"requesterId"`
	Reason      string `json:"reason"`
}

// ErrProductUnavailable rejects an order against a missing or sold-out
// product. No collection is mutated on this path.
var ErrProductUnavailable = errors.New("product_unavailable")

// LowStockThreshold triggers the low-stock warning when the post-decrement
// quantity falls to this level or below.
const LowStockThreshold = 5
