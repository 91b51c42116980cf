package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Roshansuthar1105/Zunzo/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientStockError names the offending product and carries the
// requested vs. available quantities, since sold-out products are the most
// common expected failure at checkout.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// ProductCatalog is the single source of truth for product stock.
// Consumers define this interface, not the MongoDB implementation.
type ProductCatalog interface {
	FindProduct(ctx context.Context, productID string) (*domain.Product, error)

	// Reserve atomically decrements stock by quantity and increments the
	// purchases counter, failing with ErrProductNotFound or
	// *InsufficientStockError without mutating anything. Returns the
	// remaining stock.
	Reserve(ctx context.Context, productID string, quantity int) (int, error)

	// Release atomically returns quantity units to stock and decrements the
	// purchases counter (clamped at zero). Used only as a compensating
	// action: rollback of a failed reservation or order cancellation.
	Release(ctx context.Context, productID string, quantity int) error
}
