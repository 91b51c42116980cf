package cache

import (
	"context"
	"errors"

	"github.com/Roshansuthar1105/Zunzo/internal/domain"
)

// OrderCache holds per-user order listings. Entries are invalidated whenever
// an order is placed or changes status.
type OrderCache interface {
	Get(ctx context.Context, userID string) ([]*domain.Order, error)
	Set(ctx context.Context, userID string, orders []*domain.Order) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
