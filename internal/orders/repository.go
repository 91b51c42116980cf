package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Roshansuthar1105/Zunzo/internal/domain"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrAlreadyCancelled     = errors.New("order is already cancelled")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Outbox event types emitted by the repository.
const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type OrderRepository interface {
	// CreateOrder persists the order and an order.created outbox event in a
	// single database transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus is a plain status write guarded against touching a
	// cancelled order. It never triggers stock side effects.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error

	// ClaimCancellation flips the order to cancelled only if it is not
	// cancelled yet, recording an order.cancelled outbox event in the same
	// transaction. Exactly one concurrent caller wins the claim; losers get
	// ErrAlreadyCancelled. Returns the cancelled order so the caller can
	// release its reserved stock.
	ClaimCancellation(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error

	RunMigrations(*Credentials) error
	Close() error
}
