package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Roshansuthar1105/Zunzo/internal/cache"
	"github.com/Roshansuthar1105/Zunzo/internal/catalog"
	"github.com/Roshansuthar1105/Zunzo/internal/domain"
	"github.com/Roshansuthar1105/Zunzo/internal/orders"
)

// MockCatalog implements catalog.ProductCatalog with the same conditional
// check-and-decrement semantics as the MongoDB implementation, so concurrency
// properties can be exercised without a database.
type MockCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product

	ReleaseErr      error // when set, Release fails for every product
	ReleaseErrCount int   // number of failures before Release recovers

	ReserveCalls int
	ReleaseCalls int
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{products: make(map[string]*domain.Product)}
}

func (m *MockCatalog) SetProduct(id, name string, price float64, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := domain.ProductStatusActive
	if stock == 0 {
		status = domain.ProductStatusOutOfStock
	}
	m.products[id] = &domain.Product{ID: id, Name: name, Price: price, Stock: stock, Status: status}
}

func (m *MockCatalog) Stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *MockCatalog) Purchases(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Purchases
}

func (m *MockCatalog) Status(id string) domain.ProductStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Status
}

func (m *MockCatalog) FindProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockCatalog) Reserve(_ context.Context, id string, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReserveCalls++

	p, ok := m.products[id]
	if !ok {
		return 0, catalog.ErrProductNotFound
	}
	if p.Stock < quantity {
		return 0, &catalog.InsufficientStockError{
			ProductID:   id,
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Stock,
		}
	}

	p.Stock -= quantity
	p.Purchases += quantity
	if p.Stock == 0 {
		p.Status = domain.ProductStatusOutOfStock
	}
	return p.Stock, nil
}

func (m *MockCatalog) Release(_ context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls++

	if m.ReleaseErr != nil {
		if m.ReleaseErrCount == 0 || m.ReleaseCalls <= m.ReleaseErrCount {
			return m.ReleaseErr
		}
	}

	p, ok := m.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}

	p.Stock += quantity
	p.Purchases -= quantity
	if p.Purchases < 0 {
		p.Purchases = 0
	}
	if p.Stock > 0 {
		p.Status = domain.ProductStatusActive
	}
	return nil
}

// MockRepository implements orders.OrderRepository in memory.
type MockRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	outbox []*orders.OutboxEvent
	nextID int64
	seq    int

	CreateErr   error
	CreateCalls int
	MarkedIDs   []int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *MockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++

	if m.CreateErr != nil {
		return m.CreateErr
	}

	for _, existing := range m.orders {
		if existing.OrderNumber == order.OrderNumber {
			return orders.ErrDuplicateOrderNumber
		}
	}

	m.seq++
	stored := *order
	stored.CreatedAt = time.Unix(int64(m.seq), 0)
	stored.UpdatedAt = stored.CreatedAt
	m.orders[order.ID] = &stored
	m.appendEventLocked(&stored, orders.EventOrderCreated)
	return nil
}

func (m *MockRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var listed []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			copied := *order
			listed = append(listed, &copied)
		}
	}
	sortNewestFirst(listed)
	return listed, nil
}

func (m *MockRepository) ListAllOrders(_ context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var listed []*domain.Order
	for _, order := range m.orders {
		copied := *order
		listed = append(listed, &copied)
	}
	sortNewestFirst(listed)
	return listed, nil
}

func (m *MockRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return orders.ErrOrderNotFound
	}
	if order.Status == domain.OrderStatusCancelled {
		return orders.ErrAlreadyCancelled
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func (m *MockRepository) ClaimCancellation(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, orders.ErrAlreadyCancelled
	}
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	m.appendEventLocked(order, orders.EventOrderCancelled)
	copied := *order
	return &copied, nil
}

func (m *MockRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*orders.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.outbox) > limit {
		return m.outbox[:limit], nil
	}
	return m.outbox, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkedIDs = append(m.MarkedIDs, id)
	remaining := m.outbox[:0]
	for _, event := range m.outbox {
		if event.ID != id {
			remaining = append(remaining, event)
		}
	}
	m.outbox = remaining
	return nil
}

func (m *MockRepository) RunMigrations(*orders.Credentials) error {
	return nil
}

func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) Events() []*orders.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*orders.OutboxEvent(nil), m.outbox...)
}

func (m *MockRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *MockRepository) appendEventLocked(order *domain.Order, eventType string) {
	m.nextID++
	m.outbox = append(m.outbox, &orders.OutboxEvent{
		ID:          m.nextID,
		AggregateID: order.ID.String(),
		EventType:   eventType,
		Payload:     []byte(`{}`),
		CreatedAt:   time.Now(),
	})
}

func sortNewestFirst(listed []*domain.Order) {
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
}

// MockCache is a cache that always misses and records writes and
// invalidations.
type MockCache struct {
	mu      sync.Mutex
	Deleted []string
	Sets    []string
}

func (m *MockCache) Get(context.Context, string) ([]*domain.Order, error) {
	return nil, cache.ErrCacheMiss
}

func (m *MockCache) Set(_ context.Context, userID string, _ []*domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets = append(m.Sets, userID)
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, userID)
	return nil
}

func (m *MockCache) DeletedUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

func (m *MockCache) SetUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Sets...)
}
