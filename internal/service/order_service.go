package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Roshansuthar1105/Zunzo/internal/cache"
	"github.com/Roshansuthar1105/Zunzo/internal/catalog"
	"github.com/Roshansuthar1105/Zunzo/internal/domain"
	"github.com/Roshansuthar1105/Zunzo/internal/orders"
)

// compensationTimeout bounds rollback work that must run even when the
// request context is already cancelled.
const compensationTimeout = 5 * time.Second

type OrderService struct {
	catalog catalog.ProductCatalog
	repo    orders.OrderRepository
	cache   cache.OrderCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewOrderService(catalog catalog.ProductCatalog, repo orders.OrderRepository, cache cache.OrderCache) *OrderService {
	return &OrderService{
		catalog: catalog,
		repo:    repo,
		cache:   cache,
	}
}

type PlaceOrderInput struct {
	Items           []domain.OrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	PaymentDetails  domain.PaymentDetails
}

type PlaceOrderResult struct {
	OrderID     uuid.UUID
	OrderNumber string
}

// PlaceOrder converts a cart snapshot into a persisted order with
// all-or-nothing stock reservation. Stock is reserved item by item; the
// first failure releases every reservation made so far and surfaces the
// original error, so no partial effect outlives the call.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", catalog.ErrInvalidQuantity, item.ProductID)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: product %s has a negative price", ErrInvalidItem, item.ProductID)
		}
		if item.DiscountPercent < 0 || item.DiscountPercent > 100 {
			return nil, fmt.Errorf("%w: product %s discount must be between 0 and 100", ErrInvalidItem, item.ProductID)
		}
	}

	reserved := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		if _, err := s.catalog.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseReserved(reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	subtotal, tax, shipping, total := domain.ComputeTotals(in.Items)

	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     NewOrderNumber(time.Now()),
		UserID:          userID,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentDetails:  in.PaymentDetails,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           total,
		Status:          domain.OrderStatusPending,
	}
	order.PaymentDetails.CardNumber = domain.MaskCardNumber(in.PaymentDetails.CardNumber)

	err := s.repo.CreateOrder(ctx, order)
	if errors.Is(err, orders.ErrDuplicateOrderNumber) {
		// Millisecond + random collision is astronomically rare; one fresh
		// number before giving up.
		order.OrderNumber = NewOrderNumber(time.Now())
		err = s.repo.CreateOrder(ctx, order)
	}
	if err != nil {
		s.releaseReserved(reserved)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailure, err)
	}

	s.invalidateCache(userID)

	return &PlaceOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, requesterID string, requesterIsAdmin bool) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID && !requesterIsAdmin {
		return nil, ErrForbidden
	}

	return order, nil
}

// ListOrdersForUser returns the user's orders, most recent first, through
// the cache. Singleflight collapses concurrent misses for the same user.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("order cache get error: %v", err) // log cache error but continue
		}

		listed, errList := s.repo.ListOrdersByUserID(ctx, userID)
		if errList != nil {
			return nil, errList
		}

		// Populate synchronously so a later invalidation cannot be overtaken
		// by this write and left serving a stale list for the full TTL.
		if errSet := s.cache.Set(ctx, userID, listed); errSet != nil {
			log.Printf("order cache set error: %v", errSet)
		}

		return listed, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]*domain.Order), nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, requesterIsAdmin bool) ([]*domain.Order, error) {
	if !requesterIsAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListAllOrders(ctx)
}

// UpdateStatus applies an admin status transition. Moving to cancelled first
// claims the transition with a conditional write, so the compensating stock
// release runs exactly once even under concurrent cancellation requests.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string, requesterIsAdmin bool) (*domain.Order, error) {
	if !requesterIsAdmin {
		return nil, ErrForbidden
	}

	newStatus, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		if order.Status.IsTerminal() {
			return nil, orders.ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, newStatus)
	}

	if newStatus == domain.OrderStatusCancelled {
		cancelled, err := s.cancelOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.invalidateCache(cancelled.UserID)
		return cancelled, nil
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus
	order.UpdatedAt = time.Now()
	s.invalidateCache(order.UserID)
	return order, nil
}

// cancelOrder claims the cancellation, then restores the reserved stock for
// every line item. A release that still fails after retrying leaves the
// order cancelled and is logged with enough detail for reconciliation.
func (s *OrderService) cancelOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.ClaimCancellation(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var failed int
	for _, item := range order.Items {
		if err := s.releaseWithRetry(ctx, item.ProductID, item.Quantity); err != nil {
			failed++
			log.Printf("reconciliation needed: order %s cancelled but %d units of product %s not restored: %v",
				order.ID, item.Quantity, item.ProductID, err)
		}
	}
	if failed > 0 {
		return nil, fmt.Errorf("%w: %d of %d stock releases failed for order %s",
			ErrTransactionFailure, failed, len(order.Items), order.ID)
	}

	return order, nil
}

// releaseReserved undoes the reservations of a failed placement. It runs on
// a fresh context: the rollback must proceed even when the request context
// is what failed.
func (s *OrderService) releaseReserved(reserved []domain.OrderItem) {
	if len(reserved) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
	defer cancel()

	for _, item := range reserved {
		if err := s.releaseWithRetry(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("reconciliation needed: %d units of product %s reserved but not released after failed placement: %v",
				item.Quantity, item.ProductID, err)
		}
	}
}

// releaseWithRetry releases stock with a single retry. A missing product is
// treated as done: orders hold weak references and the product may have
// been deleted since.
func (s *OrderService) releaseWithRetry(ctx context.Context, productID string, quantity int) error {
	err := s.catalog.Release(ctx, productID, quantity)
	if err == nil || errors.Is(err, catalog.ErrProductNotFound) {
		return nil
	}
	log.Printf("retrying stock release for product %s: %v", productID, err)

	err = s.catalog.Release(ctx, productID, quantity)
	if err == nil || errors.Is(err, catalog.ErrProductNotFound) {
		return nil
	}
	return err
}

func (s *OrderService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("order cache invalidate error: %v", err)
	}
}
