package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Roshansuthar1105/Zunzo/internal/domain"
	"github.com/Roshansuthar1105/Zunzo/internal/service"
)

// OrderService is the slice of the order service this handler consumes.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, in service.PlaceOrderInput) (*service.PlaceOrderResult, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, requesterID string, requesterIsAdmin bool) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context, requesterIsAdmin bool) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string, requesterIsAdmin bool) (*domain.Order, error)
}

type OrdersHandler struct {
	svc     OrderService
	timeout time.Duration
}

func NewOrdersHandler(svc OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Discount  float64 `json:"discount"`
	Image     string  `json:"image,omitempty"`
}

type ShippingAddressDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type PaymentDetailsDTO struct {
	CardName   string `json:"cardName,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
}

// CreateOrderRequest mirrors the checkout page payload. Client-supplied
// totals are accepted for shape compatibility but ignored: the server
// recomputes every monetary amount from the items.
type CreateOrderRequest struct {
	Items           []OrderItemDTO     `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentDetails  PaymentDetailsDTO  `json:"paymentDetails"`
	Subtotal        float64            `json:"subtotal"`
	Tax             float64            `json:"tax"`
	Shipping        float64            `json:"shipping"`
	Total           float64            `json:"total"`
}

type CreateOrderResponse struct {
	Message     string `json:"message"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type OrderResponseDTO struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	UserID          string             `json:"userId"`
	Items           []OrderItemDTO     `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentDetails  PaymentDetailsDTO  `json:"paymentDetails"`
	Subtotal        float64            `json:"subtotal"`
	Tax             float64            `json:"tax"`
	Shipping        float64            `json:"shipping"`
	Total           float64            `json:"total"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Malformed request body")
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       item.Price,
			Quantity:        item.Quantity,
			DiscountPercent: item.Discount,
			Image:           item.Image,
		})
	}

	in := service.PlaceOrderInput{
		Items:           items,
		ShippingAddress: convertAddressDTO(req.ShippingAddress),
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails: domain.PaymentDetails{
			CardName:   req.PaymentDetails.CardName,
			CardNumber: req.PaymentDetails.CardNumber,
			CardExpiry: req.PaymentDetails.CardExpiry,
		},
	}

	result, err := h.svc.PlaceOrder(ctx, userIDFromContext(r.Context()), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponse{
		Message:     "Order created successfully",
		OrderID:     result.OrderID.String(),
		OrderNumber: result.OrderNumber,
	})
}

// GET /api/v1/orders/my-orders
func (h *OrdersHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listed, err := h.svc.ListOrdersForUser(ctx, userIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(listed))
}

// GET /api/v1/orders/all
func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listed, err := h.svc.ListAllOrders(ctx, isAdminFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(listed))
}

// GET /api/v1/orders/{orderID}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "order_not_found", "Order not found")
		return
	}

	order, err := h.svc.GetOrder(ctx, orderID, userIDFromContext(r.Context()), isAdminFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// PATCH /api/v1/orders/{orderID}
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "order_not_found", "Order not found")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Malformed request body")
		return
	}

	order, err := h.svc.UpdateStatus(ctx, orderID, req.Status, isAdminFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updateStatusResponse{
		Message: "Order status updated",
		OrderID: order.ID.String(),
		Status:  order.Status.String(),
	})
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.DiscountPercent,
			Image:     item.Image,
		})
	}

	return OrderResponseDTO{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		ShippingAddress: ShippingAddressDTO{
			FirstName: o.ShippingAddress.FirstName,
			LastName:  o.ShippingAddress.LastName,
			Address:   o.ShippingAddress.Address,
			City:      o.ShippingAddress.City,
			State:     o.ShippingAddress.State,
			ZipCode:   o.ShippingAddress.ZipCode,
			Country:   o.ShippingAddress.Country,
			Phone:     o.ShippingAddress.Phone,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentDetails: PaymentDetailsDTO{
			CardName:   o.PaymentDetails.CardName,
			CardNumber: o.PaymentDetails.CardNumber,
			CardExpiry: o.PaymentDetails.CardExpiry,
		},
		Subtotal:  o.Subtotal,
		Tax:       o.Tax,
		Shipping:  o.Shipping,
		Total:     o.Total,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func convertOrders(listed []*domain.Order) []OrderResponseDTO {
	dtos := make([]OrderResponseDTO, 0, len(listed))
	for _, o := range listed {
		dtos = append(dtos, convertOrder(o))
	}
	return dtos
}

func convertAddressDTO(a ShippingAddressDTO) domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address:   a.Address,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		Phone:     a.Phone,
	}
}
