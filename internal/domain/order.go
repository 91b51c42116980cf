package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaxRate is the fixed sales tax applied to every order subtotal.
const TaxRate = 0.10

// ShippingFee is zero: free shipping is a store-wide policy.
const ShippingFee = 0.0

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus validates a raw status value from a request body.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return s, true
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// rank orders the fulfilment chain: pending -> processing -> shipped -> delivered.
func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusProcessing:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether the status change is legal. Orders move
// forward along the fulfilment chain, any non-cancelled order may be
// cancelled, and cancelled is terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return next.rank() > s.rank()
}

// OrderItem is a denormalized snapshot of a product at order time. Later
// catalog price or name changes never alter a placed order.
type OrderItem struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
	Image           string  `json:"image,omitempty"`
}

// LineTotal is the discounted price for the full quantity.
func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * (1 - i.DiscountPercent/100) * float64(i.Quantity)
}

type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// PaymentDetails never holds a full card number; see MaskCardNumber.
type PaymentDetails struct {
	CardName   string `json:"card_name,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
}

type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentDetails  PaymentDetails
	Subtotal        float64
	Tax             float64
	Shipping        float64
	Total           float64
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotals derives the frozen monetary amounts for an order from its
// line items. Totals are computed exactly once, at creation.
func ComputeTotals(items []OrderItem) (subtotal, tax, shipping, total float64) {
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	tax = subtotal * TaxRate
	shipping = ShippingFee
	total = subtotal + tax + shipping
	return subtotal, tax, shipping, total
}

// MaskCardNumber reduces a card number to its masked last-4 form. Already
// masked values pass through unchanged; values with fewer than four digits
// are dropped entirely.
func MaskCardNumber(raw string) string {
	if raw == "" {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(digits) < 4 {
		return ""
	}
	return "xxxx-xxxx-xxxx-" + digits[len(digits)-4:]
}
