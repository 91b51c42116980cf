package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Roshansuthar1105/Zunzo/internal/catalog"
	"github.com/Roshansuthar1105/Zunzo/internal/orders"
	"github.com/Roshansuthar1105/Zunzo/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: code, Message: message})
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Stock failures keep their specific message (product name, available vs.
// requested) since that is what the shopper needs to act on.
func handleServiceError(w http.ResponseWriter, err error) {
	var stockErr *catalog.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, catalog.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_cart", err.Error())
	case errors.As(err, &stockErr):
		respondError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "Order not found")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", "Not authorized to view this order")
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", "Invalid status value")
	case errors.Is(err, orders.ErrAlreadyCancelled):
		respondError(w, http.StatusConflict, "already_cancelled", "Order is already cancelled")
	case errors.Is(err, service.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}
