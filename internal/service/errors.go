package service

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to order")
	ErrInvalidItem        = errors.New("invalid line item")
	ErrForbidden          = errors.New("not authorized for this order")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrIllegalTransition  = errors.New("illegal order status transition")
	ErrTransactionFailure = errors.New("order transaction failed")
)
