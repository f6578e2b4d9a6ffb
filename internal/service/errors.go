// Package service implements the business rules of the bookstore:
// the cart aggregate, the checkout settlement engine and the
// loyalty points ledger. It is persistence- and transport-agnostic;
// storage is reached through the store interfaces defined here and
// HTTP concerns live entirely in the handler package.
package service

import "errors"

// Sentinel errors returned by cart, checkout and loyalty
// operations. All are user-recoverable validation failures: the
// caller shows a message and lets the user retry. Handlers map them
// to 4xx responses; anything else rolls back the settlement
// transaction and surfaces as a generic failure.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOutOfStock           = errors.New("book is out of stock")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrInvalidDelta         = errors.New("quantity delta must be +1 or -1")
	ErrInvalidPoints        = errors.New("points must be positive")
)
