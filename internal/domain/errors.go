package domain

import "errors"

var (
	// ErrProductNotFound indicates a cart line referenced an unknown product code.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantity indicates a cart line quantity was zero or negative.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInsufficientStock indicates a cart line asked for more units than are in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientPayment indicates the paid amount does not cover the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrPurchaseNotFound indicates a purchase lookup by id matched nothing.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrTransactionAborted indicates the storage layer aborted the transaction
	// due to a conflict or timeout. Callers may retry a bounded number of times.
	ErrTransactionAborted = errors.New("transaction aborted")
)
