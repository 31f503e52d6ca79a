package service

import (
	"errors"
	"fmt"

	"perfume-pos/internal/inventory"

	"github.com/google/uuid"
)

// Error categories. Every error returned by this package matches exactly one
// of them with errors.Is; handlers map categories to HTTP status codes.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrOutOfStock           = inventory.ErrOutOfStock
	ErrInsufficientStock    = inventory.ErrInsufficientStock
	ErrInvalidDecantRequest = inventory.ErrInvalidDecantRequest
	ErrStateConflict        = errors.New("state conflict")
)

var (
	ErrProductNotFound  = categorized(ErrNotFound, "product not found")
	ErrSaleNotFound     = categorized(ErrNotFound, "sale not found")
	ErrUserNotFound     = categorized(ErrNotFound, "user not found")
	ErrInvalidQuantity  = categorized(ErrValidation, inventory.ErrInvalidQuantity.Error())
	ErrInvalidAmount    = categorized(ErrValidation, "amount must be greater than zero")
	ErrInvalidPayment   = categorized(ErrValidation, "payment type must be cash or credit")
	ErrEmptySale        = categorized(ErrValidation, "sale must have at least one item")
	ErrInvalidStatus    = categorized(ErrValidation, "status must be delivered or returned")
	ErrInvalidDate      = categorized(ErrValidation, "invalid date")
	ErrNotACreditSale   = categorized(ErrStateConflict, "sale is not a credit sale")
	ErrNotEcommerce     = categorized(ErrStateConflict, "sale is not an e-commerce order")
	ErrAlreadyFinal     = categorized(ErrStateConflict, "order is no longer pending")
	ErrNotDecantSource  = categorized(ErrInvalidDecantRequest, "product has no bottle to decant from")
	ErrInvalidStockEdit = categorized(ErrValidation, "stock values must not be negative")
	ErrInvalidVolume    = categorized(ErrValidation, "volumes are limited to two decimal places")
	ErrEmailExists      = categorized(ErrStateConflict, "email already exists")
	ErrSelfDeactivation = categorized(ErrValidation, "cannot deactivate your own account")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

type categoryError struct {
	category error
	msg      string
}

func (e *categoryError) Error() string { return e.msg }

func (e *categoryError) Unwrap() error { return e.category }

func categorized(category error, msg string) error {
	return &categoryError{category: category, msg: msg}
}

// validationError wraps a free-form message into ErrValidation.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// LineError names the sale line that stopped a sale.
type LineError struct {
	Index       int
	ProductID   uuid.UUID
	ProductName string
	Err         error
}

func (e *LineError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("item %d (%s): %v", e.Index, e.ProductName, e.Err)
	}
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// mapInventoryError lifts ledger errors into this package's taxonomy.
func mapInventoryError(err error) error {
	if errors.Is(err, inventory.ErrInvalidQuantity) {
		return ErrInvalidQuantity
	}
	return err
}
