package inventory

import "errors"

var (
	ErrOutOfStock           = errors.New("no closed bottle left to open")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidDecantRequest = errors.New("invalid decant request")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
)
