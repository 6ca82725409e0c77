package model

import "errors"

var (
	// ErrNotFound is returned when a referenced medication or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when usage exceeds the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)
