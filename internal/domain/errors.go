package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthorized access")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("invalid request")
)

// Conflict variants. All of them satisfy errors.Is(err, ErrConflict).
var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid order status transition", ErrConflict)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrPromotionPending  = fmt.Errorf("%w: promotion already requested", ErrConflict)
)
