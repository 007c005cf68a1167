package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the reward redemption core. Handlers map these to HTTP
// statuses; services map them to structured result payloads.
var (
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInvalidState       = errors.New("invalid state")
	ErrExpired            = errors.New("expired")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
)

// DomainError wraps a sentinel with a caller-facing message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError indicates that an entity does not exist.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with id %s not found", entity, id),
	}
}

// NewOutOfStockError indicates a reward has no remaining availability.
func NewOutOfStockError(name string) *DomainError {
	return &DomainError{
		Err:     ErrOutOfStock,
		Message: fmt.Sprintf("reward %q is out of stock", name),
	}
}

// NewInvalidStateError indicates an illegal state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewExpiredError indicates a claimed reward's expiry has passed.
func NewExpiredError(id string) *DomainError {
	return &DomainError{
		Err:     ErrExpired,
		Message: fmt.Sprintf("claimed reward %s has expired", id),
	}
}

// NewInsufficientPointsError indicates the wallet debit would overdraw the balance.
func NewInsufficientPointsError(required, balance int64) *DomainError {
	return &DomainError{
		Err:     ErrInsufficientPoints,
		Message: fmt.Sprintf("requires %d points but balance is %d", required, balance),
	}
}

// NewConflictError indicates an optimistic-lock race with a concurrent writer.
func NewConflictError(msg string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: msg}
}

// NewValidationError indicates malformed input.
func NewValidationError(msg string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: msg}
}
