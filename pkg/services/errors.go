package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers rows that do not exist and rows owned by someone else.
	ErrNotFound = errors.New("not found")

	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrWalletBusy means another submission for the same user held the
	// wallet lock for longer than we were willing to wait.
	ErrWalletBusy = errors.New("another video submission is in progress")
)

// ValidationError is a request that names a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// InsufficientFundsError is returned when the wallet cannot cover a video.
type InsufficientFundsError struct {
	BalanceCents  int64
	RequiredCents int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: have %d cents, need %d", e.BalanceCents, e.RequiredCents)
}

// ShortfallCents is how much more must be paid in before generation works.
func (e *InsufficientFundsError) ShortfallCents() int64 {
	balance := e.BalanceCents
	if balance < 0 {
		balance = 0
	}
	return e.RequiredCents - balance
}
