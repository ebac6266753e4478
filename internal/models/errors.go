package models

import "errors"

// Domain errors. Their Error() strings are the exact messages rendered into
// the failure envelope, so handlers never re-map text.
var (
	ErrUserNotFound        = errors.New("User not found")
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrInsufficientFunds   = errors.New("Insufficient funds")
	ErrInvalidAmount       = errors.New("Invalid amount")
	ErrAlreadyResolved     = errors.New("Transaction has already been accepted or denied")
	ErrInvalidAccepted     = errors.New("Invalid input in field accepted")
)

// MissingFieldError reports a required request field that was absent or
// empty. Field is the wire name (e.g. "sender_id").
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing required field: " + e.Field
}
