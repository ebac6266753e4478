// Package ledger owns the payment domain: the user ledger that holds
// balances and the transaction engine that decides when they may move.
package ledger

import (
	"payment-ledger/internal/models"
	"payment-ledger/internal/storage"
)

// Ledger owns user records and balance arithmetic.
type Ledger struct {
	db *storage.DB
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(db *storage.DB) *Ledger {
	return &Ledger{db: db}
}

// CreateUser registers a new user with an initial balance.
func (l *Ledger) CreateUser(name, username string, balance int64) (*models.User, error) {
	if name == "" {
		return nil, &models.MissingFieldError{Field: "name"}
	}
	if username == "" {
		return nil, &models.MissingFieldError{Field: "username"}
	}
	return l.db.CreateUser(name, username, balance)
}

// GetUser retrieves a user by id.
func (l *Ledger) GetUser(id int64) (*models.User, error) {
	return l.db.GetUserByID(id)
}

// ListUsers retrieves all users without balances.
func (l *Ledger) ListUsers() ([]models.UserSummary, error) {
	return l.db.ListUsers()
}

// DeleteUser removes a user and returns the deleted snapshot. Transactions
// referencing the user are untouched; history lookups of the counterparty
// keep working.
func (l *Ledger) DeleteUser(id int64) (*models.User, error) {
	user, err := l.db.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if err := l.db.DeleteUser(id); err != nil {
		return nil, err
	}
	return user, nil
}

// AdjustBalance applies balance += delta. It performs no bounds check; the
// transaction engine is responsible for ensuring the result is non-negative
// before calling.
func (l *Ledger) AdjustBalance(id, delta int64) error {
	return l.db.AdjustBalance(id, delta)
}

// GetUserWithHistory retrieves a user together with every transaction they
// sent or received, in creation order. Transactions is empty, never nil,
// when the user has no history.
func (l *Ledger) GetUserWithHistory(id int64) (*models.UserWithHistory, error) {
	user, err := l.db.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	transactions, err := l.db.TransactionsOfUser(id)
	if err != nil {
		return nil, err
	}

	return &models.UserWithHistory{User: *user, Transactions: transactions}, nil
}
