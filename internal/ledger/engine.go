package ledger

import (
	"sync"
	"time"

	"payment-ledger/internal/models"
	"payment-ledger/internal/storage"
)

// timestampLayout is the coarse wall-clock resolution transactions carry.
const timestampLayout = "15:04"

// Engine is the transaction state machine. A transaction is either a direct
// transfer (created without an accepted field, never resolved) or a payment
// request that moves Unresolved -> Accepted or Unresolved -> Denied exactly
// once. Funds move only on acceptance, and only when the sender can cover
// the amount.
type Engine struct {
	db     *storage.DB
	ledger *Ledger

	// mu serializes settlements so two concurrent transfers from the same
	// sender cannot both pass the sufficiency check on a stale balance.
	mu sync.Mutex
}

// NewEngine creates an Engine over the given store and ledger.
func NewEngine(db *storage.DB, l *Ledger) *Engine {
	return &Engine{db: db, ledger: l}
}

// CreateTransaction validates and records a new transaction.
//
// Without an accepted field the record is stored unresolved and no money
// moves. With accepted=true the transfer settles immediately, provided the
// amount is positive and covered by the sender's balance. accepted=false at
// creation has no meaning and is rejected without persisting anything.
func (e *Engine) CreateTransaction(req models.TransactionRequest) (*models.Transaction, error) {
	switch {
	case req.SenderID == nil:
		return nil, &models.MissingFieldError{Field: "sender_id"}
	case req.ReceiverID == nil:
		return nil, &models.MissingFieldError{Field: "receiver_id"}
	case req.Amount == nil:
		return nil, &models.MissingFieldError{Field: "amount"}
	}

	if _, err := e.ledger.GetUser(*req.SenderID); err != nil {
		return nil, err
	}
	if _, err := e.ledger.GetUser(*req.ReceiverID); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Timestamp:  time.Now().Format(timestampLayout),
		SenderID:   *req.SenderID,
		ReceiverID: *req.ReceiverID,
		Amount:     *req.Amount,
		Message:    req.Message,
		Resolution: models.Unresolved,
	}

	if req.Accepted == nil {
		return e.db.InsertTransaction(t)
	}

	if !*req.Accepted || t.Amount <= 0 {
		return nil, models.ErrInvalidAccepted
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFunds(t.SenderID, t.Amount); err != nil {
		return nil, err
	}

	t.Resolution = models.Accepted
	stored, err := e.db.InsertTransaction(t)
	if err != nil {
		return nil, err
	}
	if err := e.moveFunds(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Resolve applies the accept/deny decision to a pending payment request.
// The decision is write-once: a transaction that is already accepted or
// denied never changes again, whatever the new value is.
func (e *Engine) Resolve(id int64, accepted *bool) (*models.Transaction, error) {
	t, err := e.db.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}

	if _, err := e.ledger.GetUser(t.SenderID); err != nil {
		return nil, err
	}
	if _, err := e.ledger.GetUser(t.ReceiverID); err != nil {
		return nil, err
	}

	if t.Resolution != models.Unresolved {
		return nil, models.ErrAlreadyResolved
	}
	if accepted == nil {
		return nil, &models.MissingFieldError{Field: "accepted"}
	}

	if !*accepted {
		if err := e.db.ResolveTransaction(t.ID, time.Now().Format(timestampLayout), models.Denied); err != nil {
			return nil, err
		}
		return e.db.GetTransactionByID(t.ID)
	}

	if t.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFunds(t.SenderID, t.Amount); err != nil {
		return nil, err
	}

	// The IS NULL guard in the store catches a resolution that raced past
	// the check above; nothing moves in that case.
	if err := e.db.ResolveTransaction(t.ID, time.Now().Format(timestampLayout), models.Accepted); err != nil {
		return nil, err
	}
	if err := e.moveFunds(t); err != nil {
		return nil, err
	}
	return e.db.GetTransactionByID(t.ID)
}

// checkFunds re-reads the sender's balance and rejects the settlement if it
// cannot cover the amount. Callers hold mu, so the balance cannot change
// between this check and moveFunds.
func (e *Engine) checkFunds(senderID, amount int64) error {
	sender, err := e.ledger.GetUser(senderID)
	if err != nil {
		return err
	}
	if amount > sender.Balance {
		return models.ErrInsufficientFunds
	}
	return nil
}

func (e *Engine) moveFunds(t *models.Transaction) error {
	if err := e.ledger.AdjustBalance(t.SenderID, -t.Amount); err != nil {
		return err
	}
	return e.ledger.AdjustBalance(t.ReceiverID, t.Amount)
}
