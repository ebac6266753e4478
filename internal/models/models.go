package models

import "encoding/json"

// Resolution is the tri-state outcome of a transaction. The database stores
// it as a nullable integer (NULL/1/0); clients see an "accepted" field that
// is absent, true, or false.
type Resolution int

const (
	// Unresolved marks a payment request awaiting acceptance or denial,
	// or a direct transfer that was created without an accepted field.
	Unresolved Resolution = iota
	Accepted
	Denied
)

// User represents a ledger account holder.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// UserSummary is the shape returned by the list endpoint. Balances are not
// exposed there.
type UserSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UserWithHistory is a user enriched with their ordered transaction history.
// Transactions is always present in JSON, even when empty.
type UserWithHistory struct {
	User
	Transactions []Transaction `json:"transactions"`
}

// Transaction represents a money movement between two users. Timestamp is
// coarse wall-clock time (HH:MM) of creation or last resolution.
type Transaction struct {
	ID         int64      `json:"id"`
	Timestamp  string     `json:"timestamp"`
	SenderID   int64      `json:"sender_id"`
	ReceiverID int64      `json:"receiver_id"`
	Amount     int64      `json:"amount"`
	Message    string     `json:"message,omitempty"`
	Resolution Resolution `json:"-"`
}

// MarshalJSON renders Resolution as the wire-level accepted field:
// absent when unresolved, true when accepted, false when denied.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	out := struct {
		alias
		Accepted *bool `json:"accepted,omitempty"`
	}{alias: alias(t)}

	switch t.Resolution {
	case Accepted:
		v := true
		out.Accepted = &v
	case Denied:
		v := false
		out.Accepted = &v
	}
	return json.Marshal(out)
}

// TransactionRequest is the decoded body of a create-transaction call.
// Pointer fields distinguish an absent field from a zero value; the engine's
// state machine branches on that distinction.
type TransactionRequest struct {
	SenderID   *int64 `json:"sender_id"`
	ReceiverID *int64 `json:"receiver_id"`
	Amount     *int64 `json:"amount"`
	Message    string `json:"message"`
	Accepted   *bool  `json:"accepted"`
}
