package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"payment-ledger/internal/ledger"
	"payment-ledger/internal/models"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	ledger *ledger.Ledger
	engine *ledger.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(l *ledger.Ledger, e *ledger.Engine) *Handlers {
	return &Handlers{ledger: l, engine: e}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError renders a domain error into the failure envelope. Validation
// and business-rule failures are 400; everything else in the taxonomy is
// 404, the default failure code. Errors outside the taxonomy are storage
// faults and surface as 500.
func writeError(w http.ResponseWriter, err error) {
	var missing *models.MissingFieldError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidAmount):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrTransactionNotFound),
		errors.Is(err, models.ErrAlreadyResolved),
		errors.Is(err, models.ErrInvalidAccepted):
		writeFailure(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListUsers responds with all users, without balances.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.ledger.ListUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, users)
}

// CreateUser registers a new user. The response carries an empty
// transactions list alongside the stored record.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Balance  int64  `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.ledger.CreateUser(body.Name, body.Username, body.Balance)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, models.UserWithHistory{User: *user, Transactions: []models.Transaction{}})
}

// GetUser responds with a user and their transaction history.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, models.ErrUserNotFound)
		return
	}

	user, err := h.ledger.GetUserWithHistory(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, user)
}

// DeleteUser removes a user and responds with the deleted snapshot.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, models.ErrUserNotFound)
		return
	}

	user, err := h.ledger.DeleteUser(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, user)
}

// CreateTransaction records a direct transfer or an immediately settled
// payment, depending on the accepted field.
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.engine.CreateTransaction(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, t)
}

// ResolveTransaction applies the accept/deny decision to a pending request.
func (h *Handlers) ResolveTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, models.ErrTransactionNotFound)
		return
	}

	var body struct {
		Accepted *bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.engine.Resolve(id, body.Accepted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, t)
}
