package storage

import (
	"database/sql"
	"errors"

	"payment-ledger/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer, and every pooled connection to a
	// :memory: path would otherwise get its own database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS user (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			username TEXT NOT NULL,
			balance INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS txn (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			sender_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			message TEXT,
			accepted INTEGER
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ListUsers retrieves all users, without balances, ordered by id.
func (db *DB) ListUsers() ([]models.UserSummary, error) {
	rows, err := db.conn.Query("SELECT id, name, username FROM user ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// CreateUser inserts a new user and returns the stored record.
func (db *DB) CreateUser(name, username string, balance int64) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO user (name, username, balance) VALUES (?, ?, ?)",
		name, username, balance,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, username, balance FROM user WHERE id = ?",
		id,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user record. Transactions referencing the user are
// left in place.
func (db *DB) DeleteUser(id int64) error {
	result, err := db.conn.Exec("DELETE FROM user WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// AdjustBalance applies balance += delta as a single statement, so each
// balance mutation is one atomic operation keyed by user id. It performs no
// bounds check; the transaction engine enforces non-negativity.
func (db *DB) AdjustBalance(id, delta int64) error {
	result, err := db.conn.Exec(
		"UPDATE user SET balance = balance + ? WHERE id = ?",
		delta, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// InsertTransaction stores a new transaction and returns the stored record.
func (db *DB) InsertTransaction(t *models.Transaction) (*models.Transaction, error) {
	result, err := db.conn.Exec(
		"INSERT INTO txn (timestamp, sender_id, receiver_id, amount, message, accepted) VALUES (?, ?, ?, ?, ?, ?)",
		t.Timestamp, t.SenderID, t.ReceiverID, t.Amount, nullMessage(t.Message), nullAccepted(t.Resolution),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTransactionByID(id)
}

// GetTransactionByID retrieves a transaction by ID.
func (db *DB) GetTransactionByID(id int64) (*models.Transaction, error) {
	row := db.conn.QueryRow(
		"SELECT id, timestamp, sender_id, receiver_id, amount, message, accepted FROM txn WHERE id = ?",
		id,
	)

	t, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

// TransactionsOfUser retrieves every transaction the user sent or received,
// ordered by id. The result is never nil.
func (db *DB) TransactionsOfUser(id int64) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT id, timestamp, sender_id, receiver_id, amount, message, accepted FROM txn WHERE sender_id = ? OR receiver_id = ? ORDER BY id",
		id, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}

	return transactions, rows.Err()
}

// ResolveTransaction records the outcome of a pending request. The update is
// guarded on accepted IS NULL so the write-once rule holds even if two
// resolutions race; the loser reports ErrAlreadyResolved.
func (db *DB) ResolveTransaction(id int64, timestamp string, resolution models.Resolution) error {
	result, err := db.conn.Exec(
		"UPDATE txn SET timestamp = ?, accepted = ? WHERE id = ? AND accepted IS NULL",
		timestamp, nullAccepted(resolution), id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyResolved
	}
	return nil
}

func scanTransaction(scan func(...any) error) (*models.Transaction, error) {
	var (
		t        models.Transaction
		message  sql.NullString
		accepted sql.NullInt64
	)
	if err := scan(&t.ID, &t.Timestamp, &t.SenderID, &t.ReceiverID, &t.Amount, &message, &accepted); err != nil {
		return nil, err
	}

	t.Message = message.String
	switch {
	case !accepted.Valid:
		t.Resolution = models.Unresolved
	case accepted.Int64 != 0:
		t.Resolution = models.Accepted
	default:
		t.Resolution = models.Denied
	}
	return &t, nil
}

func nullMessage(message string) sql.NullString {
	return sql.NullString{String: message, Valid: message != ""}
}

func nullAccepted(r models.Resolution) sql.NullInt64 {
	switch r {
	case models.Accepted:
		return sql.NullInt64{Int64: 1, Valid: true}
	case models.Denied:
		return sql.NullInt64{Int64: 0, Valid: true}
	default:
		return sql.NullInt64{}
	}
}
