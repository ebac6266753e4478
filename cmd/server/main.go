package main

import (
	"log"
	"net/http"
	"os"

	"payment-ledger/internal/handlers"
	"payment-ledger/internal/ledger"
	"payment-ledger/internal/storage"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "venmo.db"
	}

	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	l := ledger.NewLedger(db)
	e := ledger.NewEngine(db, l)
	h := handlers.NewHandlers(l, e)

	mux := setupRouter(h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupRouter registers the JSON API routes. The root path serves the user
// list as well.
func setupRouter(h *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.ListUsers)
	mux.HandleFunc("GET /api/users/{$}", h.ListUsers)
	mux.HandleFunc("POST /api/users/{$}", h.CreateUser)
	mux.HandleFunc("GET /api/user/{id}/{$}", h.GetUser)
	mux.HandleFunc("DELETE /api/user/{id}/{$}", h.DeleteUser)
	mux.HandleFunc("POST /api/transactions/{$}", h.CreateTransaction)
	mux.HandleFunc("POST /api/transaction/{id}/{$}", h.ResolveTransaction)

	return mux
}
