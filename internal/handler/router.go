package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP surface. Route shapes follow the public API:
// accounts are addressed by number, transaction history by account and
// optionally by type.
func NewRouter(accounts *AccountHandler, transactions *TransactionHandler, health *HealthHandler, mws ...mux.MiddlewareFunc) http.Handler {
	r := mux.NewRouter()
	r.Use(mws...)

	r.HandleFunc("/health/live", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Readiness).Methods(http.MethodGet)

	r.HandleFunc("/accounts", accounts.Create).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{accountNumber}", accounts.Get).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{accountNumber}", accounts.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/transactions", transactions.Create).Methods(http.MethodPost)
	r.HandleFunc("/transactions/account-number/{accountNumber}/transaction-type/{transactionType}",
		transactions.ListByAccountAndType).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{accountNumber}", transactions.ListByAccount).Methods(http.MethodGet)

	return r
}
