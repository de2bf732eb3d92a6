package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/logging"
	"github.com/mpontes/bank-ledger/internal/service"
)

type transactionEngine interface {
	Apply(ctx context.Context, req service.TransactionRequest) (*service.TransactionResponse, error)
}

type queryService interface {
	ListByAccount(ctx context.Context, accountNumber int64) ([]domain.Transaction, error)
	ListByAccountAndType(ctx context.Context, accountNumber int64, txType domain.TransactionType) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	engine  transactionEngine
	queries queryService
}

func NewTransactionHandler(engine transactionEngine, queries queryService) *TransactionHandler {
	return &TransactionHandler{engine: engine, queries: queries}
}

type createTransactionRequest struct {
	Origin      *int64 `json:"origin"`
	Destination *int64 `json:"destination"`
	Amount      *int64 `json:"amount"`
	Type        string `json:"type"`
}

func (r createTransactionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Origin == nil {
		errs = append(errs, FieldError{Field: "origin", Message: "required"})
	}
	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if *r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.TransactionType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be DEPOSIT, WITHDRAWAL, or TRANSFER"})
	} else if domain.TransactionType(r.Type) == domain.TransactionTypeTransfer && r.Destination == nil {
		errs = append(errs, FieldError{Field: "destination", Message: "required for transfers"})
	}
	return errs
}

type transactionResponseDTO struct {
	Origin      int64  `json:"origin"`
	Destination *int64 `json:"destination,omitempty"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
}

type transactionDTO struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber int64     `json:"account_number"`
	Amount        int64     `json:"amount"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionDTOs(transactions []domain.Transaction) []transactionDTO {
	dtos := make([]transactionDTO, len(transactions))
	for i, t := range transactions {
		dtos[i] = transactionDTO{
			ID:            t.ID,
			AccountNumber: t.AccountNumber,
			Amount:        t.Amount,
			Type:          string(t.Type),
			CreatedAt:     t.CreatedAt,
		}
	}
	return dtos
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	resp, err := h.engine.Apply(r.Context(), service.TransactionRequest{
		Origin:      *req.Origin,
		Destination: req.Destination,
		Amount:      *req.Amount,
		Type:        domain.TransactionType(req.Type),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to apply transaction",
			"origin", *req.Origin,
			"type", req.Type,
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, transactionResponseDTO{
		Origin:      resp.Origin,
		Destination: resp.Destination,
		Amount:      resp.Amount,
		Type:        string(resp.Type),
	})
}

func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, appErr := accountNumberFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	transactions, err := h.queries.ListByAccount(r.Context(), accountNumber)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions",
			"account_number", accountNumber,
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(transactions))
}

func (h *TransactionHandler) ListByAccountAndType(w http.ResponseWriter, r *http.Request) {
	accountNumber, appErr := accountNumberFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	txType := domain.TransactionType(mux.Vars(r)["transactionType"])

	transactions, err := h.queries.ListByAccountAndType(r.Context(), accountNumber, txType)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions by type",
			"account_number", accountNumber,
			"type", txType,
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(transactions))
}
