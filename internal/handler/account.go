package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/logging"
)

type accountService interface {
	CreateAccount(ctx context.Context, accountNumber, initialBalance int64) (*domain.Account, error)
	GetAccount(ctx context.Context, accountNumber int64) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountNumber int64) error
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	AccountNumber *int64 `json:"account_number"`
	Balance       *int64 `json:"balance"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountNumber == nil {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	} else if *r.AccountNumber <= 0 {
		errs = append(errs, FieldError{Field: "account_number", Message: "must be positive"})
	}
	if r.Balance != nil && *r.Balance < 0 {
		errs = append(errs, FieldError{Field: "balance", Message: "must not be negative"})
	}
	return errs
}

type accountDTO struct {
	AccountNumber int64     `json:"account_number"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var balance int64
	if req.Balance != nil {
		balance = *req.Balance
	}

	account, err := h.accounts.CreateAccount(r.Context(), *req.AccountNumber, balance)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountNumber, appErr := accountNumberFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountNumber)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountNumber, appErr := accountNumberFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), accountNumber); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete account", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func accountNumberFromPath(r *http.Request) (int64, *AppError) {
	raw := mux.Vars(r)["accountNumber"]
	accountNumber, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountNumber <= 0 {
		return 0, ErrInvalidRequest
	}
	return accountNumber, nil
}
