package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found, create the account first")
	ErrAccountHasHistory = errors.New("account has transaction history")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrVersionConflict   = errors.New("optimistic lock conflict")
	ErrRetryExhausted    = errors.New("gave up after repeated conflicts")
)
