package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is the durable record of an already-applied balance change.
// Records are append-only: never updated or deleted once written. A transfer
// produces two records, one per participating account.
type Transaction struct {
	ID            uuid.UUID
	AccountNumber int64
	Amount        int64
	Type          TransactionType
	CreatedAt     time.Time
}
