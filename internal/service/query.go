package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpontes/bank-ledger/internal/domain"
)

type accountGetter interface {
	Get(ctx context.Context, accountNumber int64) (*domain.Account, error)
}

type transactionLister interface {
	ListByAccount(ctx context.Context, accountNumber int64) ([]domain.Transaction, error)
	ListByAccountAndType(ctx context.Context, accountNumber int64, txType domain.TransactionType) ([]domain.Transaction, error)
}

// QueryService is the read-only side of the ledger. It never mutates.
type QueryService struct {
	accounts     accountGetter
	transactions transactionLister
}

func NewQueryService(accounts accountGetter, transactions transactionLister) *QueryService {
	return &QueryService{accounts: accounts, transactions: transactions}
}

func (s *QueryService) ListByAccount(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	if err := s.resolveAccount(ctx, accountNumber); err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}

	transactions, err := s.transactions.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("ListByAccount: no transactions for account %d: %w",
			accountNumber, domain.ErrNotFound)
	}
	return transactions, nil
}

func (s *QueryService) ListByAccountAndType(ctx context.Context, accountNumber int64, txType domain.TransactionType) ([]domain.Transaction, error) {
	if !txType.IsValid() {
		return nil, fmt.Errorf("ListByAccountAndType: type %q: %w", txType, domain.ErrInvalidRequest)
	}

	if err := s.resolveAccount(ctx, accountNumber); err != nil {
		return nil, fmt.Errorf("ListByAccountAndType: %w", err)
	}

	transactions, err := s.transactions.ListByAccountAndType(ctx, accountNumber, txType)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountAndType: %w", err)
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("ListByAccountAndType: no %s transactions for account %d: %w",
			txType, accountNumber, domain.ErrNotFound)
	}
	return transactions, nil
}

// A missing account on the query path is unprocessable rather than a plain
// lookup miss, matching the write path's treatment.
func (s *QueryService) resolveAccount(ctx context.Context, accountNumber int64) error {
	if _, err := s.accounts.Get(ctx, accountNumber); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account %d: %w", accountNumber, domain.ErrAccountNotFound)
		}
		return err
	}
	return nil
}
