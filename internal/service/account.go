package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/logging"
)

type accountStore interface {
	Create(ctx context.Context, account *domain.Account) error
	Get(ctx context.Context, accountNumber int64) (*domain.Account, error)
	Delete(ctx context.Context, accountNumber int64) error
}

type historyCounter interface {
	CountByAccount(ctx context.Context, accountNumber int64) (int64, error)
}

type AccountService struct {
	accounts     accountStore
	transactions historyCounter
}

func NewAccountService(accounts accountStore, transactions historyCounter) *AccountService {
	return &AccountService{accounts: accounts, transactions: transactions}
}

func (s *AccountService) CreateAccount(ctx context.Context, accountNumber, initialBalance int64) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if initialBalance < 0 {
		return nil, fmt.Errorf("CreateAccount: initial balance %d: %w", initialBalance, domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		AccountNumber: accountNumber,
		Balance:       initialBalance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_number", accountNumber,
		"initial_balance", initialBalance,
	)

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	account, err := s.accounts.Get(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

// DeleteAccount removes an account without history. Accounts referenced by
// transaction records are kept so the ledger stays reconstructable.
func (s *AccountService) DeleteAccount(ctx context.Context, accountNumber int64) error {
	count, err := s.transactions.CountByAccount(ctx, accountNumber)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("DeleteAccount: account %d has %d transactions: %w",
			accountNumber, count, domain.ErrAccountHasHistory)
	}

	if err := s.accounts.Delete(ctx, accountNumber); err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account deleted", "account_number", accountNumber)
	return nil
}
