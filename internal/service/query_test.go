package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/bank-ledger/internal/domain"
)

type mockTransactionLister struct {
	transactions []domain.Transaction
}

func (m *mockTransactionLister) ListByAccount(_ context.Context, accountNumber int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range m.transactions {
		if t.AccountNumber == accountNumber {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTransactionLister) ListByAccountAndType(_ context.Context, accountNumber int64, txType domain.TransactionType) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range m.transactions {
		if t.AccountNumber == accountNumber && t.Type == txType {
			out = append(out, t)
		}
	}
	return out, nil
}

func record(accountNumber int64, txType domain.TransactionType, amount int64) domain.Transaction {
	return domain.Transaction{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		Amount:        amount,
		Type:          txType,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestListByAccount(t *testing.T) {
	ctx := context.Background()
	accounts := newMockAccountStore(&domain.Account{AccountNumber: 123456})

	t.Run("returns transactions", func(t *testing.T) {
		lister := &mockTransactionLister{transactions: []domain.Transaction{
			record(123456, domain.TransactionTypeDeposit, 100),
			record(123456, domain.TransactionTypeWithdrawal, 30),
			record(999999, domain.TransactionTypeDeposit, 500),
		}}
		svc := NewQueryService(accounts, lister)

		got, err := svc.ListByAccount(ctx, 123456)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty history is not found", func(t *testing.T) {
		svc := NewQueryService(accounts, &mockTransactionLister{})

		_, err := svc.ListByAccount(ctx, 123456)

		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing account is unprocessable", func(t *testing.T) {
		svc := NewQueryService(accounts, &mockTransactionLister{})

		_, err := svc.ListByAccount(ctx, 999999)

		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestListByAccountAndType(t *testing.T) {
	ctx := context.Background()
	accounts := newMockAccountStore(&domain.Account{AccountNumber: 123456})
	lister := &mockTransactionLister{transactions: []domain.Transaction{
		record(123456, domain.TransactionTypeDeposit, 100),
		record(123456, domain.TransactionTypeDeposit, 200),
		record(123456, domain.TransactionTypeTransfer, 50),
	}}
	svc := NewQueryService(accounts, lister)

	t.Run("filters by type", func(t *testing.T) {
		got, err := svc.ListByAccountAndType(ctx, 123456, domain.TransactionTypeDeposit)

		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, tx := range got {
			assert.Equal(t, domain.TransactionTypeDeposit, tx.Type)
		}
	})

	t.Run("no matches is not found", func(t *testing.T) {
		_, err := svc.ListByAccountAndType(ctx, 123456, domain.TransactionTypeWithdrawal)

		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		_, err := svc.ListByAccountAndType(ctx, 123456, domain.TransactionType("pix"))

		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
