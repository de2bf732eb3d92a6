package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mpontes/bank-ledger/internal/domain"
)

func SeedAccount(t *testing.T, db *sql.DB, accountNumber, balance int64) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	account := &domain.Account{
		AccountNumber: accountNumber,
		Balance:       balance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := db.Exec(
		`INSERT INTO accounts (account_number, balance, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		account.AccountNumber, account.Balance, account.Version,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %d: %v", accountNumber, err)
	}
	return account
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountNumber int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(
		`SELECT balance FROM accounts WHERE account_number = $1`, accountNumber,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance for account %d: %v", accountNumber, err)
	}
	return balance
}

func GetAccountVersion(t *testing.T, db *sql.DB, accountNumber int64) int64 {
	t.Helper()

	var version int64
	err := db.QueryRow(
		`SELECT version FROM accounts WHERE account_number = $1`, accountNumber,
	).Scan(&version)
	if err != nil {
		t.Fatalf("get version for account %d: %v", accountNumber, err)
	}
	return version
}

func CountTransactions(t *testing.T, db *sql.DB, accountNumber int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, accountNumber,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for account %d: %v", accountNumber, err)
	}
	return count
}

func CountTransactionsByType(t *testing.T, db *sql.DB, accountNumber int64, txType domain.TransactionType) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1 AND type = $2`,
		accountNumber, txType,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count %s transactions for account %d: %v", txType, accountNumber, err)
	}
	return count
}
