package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mpontes/bank-ledger/internal/domain"
)

const transactionColumns = `id, account_number, amount, type, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a transaction record inside the caller's database
// transaction so the record commits or rolls back with the balance change.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_number, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.AccountNumber, t.Amount, t.Type, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_number = $1 ORDER BY created_at`, accountNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows, "ListByAccount")
}

func (r *TransactionRepository) ListByAccountAndType(ctx context.Context, accountNumber int64, txType domain.TransactionType) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_number = $1 AND type = $2 ORDER BY created_at`,
		accountNumber, txType,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountAndType: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows, "ListByAccountAndType")
}

func (r *TransactionRepository) CountByAccount(ctx context.Context, accountNumber int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, accountNumber,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountByAccount: %w", err)
	}
	return count, nil
}

func collectTransactions(rows *sql.Rows, op string) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return transactions, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(&t.ID, &t.AccountNumber, &t.Amount, &t.Type, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
