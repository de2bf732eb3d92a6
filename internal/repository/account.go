package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mpontes/bank-ledger/internal/domain"
)

const accountColumns = `account_number, balance, version, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (account_number, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.AccountNumber, account.Balance, account.Version,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: account %d: %w", account.AccountNumber, domain.ErrAccountExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) Get(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, accountNumber,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: account %d: %w", accountNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

// Update persists the full account state conditionally on the version the
// caller read. Zero affected rows means somebody else committed in between;
// the caller must re-read and redo its mutation.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2, updated_at = $3
		WHERE account_number = $4 AND version = $5`,
		account.Balance, account.Version+1, account.UpdatedAt,
		account.AccountNumber, account.Version,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: account %d version %d: %w",
			account.AccountNumber, account.Version, domain.ErrVersionConflict)
	}
	account.Version++
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountNumber int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE account_number = $1`, accountNumber,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: account %d: %w", accountNumber, domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, accountNumber int64) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, accountNumber,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: account %d: %w", accountNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, accountNumber int64, newBalance, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2, updated_at = now()
		WHERE account_number = $3 AND version = $4`,
		newBalance, newVersion, accountNumber, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: account %d: %w", accountNumber, domain.ErrVersionConflict)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(&a.AccountNumber, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
