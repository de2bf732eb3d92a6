package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/repository"
	"github.com/mpontes/bank-ledger/internal/testutil"
)

func newAccount(accountNumber, balance int64) *domain.Account {
	now := time.Now().UTC()
	return &domain.Account{
		AccountNumber: accountNumber,
		Balance:       balance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount(123456, 500)))

	got, err := repo.Get(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), got.AccountNumber)
	assert.Equal(t, int64(500), got.Balance)
	assert.Equal(t, int64(1), got.Version)

	// Reads without intervening writes are idempotent.
	again, err := repo.Get(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount(123456, 0)))

	err := repo.Create(ctx, newAccount(123456, 100))
	require.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestAccountRepository_GetMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)

	_, err := repo.Get(context.Background(), 999999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepository_UpdateIncrementsVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	account := testutil.SeedAccount(t, db, 123456, 100)

	account.Balance = 250
	account.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, account))

	assert.Equal(t, int64(2), account.Version)
	assert.Equal(t, int64(250), testutil.GetAccountBalance(t, db, 123456))
	assert.Equal(t, int64(2), testutil.GetAccountVersion(t, db, 123456))
}

func TestAccountRepository_UpdateStaleVersionConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	testutil.SeedAccount(t, db, 123456, 100)

	first, err := repo.Get(ctx, 123456)
	require.NoError(t, err)
	stale, err := repo.Get(ctx, 123456)
	require.NoError(t, err)

	first.Balance = 150
	require.NoError(t, repo.Update(ctx, first))

	stale.Balance = 175
	err = repo.Update(ctx, stale)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	// The losing write must not land.
	assert.Equal(t, int64(150), testutil.GetAccountBalance(t, db, 123456))
}

func TestAccountRepository_UpdateBalanceInTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	testutil.SeedAccount(t, db, 123456, 100)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	account, err := repo.GetForUpdate(ctx, tx, 123456)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateBalance(ctx, tx, 123456, account.Balance+50, account.Version+1))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(150), testutil.GetAccountBalance(t, db, 123456))
	assert.Equal(t, int64(2), testutil.GetAccountVersion(t, db, 123456))
}

func TestAccountRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	testutil.SeedAccount(t, db, 123456, 0)

	require.NoError(t, repo.Delete(ctx, 123456))

	_, err := repo.Get(ctx, 123456)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again reports not found rather than silent success.
	err = repo.Delete(ctx, 123456)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
