package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/bank-ledger/internal/domain"
)

func TestCreateAccount_Handler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		rec := serve(t, &mockEngine{}, &mockQueries{}, &mockAccounts{}, http.MethodPost, "/accounts",
			`{"account_number":123456,"balance":500}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		accounts := &mockAccounts{err: fmt.Errorf("CreateAccount: %w", domain.ErrAccountExists)}
		rec := serve(t, &mockEngine{}, &mockQueries{}, accounts, http.MethodPost, "/accounts",
			`{"account_number":123456}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ACCOUNT_ALREADY_EXISTS", resp.Error.Code)
	})

	t.Run("missing account number", func(t *testing.T) {
		rec := serve(t, &mockEngine{}, &mockQueries{}, &mockAccounts{}, http.MethodPost, "/accounts",
			`{"balance":500}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative balance", func(t *testing.T) {
		rec := serve(t, &mockEngine{}, &mockQueries{}, &mockAccounts{}, http.MethodPost, "/accounts",
			`{"account_number":123456,"balance":-1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(t, &mockEngine{}, &mockQueries{}, &mockAccounts{}, http.MethodPost, "/accounts", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetAccount_Handler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		accounts := &mockAccounts{account: &domain.Account{AccountNumber: 123456, Balance: 700}}
		rec := serve(t, &mockEngine{}, &mockQueries{}, accounts, http.MethodGet, "/accounts/123456", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing maps to 404", func(t *testing.T) {
		accounts := &mockAccounts{err: fmt.Errorf("GetAccount: %w", domain.ErrNotFound)}
		rec := serve(t, &mockEngine{}, &mockQueries{}, accounts, http.MethodGet, "/accounts/123456", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteAccount_Handler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		rec := serve(t, &mockEngine{}, &mockQueries{}, &mockAccounts{}, http.MethodDelete, "/accounts/123456", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("history blocks deletion", func(t *testing.T) {
		accounts := &mockAccounts{err: fmt.Errorf("DeleteAccount: %w", domain.ErrAccountHasHistory)}
		rec := serve(t, &mockEngine{}, &mockQueries{}, accounts, http.MethodDelete, "/accounts/123456", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ACCOUNT_HAS_HISTORY", resp.Error.Code)
	})
}
