package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/logging"
	"github.com/mpontes/bank-ledger/internal/retry"
)

type accountMutator interface {
	Get(ctx context.Context, accountNumber int64) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, accountNumber int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, accountNumber int64, newBalance, newVersion int64) error
}

type transactionWriter interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
}

type TransactionRequest struct {
	Origin      int64
	Destination *int64
	Amount      int64
	Type        domain.TransactionType
}

// TransactionResponse echoes the applied operation, independent of how the
// ledger stores it.
type TransactionResponse struct {
	Origin      int64
	Destination *int64
	Amount      int64
	Type        domain.TransactionType
}

// TransactionService is the engine owning the write path to accounts and
// transaction records. All balance mutations go through it.
type TransactionService struct {
	accounts     accountMutator
	transactions transactionWriter
	db           *sql.DB
	retryCfg     retry.Config
}

func NewTransactionService(accounts accountMutator, transactions transactionWriter, db *sql.DB, retryCfg retry.Config) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		db:           db,
		retryCfg:     retryCfg,
	}
}

func (s *TransactionService) Apply(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("Apply: %w", err)
	}

	var (
		resp *TransactionResponse
		err  error
	)
	if req.Type == domain.TransactionTypeTransfer {
		resp, err = s.applyTransfer(ctx, req)
	} else {
		resp, err = s.applySingle(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("Apply: %w", err)
	}

	logging.FromContext(ctx).Info("transaction applied",
		"type", req.Type,
		"origin", req.Origin,
		"destination", destinationAttr(req.Destination),
		"amount", req.Amount,
	)

	return resp, nil
}

func validateRequest(req TransactionRequest) error {
	if !req.Type.IsValid() {
		return fmt.Errorf("type %q: %w", req.Type, domain.ErrInvalidRequest)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("amount %d: %w", req.Amount, domain.ErrInvalidAmount)
	}
	if req.Type == domain.TransactionTypeTransfer {
		if req.Destination == nil {
			return fmt.Errorf("transfer requires origin and destination: %w", domain.ErrInvalidRequest)
		}
		if *req.Destination == req.Origin {
			return fmt.Errorf("transfer origin and destination must differ: %w", domain.ErrInvalidRequest)
		}
	}
	return nil
}

// applySingle handles deposits and withdrawals. Each retry attempt re-reads
// the account, so a version conflict never reapplies a stale balance.
func (s *TransactionService) applySingle(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	err := retry.Do(ctx, s.retryCfg, func() error {
		return s.applySingleOnce(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("applySingle: %w", err)
	}

	return &TransactionResponse{
		Origin: req.Origin,
		Amount: req.Amount,
		Type:   req.Type,
	}, nil
}

func (s *TransactionService) applySingleOnce(ctx context.Context, req TransactionRequest) error {
	account, err := s.accounts.Get(ctx, req.Origin)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("origin %d: %w", req.Origin, domain.ErrAccountNotFound)
		}
		return err
	}

	newBalance := account.Balance + req.Amount
	if req.Type == domain.TransactionTypeWithdrawal {
		if account.Balance < req.Amount {
			return fmt.Errorf("account %d balance %d amount %d: %w",
				req.Origin, account.Balance, req.Amount, domain.ErrInsufficientFunds)
		}
		newBalance = account.Balance - req.Amount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.UpdateBalance(ctx, tx, req.Origin, newBalance, account.Version+1); err != nil {
		return err
	}

	record := newTransactionRecord(req.Origin, req.Amount, req.Type)
	if err := s.transactions.Create(ctx, tx, record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// applyTransfer moves funds between two accounts as one atomic unit: both
// balance updates and both transaction records commit together or not at
// all. A serialization conflict anywhere inside an attempt rolls the whole
// attempt back and redoes it from fresh reads.
func (s *TransactionService) applyTransfer(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	destination := *req.Destination

	err := retry.Do(ctx, s.retryCfg, func() error {
		return s.applyTransferOnce(ctx, req.Origin, destination, req.Amount)
	})
	if err != nil {
		return nil, fmt.Errorf("applyTransfer: %w", err)
	}

	return &TransactionResponse{
		Origin:      req.Origin,
		Destination: req.Destination,
		Amount:      req.Amount,
		Type:        domain.TransactionTypeTransfer,
	}, nil
}

func (s *TransactionService) applyTransferOnce(ctx context.Context, origin, destination, amount int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.lockAccountsInOrder(ctx, tx, origin, destination)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("origin %d or destination %d: %w", origin, destination, domain.ErrAccountNotFound)
		}
		return err
	}

	from, to := locked[origin], locked[destination]

	if from.Balance < amount {
		return fmt.Errorf("account %d balance %d amount %d: %w",
			origin, from.Balance, amount, domain.ErrInsufficientFunds)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, origin, from.Balance-amount, from.Version+1); err != nil {
		return fmt.Errorf("debit origin: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, destination, to.Balance+amount, to.Version+1); err != nil {
		return fmt.Errorf("credit destination: %w", err)
	}

	debit := newTransactionRecord(origin, amount, domain.TransactionTypeTransfer)
	credit := newTransactionRecord(destination, amount, domain.TransactionTypeTransfer)
	if err := s.transactions.Create(ctx, tx, debit); err != nil {
		return fmt.Errorf("write origin record: %w", err)
	}
	if err := s.transactions.Create(ctx, tx, credit); err != nil {
		return fmt.Errorf("write destination record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// lockAccountsInOrder acquires row locks in ascending account-number order
// so concurrent transfers over the same pair cannot deadlock on each other.
func (s *TransactionService) lockAccountsInOrder(ctx context.Context, tx *sql.Tx, numbers ...int64) (map[int64]*domain.Account, error) {
	sorted := make([]int64, len(numbers))
	copy(sorted, numbers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	result := make(map[int64]*domain.Account, len(numbers))
	for _, n := range sorted {
		account, err := s.accounts.GetForUpdate(ctx, tx, n)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[n] = account
	}
	return result, nil
}

func newTransactionRecord(accountNumber, amount int64, txType domain.TransactionType) *domain.Transaction {
	return &domain.Transaction{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		Amount:        amount,
		Type:          txType,
		CreatedAt:     time.Now().UTC(),
	}
}

func destinationAttr(destination *int64) any {
	if destination == nil {
		return nil
	}
	return *destination
}
