/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access operations required by the wallet-service. The interface decouples
 * the payment processor and analytics engine from the PostgreSQL
 * implementation, which also makes the business logic testable against an
 * in-memory fake.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zippay/wallet-service/internal/domain"
)

// StatusUpdate carries the optional audit fields recorded alongside a status
// transition. Appending to the status history is the only mutation path for
// an existing ledger entry.
type StatusUpdate struct {
	Reason       string
	Actor        string
	BalanceAfter *int64
	ErrorDetails *domain.ErrorDetails
	GatewayRef   *string
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account / balance accessor boundary
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	// AtomicAdjust applies a signed delta to a wallet balance in a single
	// conditional statement. A debit that would drive the balance negative
	// fails with ErrInsufficientFunds and leaves the balance untouched.
	AtomicAdjust(ctx context.Context, userID uuid.UUID, delta int64) (int64, error)

	// Ledger entry store
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindTransactionByExternalReference(ctx context.Context, ownerID uuid.UUID, externalRef string) (*domain.Transaction, error)
	FindTransactionsByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, int64, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, newStatus domain.Status, update StatusUpdate) (*domain.Transaction, error)
	SearchTransactions(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]domain.Transaction, error)
	DeleteTransactionsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	FindStuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)

	// Analytics
	AggregateStatistics(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*domain.Statistics, error)
	AggregateMonthly(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) (*domain.MonthlySummary, error)
	CompletedFlowTotals(ctx context.Context, ownerID uuid.UUID) (credits int64, debits int64, err error)
}
