package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zippay/wallet-service/internal/domain"
)

// Statistics aggregates a user's completed spending and income over the
// given window. A zero `to` means "now"; a zero `from` means "all time".
func (s *Service) Statistics(ctx context.Context, userID uuid.UUID, from, to time.Time) (*domain.Statistics, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if !from.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: date range start is after its end", ErrValidation)
	}
	return s.repo.AggregateStatistics(ctx, userID, from, to)
}

// MonthlySummary rolls one calendar month of completed activity into totals,
// per-type breakdowns and a day-by-day series.
func (s *Service) MonthlySummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*domain.MonthlySummary, error) {
	if year < 2000 || year > 2100 || month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: invalid year or month", ErrValidation)
	}
	return s.repo.AggregateMonthly(ctx, userID, year, month)
}

// SearchLedger finds entries matching the free-text query across
// description, remarks, counterpart names and transaction ids.
func (s *Service) SearchLedger(ctx context.Context, userID uuid.UUID, query string, limit int) ([]domain.Transaction, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	return s.repo.SearchTransactions(ctx, userID, query, limit)
}

// Reconcile checks a user's live balance against the balance implied by the
// ledger: opening balance plus completed credits minus completed debits. A
// mismatch means an entry and a balance mutation diverged and is reported,
// never repaired automatically.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID) (*domain.ReconciliationReport, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	credits, debits, err := s.repo.CompletedFlowTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	derived := account.OpeningBalance + credits - debits
	report := &domain.ReconciliationReport{
		OpeningBalance: account.OpeningBalance,
		TotalCredits:   credits,
		TotalDebits:    debits,
		DerivedBalance: derived,
		StoredBalance:  account.Balance,
		Consistent:     derived == account.Balance,
	}
	if !report.Consistent {
		log.Printf("level=error component=analytics msg=\"ledger out of balance\" user_id=%s derived=%d stored=%d drift=%d", userID, derived, account.Balance, account.Balance-derived)
	}
	return report, nil
}
