package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zippay/wallet-service/internal/domain"
	"github.com/zippay/wallet-service/internal/store"
)

// fakeRepository is an in-memory store.Repository used to exercise the
// processor without a database. Entry creation goes through
// store.PrepareTransaction so drafts are normalized exactly as the SQL store
// normalizes them; balance adjustments and status transitions hold the mutex
// for the whole check-and-apply, matching the atomicity of the SQL
// implementation.
type fakeRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	txs      map[uuid.UUID]*domain.Transaction
	order    []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
		txs:      make(map[uuid.UUID]*domain.Transaction),
	}
}

func (f *fakeRepository) addAccount(a *domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.UserID] = a
}

func (f *fakeRepository) FindAccountByUserID(_ context.Context, userID uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeRepository) FindAccountByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, identifier) || a.Phone == identifier || strings.EqualFold(a.UPIAddress, identifier) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepository) CreateAccount(_ context.Context, account *domain.Account) error {
	f.addAccount(account)
	return nil
}

func (f *fakeRepository) GetBalance(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return 0, store.ErrAccountNotFound
	}
	return a.Balance, nil
}

func (f *fakeRepository) AtomicAdjust(_ context.Context, userID uuid.UUID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return 0, store.ErrAccountNotFound
	}
	if a.Balance+delta < 0 {
		return 0, store.ErrInsufficientFunds
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	return a.Balance, nil
}

func (f *fakeRepository) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.ExternalReferenceID != nil {
		for _, existing := range f.txs {
			if existing.OwnerUserID == t.OwnerUserID && existing.ExternalReferenceID != nil &&
				*existing.ExternalReferenceID == *t.ExternalReferenceID {
				return store.ErrDuplicateReference
			}
		}
	}

	now := time.Now().UTC()
	if err := store.PrepareTransaction(t, now); err != nil {
		return err
	}
	if t.TransactionID == "" {
		t.TransactionID = store.NewTransactionID(now)
	}

	copied := cloneTransaction(t)
	f.txs[t.ID] = copied
	f.order = append(f.order, t.ID)
	return nil
}

func (f *fakeRepository) FindTransactionByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txs[id]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

func (f *fakeRepository) FindTransactionByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txs {
		if t.TransactionID == transactionID {
			return cloneTransaction(t), nil
		}
	}
	return nil, store.ErrTransactionNotFound
}

func (f *fakeRepository) FindTransactionByExternalReference(_ context.Context, ownerID uuid.UUID, externalRef string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txs {
		if t.OwnerUserID == ownerID && t.ExternalReferenceID != nil && *t.ExternalReferenceID == externalRef {
			return cloneTransaction(t), nil
		}
	}
	return nil, store.ErrTransactionNotFound
}

func (f *fakeRepository) FindTransactionsByOwner(_ context.Context, ownerID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []domain.Transaction
	for _, id := range f.order {
		t := f.txs[id]
		if t.OwnerUserID != ownerID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Direction != "" && t.Direction != filter.Direction {
			continue
		}
		if filter.PaymentMethod != "" && t.PaymentMethod != filter.PaymentMethod {
			continue
		}
		matched = append(matched, *cloneTransaction(t))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	limit, page := store.NormalizePage(filter.Limit, filter.Page)
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeRepository) UpdateTransactionStatus(_ context.Context, id uuid.UUID, newStatus domain.Status, update store.StatusUpdate) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.txs[id]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	if !domain.CanTransition(t.Status, newStatus) {
		if domain.TerminalStatus(t.Status) {
			return nil, store.ErrTerminalStatus
		}
		return nil, store.ErrInvalidTransition
	}

	now := time.Now().UTC()
	t.Status = newStatus
	t.StatusHistory = append(t.StatusHistory, domain.StatusChange{
		Status:    newStatus,
		Timestamp: now,
		Reason:    update.Reason,
		Actor:     update.Actor,
	})
	if update.BalanceAfter != nil {
		t.BalanceAfter = update.BalanceAfter
	}
	if update.ErrorDetails != nil {
		t.ErrorDetails = update.ErrorDetails
	}
	if update.GatewayRef != nil {
		t.GatewayReference = update.GatewayRef
	}
	if newStatus == domain.StatusCompleted {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	return cloneTransaction(t), nil
}

func (f *fakeRepository) SearchTransactions(_ context.Context, ownerID uuid.UUID, query string, limit int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > store.MaxPageLimit {
		limit = store.DefaultPageLimit
	}
	needle := strings.ToLower(query)
	var results []domain.Transaction
	for _, id := range f.order {
		t := f.txs[id]
		if t.OwnerUserID != ownerID {
			continue
		}
		parts := []string{t.Description, t.Remarks, t.TransactionID, t.Category}
		if t.SenderDetails != nil {
			parts = append(parts, t.SenderDetails.Name, t.SenderDetails.UPIAddress)
		}
		if t.ReceiverDetails != nil {
			parts = append(parts, t.ReceiverDetails.Name, t.ReceiverDetails.UPIAddress)
		}
		haystack := strings.ToLower(strings.Join(parts, " "))
		if strings.Contains(haystack, needle) {
			results = append(results, *cloneTransaction(t))
		}
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (f *fakeRepository) DeleteTransactionsByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	kept := f.order[:0]
	for _, id := range f.order {
		if f.txs[id].OwnerUserID == ownerID {
			delete(f.txs, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	return deleted, nil
}

func (f *fakeRepository) FindStuckProcessing(_ context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var stuck []domain.Transaction
	for _, id := range f.order {
		t := f.txs[id]
		if t.Status == domain.StatusProcessing && t.UpdatedAt.Before(olderThan) {
			stuck = append(stuck, *cloneTransaction(t))
			if limit > 0 && len(stuck) >= limit {
				break
			}
		}
	}
	return stuck, nil
}

func (f *fakeRepository) AggregateStatistics(_ context.Context, ownerID uuid.UUID, from, to time.Time) (*domain.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := &domain.Statistics{
		ByType:   make(map[domain.TransactionType]domain.Bucket),
		ByMethod: make(map[domain.PaymentMethod]domain.Bucket),
		ByStatus: make(map[domain.Status]domain.Bucket),
	}
	for _, id := range f.order {
		t := f.txs[id]
		if t.OwnerUserID != ownerID {
			continue
		}
		if !from.IsZero() && t.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && t.CreatedAt.After(to) {
			continue
		}
		statusBucket := stats.ByStatus[t.Status]
		statusBucket.Count++
		statusBucket.Amount += t.Amount
		stats.ByStatus[t.Status] = statusBucket
		if t.Status != domain.StatusCompleted {
			continue
		}
		stats.TotalCount++
		stats.TotalAmount += t.Amount
		stats.TotalFees += t.Fee
		if t.Direction == domain.DirectionCredit {
			stats.TotalCredits += t.Amount
		} else {
			stats.TotalDebits += t.Amount
		}
		typeBucket := stats.ByType[t.Type]
		typeBucket.Count++
		typeBucket.Amount += t.Amount
		stats.ByType[t.Type] = typeBucket
		methodBucket := stats.ByMethod[t.PaymentMethod]
		methodBucket.Count++
		methodBucket.Amount += t.Amount
		stats.ByMethod[t.PaymentMethod] = methodBucket
	}
	if stats.TotalCount > 0 {
		stats.AverageAmount = stats.TotalAmount / stats.TotalCount
	}
	return stats, nil
}

func (f *fakeRepository) AggregateMonthly(_ context.Context, ownerID uuid.UUID, year int, month time.Month) (*domain.MonthlySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summary := &domain.MonthlySummary{
		Year:   year,
		Month:  int(month),
		ByType: make(map[domain.TransactionType]domain.Bucket),
	}
	daily := make(map[string]*domain.DailyTotal)
	for _, id := range f.order {
		t := f.txs[id]
		if t.OwnerUserID != ownerID || t.Status != domain.StatusCompleted {
			continue
		}
		if t.CreatedAt.Year() != year || t.CreatedAt.Month() != month {
			continue
		}
		if t.Direction == domain.DirectionCredit {
			summary.TotalCredits += t.Amount
		} else {
			summary.TotalDebits += t.Amount
		}
		bucket := summary.ByType[t.Type]
		bucket.Count++
		bucket.Amount += t.Amount
		summary.ByType[t.Type] = bucket
		day := t.CreatedAt.Format("2006-01-02")
		dt, ok := daily[day]
		if !ok {
			dt = &domain.DailyTotal{Date: day}
			daily[day] = dt
		}
		dt.Count++
		if t.Direction == domain.DirectionCredit {
			dt.Credits += t.Amount
		} else {
			dt.Debits += t.Amount
		}
	}
	summary.NetFlow = summary.TotalCredits - summary.TotalDebits
	for _, dt := range daily {
		summary.DailyBreakdown = append(summary.DailyBreakdown, *dt)
	}
	sort.Slice(summary.DailyBreakdown, func(i, j int) bool {
		return summary.DailyBreakdown[i].Date < summary.DailyBreakdown[j].Date
	})
	return summary, nil
}

func (f *fakeRepository) CompletedFlowTotals(_ context.Context, ownerID uuid.UUID) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var credits, debits int64
	for _, id := range f.order {
		t := f.txs[id]
		if t.OwnerUserID != ownerID {
			continue
		}
		if t.Status != domain.StatusCompleted && t.Status != domain.StatusRefunded {
			continue
		}
		if t.Direction == domain.DirectionCredit {
			credits += t.Amount
		} else {
			debits += t.TotalAmount
		}
	}
	return credits, debits, nil
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	copied := *t
	copied.StatusHistory = append([]domain.StatusChange(nil), t.StatusHistory...)
	return &copied
}
