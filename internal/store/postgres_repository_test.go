package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zippay/wallet-service/internal/domain"
)

func TestNewTransactionID_Format(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	id := NewTransactionID(now)

	if !strings.HasPrefix(id, "TXN") {
		t.Fatalf("transaction id %q missing TXN prefix", id)
	}
	// TXN + 13-digit millisecond timestamp + 6 hex chars.
	if len(id) != 3+13+6 {
		t.Fatalf("transaction id %q has length %d, want %d", id, len(id), 3+13+6)
	}
	if id != strings.ToUpper(id) {
		t.Errorf("transaction id %q contains lowercase characters", id)
	}
}

func TestNewTransactionID_SuffixVaries(t *testing.T) {
	now := time.Now().UTC()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[NewTransactionID(now)] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected random suffixes to produce distinct ids for the same timestamp")
	}
}

func TestPrepareTransaction_NormalizesDraft(t *testing.T) {
	now := time.Now().UTC()
	draft := &domain.Transaction{
		OwnerUserID:   uuid.New(),
		Type:          domain.TypePayment,
		Amount:        10_000,
		Fee:           200,
		Tax:           50,
		PaymentMethod: domain.MethodUPI,
	}
	if err := PrepareTransaction(draft, now); err != nil {
		t.Fatalf("PrepareTransaction returned error: %v", err)
	}

	if draft.Direction != domain.DirectionDebit {
		t.Errorf("direction = %s, want debit", draft.Direction)
	}
	if draft.TotalAmount != 10_250 {
		t.Errorf("total = %d, want 10250", draft.TotalAmount)
	}
	if draft.ID == uuid.Nil {
		t.Error("expected a generated row id")
	}
	if draft.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending default", draft.Status)
	}
	if len(draft.StatusHistory) != 1 || draft.StatusHistory[0].Status != domain.StatusPending {
		t.Errorf("history = %+v, want a single seeded record", draft.StatusHistory)
	}
	if !draft.CreatedAt.Equal(now) || !draft.InitiatedAt.Equal(now) {
		t.Error("timestamps not stamped from the provided clock")
	}
}

func TestPrepareTransaction_CreditTotalIgnoresFee(t *testing.T) {
	draft := &domain.Transaction{
		OwnerUserID:   uuid.New(),
		Type:          domain.TypeRefund,
		Amount:        5_000,
		Fee:           300,
		PaymentMethod: domain.MethodWallet,
	}
	if err := PrepareTransaction(draft, time.Now().UTC()); err != nil {
		t.Fatalf("PrepareTransaction returned error: %v", err)
	}
	if draft.Direction != domain.DirectionCredit {
		t.Errorf("direction = %s, want credit", draft.Direction)
	}
	if draft.TotalAmount != 5_000 {
		t.Errorf("total = %d, want amount alone for credits", draft.TotalAmount)
	}
}

func TestPrepareTransaction_PreservesExplicitFields(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	draft := &domain.Transaction{
		ID:            id,
		OwnerUserID:   uuid.New(),
		Type:          domain.TypeTransfer,
		Direction:     domain.DirectionCredit, // recipient leg of a transfer
		Amount:        2_000,
		Status:        domain.StatusCompleted,
		PaymentMethod: domain.MethodWallet,
	}
	if err := PrepareTransaction(draft, now); err != nil {
		t.Fatalf("PrepareTransaction returned error: %v", err)
	}
	if draft.ID != id {
		t.Error("explicit row id replaced")
	}
	if draft.Direction != domain.DirectionCredit {
		t.Error("explicit direction replaced by inference")
	}
	if draft.Status != domain.StatusCompleted {
		t.Error("explicit status replaced by pending default")
	}
	if draft.TotalAmount != 2_000 {
		t.Errorf("total = %d, want 2000", draft.TotalAmount)
	}
}

func TestPrepareTransaction_RejectsInvalidDrafts(t *testing.T) {
	cases := []struct {
		name  string
		draft domain.Transaction
		want  error
	}{
		{"missing type", domain.Transaction{Amount: 100, PaymentMethod: domain.MethodUPI}, ErrInvalidDraft},
		{"zero amount", domain.Transaction{Type: domain.TypePayment, PaymentMethod: domain.MethodUPI}, ErrInvalidDraft},
		{"negative amount", domain.Transaction{Type: domain.TypePayment, Amount: -5, PaymentMethod: domain.MethodUPI}, ErrInvalidDraft},
		{"negative fee", domain.Transaction{Type: domain.TypePayment, Amount: 100, Fee: -1, PaymentMethod: domain.MethodUPI}, ErrInvalidDraft},
		{"missing payment method", domain.Transaction{Type: domain.TypePayment, Amount: 100}, ErrInvalidDraft},
		{"unknown type without direction", domain.Transaction{Type: "mystery", Amount: 100, PaymentMethod: domain.MethodUPI}, domain.ErrDirectionRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := tc.draft
			err := PrepareTransaction(&draft, time.Now().UTC())
			if !errors.Is(err, tc.want) {
				t.Errorf("PrepareTransaction error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPrepareTransaction_UnknownTypeWithExplicitDirection(t *testing.T) {
	draft := &domain.Transaction{
		OwnerUserID:   uuid.New(),
		Type:          "promo_credit",
		Direction:     domain.DirectionCredit,
		Amount:        1_000,
		PaymentMethod: domain.MethodWallet,
	}
	if err := PrepareTransaction(draft, time.Now().UTC()); err != nil {
		t.Fatalf("explicit direction should allow unknown types, got error: %v", err)
	}
	if draft.TotalAmount != 1_000 {
		t.Errorf("total = %d, want 1000", draft.TotalAmount)
	}
}

func TestNormalizePage_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		page      int
		wantLimit int
		wantPage  int
	}{
		{"defaults", 0, 0, DefaultPageLimit, 1},
		{"negative inputs", -5, -2, DefaultPageLimit, 1},
		{"within bounds", 40, 3, 40, 3},
		{"at the cap", MaxPageLimit, 1, MaxPageLimit, 1},
		{"above the cap", 500, 2, MaxPageLimit, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			limit, page := NormalizePage(tc.limit, tc.page)
			if limit != tc.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tc.wantLimit)
			}
			if page != tc.wantPage {
				t.Errorf("page = %d, want %d", page, tc.wantPage)
			}
		})
	}
}
