package domain

import (
	"errors"
	"testing"
)

func TestInferDirection(t *testing.T) {
	cases := []struct {
		txType TransactionType
		want   Direction
	}{
		{TypePayment, DirectionDebit},
		{TypeTransfer, DirectionDebit},
		{TypeWithdrawal, DirectionDebit},
		{TypeRecharge, DirectionDebit},
		{TypeBillPayment, DirectionDebit},
		{TypeLoanRepayment, DirectionDebit},
		{TypeAddMoney, DirectionCredit},
		{TypeRefund, DirectionCredit},
		{TypeCashback, DirectionCredit},
		{TypeLoanDisbursement, DirectionCredit},
	}
	for _, tc := range cases {
		got, err := InferDirection(tc.txType)
		if err != nil {
			t.Fatalf("InferDirection(%s) returned error: %v", tc.txType, err)
		}
		if got != tc.want {
			t.Errorf("InferDirection(%s) = %s, want %s", tc.txType, got, tc.want)
		}
	}
}

func TestInferDirection_UnknownTypeRejected(t *testing.T) {
	for _, unknown := range []TransactionType{"gift_card", "", "PAYMENT"} {
		_, err := InferDirection(unknown)
		if !errors.Is(err, ErrDirectionRequired) {
			t.Errorf("InferDirection(%q) error = %v, want ErrDirectionRequired", unknown, err)
		}
	}
}

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		name      string
		direction Direction
		amount    int64
		fee       int64
		tax       int64
		want      int64
	}{
		{"debit includes fee and tax", DirectionDebit, 10_000, 500, 180, 10_680},
		{"debit without charges", DirectionDebit, 10_000, 0, 0, 10_000},
		{"credit ignores fee and tax", DirectionCredit, 10_000, 500, 180, 10_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeTotal(tc.direction, tc.amount, tc.fee, tc.tax); got != tc.want {
				t.Errorf("ComputeTotal(%s, %d, %d, %d) = %d, want %d", tc.direction, tc.amount, tc.fee, tc.tax, got, tc.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusFailed},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusOnHold},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusProcessing, StatusCancelled},
		{StatusProcessing, StatusOnHold},
		{StatusOnHold, StatusProcessing},
		{StatusOnHold, StatusFailed},
		{StatusOnHold, StatusCancelled},
		{StatusCompleted, StatusRefunded},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusProcessing},
		{StatusCompleted, StatusFailed},
		{StatusFailed, StatusProcessing},
		{StatusFailed, StatusCompleted},
		{StatusCancelled, StatusProcessing},
		{StatusRefunded, StatusCompleted},
		{StatusRefunded, StatusRefunded},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusRefunded},
		{StatusOnHold, StatusCompleted},
		{StatusOnHold, StatusRefunded},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
		}
	}
}

func TestTerminalStatus(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded}
	for _, s := range terminal {
		if !TerminalStatus(s) {
			t.Errorf("TerminalStatus(%s) = false, want true", s)
		}
	}
	live := []Status{StatusPending, StatusProcessing, StatusOnHold}
	for _, s := range live {
		if TerminalStatus(s) {
			t.Errorf("TerminalStatus(%s) = true, want false", s)
		}
	}
}

func TestAccountSnapshot(t *testing.T) {
	var nilAccount *Account
	if nilAccount.Snapshot() != nil {
		t.Fatal("Snapshot of nil account should be nil")
	}

	a := &Account{FullName: "Asha Rao", Email: "asha@example.com", UPIAddress: "asha@zippay"}
	snap := a.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot returned nil for live account")
	}
	if snap.Name != a.FullName || snap.UPIAddress != a.UPIAddress || snap.Identifier != a.Email {
		t.Errorf("Snapshot = %+v, does not mirror account identity", snap)
	}
}
