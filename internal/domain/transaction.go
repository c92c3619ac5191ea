/**
 * @description
 * This file defines the core domain models for the wallet-service ledger.
 * Every money movement in the system is recorded as a Transaction owned by a
 * single user; a transfer between two users produces two Transactions, one
 * debit leg for the sender and one credit leg for the recipient.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest
 *   currency unit (paise), which avoids floating-point inaccuracies with
 *   financial data.
 * - A Transaction is mutated only through status transitions. All other
 *   fields are immutable after creation.
 */

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies the business purpose of a ledger entry.
type TransactionType string

const (
	TypePayment          TransactionType = "payment"
	TypeTransfer         TransactionType = "transfer"
	TypeAddMoney         TransactionType = "add_money"
	TypeWithdrawal       TransactionType = "withdrawal"
	TypeRecharge         TransactionType = "recharge"
	TypeBillPayment      TransactionType = "bill_payment"
	TypeRefund           TransactionType = "refund"
	TypeCashback         TransactionType = "cashback"
	TypeLoanDisbursement TransactionType = "loan_disbursement"
	TypeLoanRepayment    TransactionType = "loan_repayment"
)

// Direction marks whether an entry decreases (debit) or increases (credit)
// the owner's balance.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Status is the lifecycle state of a ledger entry.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusOnHold     Status = "on_hold"
)

// PaymentMethod describes how funds moved.
type PaymentMethod string

const (
	MethodUPI          PaymentMethod = "upi"
	MethodCard         PaymentMethod = "card"
	MethodWallet       PaymentMethod = "wallet"
	MethodBiometric    PaymentMethod = "biometric"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodNetBanking   PaymentMethod = "net_banking"
	MethodCash         PaymentMethod = "cash"
)

// ErrDirectionRequired is returned when a transaction type is not in the
// known type set and the caller did not supply an explicit direction.
// New types must never default silently to debit.
var ErrDirectionRequired = errors.New("transaction type requires an explicit direction")

var creditTypes = map[TransactionType]bool{
	TypeAddMoney:         true,
	TypeRefund:           true,
	TypeCashback:         true,
	TypeLoanDisbursement: true,
}

var knownTypes = map[TransactionType]bool{
	TypePayment:          true,
	TypeTransfer:         true,
	TypeAddMoney:         true,
	TypeWithdrawal:       true,
	TypeRecharge:         true,
	TypeBillPayment:      true,
	TypeRefund:           true,
	TypeCashback:         true,
	TypeLoanDisbursement: true,
	TypeLoanRepayment:    true,
}

// KnownType reports whether t is one of the supported transaction types.
func KnownType(t TransactionType) bool {
	return knownTypes[t]
}

// InferDirection derives the direction for a transaction type. Types outside
// the fixed set are rejected rather than inferred.
func InferDirection(t TransactionType) (Direction, error) {
	if !knownTypes[t] {
		return "", ErrDirectionRequired
	}
	if creditTypes[t] {
		return DirectionCredit, nil
	}
	return DirectionDebit, nil
}

// StatusChange is one append-only record in a transaction's status history.
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

// ErrorDetails captures a terminal failure on a ledger entry. Retryable tells
// the caller whether resubmitting the same request is safe.
type ErrorDetails struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// PartySnapshot is a denormalized identity snapshot of a counterpart,
// captured at creation time so historical receipts stay stable even if the
// counterpart later changes their profile.
type PartySnapshot struct {
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	UPIAddress string     `json:"upi_address,omitempty"`
	Identifier string     `json:"identifier,omitempty"`
}

// Transaction is the central ledger record for a single effect (debit or
// credit) on one user's balance.
type Transaction struct {
	ID                   uuid.UUID         `json:"id"`
	TransactionID        string            `json:"transaction_id"`
	OwnerUserID          uuid.UUID         `json:"owner_user_id"`
	Type                 TransactionType   `json:"type"`
	Direction            Direction         `json:"direction"`
	Amount               int64             `json:"amount"` // in paise
	Fee                  int64             `json:"fee"`
	Tax                  int64             `json:"tax"`
	TotalAmount          int64             `json:"total_amount"`
	Status               Status            `json:"status"`
	StatusHistory        []StatusChange    `json:"status_history"`
	SenderDetails        *PartySnapshot    `json:"sender_details,omitempty"`
	ReceiverDetails      *PartySnapshot    `json:"receiver_details,omitempty"`
	BalanceBefore        *int64            `json:"balance_before,omitempty"`
	BalanceAfter         *int64            `json:"balance_after,omitempty"`
	PaymentMethod        PaymentMethod     `json:"payment_method"`
	PaymentMethodDetails map[string]string `json:"payment_method_details,omitempty"`
	ExternalReferenceID  *string           `json:"external_reference_id,omitempty"`
	GatewayReference     *string           `json:"gateway_reference,omitempty"`
	Category             string            `json:"category,omitempty"`
	Description          string            `json:"description,omitempty"`
	Remarks              string            `json:"remarks,omitempty"`
	ErrorDetails         *ErrorDetails     `json:"error_details,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	InitiatedAt          time.Time         `json:"initiated_at"`
	CompletedAt          *time.Time        `json:"completed_at,omitempty"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ComputeTotal returns the charge a ledger entry puts on its owner's wallet:
// amount plus fee and tax for debits, amount alone for credits. The stored
// TotalAmount is always recomputed from this, never trusted from the caller.
func ComputeTotal(direction Direction, amount, fee, tax int64) int64 {
	if direction == DirectionDebit {
		return amount + fee + tax
	}
	return amount
}

// TerminalStatus reports whether s is a terminal lifecycle state.
func TerminalStatus(s Status) bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether the status machine permits moving from one
// state to another. completed -> refunded is the single allowed exit from a
// terminal state.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed || to == StatusCancelled || to == StatusOnHold
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed || to == StatusCancelled || to == StatusOnHold
	case StatusOnHold:
		return to == StatusProcessing || to == StatusFailed || to == StatusCancelled
	case StatusCompleted:
		return to == StatusRefunded
	}
	return false
}

// Account represents a user's wallet. The balance column is the single
// source of truth for spendable funds; the snapshots on a Transaction are an
// audit trail only.
type Account struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	UPIAddress string    `json:"upi_address"`
	Balance    int64     `json:"balance"` // in paise
	// OpeningBalance is the balance the account was seeded with, before any
	// ledger entry. Reconciliation derives the expected live balance from it.
	OpeningBalance int64     `json:"opening_balance"`
	PINHash        string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Snapshot produces the counterpart identity snapshot recorded on a ledger
// entry at creation time.
func (a *Account) Snapshot() *PartySnapshot {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &PartySnapshot{
		UserID:     &id,
		Name:       a.FullName,
		UPIAddress: a.UPIAddress,
		Identifier: a.Email,
	}
}
