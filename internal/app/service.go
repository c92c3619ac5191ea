/**
 * @description
 * This file contains the payment processor, the core business logic layer of
 * the wallet-service. It orchestrates every money movement: authorization via
 * the verification gate, the atomic balance mutation, ledger entry creation,
 * settlement against the external gateway, and the terminal status
 * transition. Each flow follows the same saga shape: mutate funds, record the
 * entry, settle, finalize, and compensate in reverse order on failure so that
 * no balance change ever lacks a ledger entry.
 *
 * @dependencies
 * - internal/store: The repository interface for database operations.
 * - pkg/rabbitmq: The event producer for publishing terminal payment events.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zippay/wallet-service/internal/domain"
	"github.com/zippay/wallet-service/internal/store"
	"github.com/zippay/wallet-service/pkg/rabbitmq"
)

// RateLimiter bounds how frequently a user may initiate payments. A nil
// limiter disables velocity checks.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Options carries the tunable business parameters of the processor.
type Options struct {
	TransferFee       int64 // flat fee on the sender leg of a transfer, in paise
	WithdrawalFee     int64
	PaymentRateLimit  int // max payment initiations per window per user
	PaymentRateWindow time.Duration
}

// Service implements the payment processor and the ledger query surface.
type Service struct {
	repo    store.Repository
	gate    VerificationGate
	gateway SettlementGateway
	events  rabbitmq.Publisher
	limiter RateLimiter
	opts    Options
}

// NewService creates a new processor with its dependencies.
func NewService(repo store.Repository, gate VerificationGate, gateway SettlementGateway, events rabbitmq.Publisher, limiter RateLimiter, opts Options) *Service {
	if opts.PaymentRateWindow <= 0 {
		opts.PaymentRateWindow = time.Minute
	}
	return &Service{repo: repo, gate: gate, gateway: gateway, events: events, limiter: limiter, opts: opts}
}

// ProcessTransfer moves funds between two wallet accounts. The transfer
// produces two ledger entries, a debit leg owned by the sender and a credit
// leg owned by the recipient. The sender is debited before either entry is
// created; every later failure compensates in reverse order so funds are
// never lost between wallets.
func (s *Service) ProcessTransfer(ctx context.Context, senderID uuid.UUID, req domain.TransferRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.RecipientIdentifier == "" {
		return nil, fmt.Errorf("%w: recipient identifier is required", ErrValidation)
	}
	if err := s.checkVelocity(ctx, senderID); err != nil {
		return nil, err
	}
	if err := s.gate.Verify(ctx, senderID, req.Auth); err != nil {
		return nil, err
	}

	sender, err := s.repo.FindAccountByUserID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender account: %w", err)
	}
	recipient, err := s.repo.FindAccountByIdentifier(ctx, req.RecipientIdentifier)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrCounterpartyNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if recipient.UserID == senderID {
		return nil, fmt.Errorf("%w: cannot transfer to your own wallet", ErrInvalidOperation)
	}

	fee := s.opts.TransferFee
	total := req.Amount + fee

	// Debit first. The conditional update both checks and applies the
	// mutation, so two concurrent transfers can never overdraw the sender.
	newBalance, err := s.repo.AtomicAdjust(ctx, senderID, -total)
	if err != nil {
		return nil, err
	}
	balanceBefore := newBalance + total

	debit := &domain.Transaction{
		OwnerUserID:     senderID,
		Type:            domain.TypeTransfer,
		Direction:       domain.DirectionDebit,
		Amount:          req.Amount,
		Fee:             fee,
		Status:          domain.StatusProcessing,
		PaymentMethod:   domain.MethodWallet,
		SenderDetails:   sender.Snapshot(),
		ReceiverDetails: recipient.Snapshot(),
		BalanceBefore:   &balanceBefore,
		Description:     fmt.Sprintf("Transfer to %s", recipient.FullName),
		Remarks:         req.Note,
		Category:        "transfer",
	}
	if err := s.repo.CreateTransaction(ctx, debit); err != nil {
		s.reverse(ctx, senderID, total, "sender debit entry creation failed")
		return nil, fmt.Errorf("failed to record transfer debit: %w", err)
	}

	recipientBalance, err := s.repo.AtomicAdjust(ctx, recipient.UserID, req.Amount)
	if err != nil {
		s.markFailed(ctx, debit.ID, "TRANSFER_CREDIT_FAILED", "recipient could not be credited", true, balanceBefore)
		s.reverse(ctx, senderID, total, "recipient credit failed")
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}
	recipientBefore := recipientBalance - req.Amount

	credit := &domain.Transaction{
		OwnerUserID:     recipient.UserID,
		Type:            domain.TypeTransfer,
		Direction:       domain.DirectionCredit,
		Amount:          req.Amount,
		Status:          domain.StatusCompleted,
		PaymentMethod:   domain.MethodWallet,
		SenderDetails:   sender.Snapshot(),
		ReceiverDetails: recipient.Snapshot(),
		BalanceBefore:   &recipientBefore,
		BalanceAfter:    &recipientBalance,
		Description:     fmt.Sprintf("Transfer from %s", sender.FullName),
		Remarks:         req.Note,
		Category:        "transfer",
	}
	if err := s.repo.CreateTransaction(ctx, credit); err != nil {
		s.reverse(ctx, recipient.UserID, -req.Amount, "recipient credit entry creation failed")
		s.markFailed(ctx, debit.ID, "TRANSFER_RECORD_FAILED", "recipient leg could not be recorded", true, balanceBefore)
		s.reverse(ctx, senderID, total, "recipient credit entry creation failed")
		return nil, fmt.Errorf("failed to record transfer credit: %w", err)
	}

	finalized, err := s.repo.UpdateTransactionStatus(ctx, debit.ID, domain.StatusCompleted, store.StatusUpdate{
		Actor:        "system",
		Reason:       "transfer settled",
		BalanceAfter: &newBalance,
	})
	if err != nil {
		// Funds have moved on both sides. The entry stays in processing and
		// the sweeper will park it for manual review.
		log.Printf("level=error component=payment_processor msg=\"failed to finalize transfer debit leg\" transaction_id=%s err=%v", debit.TransactionID, err)
		return debit, fmt.Errorf("failed to finalize transfer: %w", err)
	}

	s.publishTerminal(ctx, finalized)
	s.publishTerminal(ctx, credit)
	log.Printf("level=info component=payment_processor msg=\"transfer completed\" transaction_id=%s sender=%s recipient=%s amount=%d", finalized.TransactionID, senderID, recipient.UserID, req.Amount)
	return finalized, nil
}

// ProcessPayment executes an outbound payment (merchant, UPI, bill, loan
// repayment) settled through the external gateway. Retries carrying the same
// external reference are idempotent and return the original entry.
func (s *Service) ProcessPayment(ctx context.Context, userID uuid.UUID, req domain.PaymentRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	direction, err := domain.InferDirection(req.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported transaction type %q", ErrValidation, req.Type)
	}
	if direction != domain.DirectionDebit || req.Type == domain.TypeTransfer {
		return nil, fmt.Errorf("%w: type %q is not a payment", ErrValidation, req.Type)
	}

	if req.ExternalReferenceID != "" {
		existing, err := s.repo.FindTransactionByExternalReference(ctx, userID, req.ExternalReferenceID)
		if err == nil {
			log.Printf("level=info component=payment_processor msg=\"idempotent replay\" external_reference=%s transaction_id=%s", req.ExternalReferenceID, existing.TransactionID)
			return existing, nil
		}
		if !errors.Is(err, store.ErrTransactionNotFound) {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
	}

	if err := s.checkVelocity(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.gate.Verify(ctx, userID, req.Auth); err != nil {
		return nil, err
	}

	payer, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payer account: %w", err)
	}

	newBalance, err := s.repo.AtomicAdjust(ctx, userID, -req.Amount)
	if err != nil {
		return nil, err
	}
	balanceBefore := newBalance + req.Amount

	entry := &domain.Transaction{
		OwnerUserID:   userID,
		Type:          req.Type,
		Direction:     domain.DirectionDebit,
		Amount:        req.Amount,
		Status:        domain.StatusProcessing,
		PaymentMethod: req.PaymentMethod,
		SenderDetails: payer.Snapshot(),
		ReceiverDetails: &domain.PartySnapshot{
			Name:       req.CounterpartName,
			Identifier: req.CounterpartAddress,
		},
		BalanceBefore:        &balanceBefore,
		PaymentMethodDetails: req.MethodDetails,
		Category:             req.Category,
		Description:          req.Description,
		Metadata:             req.Metadata,
	}
	if req.ExternalReferenceID != "" {
		ref := req.ExternalReferenceID
		entry.ExternalReferenceID = &ref
	}
	if err := s.repo.CreateTransaction(ctx, entry); err != nil {
		s.reverse(ctx, userID, req.Amount, "payment entry creation failed")
		if errors.Is(err, store.ErrDuplicateReference) {
			// A concurrent retry won the insert race; surface its entry.
			if existing, lookupErr := s.repo.FindTransactionByExternalReference(ctx, userID, req.ExternalReferenceID); lookupErr == nil {
				return existing, nil
			}
			return nil, err
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return s.settleAndFinalize(ctx, entry, newBalance, balanceBefore, true)
}

// ProcessRecharge tops up a mobile or DTH subscription. It is a payment with
// operator details captured in the entry metadata.
func (s *Service) ProcessRecharge(ctx context.Context, userID uuid.UUID, req domain.RechargeRequest) (*domain.Transaction, error) {
	if req.Operator == "" || req.Target == "" {
		return nil, fmt.Errorf("%w: operator and target are required", ErrValidation)
	}
	metadata := map[string]string{"operator": req.Operator, "target": req.Target}
	if req.Plan != "" {
		metadata["plan"] = req.Plan
	}
	return s.ProcessPayment(ctx, userID, domain.PaymentRequest{
		Type:               domain.TypeRecharge,
		Amount:             req.Amount,
		CounterpartName:    req.Operator,
		CounterpartAddress: req.Target,
		PaymentMethod:      domain.MethodWallet,
		Category:           "recharge",
		Description:        fmt.Sprintf("%s recharge for %s", req.Operator, req.Target),
		Metadata:           metadata,
		Auth:               req.Auth,
	})
}

// ProcessWithdrawal moves wallet funds out to a bank account through the
// settlement gateway.
func (s *Service) ProcessWithdrawal(ctx context.Context, userID uuid.UUID, req domain.WithdrawalRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.DestinationAccount == "" {
		return nil, fmt.Errorf("%w: destination account is required", ErrValidation)
	}
	if err := s.checkVelocity(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.gate.Verify(ctx, userID, req.Auth); err != nil {
		return nil, err
	}

	owner, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	fee := s.opts.WithdrawalFee
	total := req.Amount + fee
	newBalance, err := s.repo.AtomicAdjust(ctx, userID, -total)
	if err != nil {
		return nil, err
	}
	balanceBefore := newBalance + total

	entry := &domain.Transaction{
		OwnerUserID:   userID,
		Type:          domain.TypeWithdrawal,
		Direction:     domain.DirectionDebit,
		Amount:        req.Amount,
		Fee:           fee,
		Status:        domain.StatusProcessing,
		PaymentMethod: domain.MethodBankTransfer,
		SenderDetails: owner.Snapshot(),
		ReceiverDetails: &domain.PartySnapshot{
			Name:       owner.FullName,
			Identifier: req.DestinationAccount,
		},
		BalanceBefore: &balanceBefore,
		Category:      "withdrawal",
		Description:   "Withdrawal to bank account",
	}
	if err := s.repo.CreateTransaction(ctx, entry); err != nil {
		s.reverse(ctx, userID, total, "withdrawal entry creation failed")
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	return s.settleAndFinalize(ctx, entry, newBalance, balanceBefore, true)
}

// ProcessAddMoney loads funds into the wallet from an external source. The
// entry is recorded before settlement; the wallet is only credited once the
// gateway confirms, so a declined load leaves a failed entry and an untouched
// balance.
func (s *Service) ProcessAddMoney(ctx context.Context, userID uuid.UUID, req domain.AddMoneyRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if req.ExternalReferenceID != "" {
		existing, err := s.repo.FindTransactionByExternalReference(ctx, userID, req.ExternalReferenceID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrTransactionNotFound) {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
	}

	owner, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	balanceBefore := owner.Balance

	entry := &domain.Transaction{
		OwnerUserID:          userID,
		Type:                 domain.TypeAddMoney,
		Direction:            domain.DirectionCredit,
		Amount:               req.Amount,
		Status:               domain.StatusProcessing,
		PaymentMethod:        req.PaymentMethod,
		ReceiverDetails:      owner.Snapshot(),
		BalanceBefore:        &balanceBefore,
		PaymentMethodDetails: req.MethodDetails,
		Category:             "add_money",
		Description:          "Money added to wallet",
	}
	if req.ExternalReferenceID != "" {
		ref := req.ExternalReferenceID
		entry.ExternalReferenceID = &ref
	}
	if err := s.repo.CreateTransaction(ctx, entry); err != nil {
		if errors.Is(err, store.ErrDuplicateReference) {
			if existing, lookupErr := s.repo.FindTransactionByExternalReference(ctx, userID, req.ExternalReferenceID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to record add-money entry: %w", err)
	}

	gatewayRef, err := s.gateway.Settle(ctx, entry)
	if err != nil {
		if errors.Is(err, ErrSettlementDeclined) {
			failed := s.markFailed(ctx, entry.ID, "SETTLEMENT_DECLINED", "funding source declined the load", false, balanceBefore)
			s.publishTerminal(ctx, failed)
			return failed, ErrSettlementDeclined
		}
		failed := s.markFailed(ctx, entry.ID, "GATEWAY_ERROR", err.Error(), true, balanceBefore)
		s.publishTerminal(ctx, failed)
		return failed, fmt.Errorf("settlement failed: %w", err)
	}

	newBalance, err := s.repo.AtomicAdjust(ctx, userID, req.Amount)
	if err != nil {
		failed := s.markFailed(ctx, entry.ID, "CREDIT_FAILED", "wallet could not be credited", true, balanceBefore)
		s.publishTerminal(ctx, failed)
		return failed, fmt.Errorf("failed to credit wallet: %w", err)
	}

	finalized, err := s.repo.UpdateTransactionStatus(ctx, entry.ID, domain.StatusCompleted, store.StatusUpdate{
		Actor:        "gateway",
		Reason:       "load settled",
		BalanceAfter: &newBalance,
		GatewayRef:   &gatewayRef,
	})
	if err != nil {
		log.Printf("level=error component=payment_processor msg=\"failed to finalize add-money entry\" transaction_id=%s err=%v", entry.TransactionID, err)
		return entry, fmt.Errorf("failed to finalize add-money entry: %w", err)
	}
	s.publishTerminal(ctx, finalized)
	return finalized, nil
}

// RefundTransaction reverses a completed debit. The original entry moves to
// refunded first; because refunded is terminal a second refund attempt on the
// same entry fails the transition check inside the row lock, which makes
// double refunds impossible.
func (s *Service) RefundTransaction(ctx context.Context, userID uuid.UUID, transactionID, reason string) (*domain.Transaction, error) {
	original, err := s.repo.FindTransactionByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.OwnerUserID != userID {
		return nil, store.ErrTransactionNotFound
	}
	if original.Direction != domain.DirectionDebit || original.Type == domain.TypeRefund {
		return nil, fmt.Errorf("%w: only completed debit payments can be refunded", ErrInvalidOperation)
	}

	if reason == "" {
		reason = "refund requested"
	}
	if _, err := s.repo.UpdateTransactionStatus(ctx, original.ID, domain.StatusRefunded, store.StatusUpdate{
		Actor:  "system",
		Reason: reason,
	}); err != nil {
		return nil, err
	}

	newBalance, err := s.repo.AtomicAdjust(ctx, userID, original.Amount)
	if err != nil {
		// The original is already marked refunded and that state is terminal.
		// This needs operator attention, so it is logged at error level.
		log.Printf("level=error component=payment_processor msg=\"refund credit failed after status flip\" transaction_id=%s err=%v", transactionID, err)
		return nil, fmt.Errorf("failed to credit refund: %w", err)
	}
	balanceBefore := newBalance - original.Amount

	refund := &domain.Transaction{
		OwnerUserID:     userID,
		Type:            domain.TypeRefund,
		Direction:       domain.DirectionCredit,
		Amount:          original.Amount,
		Status:          domain.StatusCompleted,
		PaymentMethod:   original.PaymentMethod,
		SenderDetails:   original.ReceiverDetails,
		ReceiverDetails: original.SenderDetails,
		BalanceBefore:   &balanceBefore,
		BalanceAfter:    &newBalance,
		Category:        "refund",
		Description:     fmt.Sprintf("Refund for %s", original.TransactionID),
		Metadata:        map[string]string{"original_transaction_id": original.TransactionID},
	}
	if err := s.repo.CreateTransaction(ctx, refund); err != nil {
		log.Printf("level=error component=payment_processor msg=\"refund entry creation failed after credit\" transaction_id=%s err=%v", transactionID, err)
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	s.publishTerminal(ctx, refund)
	log.Printf("level=info component=payment_processor msg=\"refund completed\" original=%s refund=%s amount=%d", original.TransactionID, refund.TransactionID, refund.Amount)
	return refund, nil
}

// settleAndFinalize runs the gateway settlement for a debit entry already in
// processing and drives it to its terminal status. reverseOnFailure controls
// whether the earlier debit is returned to the wallet when settlement does
// not complete.
func (s *Service) settleAndFinalize(ctx context.Context, entry *domain.Transaction, newBalance, balanceBefore int64, reverseOnFailure bool) (*domain.Transaction, error) {
	gatewayRef, err := s.gateway.Settle(ctx, entry)
	if err != nil {
		if reverseOnFailure {
			s.reverse(ctx, entry.OwnerUserID, entry.TotalAmount, "settlement did not complete")
		}
		if errors.Is(err, ErrSettlementDeclined) {
			failed := s.markFailed(ctx, entry.ID, "SETTLEMENT_DECLINED", "declined by settlement gateway", false, balanceBefore)
			s.publishTerminal(ctx, failed)
			return failed, ErrSettlementDeclined
		}
		failed := s.markFailed(ctx, entry.ID, "GATEWAY_ERROR", err.Error(), true, balanceBefore)
		s.publishTerminal(ctx, failed)
		return failed, fmt.Errorf("settlement failed: %w", err)
	}

	finalized, err := s.repo.UpdateTransactionStatus(ctx, entry.ID, domain.StatusCompleted, store.StatusUpdate{
		Actor:        "gateway",
		Reason:       "settlement confirmed",
		BalanceAfter: &newBalance,
		GatewayRef:   &gatewayRef,
	})
	if err != nil {
		log.Printf("level=error component=payment_processor msg=\"failed to finalize entry\" transaction_id=%s err=%v", entry.TransactionID, err)
		return entry, fmt.Errorf("failed to finalize payment: %w", err)
	}
	s.publishTerminal(ctx, finalized)
	log.Printf("level=info component=payment_processor msg=\"payment completed\" transaction_id=%s type=%s amount=%d", finalized.TransactionID, finalized.Type, finalized.Amount)
	return finalized, nil
}

// markFailed drives an entry to failed with error details attached. The
// restored balance is recorded so the audit trail shows no net movement.
func (s *Service) markFailed(ctx context.Context, id uuid.UUID, code, message string, retryable bool, restoredBalance int64) *domain.Transaction {
	failed, err := s.repo.UpdateTransactionStatus(ctx, id, domain.StatusFailed, store.StatusUpdate{
		Actor:        "system",
		Reason:       message,
		BalanceAfter: &restoredBalance,
		ErrorDetails: &domain.ErrorDetails{Code: code, Message: message, Retryable: retryable},
	})
	if err != nil {
		log.Printf("level=error component=payment_processor msg=\"failed to mark entry failed\" id=%s code=%s err=%v", id, code, err)
		return nil
	}
	return failed
}

// reverse returns previously moved funds to a wallet as a compensating
// adjustment. Compensation failures are logged and not propagated; the
// caller's original error is the one that matters.
func (s *Service) reverse(ctx context.Context, userID uuid.UUID, amount int64, why string) {
	if _, err := s.repo.AtomicAdjust(ctx, userID, amount); err != nil {
		log.Printf("level=error component=payment_processor msg=\"compensating adjustment failed\" user_id=%s amount=%d reason=%q err=%v", userID, amount, why, err)
	}
}

func (s *Service) checkVelocity(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil || s.opts.PaymentRateLimit <= 0 {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, "payments:"+userID.String(), s.opts.PaymentRateLimit, s.opts.PaymentRateWindow)
	if err != nil {
		// The limiter is advisory. Redis being down must not block payments.
		log.Printf("level=warn component=payment_processor msg=\"rate limiter unavailable\" user_id=%s err=%v", userID, err)
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (s *Service) publishTerminal(ctx context.Context, t *domain.Transaction) {
	if t == nil || s.events == nil {
		return
	}
	event := rabbitmq.PaymentEvent{
		TransactionID: t.TransactionID,
		OwnerUserID:   t.OwnerUserID,
		Type:          string(t.Type),
		Direction:     string(t.Direction),
		Status:        string(t.Status),
		Amount:        t.Amount,
		TotalAmount:   t.TotalAmount,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
		log.Printf("level=warn component=payment_processor msg=\"event publish failed\" transaction_id=%s status=%s err=%v", t.TransactionID, t.Status, err)
	}
}

// GetStatement returns a filtered, paginated page of the user's ledger along
// with the total match count.
func (s *Service) GetStatement(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, int64, error) {
	return s.repo.FindTransactionsByOwner(ctx, userID, filter)
}

// GetTransaction fetches a single ledger entry by its human-facing id,
// scoped to the requesting user.
func (s *Service) GetTransaction(ctx context.Context, userID uuid.UUID, transactionID string) (*domain.Transaction, error) {
	t, err := s.repo.FindTransactionByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.OwnerUserID != userID {
		return nil, store.ErrTransactionNotFound
	}
	return t, nil
}

// GetBalance returns the current spendable balance for a user.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// DeleteUserData erases a user's ledger entries. Exposed for data erasure
// requests; the count of removed entries is returned for the audit log.
func (s *Service) DeleteUserData(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteTransactionsByOwner(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.Printf("level=info component=payment_processor msg=\"user ledger erased\" user_id=%s entries=%d", userID, deleted)
	return deleted, nil
}
