/**
 * @description
 * This file contains the HTTP handlers for the wallet-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-playground/validator/v10: Declarative request validation.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zippay/wallet-service/internal/app"
	"github.com/zippay/wallet-service/internal/domain"
	"github.com/zippay/wallet-service/internal/store"
)

// WalletHandlers holds the application service that handlers will use.
type WalletHandlers struct {
	service  *app.Service
	validate *validator.Validate
}

// NewWalletHandlers creates a new instance of WalletHandlers.
func NewWalletHandlers(service *app.Service) *WalletHandlers {
	return &WalletHandlers{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// transactionResponse is the wire representation sent back after a payment
// flow. It exposes the human-facing transaction id rather than the row key.
type transactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Type          string  `json:"type"`
	Direction     string  `json:"direction"`
	Amount        int64   `json:"amount"`
	Fee           int64   `json:"fee,omitempty"`
	Tax           int64   `json:"tax,omitempty"`
	TotalAmount   int64   `json:"total_amount"`
	BalanceAfter  *int64  `json:"balance_after,omitempty"`
	GatewayRef    *string `json:"gateway_reference,omitempty"`
}

func buildTransactionResponse(tx *domain.Transaction, message string) transactionResponse {
	return transactionResponse{
		TransactionID: tx.TransactionID,
		Status:        string(tx.Status),
		Message:       message,
		Type:          string(tx.Type),
		Direction:     string(tx.Direction),
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		Tax:           tx.Tax,
		TotalAmount:   tx.TotalAmount,
		BalanceAfter:  tx.BalanceAfter,
		GatewayRef:    tx.GatewayReference,
	}
}

// mapProcessorError converts service and store errors into HTTP status codes
// and client-safe messages.
func mapProcessorError(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrAuthentication):
		return http.StatusUnauthorized, "Payment authorization failed."
	case errors.Is(err, app.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many payment attempts. Please wait and try again."
	case errors.Is(err, app.ErrCounterpartyNotFound):
		return http.StatusNotFound, "Recipient not found."
	case errors.Is(err, app.ErrInvalidOperation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrInvalidDraft):
		return http.StatusBadRequest, "Transaction request is missing required fields."
	case errors.Is(err, app.ErrSettlementDeclined):
		return http.StatusPaymentRequired, "Payment was declined by the settlement gateway."
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "Insufficient wallet balance."
	case errors.Is(err, store.ErrAccountNotFound):
		return http.StatusNotFound, "Wallet account not found."
	case errors.Is(err, store.ErrTransactionNotFound):
		return http.StatusNotFound, "Transaction not found."
	case errors.Is(err, store.ErrTerminalStatus), errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict, "Transaction is not in a state that allows this operation."
	case errors.Is(err, store.ErrDuplicateReference):
		return http.StatusConflict, "A transaction with this reference already exists."
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *WalletHandlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, endpoint string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=reject reason=invalid_json err=%v", endpoint, err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=reject reason=validation err=%v", endpoint, err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return false
	}
	return true
}

func (h *WalletHandlers) authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := GetAuthUserID(r.Context())
	if !ok {
		http.Error(w, "Could not get user ID from context", http.StatusInternalServerError)
		return uuid.Nil, false
	}
	return userID, true
}

// TransferHandler handles requests for wallet-to-wallet transfers.
func (h *WalletHandlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req domain.TransferRequest
	if !h.decodeAndValidate(w, r, "transfer", &req) {
		return
	}

	tx, err := h.service.ProcessTransfer(r.Context(), senderID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=failed sender_id=%s err=%v", senderID, err)
		status, message := mapProcessorError(err)
		if tx != nil && status == http.StatusPaymentRequired {
			h.writeJSON(w, status, buildTransactionResponse(tx, message))
			return
		}
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(tx, "Transfer completed"))
}

// PaymentHandler handles merchant, UPI, bill and loan repayment requests.
func (h *WalletHandlers) PaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req domain.PaymentRequest
	if !h.decodeAndValidate(w, r, "payment", &req) {
		return
	}

	tx, err := h.service.ProcessPayment(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=payment outcome=failed user_id=%s err=%v", userID, err)
		status, message := mapProcessorError(err)
		if tx != nil && status == http.StatusPaymentRequired {
			// The declined entry is part of the ledger; return it with the error.
			h.writeJSON(w, status, buildTransactionResponse(tx, message))
			return
		}
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(tx, "Payment completed"))
}

// RechargeHandler handles mobile/DTH recharge requests.
func (h *WalletHandlers) RechargeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req domain.RechargeRequest
	if !h.decodeAndValidate(w, r, "recharge", &req) {
		return
	}

	tx, err := h.service.ProcessRecharge(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=recharge outcome=failed user_id=%s err=%v", userID, err)
		status, message := mapProcessorError(err)
		if tx != nil && status == http.StatusPaymentRequired {
			h.writeJSON(w, status, buildTransactionResponse(tx, message))
			return
		}
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(tx, "Recharge completed"))
}

// AddMoneyHandler handles wallet load requests.
func (h *WalletHandlers) AddMoneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req domain.AddMoneyRequest
	if !h.decodeAndValidate(w, r, "add_money", &req) {
		return
	}

	tx, err := h.service.ProcessAddMoney(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=add_money outcome=failed user_id=%s err=%v", userID, err)
		status, message := mapProcessorError(err)
		if tx != nil && status == http.StatusPaymentRequired {
			h.writeJSON(w, status, buildTransactionResponse(tx, message))
			return
		}
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(tx, "Money added to wallet"))
}

// WithdrawalHandler handles wallet-to-bank withdrawal requests.
func (h *WalletHandlers) WithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req domain.WithdrawalRequest
	if !h.decodeAndValidate(w, r, "withdrawal", &req) {
		return
	}

	tx, err := h.service.ProcessWithdrawal(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=withdrawal outcome=failed user_id=%s err=%v", userID, err)
		status, message := mapProcessorError(err)
		if tx != nil && status == http.StatusPaymentRequired {
			h.writeJSON(w, status, buildTransactionResponse(tx, message))
			return
		}
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(tx, "Withdrawal completed"))
}

type refundRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=200"`
}

// RefundHandler reverses a completed debit payment.
func (h *WalletHandlers) RefundHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	transactionID := chi.URLParam(r, "transactionID")

	var req refundRequest
	if r.ContentLength > 0 {
		if !h.decodeAndValidate(w, r, "refund", &req) {
			return
		}
	}

	refund, err := h.service.RefundTransaction(r.Context(), userID, transactionID, req.Reason)
	if err != nil {
		log.Printf("level=warn component=api endpoint=refund outcome=failed user_id=%s transaction_id=%s err=%v", userID, transactionID, err)
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(refund, "Refund issued"))
}

// statementResponse wraps a page of ledger entries.
type statementResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

// StatementHandler lists the caller's ledger entries with filtering, sorting
// and pagination.
func (h *WalletHandlers) StatementHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, total, err := h.service.GetStatement(r.Context(), userID, filter)
	if err != nil {
		log.Printf("level=error component=api endpoint=statement user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not load statement")
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = store.DefaultPageLimit
	}
	h.writeJSON(w, http.StatusOK, statementResponse{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
}

// GetTransactionHandler fetches one ledger entry by its transaction id.
func (h *WalletHandlers) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	transactionID := chi.URLParam(r, "transactionID")

	tx, err := h.service.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

// BalanceHandler returns the caller's current wallet balance.
func (h *WalletHandlers) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// StatisticsHandler aggregates completed activity over an optional date range.
func (h *WalletHandlers) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	from, err := parseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid 'from' date")
		return
	}
	to, err := parseOptionalDate(r.URL.Query().Get("to"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid 'to' date")
		return
	}

	stats, err := h.service.Statistics(r.Context(), userID, from, to)
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// MonthlySummaryHandler rolls one calendar month into totals and a daily series.
func (h *WalletHandlers) MonthlySummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid year")
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		h.writeError(w, http.StatusBadRequest, "Invalid month")
		return
	}

	summary, err := h.service.MonthlySummary(r.Context(), userID, year, time.Month(monthNum))
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// SearchHandler finds ledger entries matching a free-text query.
func (h *WalletHandlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, err := parseOptionalPositiveInt(r.URL.Query().Get("limit"), store.DefaultPageLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	results, err := h.service.SearchLedger(r.Context(), userID, query, limit)
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": results, "count": len(results)})
}

// ReconciliationHandler checks the caller's live balance against the ledger.
func (h *WalletHandlers) ReconciliationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	report, err := h.service.Reconcile(r.Context(), userID)
	if err != nil {
		status, message := mapProcessorError(err)
		h.writeError(w, status, message)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// DeleteAccountDataHandler erases the caller's ledger history.
func (h *WalletHandlers) DeleteAccountDataHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteUserData(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=delete_account_data user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not delete account data")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted_transactions": deleted})
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Type:          domain.TransactionType(q.Get("type")),
		Status:        domain.Status(q.Get("status")),
		PaymentMethod: domain.PaymentMethod(q.Get("payment_method")),
		Direction:     domain.Direction(q.Get("direction")),
		Category:      strings.TrimSpace(q.Get("category")),
		DateFrom:      strings.TrimSpace(q.Get("date_from")),
		DateTo:        strings.TrimSpace(q.Get("date_to")),
		SortBy:        domain.SortField(q.Get("sort_by")),
		SortDesc:      !strings.EqualFold(q.Get("order"), "asc"),
	}

	var err error
	if filter.Page, err = parseOptionalPositiveInt(q.Get("page"), 1); err != nil {
		return filter, errors.New("invalid page")
	}
	if filter.Limit, err = parseOptionalPositiveInt(q.Get("limit"), store.DefaultPageLimit); err != nil {
		return filter, errors.New("invalid limit")
	}
	if filter.MinAmount, err = parseOptionalInt64(q.Get("min_amount")); err != nil {
		return filter, errors.New("invalid min_amount")
	}
	if filter.MaxAmount, err = parseOptionalInt64(q.Get("max_amount")); err != nil {
		return filter, errors.New("invalid max_amount")
	}

	// Date bounds are forwarded to the store as timestamp strings, so a
	// malformed value must be rejected here rather than surface as a cast
	// error from the database.
	if filter.DateFrom != "" {
		ts, err := parseOptionalDate(filter.DateFrom)
		if err != nil {
			return filter, errors.New("invalid date_from")
		}
		filter.DateFrom = ts.UTC().Format(time.RFC3339)
	}
	if filter.DateTo != "" {
		ts, err := parseOptionalDate(filter.DateTo)
		if err != nil {
			return filter, errors.New("invalid date_to")
		}
		filter.DateTo = ts.UTC().Format(time.RFC3339)
	}
	return filter, nil
}

func parseOptionalPositiveInt(raw string, fallback int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	if value == 0 {
		return fallback, nil
	}
	return value, nil
}

func parseOptionalInt64(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return value, nil
}

func parseOptionalDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", trimmed)
}

// writeJSON is a helper for writing JSON responses.
func (h *WalletHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *WalletHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
