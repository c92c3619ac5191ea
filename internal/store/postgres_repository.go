/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed for the ledger entry store, the
 * wallet balance accessor, and the analytics aggregation queries.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippay/wallet-service/internal/domain"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTerminalStatus      = errors.New("transaction is in a terminal status")
	ErrInvalidTransition   = errors.New("status transition not permitted")
	ErrInvalidDraft        = errors.New("transaction draft is missing required fields")
	ErrDuplicateReference  = errors.New("external reference already recorded")
)

const (
	// MaxPageLimit bounds statement page sizes.
	MaxPageLimit     = 100
	DefaultPageLimit = 20

	// transactionIDAttempts bounds the retry loop on a human-facing id
	// collision. Collisions are possible because the suffix is random.
	transactionIDAttempts = 5
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NewTransactionID generates a human-facing ledger identifier: a millisecond
// timestamp with a random hex suffix. Uniqueness is enforced by the database
// and CreateTransaction retries with a fresh suffix on a collision.
func NewTransactionID(now time.Time) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("TXN%d%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix)))
}

// --- Account / balance accessor boundary ---

const accountColumns = `id, user_id, full_name, email, phone, upi_address, balance, opening_balance, pin_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Email, &a.Phone, &a.UPIAddress,
		&a.Balance, &a.OpeningBalance, &a.PINHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAccountByUserID retrieves a user's wallet account.
func (r *PostgresRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, userID))
}

// FindAccountByIdentifier resolves a wallet by email, phone or UPI address.
func (r *PostgresRepository) FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE lower(email) = lower(btrim($1)) OR phone = btrim($1) OR lower(upi_address) = lower(btrim($1))
		LIMIT 1`
	return scanAccount(r.db.QueryRow(ctx, query, identifier))
}

// CreateAccount inserts a new wallet account seeded with its opening balance.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, user_id, full_name, email, phone, upi_address, balance, opening_balance, pin_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.UserID, account.FullName, account.Email, account.Phone,
		account.UPIAddress, account.Balance, account.PINHash)
	return err
}

// GetBalance returns the current spendable balance for a user.
func (r *PostgresRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// AtomicAdjust applies a signed delta to a wallet balance with the funds
// check folded into the same statement. Two concurrent debits can therefore
// never both pass validation against a stale balance.
func (r *PostgresRepository) AtomicAdjust(ctx context.Context, userID uuid.UUID, delta int64) (int64, error) {
	var balance int64
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance + $1 >= 0
		RETURNING balance`
	err := r.db.QueryRow(ctx, query, delta, userID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}
	// Distinguish a missing wallet from a failed funds check.
	var exists bool
	if checkErr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = $1)`, userID).Scan(&exists); checkErr != nil {
		return 0, checkErr
	}
	if !exists {
		return 0, ErrAccountNotFound
	}
	return 0, ErrInsufficientFunds
}

// --- Ledger entry store ---

const transactionColumns = `
	id, transaction_id, owner_user_id, type, direction, amount, fee, tax, total_amount,
	status, status_history, sender_details, receiver_details, balance_before, balance_after,
	payment_method, payment_method_details, external_reference_id, gateway_reference,
	category, description, remarks, error_details, metadata,
	created_at, initiated_at, completed_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                  domain.Transaction
		historyJSON        []byte
		senderJSON         []byte
		receiverJSON       []byte
		methodDetailsJSON  []byte
		errorDetailsJSON   []byte
		metadataJSON       []byte
	)
	err := row.Scan(
		&t.ID, &t.TransactionID, &t.OwnerUserID, &t.Type, &t.Direction,
		&t.Amount, &t.Fee, &t.Tax, &t.TotalAmount,
		&t.Status, &historyJSON, &senderJSON, &receiverJSON, &t.BalanceBefore, &t.BalanceAfter,
		&t.PaymentMethod, &methodDetailsJSON, &t.ExternalReferenceID, &t.GatewayReference,
		&t.Category, &t.Description, &t.Remarks, &errorDetailsJSON, &metadataJSON,
		&t.CreatedAt, &t.InitiatedAt, &t.CompletedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &t.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	if len(senderJSON) > 0 {
		if err := json.Unmarshal(senderJSON, &t.SenderDetails); err != nil {
			return nil, fmt.Errorf("decode sender details: %w", err)
		}
	}
	if len(receiverJSON) > 0 {
		if err := json.Unmarshal(receiverJSON, &t.ReceiverDetails); err != nil {
			return nil, fmt.Errorf("decode receiver details: %w", err)
		}
	}
	if len(methodDetailsJSON) > 0 {
		if err := json.Unmarshal(methodDetailsJSON, &t.PaymentMethodDetails); err != nil {
			return nil, fmt.Errorf("decode payment method details: %w", err)
		}
	}
	if len(errorDetailsJSON) > 0 {
		if err := json.Unmarshal(errorDetailsJSON, &t.ErrorDetails); err != nil {
			return nil, fmt.Errorf("decode error details: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &t, nil
}

func marshalOrNil(v interface{}) ([]byte, error) {
	switch value := v.(type) {
	case *domain.PartySnapshot:
		if value == nil {
			return nil, nil
		}
	case *domain.ErrorDetails:
		if value == nil {
			return nil, nil
		}
	case map[string]string:
		if value == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

// PrepareTransaction normalizes a draft entry in place: it validates required
// fields, resolves the direction, recomputes the total, seeds the status
// history, and stamps timestamps. Exposed so the in-memory fake used in tests
// applies exactly the same creation semantics as the SQL store.
func PrepareTransaction(t *domain.Transaction, now time.Time) error {
	if t.Type == "" || t.Amount <= 0 || t.PaymentMethod == "" {
		return ErrInvalidDraft
	}
	if t.Fee < 0 || t.Tax < 0 {
		return ErrInvalidDraft
	}
	if t.Direction == "" {
		direction, err := domain.InferDirection(t.Type)
		if err != nil {
			return err
		}
		t.Direction = direction
	}
	t.TotalAmount = domain.ComputeTotal(t.Direction, t.Amount, t.Fee, t.Tax)
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	t.CreatedAt = now
	t.InitiatedAt = now
	t.UpdatedAt = now
	if len(t.StatusHistory) == 0 {
		t.StatusHistory = []domain.StatusChange{{Status: t.Status, Timestamp: now, Actor: "system", Reason: "created"}}
	}
	return nil
}

// CreateTransaction persists a new ledger entry. When the draft carries no
// transaction_id one is generated, and generation is retried with a fresh
// random suffix if the unique index reports a collision.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	now := time.Now().UTC()
	if err := PrepareTransaction(t, now); err != nil {
		return err
	}

	historyJSON, err := json.Marshal(t.StatusHistory)
	if err != nil {
		return err
	}
	senderJSON, err := marshalOrNil(t.SenderDetails)
	if err != nil {
		return err
	}
	receiverJSON, err := marshalOrNil(t.ReceiverDetails)
	if err != nil {
		return err
	}
	methodDetailsJSON, err := marshalOrNil(t.PaymentMethodDetails)
	if err != nil {
		return err
	}
	metadataJSON, err := marshalOrNil(t.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (
			id, transaction_id, owner_user_id, type, direction, amount, fee, tax, total_amount,
			status, status_history, sender_details, receiver_details, balance_before, balance_after,
			payment_method, payment_method_details, external_reference_id, gateway_reference,
			category, description, remarks, metadata, created_at, initiated_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	generated := t.TransactionID == ""
	attempts := transactionIDAttempts
	if !generated {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if generated {
			t.TransactionID = NewTransactionID(now)
		}
		_, err = r.db.Exec(ctx, query,
			t.ID, t.TransactionID, t.OwnerUserID, t.Type, t.Direction, t.Amount, t.Fee, t.Tax, t.TotalAmount,
			t.Status, historyJSON, senderJSON, receiverJSON, t.BalanceBefore, t.BalanceAfter,
			t.PaymentMethod, methodDetailsJSON, t.ExternalReferenceID, t.GatewayReference,
			t.Category, t.Description, t.Remarks, metadataJSON, t.CreatedAt, t.InitiatedAt, t.UpdatedAt,
		)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "external_reference") {
				return ErrDuplicateReference
			}
			if generated && strings.Contains(pgErr.ConstraintName, "transaction_id") {
				continue
			}
		}
		return err
	}
	return fmt.Errorf("could not allocate a unique transaction id after %d attempts: %w", attempts, err)
}

// FindTransactionByID retrieves a ledger entry by primary key.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.db.QueryRow(ctx, query, id))
}

// FindTransactionByTransactionID retrieves a ledger entry by its human-facing id.
func (r *PostgresRepository) FindTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	return scanTransaction(r.db.QueryRow(ctx, query, transactionID))
}

// FindTransactionByExternalReference supports idempotent retries keyed on a
// caller-supplied settlement reference.
func (r *PostgresRepository) FindTransactionByExternalReference(ctx context.Context, ownerID uuid.UUID, externalRef string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_user_id = $1 AND external_reference_id = $2`
	return scanTransaction(r.db.QueryRow(ctx, query, ownerID, externalRef))
}

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByAmount:    "amount",
	domain.SortByUpdatedAt: "updated_at",
}

// NormalizePage clamps paging inputs to the store's bounds: a zero or
// negative limit falls back to the default, anything above MaxPageLimit is
// capped, and pages start at 1.
func NormalizePage(limit, page int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, page
}

// FindTransactionsByOwner lists a user's ledger entries with filtering,
// sorting and pagination, returning the page plus the total match count.
func (r *PostgresRepository) FindTransactionsByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, int64, error) {
	conditions := []string{"owner_user_id = $1"}
	args := []interface{}{ownerID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Type != "" {
		addCondition("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.PaymentMethod != "" {
		addCondition("payment_method = $%d", filter.PaymentMethod)
	}
	if filter.Direction != "" {
		addCondition("direction = $%d", filter.Direction)
	}
	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.DateFrom != "" {
		addCondition("created_at >= $%d::timestamptz", filter.DateFrom)
	}
	if filter.DateTo != "" {
		addCondition("created_at <= $%d::timestamptz", filter.DateTo)
	}
	if filter.MinAmount > 0 {
		addCondition("amount >= $%d", filter.MinAmount)
	}
	if filter.MaxAmount > 0 {
		addCondition("amount <= $%d", filter.MaxAmount)
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
		filter.SortDesc = true
	}
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}

	limit, page := NormalizePage(filter.Limit, filter.Page)
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		transactionColumns, where, sortColumn, order, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, total, rows.Err()
}

// UpdateTransactionStatus appends one entry to the status history and moves
// the entry to its new status. It is the only mutation path for an existing
// ledger entry; transitions out of terminal states are rejected.
func (r *PostgresRepository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, newStatus domain.Status, update StatusUpdate) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var currentStatus domain.Status
	err = tx.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1 FOR UPDATE`, id).Scan(&currentStatus)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if !domain.CanTransition(currentStatus, newStatus) {
		if domain.TerminalStatus(currentStatus) {
			return nil, fmt.Errorf("%w: %s", ErrTerminalStatus, currentStatus)
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, currentStatus, newStatus)
	}

	now := time.Now().UTC()
	change := domain.StatusChange{Status: newStatus, Timestamp: now, Reason: update.Reason, Actor: update.Actor}
	changeJSON, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	errorDetailsJSON, err := marshalOrNil(update.ErrorDetails)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions
		SET status = $2,
		    status_history = status_history || $3::jsonb,
		    balance_after = COALESCE($4, balance_after),
		    error_details = COALESCE($5, error_details),
		    gateway_reference = COALESCE($6, gateway_reference),
		    completed_at = CASE WHEN $2 = 'completed' THEN $7 ELSE completed_at END,
		    updated_at = $7
		WHERE id = $1
		RETURNING ` + transactionColumns
	updated, err := scanTransaction(tx.QueryRow(ctx, query, id, newStatus, changeJSON,
		update.BalanceAfter, errorDetailsJSON, update.GatewayRef, now))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// SearchTransactions performs a case-insensitive substring match over the
// fields a user would recognize on a receipt.
func (r *PostgresRepository) SearchTransactions(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	pattern := "%" + strings.TrimSpace(query) + "%"
	sql := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_user_id = $1 AND (
			description ILIKE $2 OR
			remarks ILIKE $2 OR
			transaction_id ILIKE $2 OR
			category ILIKE $2 OR
			sender_details->>'name' ILIKE $2 OR
			sender_details->>'upi_address' ILIKE $2 OR
			receiver_details->>'name' ILIKE $2 OR
			receiver_details->>'upi_address' ILIKE $2
		)
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.db.Query(ctx, sql, ownerID, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// DeleteTransactionsByOwner removes every ledger entry for a user. Used only
// by the account data erasure flow.
func (r *PostgresRepository) DeleteTransactionsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE owner_user_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// FindStuckProcessing returns entries that have sat in `processing` since
// before the cutoff, for the sweeper to park on_hold.
func (r *PostgresRepository) FindStuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = 'processing' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}
