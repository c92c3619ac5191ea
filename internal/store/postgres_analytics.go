/**
 * @description
 * Analytics aggregation queries over the ledger. These are read-only and
 * never mutate transactions; sums are computed over the stored `amount`
 * column in integer paise, so repeated aggregation cannot drift.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zippay/wallet-service/internal/domain"
)

// AggregateStatistics summarizes completed entries inside [from, to]. The
// status breakdown alone spans all statuses so callers can see the
// success/failure mix.
func (r *PostgresRepository) AggregateStatistics(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*domain.Statistics, error) {
	stats := &domain.Statistics{
		ByType:   map[domain.TransactionType]domain.Bucket{},
		ByMethod: map[domain.PaymentMethod]domain.Bucket{},
		ByStatus: map[domain.Status]domain.Bucket{},
	}

	totalsQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(fee), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(AVG(amount), 0)::bigint
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3`
	err := r.db.QueryRow(ctx, totalsQuery, ownerID, from, to).Scan(
		&stats.TotalCount, &stats.TotalAmount, &stats.TotalFees,
		&stats.TotalCredits, &stats.TotalDebits, &stats.AverageAmount)
	if err != nil {
		return nil, err
	}

	typeQuery := `
		SELECT type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3
		GROUP BY type`
	rows, err := r.db.Query(ctx, typeQuery, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t domain.TransactionType
		var b domain.Bucket
		if err := rows.Scan(&t, &b.Count, &b.Amount); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByType[t] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	methodQuery := `
		SELECT payment_method, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3
		GROUP BY payment_method`
	rows, err = r.db.Query(ctx, methodQuery, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m domain.PaymentMethod
		var b domain.Bucket
		if err := rows.Scan(&m, &b.Count, &b.Amount); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByMethod[m] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statusQuery := `
		SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND created_at BETWEEN $2 AND $3
		GROUP BY status`
	rows, err = r.db.Query(ctx, statusQuery, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s domain.Status
		var b domain.Bucket
		if err := rows.Scan(&s, &b.Count, &b.Amount); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[s] = b
	}
	rows.Close()
	return stats, rows.Err()
}

// AggregateMonthly computes the month's completed totals, per-type breakdown
// and ascending day-by-day rollup.
func (r *PostgresRepository) AggregateMonthly(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) (*domain.MonthlySummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	summary := &domain.MonthlySummary{
		Year:   year,
		Month:  int(month),
		ByType: map[domain.TransactionType]domain.Bucket{},
	}

	totalsQuery := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3`
	if err := r.db.QueryRow(ctx, totalsQuery, ownerID, from, to).Scan(&summary.TotalDebits, &summary.TotalCredits); err != nil {
		return nil, err
	}
	summary.NetFlow = summary.TotalCredits - summary.TotalDebits

	typeQuery := `
		SELECT type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3
		GROUP BY type`
	rows, err := r.db.Query(ctx, typeQuery, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t domain.TransactionType
		var b domain.Bucket
		if err := rows.Scan(&t, &b.Count, &b.Amount); err != nil {
			rows.Close()
			return nil, err
		}
		summary.ByType[t] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dailyQuery := `
		SELECT
			to_char(created_at::date, 'YYYY-MM-DD'),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COUNT(*)
		FROM transactions
		WHERE owner_user_id = $1 AND status = 'completed' AND created_at BETWEEN $2 AND $3
		GROUP BY created_at::date
		ORDER BY created_at::date ASC`
	rows, err = r.db.Query(ctx, dailyQuery, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var day domain.DailyTotal
		if err := rows.Scan(&day.Date, &day.Debits, &day.Credits, &day.Count); err != nil {
			return nil, err
		}
		summary.DailyBreakdown = append(summary.DailyBreakdown, day)
	}
	return summary, rows.Err()
}

// CompletedFlowTotals returns the amounts that actually moved through the
// wallet: credited amounts in, and total charged amounts (amount + fee + tax)
// out. Reconciliation derives the expected balance from these.
func (r *PostgresRepository) CompletedFlowTotals(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	var credits, debits int64
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE direction = 'debit'), 0)
		FROM transactions
		WHERE owner_user_id = $1 AND status IN ('completed', 'refunded')`
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&credits, &debits); err != nil {
		return 0, 0, err
	}
	return credits, debits, nil
}
