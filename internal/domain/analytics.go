package domain

// Bucket is one aggregation cell in a statistics breakdown.
type Bucket struct {
	Count  int64 `json:"count"`
	Amount int64 `json:"amount"` // in paise
}

// Statistics summarizes a user's completed ledger activity over a date range.
// The status breakdown alone is computed over ALL statuses so it reflects the
// success/failure mix rather than only successful entries.
type Statistics struct {
	TotalCount    int64                      `json:"total_count"`
	TotalAmount   int64                      `json:"total_amount"`
	TotalFees     int64                      `json:"total_fees"`
	TotalCredits  int64                      `json:"total_credits"`
	TotalDebits   int64                      `json:"total_debits"`
	AverageAmount int64                      `json:"average_amount"`
	ByType        map[TransactionType]Bucket `json:"by_type"`
	ByMethod      map[PaymentMethod]Bucket   `json:"by_method"`
	ByStatus      map[Status]Bucket          `json:"by_status"`
}

// DailyTotal is one row of a monthly day-by-day rollup.
type DailyTotal struct {
	Date    string `json:"date"` // yyyy-mm-dd
	Debits  int64  `json:"debits"`
	Credits int64  `json:"credits"`
	Count   int64  `json:"count"`
}

// MonthlySummary aggregates completed entries within one calendar month.
// NetFlow is credits minus debits.
type MonthlySummary struct {
	Year           int                        `json:"year"`
	Month          int                        `json:"month"`
	TotalDebits    int64                      `json:"total_debits"`
	TotalCredits   int64                      `json:"total_credits"`
	NetFlow        int64                      `json:"net_flow"`
	ByType         map[TransactionType]Bucket `json:"by_type"`
	DailyBreakdown []DailyTotal               `json:"daily_breakdown"`
}

// ReconciliationReport compares a wallet's stored balance with the balance
// derivable from its completed ledger history.
type ReconciliationReport struct {
	OpeningBalance int64 `json:"opening_balance"`
	TotalCredits   int64 `json:"total_credits"`
	TotalDebits    int64 `json:"total_debits"`
	DerivedBalance int64 `json:"derived_balance"`
	StoredBalance  int64 `json:"stored_balance"`
	Consistent     bool  `json:"consistent"`
}
