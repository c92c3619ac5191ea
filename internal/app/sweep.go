package app

import (
	"context"
	"log"
	"time"

	"github.com/zippay/wallet-service/internal/domain"
	"github.com/zippay/wallet-service/internal/store"
)

const sweepBatchLimit = 100

// Sweeper periodically parks ledger entries stuck in processing. An entry
// that has not moved for longer than MaxAge is driven to on_hold, which keeps
// it out of balances derived from completed activity and flags it for
// operator review. The sweeper never completes or fails an entry on its own.
type Sweeper struct {
	repo     store.Repository
	interval time.Duration
	maxAge   time.Duration
}

func NewSweeper(repo store.Repository, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &Sweeper{repo: repo, interval: interval, maxAge: maxAge}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("level=info component=sweeper msg=\"starting\" interval=%s max_age=%s", s.interval, s.maxAge)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("level=info component=sweeper msg=\"stopping\" reason=%v", ctx.Err())
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("level=error component=sweeper msg=\"sweep failed\" err=%v", err)
			} else if n > 0 {
				log.Printf("level=warn component=sweeper msg=\"parked stuck entries\" count=%d", n)
			}
		}
	}
}

// SweepOnce performs a single pass and returns how many entries were parked.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	stuck, err := s.repo.FindStuckProcessing(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		return 0, err
	}

	parked := 0
	for i := range stuck {
		entry := &stuck[i]
		_, err := s.repo.UpdateTransactionStatus(ctx, entry.ID, domain.StatusOnHold, store.StatusUpdate{
			Actor:  "sweeper",
			Reason: "processing exceeded maximum age",
		})
		if err != nil {
			// Another worker may have finalized it between the scan and the
			// update; that is not a sweep failure.
			log.Printf("level=warn component=sweeper msg=\"could not park entry\" transaction_id=%s err=%v", entry.TransactionID, err)
			continue
		}
		parked++
	}
	return parked, nil
}
