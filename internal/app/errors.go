package app

import "errors"

// Processor-level error taxonomy. Validation and authentication failures are
// synchronous caller errors and never produce a ledger entry; failures after
// an entry exists are captured into the entry's terminal failed status and
// also returned to the caller.
var (
	ErrValidation           = errors.New("validation failed")
	ErrAuthentication       = errors.New("authentication failed")
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	ErrInvalidOperation     = errors.New("operation not permitted")
	ErrRateLimited          = errors.New("too many payment attempts")
	ErrSettlementDeclined   = errors.New("settlement declined by gateway")
)
