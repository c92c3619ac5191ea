package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zippay/wallet-service/internal/app"
	"github.com/zippay/wallet-service/internal/store"
)

func statementRequest(t *testing.T, query string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/transactions?"+query, nil)
}

func TestParseListFilter_NormalizesDateBounds(t *testing.T) {
	filter, err := parseListFilter(statementRequest(t, "date_from=2026-03-01&date_to=2026-03-15T10:30:00Z"))
	if err != nil {
		t.Fatalf("parseListFilter returned error: %v", err)
	}
	if filter.DateFrom != "2026-03-01T00:00:00Z" {
		t.Errorf("DateFrom = %q, want RFC3339 midnight", filter.DateFrom)
	}
	if filter.DateTo != "2026-03-15T10:30:00Z" {
		t.Errorf("DateTo = %q, want value preserved", filter.DateTo)
	}
}

func TestParseListFilter_RejectsMalformedDates(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"garbage date_from", "date_from=not-a-date"},
		{"garbage date_to", "date_to=03/15/2026"},
		{"partial timestamp", "date_from=2026-03-01T99:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseListFilter(statementRequest(t, tc.query)); err == nil {
				t.Error("expected an error for a malformed date")
			}
		})
	}
}

func TestMapProcessorError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", app.ErrValidation, http.StatusBadRequest},
		{"invalid draft", store.ErrInvalidDraft, http.StatusBadRequest},
		{"authentication", app.ErrAuthentication, http.StatusUnauthorized},
		{"insufficient funds", store.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"terminal status", store.ErrTerminalStatus, http.StatusConflict},
		{"rate limited", app.ErrRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapProcessorError(tc.err)
			if status != tc.want {
				t.Errorf("status = %d, want %d", status, tc.want)
			}
		})
	}
}
