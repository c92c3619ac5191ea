/**
 * @description
 * This file sets up the HTTP router for the wallet-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WalletRoutes creates and returns a new router for the wallet service.
func WalletRoutes(h *WalletHandlers, jwtSecret string, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		// Payment flows
		r.Post("/transfers", h.TransferHandler)
		r.Post("/payments", h.PaymentHandler)
		r.Post("/recharges", h.RechargeHandler)
		r.Post("/add-money", h.AddMoneyHandler)
		r.Post("/withdrawals", h.WithdrawalHandler)
		r.Post("/transactions/{transactionID}/refund", h.RefundHandler)

		// Ledger queries
		r.Get("/transactions", h.StatementHandler)
		r.Get("/transactions/{transactionID}", h.GetTransactionHandler)
		r.Get("/balance", h.BalanceHandler)
		r.Get("/search", h.SearchHandler)

		// Analytics
		r.Get("/statistics", h.StatisticsHandler)
		r.Get("/summary/{year}/{month}", h.MonthlySummaryHandler)
		r.Get("/reconciliation", h.ReconciliationHandler)

		// Data erasure
		r.Delete("/account/data", h.DeleteAccountDataHandler)
	})

	return r
}
