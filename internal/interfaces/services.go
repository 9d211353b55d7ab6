package interfaces

import (
	"context"

	"github.com/bobmcallan/papertrade/internal/models"
)

// SignalService computes mean-reversion signals for held positions and the
// fixed watch-list.
type SignalService interface {
	// ComputeSignal evaluates a single symbol against its rolling price
	// window. Returns an error when the provider fails or returns fewer
	// than two usable closes.
	ComputeSignal(ctx context.Context, symbol string) (*models.Signal, error)

	// AnalyzeHoldings evaluates each held symbol, collecting per-symbol
	// failures as skips rather than aborting the batch.
	AnalyzeHoldings(ctx context.Context, holdings []models.Holding) *models.SignalBatch

	// AnalyzeWatchlist scans the watch-list and keeps only BUY signals.
	AnalyzeWatchlist(ctx context.Context) *models.SignalBatch

	// GetSignals merges holding and watch-list signals for a user, sorted
	// by confidence descending. Fails only when the user cannot be
	// resolved.
	GetSignals(ctx context.Context, userEmail string) ([]models.Signal, error)
}

// TradeExecutor validates and applies simulated trades against a user's
// portfolio, credits balance, and transaction log.
type TradeExecutor interface {
	// Execute runs one trade. Returns false on any validation or
	// persistence failure; a false result guarantees no partial state was
	// committed, so the call is safe to retry.
	Execute(ctx context.Context, userEmail, symbol string, side models.TradeAction, quantity uint64, price float64) bool

	// Totals aggregates realized spend/earn from the transaction log.
	Totals(ctx context.Context, userEmail string) (*models.TradeTotals, error)
}

// PortfolioSanitizer repairs or discards structurally invalid holdings.
// Idempotent; safe to call repeatedly.
type PortfolioSanitizer interface {
	Sanitize(ctx context.Context, userID string) error
}

// SchedulerService manages per-user automated trading sessions.
type SchedulerService interface {
	// Start begins automated trading for a user. Returns false when a
	// session is already active.
	Start(userEmail string) bool

	// Stop ends the user's session. Returns false when no session is
	// active. No further cycle fires for the user after Stop returns.
	Stop(userEmail string) bool

	// Status reports whether a session is active. Never mutates.
	Status(userEmail string) bool

	// StopAll stops every active session. Used at shutdown.
	StopAll()
}
