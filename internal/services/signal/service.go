// Package signal provides portfolio and watch-list signal aggregation
package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
	"github.com/bobmcallan/papertrade/internal/signals"
)

// Service implements SignalService. Every call fetches a fresh price window
// from the provider; signals are never cached between the display path and
// the auto-execute path.
type Service struct {
	storage   interfaces.StorageManager
	prices    interfaces.PriceHistoryClient
	engine    *signals.Engine
	logger    *common.Logger
	lookback  int
	watchlist []string
}

// NewService creates a new signal aggregation service
func NewService(storage interfaces.StorageManager, prices interfaces.PriceHistoryClient, logger *common.Logger, cfg common.TradingConfig) *Service {
	lookback := cfg.LookbackDays
	if lookback < 2 {
		lookback = 20
	}
	watchlist := cfg.Watchlist()
	if len(watchlist) == 0 {
		watchlist = models.DefaultWatchlist
	}
	return &Service{
		storage: storage,
		prices:  prices,
		engine: signals.NewEngine(signals.Params{
			StdDevThreshold: cfg.StdDevThreshold,
			MinConfidence:   cfg.MinConfidence,
		}),
		logger:    logger,
		lookback:  lookback,
		watchlist: watchlist,
	}
}

// ComputeSignal evaluates one symbol against its rolling price window.
func (s *Service) ComputeSignal(ctx context.Context, symbol string) (*models.Signal, error) {
	// Fetch double the lookback in calendar days so weekends and holidays
	// still leave a full window of trading days.
	to := time.Now()
	from := to.AddDate(0, 0, -2*s.lookback)

	window, err := s.prices.GetDailyCloses(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("price window for %s: %w", symbol, err)
	}

	closes := models.Closes(window)
	if len(closes) > s.lookback {
		closes = closes[len(closes)-s.lookback:]
	}

	sig, err := s.engine.Compute(symbol, closes)
	if err != nil {
		return nil, fmt.Errorf("compute signal for %s: %w", symbol, err)
	}
	return sig, nil
}

// AnalyzeHoldings evaluates each held symbol. Best-effort: a failing symbol
// is recorded as skipped and the batch continues.
func (s *Service) AnalyzeHoldings(ctx context.Context, holdings []models.Holding) *models.SignalBatch {
	batch := &models.SignalBatch{}

	for _, h := range holdings {
		sig, err := s.ComputeSignal(ctx, h.Symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", h.Symbol).Err(err).Msg("Skipping held symbol")
			batch.Skipped = append(batch.Skipped, models.SkippedSymbol{Symbol: h.Symbol, Reason: err.Error()})
			continue
		}
		batch.Signals = append(batch.Signals, *sig)
	}

	return batch
}

// AnalyzeWatchlist scans the fixed watch-list and keeps only BUY signals.
// The watch-list surfaces new buy ideas, not sell pressure on unheld names.
func (s *Service) AnalyzeWatchlist(ctx context.Context) *models.SignalBatch {
	batch := &models.SignalBatch{}

	for _, symbol := range s.watchlist {
		sig, err := s.ComputeSignal(ctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Skipping watch-list symbol")
			batch.Skipped = append(batch.Skipped, models.SkippedSymbol{Symbol: symbol, Reason: err.Error()})
			continue
		}
		if sig.Action != models.ActionBuy {
			continue
		}
		batch.Signals = append(batch.Signals, *sig)
	}

	return batch
}

// GetSignals merges holding and watch-list signals for a user, sorted by
// confidence descending. Only an unresolvable user is a hard failure.
func (s *Service) GetSignals(ctx context.Context, userEmail string) ([]models.Signal, error) {
	user, err := s.storage.UserStore().GetUserByEmail(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userEmail, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userEmail)
	}

	var holdings []models.Holding
	portfolio, err := s.storage.PortfolioStore().Get(ctx, user.ID)
	if err != nil {
		s.logger.Warn().Str("user", userEmail).Err(err).Msg("Portfolio read failed, analyzing watch-list only")
	} else if portfolio != nil {
		holdings = portfolio.Holdings
	}

	held := s.AnalyzeHoldings(ctx, holdings)
	watch := s.AnalyzeWatchlist(ctx)

	return models.MergeByConfidence(held, watch), nil
}

// Ensure Service implements SignalService
var _ interfaces.SignalService = (*Service)(nil)
