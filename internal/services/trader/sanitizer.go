package trader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// Sanitizer implements PortfolioSanitizer. Holdings with a missing symbol or
// non-positive quantity are discarded; holdings missing cost data are
// repaired, not deleted.
type Sanitizer struct {
	storage       interfaces.StorageManager
	prices        interfaces.PriceHistoryClient
	logger        *common.Logger
	fallbackPrice float64
}

// NewSanitizer creates a new portfolio sanitizer
func NewSanitizer(storage interfaces.StorageManager, prices interfaces.PriceHistoryClient, logger *common.Logger, fallbackPrice float64) *Sanitizer {
	if fallbackPrice <= 0 {
		fallbackPrice = 100.0
	}
	return &Sanitizer{
		storage:       storage,
		prices:        prices,
		logger:        logger,
		fallbackPrice: fallbackPrice,
	}
}

// Sanitize repairs or discards structurally invalid holdings for a user.
// Idempotent; persists only when the holding set actually changed.
func (s *Sanitizer) Sanitize(ctx context.Context, userID string) error {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("read portfolio for %s: %w", userID, err)
	}
	if portfolio == nil {
		return nil
	}

	cleaned := make([]models.Holding, 0, len(portfolio.Holdings))
	changed := false

	for _, h := range portfolio.Holdings {
		h.Symbol = strings.TrimSpace(h.Symbol)
		if h.Symbol == "" || h.Quantity == 0 {
			s.logger.Info().
				Str("user", userID).
				Str("symbol", h.Symbol).
				Uint64("quantity", h.Quantity).
				Msg("Discarding invalid holding")
			changed = true
			continue
		}

		if h.PurchasePrice <= 0 {
			h.PurchasePrice = s.currentPrice(ctx, h.Symbol)
			s.logger.Info().
				Str("user", userID).
				Str("symbol", h.Symbol).
				Float64("price", h.PurchasePrice).
				Msg("Backfilled missing purchase price")
			changed = true
		}
		if h.PurchaseDate.IsZero() {
			h.PurchaseDate = time.Now()
			changed = true
		}

		cleaned = append(cleaned, h)
	}

	if !changed {
		return nil
	}

	portfolio.Holdings = cleaned
	portfolio.UpdatedAt = time.Now()

	if err := s.storage.PortfolioStore().Save(ctx, portfolio); err != nil {
		s.logger.Warn().Str("user", userID).Err(err).Msg("Bulk save failed, retrying holding by holding")
		return s.saveIncremental(ctx, portfolio, cleaned)
	}

	return nil
}

// saveIncremental rebuilds the portfolio one holding at a time so a single
// bad record does not block saving the rest.
func (s *Sanitizer) saveIncremental(ctx context.Context, portfolio *models.Portfolio, holdings []models.Holding) error {
	p := &models.Portfolio{
		UserID:    portfolio.UserID,
		CreatedAt: portfolio.CreatedAt,
		UpdatedAt: time.Now(),
	}

	var lastErr error
	for _, h := range holdings {
		p.Holdings = append(p.Holdings, h)
		if err := s.storage.PortfolioStore().Save(ctx, p); err != nil {
			s.logger.Warn().
				Str("user", p.UserID).
				Str("symbol", h.Symbol).
				Err(err).
				Msg("Dropping unsaveable holding")
			p.Holdings = p.Holdings[:len(p.Holdings)-1]
			lastErr = err
		}
	}

	if len(p.Holdings) == 0 && lastErr != nil {
		return fmt.Errorf("incremental save for %s: %w", p.UserID, lastErr)
	}
	return nil
}

// currentPrice fetches the most recent close for a symbol, falling back to
// the configured constant when the provider cannot supply one.
func (s *Sanitizer) currentPrice(ctx context.Context, symbol string) float64 {
	if s.prices == nil {
		return s.fallbackPrice
	}
	to := time.Now()
	window, err := s.prices.GetDailyCloses(ctx, symbol, to.AddDate(0, 0, -7), to)
	if err != nil || len(window) == 0 {
		return s.fallbackPrice
	}
	return window[len(window)-1].Close
}

// Ensure Sanitizer implements PortfolioSanitizer
var _ interfaces.PortfolioSanitizer = (*Sanitizer)(nil)
