// Package interfaces defines service contracts for Papertrade
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/papertrade/internal/models"
)

// PriceHistoryClient retrieves daily closing prices from an external
// provider. Implementations may fail or return partial data; callers treat
// both as "insufficient data" for the affected symbol.
type PriceHistoryClient interface {
	// GetDailyCloses returns time-ordered (oldest first) daily closes for
	// symbol between from and to inclusive.
	GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)
}
