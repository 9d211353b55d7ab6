// Package signals provides mean-reversion signal computation
package signals

import (
	"errors"
	"math"

	"github.com/bobmcallan/papertrade/internal/models"
)

// ErrInsufficientData indicates a price window too small to score. Callers
// skip the symbol; this is never a fatal error.
var ErrInsufficientData = errors.New("insufficient price data")

// Params holds the engine's scoring thresholds.
type Params struct {
	StdDevThreshold float64 // z-score magnitude that triggers BUY/SELL
	MinConfidence   float64 // signals below this collapse to HOLD
}

// DefaultParams returns the standard scoring thresholds.
func DefaultParams() Params {
	return Params{
		StdDevThreshold: 1.0,
		MinConfidence:   0.2,
	}
}

// Engine scores a price window against its rolling distribution. Pure
// computation with no shared mutable state.
type Engine struct {
	params Params
}

// NewEngine creates a new signal engine
func NewEngine(params Params) *Engine {
	if params.StdDevThreshold <= 0 {
		params.StdDevThreshold = 1.0
	}
	if params.MinConfidence <= 0 {
		params.MinConfidence = 0.2
	}
	return &Engine{params: params}
}

// Compute derives a trade signal from a window of closes ordered oldest
// first. The last close is the current price. Requires at least 2 closes.
func (e *Engine) Compute(symbol string, closes []float64) (*models.Signal, error) {
	if len(closes) < 2 {
		return nil, ErrInsufficientData
	}

	mean := Mean(closes)
	stdDev := StdDev(closes, mean)
	currentPrice := closes[len(closes)-1]

	signal := &models.Signal{
		Symbol:       symbol,
		Action:       models.ActionHold,
		CurrentPrice: currentPrice,
		Mean:         mean,
		StdDev:       stdDev,
	}

	// Flat window: z-score is undefined, hold with zero confidence rather
	// than dividing by zero.
	if stdDev == 0 {
		return signal, nil
	}

	zScore := (currentPrice - mean) / stdDev
	confidence := math.Min(1, math.Abs(zScore)/e.params.StdDevThreshold)

	signal.ZScore = zScore

	if confidence < e.params.MinConfidence {
		return signal, nil
	}

	signal.Confidence = confidence
	switch {
	case zScore > e.params.StdDevThreshold:
		signal.Action = models.ActionSell
	case zScore < -e.params.StdDevThreshold:
		signal.Action = models.ActionBuy
	}

	return signal, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation (divide by N, not N-1).
func StdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
