// Package models defines data structures for Papertrade
package models

import "time"

// PricePoint represents a single day's closing price for a symbol.
// Immutable once produced by the price history provider.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Closes extracts the close values from a price window, oldest first.
func Closes(window []PricePoint) []float64 {
	out := make([]float64, len(window))
	for i, p := range window {
		out[i] = p.Close
	}
	return out
}

// DefaultWatchlist is the fixed set of symbols scanned for new buy ideas in
// addition to held positions.
var DefaultWatchlist = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
	"META", "NVDA", "JPM", "V", "WMT",
}

// symbolNames maps well-known watch-list symbols to display names used on
// transaction records. Unknown symbols fall back to the symbol itself.
var symbolNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"AMZN":  "Amazon.com Inc.",
	"TSLA":  "Tesla Inc.",
	"META":  "Meta Platforms Inc.",
	"NVDA":  "NVIDIA Corporation",
	"JPM":   "JPMorgan Chase & Co.",
	"V":     "Visa Inc.",
	"WMT":   "Walmart Inc.",
}

// SymbolName returns the display name for a symbol.
func SymbolName(symbol string) string {
	if name, ok := symbolNames[symbol]; ok {
		return name
	}
	return symbol
}
