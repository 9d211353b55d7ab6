package models

import "sort"

// TradeAction is the direction a signal or transaction carries.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
	ActionHold TradeAction = "HOLD"
)

// Signal is the point-in-time mean-reversion verdict for one symbol.
// Recomputed every cycle; never persisted.
type Signal struct {
	Symbol       string      `json:"symbol"`
	Action       TradeAction `json:"signal"`
	Confidence   float64     `json:"confidence"` // normalized signal strength in [0,1]
	CurrentPrice float64     `json:"current_price"`
	Mean         float64     `json:"mean"`
	StdDev       float64     `json:"std_dev"`
	ZScore       float64     `json:"z_score"`
}

// SkippedSymbol records a symbol dropped from a batch analysis and why.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// SignalBatch separates successful signals from per-symbol failures so a bad
// symbol never aborts the batch.
type SignalBatch struct {
	Signals []Signal        `json:"signals"`
	Skipped []SkippedSymbol `json:"skipped,omitempty"`
}

// MergeByConfidence combines batches sorted by confidence descending. The
// sort is stable: equal confidences keep input order, so held-position
// signals rank ahead of watch-list ideas at the same strength.
func MergeByConfidence(batches ...*SignalBatch) []Signal {
	var merged []Signal
	for _, b := range batches {
		if b == nil {
			continue
		}
		merged = append(merged, b.Signals...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return merged
}
