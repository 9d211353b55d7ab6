package models

import "testing"

func TestMergeByConfidenceOrdering(t *testing.T) {
	held := &SignalBatch{Signals: []Signal{
		{Symbol: "AAPL", Action: ActionSell, Confidence: 0.5},
		{Symbol: "MSFT", Action: ActionBuy, Confidence: 0.9},
	}}
	watch := &SignalBatch{Signals: []Signal{
		{Symbol: "NVDA", Action: ActionBuy, Confidence: 0.7},
	}}

	merged := MergeByConfidence(held, watch)

	if len(merged) != 3 {
		t.Fatalf("Expected 3 signals, got %d", len(merged))
	}
	want := []string{"MSFT", "NVDA", "AAPL"}
	for i, symbol := range want {
		if merged[i].Symbol != symbol {
			t.Errorf("Position %d: expected %s, got %s", i, symbol, merged[i].Symbol)
		}
	}
}

func TestMergeByConfidenceStable(t *testing.T) {
	// Equal confidence keeps input order: held signals rank ahead of
	// watch-list signals.
	held := &SignalBatch{Signals: []Signal{
		{Symbol: "AAPL", Confidence: 0.8},
	}}
	watch := &SignalBatch{Signals: []Signal{
		{Symbol: "NVDA", Confidence: 0.8},
	}}

	merged := MergeByConfidence(held, watch)

	if len(merged) != 2 {
		t.Fatalf("Expected 2 signals, got %d", len(merged))
	}
	if merged[0].Symbol != "AAPL" || merged[1].Symbol != "NVDA" {
		t.Errorf("Stable sort violated: got %s, %s", merged[0].Symbol, merged[1].Symbol)
	}
}

func TestMergeByConfidenceNilBatches(t *testing.T) {
	if got := MergeByConfidence(nil, nil); got != nil {
		t.Errorf("Expected nil for nil batches, got %v", got)
	}
	if got := MergeByConfidence(); got != nil {
		t.Errorf("Expected nil for no batches, got %v", got)
	}
}

func TestPortfolioHelpers(t *testing.T) {
	p := &Portfolio{Holdings: []Holding{
		{Symbol: "AAPL", Quantity: 5},
		{Symbol: "MSFT", Quantity: 3},
	}}

	if i := p.FindHolding("MSFT"); i != 1 {
		t.Errorf("FindHolding(MSFT) = %d, want 1", i)
	}
	if i := p.FindHolding("NVDA"); i != -1 {
		t.Errorf("FindHolding(NVDA) = %d, want -1", i)
	}
	if q := p.HeldQuantity("AAPL"); q != 5 {
		t.Errorf("HeldQuantity(AAPL) = %d, want 5", q)
	}
	if q := p.HeldQuantity("NVDA"); q != 0 {
		t.Errorf("HeldQuantity(NVDA) = %d, want 0", q)
	}
}
