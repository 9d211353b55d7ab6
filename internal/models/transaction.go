package models

import "time"

// Transaction is an append-only ledger entry, written exactly once per
// executed trade. Never mutated or deleted; it is the source of truth for
// realized spend/earn totals.
type Transaction struct {
	ID        string      `json:"id"`
	UserEmail string      `json:"user_email"`
	Symbol    string      `json:"symbol"`
	Name      string      `json:"name"`
	Price     float64     `json:"price"`
	Quantity  uint64      `json:"quantity"`
	Type      TradeAction `json:"type"` // BUY or SELL only
	Automated bool        `json:"automated"`
	Timestamp time.Time   `json:"timestamp"`
}

// TradeTotals aggregates realized spend and proceeds from the transaction
// log for one user.
type TradeTotals struct {
	UserEmail   string  `json:"user_email"`
	TotalSpent  float64 `json:"total_spent"`  // sum of quantity*price over BUYs
	TotalEarned float64 `json:"total_earned"` // sum of quantity*price over SELLs
	BuyCount    int     `json:"buy_count"`
	SellCount   int     `json:"sell_count"`
}
