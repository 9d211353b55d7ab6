package models

import "time"

// Holding represents a single position within a portfolio. One lot per
// symbol per user.
// Invariant: Quantity > 0. A holding that reaches zero is removed, never
// persisted as zero.
type Holding struct {
	Symbol        string    `json:"symbol"`
	Quantity      uint64    `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

// Portfolio represents a user's simulated holdings. Exactly one per user,
// created lazily on first trade.
type Portfolio struct {
	UserID    string    `json:"user_id"`
	Holdings  []Holding `json:"holdings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindHolding returns the index of the holding for symbol, or -1.
func (p *Portfolio) FindHolding(symbol string) int {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// HeldQuantity returns the quantity held for symbol, zero when not held.
func (p *Portfolio) HeldQuantity(symbol string) uint64 {
	if i := p.FindHolding(symbol); i >= 0 {
		return p.Holdings[i].Quantity
	}
	return 0
}
