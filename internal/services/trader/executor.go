// Package trader provides autonomous trade execution against simulated
// portfolios and the append-only transaction ledger.
package trader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// Executor implements TradeExecutor. Each call runs a
// Validate → Mutate-Cash → Mutate-Holdings → Append-Transaction sequence
// under a per-user mutex so a manual sell racing an automated buy cannot
// corrupt quantity or credits. A false return guarantees no partial state
// was committed.
type Executor struct {
	storage interfaces.StorageManager
	logger  *common.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExecutor creates a new trade executor
func NewExecutor(storage interfaces.StorageManager, logger *common.Logger) *Executor {
	return &Executor{
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the serialization mutex for a user, creating it on first
// use.
func (e *Executor) userLock(userEmail string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userEmail]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userEmail] = l
	}
	return l
}

// Execute runs one simulated trade. Validation failures and persistence
// errors return false and are logged; the cycle continues with the next
// signal.
func (e *Executor) Execute(ctx context.Context, userEmail, symbol string, side models.TradeAction, quantity uint64, price float64) bool {
	if symbol == "" || quantity == 0 || price <= 0 {
		e.logger.Warn().
			Str("user", userEmail).
			Str("symbol", symbol).
			Uint64("quantity", quantity).
			Float64("price", price).
			Msg("Trade rejected: invalid parameters")
		return false
	}
	if side != models.ActionBuy && side != models.ActionSell {
		e.logger.Warn().Str("user", userEmail).Str("side", string(side)).Msg("Trade rejected: invalid side")
		return false
	}

	lock := e.userLock(userEmail)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.storage.UserStore().GetUserByEmail(ctx, userEmail)
	if err != nil || user == nil {
		e.logger.Warn().Str("user", userEmail).Err(err).Msg("Trade rejected: unknown user")
		return false
	}

	portfolio, err := e.storage.PortfolioStore().GetOrCreate(ctx, user.ID)
	if err != nil {
		e.logger.Warn().Str("user", userEmail).Err(err).Msg("Trade aborted: portfolio read failed")
		return false
	}

	// Work on a copy so the original remains intact for rollback.
	updated := clonePortfolio(portfolio)
	amount := float64(quantity) * price

	var newCredits float64
	switch side {
	case models.ActionBuy:
		if amount > user.Credits {
			e.logger.Info().
				Str("user", userEmail).
				Str("symbol", symbol).
				Float64("cost", amount).
				Float64("credits", user.Credits).
				Msg("BUY rejected: insufficient credits")
			return false
		}
		newCredits = user.Credits - amount
		applyBuy(updated, symbol, quantity, price)

	case models.ActionSell:
		held := updated.HeldQuantity(symbol)
		if held < quantity {
			e.logger.Info().
				Str("user", userEmail).
				Str("symbol", symbol).
				Uint64("requested", quantity).
				Uint64("held", held).
				Msg("SELL rejected: insufficient shares")
			return false
		}
		newCredits = user.Credits + amount
		applySell(updated, symbol, quantity)
	}

	updated.UpdatedAt = time.Now()

	// Ordered writes with compensating rollback. Serialization via the
	// per-user lock means no concurrent reader for this user observes the
	// intermediate states.
	if err := e.storage.UserStore().UpdateCredits(ctx, user.ID, newCredits); err != nil {
		e.logger.Error().Str("user", userEmail).Err(err).Msg("Trade aborted: credits update failed")
		return false
	}

	if err := e.storage.PortfolioStore().Save(ctx, updated); err != nil {
		e.logger.Error().Str("user", userEmail).Err(err).Msg("Trade aborted: portfolio save failed, restoring credits")
		if rbErr := e.storage.UserStore().UpdateCredits(ctx, user.ID, user.Credits); rbErr != nil {
			e.logger.Error().Str("user", userEmail).Err(rbErr).Msg("Credits rollback failed")
		}
		return false
	}

	txn := &models.Transaction{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Symbol:    symbol,
		Name:      models.SymbolName(symbol),
		Price:     price,
		Quantity:  quantity,
		Type:      side,
		Automated: true,
		Timestamp: time.Now(),
	}

	if err := e.storage.TransactionStore().Append(ctx, txn); err != nil {
		e.logger.Error().Str("user", userEmail).Err(err).Msg("Trade aborted: ledger append failed, rolling back")
		if rbErr := e.storage.PortfolioStore().Save(ctx, portfolio); rbErr != nil {
			e.logger.Error().Str("user", userEmail).Err(rbErr).Msg("Portfolio rollback failed")
		}
		if rbErr := e.storage.UserStore().UpdateCredits(ctx, user.ID, user.Credits); rbErr != nil {
			e.logger.Error().Str("user", userEmail).Err(rbErr).Msg("Credits rollback failed")
		}
		return false
	}

	e.logger.Info().
		Str("user", userEmail).
		Str("symbol", symbol).
		Str("side", string(side)).
		Uint64("quantity", quantity).
		Float64("price", price).
		Float64("credits", newCredits).
		Msg("Automated trade executed")

	return true
}

// Totals aggregates realized spend/earn from the transaction log.
func (e *Executor) Totals(ctx context.Context, userEmail string) (*models.TradeTotals, error) {
	return e.storage.TransactionStore().TotalsByUser(ctx, userEmail)
}

// applyBuy tops up an existing lot or inserts a new one. The purchase price
// of an existing lot is left unchanged; top-ups do not restate cost basis.
func applyBuy(p *models.Portfolio, symbol string, quantity uint64, price float64) {
	if i := p.FindHolding(symbol); i >= 0 {
		p.Holdings[i].Quantity += quantity
		return
	}
	p.Holdings = append(p.Holdings, models.Holding{
		Symbol:        symbol,
		Quantity:      quantity,
		PurchasePrice: price,
		PurchaseDate:  time.Now(),
	})
}

// applySell decrements the lot, removing it entirely at zero.
func applySell(p *models.Portfolio, symbol string, quantity uint64) {
	i := p.FindHolding(symbol)
	if i < 0 {
		return
	}
	if p.Holdings[i].Quantity <= quantity {
		p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		return
	}
	p.Holdings[i].Quantity -= quantity
}

func clonePortfolio(p *models.Portfolio) *models.Portfolio {
	cp := *p
	cp.Holdings = make([]models.Holding, len(p.Holdings))
	copy(cp.Holdings, p.Holdings)
	return &cp
}

// Ensure Executor implements TradeExecutor
var _ interfaces.TradeExecutor = (*Executor)(nil)
