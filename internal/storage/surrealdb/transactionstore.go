package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/models"
)

// TransactionStore persists the trade ledger in the transaction table.
// The ledger is append-only: entries are inserted once and never touched
// again.
type TransactionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTransactionStore(db *surrealdb.DB, logger *common.Logger) *TransactionStore {
	return &TransactionStore{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new ledger entry keyed by its transaction ID. CREATE
// rather than UPSERT so a duplicate ID surfaces as an error instead of
// silently rewriting history.
func (s *TransactionStore) Append(ctx context.Context, txn *models.Transaction) error {
	sql := "CREATE $rid CONTENT $txn"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("transaction", txn.ID),
		"txn": txn,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to append transaction after retries: %w", lastErr)
}

// ListByUser returns the user's trades, most recent first. A limit of 0
// means no limit.
func (s *TransactionStore) ListByUser(ctx context.Context, userEmail string, limit int) ([]*models.Transaction, error) {
	sql := "SELECT * FROM transaction WHERE user_email = $user_email ORDER BY timestamp DESC"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	vars := map[string]any{"user_email": userEmail}

	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Transaction
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

// TotalsByUser aggregates lifetime buy and sell totals from the ledger.
func (s *TransactionStore) TotalsByUser(ctx context.Context, userEmail string) (*models.TradeTotals, error) {
	txns, err := s.ListByUser(ctx, userEmail, 0)
	if err != nil {
		return nil, err
	}

	totals := &models.TradeTotals{UserEmail: userEmail}
	for _, txn := range txns {
		value := txn.Price * float64(txn.Quantity)
		switch txn.Type {
		case models.ActionBuy:
			totals.TotalSpent += value
			totals.BuyCount++
		case models.ActionSell:
			totals.TotalEarned += value
			totals.SellCount++
		}
	}
	return totals, nil
}
