package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/models"
)

// PortfolioStore persists portfolios in the portfolio table, one record per
// user keyed by user ID.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{
		db:     db,
		logger: logger,
	}
}

// Get returns (nil, nil) when the user has no portfolio record yet.
func (s *PortfolioStore) Get(ctx context.Context, userID string) (*models.Portfolio, error) {
	portfolio, err := surrealdb.Select[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID("portfolio", userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	return portfolio, nil
}

// GetOrCreate returns the existing portfolio, or creates an empty one on
// first use.
func (s *PortfolioStore) GetOrCreate(ctx context.Context, userID string) (*models.Portfolio, error) {
	portfolio, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if portfolio != nil {
		return portfolio, nil
	}

	now := time.Now()
	portfolio = &models.Portfolio{
		UserID:    userID,
		Holdings:  []models.Holding{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", userID).Msg("Created empty portfolio")
	return portfolio, nil
}

func (s *PortfolioStore) Save(ctx context.Context, portfolio *models.Portfolio) error {
	sql := "UPSERT $rid CONTENT $portfolio"
	vars := map[string]any{
		"rid":       surrealmodels.NewRecordID("portfolio", portfolio.UserID),
		"portfolio": portfolio,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save portfolio after retries: %w", lastErr)
}
