package interfaces

import (
	"context"

	"github.com/bobmcallan/papertrade/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	UserStore() UserStore
	PortfolioStore() PortfolioStore
	TransactionStore() TransactionStore

	// Lifecycle
	Close() error
}

// UserStore manages user accounts and their credits balances.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// GetUserByEmail returns (nil, nil) when no account exists for email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	// UpdateCredits sets the credits balance for a user.
	UpdateCredits(ctx context.Context, userID string, credits float64) error
}

// PortfolioStore manages per-user portfolios.
type PortfolioStore interface {
	// Get returns (nil, nil) when the user has no portfolio yet.
	Get(ctx context.Context, userID string) (*models.Portfolio, error)
	// GetOrCreate returns the existing portfolio or an empty one, created
	// lazily on first trade.
	GetOrCreate(ctx context.Context, userID string) (*models.Portfolio, error)
	Save(ctx context.Context, portfolio *models.Portfolio) error
}

// TransactionStore manages the append-only trade ledger.
type TransactionStore interface {
	// Append inserts a new ledger entry. Insert-only: entries are never
	// updated or deleted.
	Append(ctx context.Context, txn *models.Transaction) error
	ListByUser(ctx context.Context, userEmail string, limit int) ([]*models.Transaction, error)
	TotalsByUser(ctx context.Context, userEmail string) (*models.TradeTotals, error)
}
