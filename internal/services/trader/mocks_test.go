package trader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// memStorage is an in-memory StorageManager safe for concurrent use.
type memStorage struct {
	users *memUserStore
	ports *memPortfolioStore
	txns  *memTransactionStore
}

func newMemStorage() *memStorage {
	return &memStorage{
		users: &memUserStore{users: make(map[string]*models.User)},
		ports: &memPortfolioStore{portfolios: make(map[string]*models.Portfolio)},
		txns:  &memTransactionStore{},
	}
}

func (m *memStorage) UserStore() interfaces.UserStore               { return m.users }
func (m *memStorage) PortfolioStore() interfaces.PortfolioStore     { return m.ports }
func (m *memStorage) TransactionStore() interfaces.TransactionStore { return m.txns }
func (m *memStorage) Close() error                                  { return nil }

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by user ID

	creditsErr error // next UpdateCredits fails when set
}

func (m *memUserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) UpdateCredits(ctx context.Context, userID string, credits float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creditsErr != nil {
		err := m.creditsErr
		m.creditsErr = nil
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.Credits = credits
	return nil
}

func (m *memUserStore) credits(userID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Credits
}

type memPortfolioStore struct {
	mu         sync.Mutex
	portfolios map[string]*models.Portfolio

	saveErrs  int // next N Save calls fail
	saveCalls int
}

func (m *memPortfolioStore) Get(ctx context.Context, userID string) (*models.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.portfolios[userID]; ok {
		return clonePortfolio(p), nil
	}
	return nil, nil
}

func (m *memPortfolioStore) GetOrCreate(ctx context.Context, userID string) (*models.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.portfolios[userID]; ok {
		return clonePortfolio(p), nil
	}
	now := time.Now()
	p := &models.Portfolio{UserID: userID, Holdings: []models.Holding{}, CreatedAt: now, UpdatedAt: now}
	m.portfolios[userID] = clonePortfolio(p)
	return p, nil
}

func (m *memPortfolioStore) Save(ctx context.Context, portfolio *models.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErrs > 0 {
		m.saveErrs--
		return errors.New("save failed")
	}
	m.portfolios[portfolio.UserID] = clonePortfolio(portfolio)
	return nil
}

func (m *memPortfolioStore) stored(userID string) *models.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.portfolios[userID]; ok {
		return clonePortfolio(p)
	}
	return nil
}

type memTransactionStore struct {
	mu        sync.Mutex
	entries   []*models.Transaction
	appendErr error // next Append fails when set
}

func (m *memTransactionStore) Append(ctx context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		err := m.appendErr
		m.appendErr = nil
		return err
	}
	cp := *txn
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memTransactionStore) ListByUser(ctx context.Context, userEmail string, limit int) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, txn := range m.entries {
		if txn.UserEmail == userEmail {
			cp := *txn
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTransactionStore) TotalsByUser(ctx context.Context, userEmail string) (*models.TradeTotals, error) {
	txns, err := m.ListByUser(ctx, userEmail, 0)
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

func (m *memTransactionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockPriceClient serves a fixed close series, or fails.
type mockPriceClient struct {
	closes []float64
	err    error
}

func (m *mockPriceClient) GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	points := make([]models.PricePoint, len(m.closes))
	base := time.Now().AddDate(0, 0, -len(m.closes))
	for i, c := range m.closes {
		points[i] = models.PricePoint{Date: base.AddDate(0, 0, i), Close: c}
	}
	return points, nil
}
