// Package app wires configuration, storage, clients, and services into a
// running Papertrade core shared by every entrypoint.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/papertrade/internal/clients/eodhd"
	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
	"github.com/bobmcallan/papertrade/internal/services/scheduler"
	"github.com/bobmcallan/papertrade/internal/services/signal"
	"github.com/bobmcallan/papertrade/internal/services/trader"
	storage "github.com/bobmcallan/papertrade/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	EODHDClient   interfaces.PriceHistoryClient
	SignalService interfaces.SignalService
	Executor      interfaces.TradeExecutor
	Sanitizer     interfaces.PortfolioSanitizer
	Scheduler     interfaces.SchedulerService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Resolve config: provided path, PAPERTRADE_CONFIG, binary dir, then
	// the development fallback.
	if configPath == "" {
		configPath = os.Getenv("PAPERTRADE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "papertrade.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/papertrade.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - signal analysis will be unavailable")
	}
	eodhdClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	signalService := signal.NewService(storageManager, eodhdClient, logger, config.Trading)
	executor := trader.NewExecutor(storageManager, logger)
	sanitizer := trader.NewSanitizer(storageManager, eodhdClient, logger, config.Trading.FallbackPrice)
	sched := scheduler.NewScheduler(storageManager, signalService, executor, sanitizer, logger, config.Trading)

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		EODHDClient:   eodhdClient,
		SignalService: signalService,
		Executor:      executor,
		Sanitizer:     sanitizer,
		Scheduler:     sched,
		StartupTime:   startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartAutoTrading begins automated trading for a user. Returns false when a
// session is already active.
func (a *App) StartAutoTrading(userEmail string) bool {
	return a.Scheduler.Start(userEmail)
}

// StopAutoTrading ends the user's automated trading session. Returns false
// when no session is active.
func (a *App) StopAutoTrading(userEmail string) bool {
	return a.Scheduler.Stop(userEmail)
}

// IsAutoTradingActive reports whether the user has an active session.
func (a *App) IsAutoTradingActive(userEmail string) bool {
	return a.Scheduler.Status(userEmail)
}

// GetSignals returns merged holding and watch-list signals for a user,
// sorted by confidence descending.
func (a *App) GetSignals(ctx context.Context, userEmail string) ([]models.Signal, error) {
	return a.SignalService.GetSignals(ctx, userEmail)
}

// CleanupPortfolio repairs or discards structurally invalid holdings for a
// user.
func (a *App) CleanupPortfolio(ctx context.Context, userID string) error {
	return a.Sanitizer.Sanitize(ctx, userID)
}

// Close releases all resources held by the App.
// Shutdown order: stop all trading sessions, then close storage.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.StopAll()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
