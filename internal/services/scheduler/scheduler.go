// Package scheduler runs per-user automated trading sessions on a fixed
// cadence.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/models"
)

// session is the process-wide state for one user's automated trading.
// At most one session exists per user at a time.
type session struct {
	userEmail string
	cancel    context.CancelFunc
}

// Scheduler implements SchedulerService. The session registry is owned by
// the scheduler instance, so tests construct isolated schedulers rather than
// sharing process-global state.
type Scheduler struct {
	storage   interfaces.StorageManager
	signals   interfaces.SignalService
	executor  interfaces.TradeExecutor
	sanitizer interfaces.PortfolioSanitizer
	logger    *common.Logger

	interval          time.Duration
	autoMinConfidence float64
	maxPositionSize   float64

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup

	// cycleMu guards cycles per user, not per session: a cycle left in
	// flight by a stopped session still blocks the replacement session's
	// first cycle. Cycles for one user are serialized; different users run
	// independently.
	cycleMu sync.Mutex
	cycles  map[string]*sync.Mutex
}

// NewScheduler creates a new trading scheduler
func NewScheduler(
	storage interfaces.StorageManager,
	signalService interfaces.SignalService,
	executor interfaces.TradeExecutor,
	sanitizer interfaces.PortfolioSanitizer,
	logger *common.Logger,
	cfg common.TradingConfig,
) *Scheduler {
	autoMin := cfg.AutoMinConfidence
	if autoMin <= 0 {
		autoMin = 0.7
	}
	maxPos := cfg.MaxPositionSize
	if maxPos <= 0 {
		maxPos = 0.1
	}
	return &Scheduler{
		storage:           storage,
		signals:           signalService,
		executor:          executor,
		sanitizer:         sanitizer,
		logger:            logger,
		interval:          cfg.GetCheckInterval(),
		autoMinConfidence: autoMin,
		maxPositionSize:   maxPos,
		sessions:          make(map[string]*session),
		cycles:            make(map[string]*sync.Mutex),
	}
}

// cycleLock returns the per-user cycle mutex, creating it on first use.
func (s *Scheduler) cycleLock(userEmail string) *sync.Mutex {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	l, ok := s.cycles[userEmail]
	if !ok {
		l = &sync.Mutex{}
		s.cycles[userEmail] = l
	}
	return l
}

// Start begins automated trading for a user: one evaluation cycle runs
// synchronously, then a recurring timer re-runs it. Returns false when a
// session is already active.
func (s *Scheduler) Start(userEmail string) bool {
	s.mu.Lock()
	if _, exists := s.sessions[userEmail]; exists {
		s.mu.Unlock()
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{userEmail: userEmail, cancel: cancel}
	s.sessions[userEmail] = sess
	s.mu.Unlock()

	// First cycle runs before the timer is armed so a freshly started
	// session acts immediately.
	s.runCycle(ctx, sess)

	s.wg.Add(1)
	go s.loop(ctx, sess)

	s.logger.Info().Str("user", userEmail).Dur("interval", s.interval).Msg("Auto-trading started")
	return true
}

// Stop ends the user's session. Returns false when no session is active.
// After Stop returns, no new cycle fires for that user; an in-flight cycle
// is allowed to finish.
func (s *Scheduler) Stop(userEmail string) bool {
	s.mu.Lock()
	sess, exists := s.sessions[userEmail]
	if !exists {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, userEmail)
	s.mu.Unlock()

	sess.cancel()
	s.logger.Info().Str("user", userEmail).Msg("Auto-trading stopped")
	return true
}

// Status reports whether a session is active for the user.
func (s *Scheduler) Status(userEmail string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[userEmail]
	return exists
}

// StopAll stops every active session and waits for their loops to exit.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for email, sess := range s.sessions {
		sess.cancel()
		delete(s.sessions, email)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// loop re-runs the evaluation cycle on the configured interval until the
// session is cancelled.
func (s *Scheduler) loop(ctx context.Context, sess *session) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick can be pending when the session is cancelled, and
			// select picks between ready cases arbitrarily. Cancellation
			// happens before Stop returns, so this check guarantees no
			// cycle starts after Stop.
			if ctx.Err() != nil {
				return
			}
			s.runCycle(ctx, sess)
		}
	}
}

// runCycle executes one evaluation cycle with panic recovery and the
// per-user reentrancy guard. A cycle still in flight when the timer fires
// again causes the new fire to be skipped, never overlapped.
func (s *Scheduler) runCycle(ctx context.Context, sess *session) {
	lock := s.cycleLock(sess.userEmail)
	if !lock.TryLock() {
		s.logger.Warn().Str("user", sess.userEmail).Msg("Previous cycle still running, skipping")
		return
	}
	defer lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("user", sess.userEmail).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in trading cycle")
		}
	}()

	s.checkAndExecuteTrades(ctx, sess.userEmail)
}

// checkAndExecuteTrades is the body of one evaluation cycle: resolve the
// user, sanitize the portfolio, aggregate signals, and feed qualifying ones
// to the executor. No failure for one signal aborts the rest.
func (s *Scheduler) checkAndExecuteTrades(ctx context.Context, userEmail string) {
	start := time.Now()

	user, err := s.storage.UserStore().GetUserByEmail(ctx, userEmail)
	if err != nil {
		s.logger.Warn().Str("user", userEmail).Err(err).Msg("Cycle skipped: user lookup failed")
		return
	}
	if user == nil {
		// Stale session: the account is gone, so the schedule goes too.
		s.logger.Info().Str("user", userEmail).Msg("User no longer exists, stopping session")
		s.Stop(userEmail)
		return
	}

	if err := s.sanitizer.Sanitize(ctx, user.ID); err != nil {
		s.logger.Warn().Str("user", userEmail).Err(err).Msg("Portfolio sanitize failed")
	}

	var holdings []models.Holding
	portfolio, err := s.storage.PortfolioStore().Get(ctx, user.ID)
	if err != nil {
		s.logger.Warn().Str("user", userEmail).Err(err).Msg("Portfolio read failed, evaluating watch-list only")
	} else if portfolio != nil {
		holdings = portfolio.Holdings
	}

	held := s.signals.AnalyzeHoldings(ctx, holdings)
	watch := s.signals.AnalyzeWatchlist(ctx)
	merged := models.MergeByConfidence(held, watch)

	credits := user.Credits
	executed := 0

	for _, sig := range merged {
		if sig.Confidence < s.autoMinConfidence {
			continue
		}

		switch sig.Action {
		case models.ActionBuy:
			quantity := uint64(math.Floor(credits * s.maxPositionSize / sig.CurrentPrice))
			if quantity == 0 {
				continue
			}
			if s.executor.Execute(ctx, userEmail, sig.Symbol, models.ActionBuy, quantity, sig.CurrentPrice) {
				credits -= float64(quantity) * sig.CurrentPrice
				executed++
			}

		case models.ActionSell:
			var quantity uint64
			if portfolio != nil {
				quantity = portfolio.HeldQuantity(sig.Symbol)
			}
			if quantity == 0 {
				continue
			}
			// Full exit: the entire held quantity goes, not a partial.
			if s.executor.Execute(ctx, userEmail, sig.Symbol, models.ActionSell, quantity, sig.CurrentPrice) {
				executed++
			}
		}
	}

	s.logger.Info().
		Str("user", userEmail).
		Int("signals", len(merged)).
		Int("executed", executed).
		Dur("elapsed", time.Since(start)).
		Msg("Trading cycle complete")
}

// Ensure Scheduler implements SchedulerService
var _ interfaces.SchedulerService = (*Scheduler)(nil)
