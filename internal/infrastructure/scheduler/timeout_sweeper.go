package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimeoutSweeper is the application operation driven by the sweeper loop
type TimeoutSweeper interface {
	SweepTimeouts(ctx context.Context, limit int) (int, error)
}

// SweeperConfig holds configuration for the timeout sweeper loop
type SweeperConfig struct {
	// Interval is how often the sweep runs
	Interval time.Duration
	// BatchSize caps how many stale requests one sweep closes
	BatchSize int
	// JobTimeout bounds a single sweep run
	JobTimeout time.Duration
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:   30 * time.Minute,
		BatchSize:  100,
		JobTimeout: 5 * time.Minute,
	}
}

// Sweeper periodically closes requests that sat in a user-action state past
// the timeout window.
type Sweeper struct {
	config  SweeperConfig
	sweeper TimeoutSweeper
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a new timeout sweeper loop
func NewSweeper(config SweeperConfig, sweeper TimeoutSweeper, logger *zap.Logger) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSweeperConfig().BatchSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSweeperConfig().JobTimeout
	}
	return &Sweeper{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start starts the sweeper loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Timeout sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop stops the sweeper loop and waits for an in-flight sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.logger.Info("Timeout sweeper stopped")
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	closed, err := s.sweeper.SweepTimeouts(runCtx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("Timeout sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("Timeout sweep closed stale requests", zap.Int("closed", closed))
	}
}
