// Package scheduler runs periodic background jobs inside the API server.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"go.uber.org/zap"
)

// sweepLockKey serializes sweeps across server replicas
const sweepLockKey = "sweep:awaiting_gateway"

// Sweeper re-verifies bills stuck awaiting the gateway. *paymentapp.Reconciler
// satisfies it.
type Sweeper interface {
	SweepAwaitingGateway(ctx context.Context, olderThan time.Duration) (*paymentapp.SweepResult, error)
}

// SweepSchedulerConfig holds configuration for the sweep scheduler
type SweepSchedulerConfig struct {
	Enabled bool

	// Interval between sweeps
	Interval time.Duration

	// OlderThan skips bills the tenant may still be paying
	OlderThan time.Duration

	// Timeout bounds a single sweep
	Timeout time.Duration
}

// DefaultSweepSchedulerConfig returns default configuration
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Enabled:   true,
		Interval:  15 * time.Minute,
		OlderThan: 30 * time.Minute,
		Timeout:   5 * time.Minute,
	}
}

func (c SweepSchedulerConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 || c.Timeout <= 0 {
		return fmt.Errorf("%w: interval and timeout must be positive", ErrInvalidConfig)
	}
	if c.OlderThan < 0 {
		return fmt.Errorf("%w: older_than cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// SweepScheduler periodically sweeps awaiting-gateway payments so bills
// whose tenant never returned from checkout still reach the ledger.
type SweepScheduler struct {
	sweeper Sweeper
	locker  payment.Locker
	logger  *zap.Logger
	config  SweepSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepScheduler creates a new sweep scheduler. locker may be nil when a
// single server runs.
func NewSweepScheduler(sweeper Sweeper, locker payment.Locker, logger *zap.Logger, config SweepSchedulerConfig) (*SweepScheduler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepScheduler{
		sweeper: sweeper,
		locker:  locker,
		logger:  logger.Named("sweep_scheduler"),
		config:  config,
	}, nil
}

// Start launches the sweep loop
func (s *SweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	if !s.config.Enabled {
		s.logger.Info("Sweep scheduler is disabled")
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("older_than", s.config.OlderThan))
}

// Stop cancels the loop and waits for an in-flight sweep, bounded by ctx
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sweep scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep unless another replica holds the sweep lock.
// It returns nil when the sweep was skipped.
func (s *SweepScheduler) RunOnce(ctx context.Context) *paymentapp.SweepResult {
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, sweepLockKey)
		if errors.Is(err, payment.ErrVerificationInProgress) {
			s.logger.Debug("Sweep already running elsewhere, skipping")
			return nil
		}
		if err != nil {
			s.logger.Error("Sweep lock failed", zap.Error(err))
			return nil
		}
		defer release()
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.sweeper.SweepAwaitingGateway(sweepCtx, s.config.OlderThan)
	if err != nil {
		s.logger.Error("Sweep failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return res
	}
	for _, f := range res.Failures {
		s.logger.Warn("Bill could not be verified", zap.String("bill_id", f.BillID), zap.String("error", f.Error))
	}
	return res
}
