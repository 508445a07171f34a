// Package gateway simulates the asynchronous data-access boundary the stores
// call through. Every call waits out an artificial latency and may fail
// transiently; transient failures are retried with exponential backoff.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/facebookgo/clock"
	"github.com/rpggio/storyverse/internal/metrics"
)

var (
	// ErrUnavailable is returned when a call keeps failing after all retries.
	ErrUnavailable = errors.New("data source unavailable")

	errTransient = errors.New("transient failure")
)

// Config controls the simulation.
type Config struct {
	Latency       time.Duration
	FailureRate   float64 // probability in [0,1] that one attempt fails
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Simulated is a Gateway that performs no I/O.
type Simulated struct {
	cfg     Config
	clock   clock.Clock
	metrics *metrics.Gateway
	logger  *slog.Logger

	mu   sync.Mutex
	roll func() float64
}

// Option customizes a Simulated gateway.
type Option func(*Simulated)

// WithClock sets the clock used for latency.
func WithClock(c clock.Clock) Option {
	return func(s *Simulated) { s.clock = c }
}

// WithMetrics records calls on m.
func WithMetrics(m *metrics.Gateway) Option {
	return func(s *Simulated) { s.metrics = m }
}

// WithRoll replaces the random source deciding whether an attempt fails.
func WithRoll(roll func() float64) Option {
	return func(s *Simulated) { s.roll = roll }
}

// New creates a simulated gateway.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Simulated {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	s := &Simulated{
		cfg:    cfg,
		clock:  clock.New(),
		logger: logger,
		roll:   rand.New(rand.NewSource(time.Now().UnixNano())).Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call waits out the simulated round trip for op.
func (s *Simulated) Call(ctx context.Context, op string) error {
	start := s.clock.Now()
	attempt := 0

	operation := func() error {
		attempt++
		if attempt > 1 {
			s.metrics.Retry(op)
		}
		if err := s.wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		if s.fails() {
			s.logger.Debug("simulated failure", "op", op, "attempt", attempt)
			return errTransient
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RetryInterval
	policy.MaxElapsedTime = 0
	policy.Clock = s.clock
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, s.cfg.MaxRetries), ctx)
	err := backoff.RetryNotifyWithTimer(operation, retry, nil, &clockTimer{clock: s.clock})

	s.metrics.Observe(op, s.clock.Now().Sub(start), err)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errTransient):
		s.logger.Warn("data source call failed", "op", op, "attempts", attempt)
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Simulated) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Latency <= 0 {
		return nil
	}
	timer := s.clock.Timer(s.cfg.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Simulated) fails() bool {
	if s.cfg.FailureRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roll() < s.cfg.FailureRate
}

// clockTimer drives backoff waits from the gateway clock.
type clockTimer struct {
	clock clock.Clock
	timer *clock.Timer
}

func (t *clockTimer) Start(d time.Duration) {
	t.Stop()
	t.timer = t.clock.Timer(d)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.timer.C
}
