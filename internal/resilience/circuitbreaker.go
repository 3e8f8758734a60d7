// Package resilience provides the STT failover chain for fifo-whisper-ptt.
//
// The local whisper.cpp provider is the primary backend; a cloud provider
// may be registered as a fallback. Each backend sits behind a [Breaker] so a
// repeatedly failing backend is skipped for a cool-down period instead of
// adding its failure latency to every session.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by [Breaker.Execute] while the breaker is open
// and the cool-down has not yet elapsed.
var ErrBreakerOpen = errors.New("breaker is open")

// BreakerConfig holds tuning knobs for a [Breaker]. Zero values are replaced
// with defaults.
type BreakerConfig struct {
	// Name is a human-readable label used in log messages.
	Name string

	// MaxFailures is the number of consecutive failures before the breaker
	// opens. Default: 3.
	MaxFailures int

	// Cooldown is how long the breaker stays open before allowing a probe
	// call. Default: 30s.
	Cooldown time.Duration
}

// Breaker is a two-state (closed/open) circuit breaker. After Cooldown a
// single probe call is let through; success closes the breaker, failure
// re-opens it. Safe for concurrent use.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu          sync.Mutex
	open        bool
	failures    int
	lastFailure time.Time
}

// NewBreaker creates a [Breaker] from cfg.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:        cfg.Name,
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
	}
}

// Execute runs fn unless the breaker is open and cooling down, in which case
// it returns [ErrBreakerOpen] without calling fn.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if b.open && time.Since(b.lastFailure) < b.cooldown {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = time.Now()
		if !b.open && b.failures >= b.maxFailures {
			b.open = true
			slog.Warn("breaker opened", "name", b.name, "consecutive_failures", b.failures)
		} else if b.open {
			slog.Debug("breaker probe failed, staying open", "name", b.name)
		}
		return err
	}

	if b.open {
		slog.Info("breaker closed after successful probe", "name", b.name)
	}
	b.open = false
	b.failures = 0
	return nil
}
