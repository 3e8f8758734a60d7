package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// ErrAllFailed is returned by [STTChain.Transcribe] when every registered
// backend fails or has an open breaker.
var ErrAllFailed = errors.New("all stt backends failed")

// Compile-time assertion that STTChain satisfies stt.Provider.
var _ stt.Provider = (*STTChain)(nil)

// sttEntry pairs a backend with its dedicated breaker.
type sttEntry struct {
	name     string
	provider stt.Provider
	breaker  *Breaker
}

// STTChain implements [stt.Provider] with ordered failover across multiple
// backends, each behind its own [Breaker]. Entries are tried in registration
// order; the first success wins.
type STTChain struct {
	entries []sttEntry
	cfg     BreakerConfig
}

// NewSTTChain creates an [STTChain] with primary as the preferred backend.
func NewSTTChain(primaryName string, primary stt.Provider, cfg BreakerConfig) *STTChain {
	c := &STTChain{cfg: cfg}
	c.add(primaryName, primary)
	return c
}

// AddFallback registers an additional backend, tried after all previously
// registered ones.
func (c *STTChain) AddFallback(name string, provider stt.Provider) {
	c.add(name, provider)
}

func (c *STTChain) add(name string, provider stt.Provider) {
	cfg := c.cfg
	cfg.Name = name
	c.entries = append(c.entries, sttEntry{
		name:     name,
		provider: provider,
		breaker:  NewBreaker(cfg),
	})
}

// Transcribe tries each backend in order until one succeeds. Backends with
// an open breaker are skipped. When every backend fails, the last error is
// returned wrapped in [ErrAllFailed].
func (c *STTChain) Transcribe(ctx context.Context, samples []float32, opts stt.Options) (stt.Result, error) {
	var lastErr error
	for i := range c.entries {
		entry := &c.entries[i]

		var result stt.Result
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = entry.provider.Transcribe(ctx, samples, opts)
			return innerErr
		})
		if err == nil {
			if i > 0 {
				slog.Info("transcription served by fallback backend", "backend", entry.name)
			}
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping stt backend (breaker open)", "backend", entry.name)
		} else {
			slog.Warn("stt backend failed, trying next", "backend", entry.name, "err", err)
		}
	}
	return stt.Result{}, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
