// Package app wires all subsystems into a running dictation daemon.
//
// The App struct owns the full lifecycle: New connects the session
// controller, control transports and HTTP sidecar, Run executes them until
// shutdown, and Shutdown tears everything down in order.
//
// For testing, inject mock implementations through the capture, provider
// and sink parameters plus the functional options.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hummat/fifo-whisper-ptt/internal/config"
	"github.com/hummat/fifo-whisper-ptt/internal/control"
	"github.com/hummat/fifo-whisper-ptt/internal/health"
	"github.com/hummat/fifo-whisper-ptt/internal/notify"
	"github.com/hummat/fifo-whisper-ptt/internal/observe"
	"github.com/hummat/fifo-whisper-ptt/internal/output"
	"github.com/hummat/fifo-whisper-ptt/internal/session"
	"github.com/hummat/fifo-whisper-ptt/internal/transcript"
	"github.com/hummat/fifo-whisper-ptt/internal/transcript/phonetic"
	"github.com/hummat/fifo-whisper-ptt/pkg/audio"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// httpShutdownTimeout bounds the graceful drain of the HTTP sidecar once
// the controller has finished.
const httpShutdownTimeout = 5 * time.Second

// App owns all subsystem lifetimes.
type App struct {
	cfg        *config.Config
	controller *session.Controller
	fifo       *control.FIFOReader
	srv        *http.Server
	metrics    *observe.Metrics

	sessionOpts []session.Option
	checkers    []health.Checker

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithMetrics records application metrics to m instead of the package
// default instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithSessionOptions appends extra options passed to the session
// controller.
func WithSessionOptions(opts ...session.Option) Option {
	return func(a *App) { a.sessionOpts = append(a.sessionOpts, opts...) }
}

// WithReadinessCheck adds a named checker to the /readyz endpoint.
func WithReadinessCheck(c health.Checker) Option {
	return func(a *App) { a.checkers = append(a.checkers, c) }
}

// WithCloser registers fn to run during Shutdown, after the controller has
// stopped. Closers run in registration order.
func WithCloser(fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, fn) }
}

// New creates an App by wiring the session controller to its transports.
// The capture device, transcription provider and output sink come from
// main (or a test); everything else is derived from cfg.
func New(cfg *config.Config, capture audio.Capture, provider stt.Provider, sink output.Sink, opts ...Option) (*App, error) {
	if capture == nil || provider == nil || sink == nil {
		return nil, errors.New("app: capture, provider and sink are all required")
	}

	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── Session controller ───────────────────────────────────────────────
	sessOpts := []session.Option{
		session.WithLanguage(cfg.Whisper.Language),
		session.WithBeamSize(cfg.Whisper.BeamSize),
		session.WithSampleRate(cfg.Audio.SampleRate),
		session.WithMetrics(a.metrics),
	}
	if cfg.Debug.DumpWAV != "" {
		sessOpts = append(sessOpts, session.WithWAVDump(cfg.Debug.DumpWAV))
	}
	if len(cfg.Transcript.Dictionary) > 0 {
		corrector := transcript.NewDictionaryCorrector(cfg.Transcript.Dictionary, phonetic.New())
		sessOpts = append(sessOpts, session.WithCorrector(corrector))
		slog.Info("dictionary correction enabled", "terms", len(cfg.Transcript.Dictionary))
	}
	if cfg.Output.Notify {
		sessOpts = append(sessOpts, session.WithNotifier(notify.NewDesktop()))
	}
	sessOpts = append(sessOpts, a.sessionOpts...)

	a.controller = session.New(capture, provider, sink, sessOpts...)

	// ── Control transports ───────────────────────────────────────────────
	a.fifo = control.NewFIFOReader(cfg.Control.FIFOPath)

	if cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		health.New(a.controller.Status, a.checkers...).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())
		mux.Handle("/control", control.NewWSHandler(a.controller))

		a.srv = &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           observe.Middleware(a.metrics)(mux),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return a, nil
}

// Controller exposes the session controller, mainly for tests.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// Run executes the control transports until the controller shuts down (QUIT
// command) or ctx is cancelled, whichever comes first. It blocks; call from
// main after New.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.fifo.Run(ctx, a.controller); err != nil {
			return fmt.Errorf("app: control channel: %w", err)
		}
		return nil
	})

	if a.srv != nil {
		g.Go(func() error {
			slog.Info("http sidecar listening", "addr", a.srv.Addr)
			if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: http sidecar: %w", err)
			}
			return nil
		})
	}

	// Supervisor: propagate signal cancellation into the controller and
	// drain the HTTP server once the controller is done.
	g.Go(func() error {
		select {
		case <-ctx.Done():
			a.controller.Shutdown(context.Background())
		case <-a.controller.Done():
		}
		if a.srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			if err := a.srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http sidecar shutdown", "err", err)
			}
		}
		return nil
	})

	slog.Info("daemon running",
		"fifo", a.fifo.Path(),
		"listen_addr", a.cfg.Server.ListenAddr,
	)
	return g.Wait()
}

// Shutdown stops the controller and tears down registered closers in order.
// It respects the context deadline: if ctx expires before all closers
// finish, the remaining ones are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		a.controller.Shutdown(ctx)

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
