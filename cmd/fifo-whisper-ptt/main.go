// Command fifo-whisper-ptt is a push-to-talk dictation daemon. A hotkey
// script echoes START and STOP into a control FIFO; the daemon records the
// microphone in between, transcribes the audio with whisper and types the
// text into the focused window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hummat/fifo-whisper-ptt/internal/app"
	"github.com/hummat/fifo-whisper-ptt/internal/config"
	"github.com/hummat/fifo-whisper-ptt/internal/control"
	"github.com/hummat/fifo-whisper-ptt/internal/health"
	"github.com/hummat/fifo-whisper-ptt/internal/observe"
	"github.com/hummat/fifo-whisper-ptt/internal/output"
	"github.com/hummat/fifo-whisper-ptt/internal/resilience"
	"github.com/hummat/fifo-whisper-ptt/internal/session"
	"github.com/hummat/fifo-whisper-ptt/pkg/audio/miniaudio"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
	openaistt "github.com/hummat/fifo-whisper-ptt/pkg/provider/stt/openai"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt/whisper"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Environment + configuration ────────────────────────────────────────────
	// .env is optional; hotkey scripts often carry the env vars instead.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fifo-whisper-ptt: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("fifo-whisper-ptt starting",
		"version", version,
		"config", *configPath,
		"fifo", cfg.Control.FIFOPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "fifo-whisper-ptt",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Transcription provider ────────────────────────────────────────────────
	provider, providerName, closers, err := buildProvider(cfg)
	if err != nil {
		slog.Error("failed to build transcription provider", "err", err)
		return 1
	}

	// ── Microphone ────────────────────────────────────────────────────────────
	capture, err := miniaudio.New(miniaudio.Config{
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		BlockFrames: cfg.Audio.BlockFrames(),
	})
	if err != nil {
		slog.Error("failed to initialise audio capture", "err", err)
		return 1
	}
	closers = append(closers, capture.Close)

	// ── Output sink ───────────────────────────────────────────────────────────
	sink := buildSink(cfg)

	printStartupSummary(cfg, providerName)

	// ── Application ───────────────────────────────────────────────────────────
	appOpts := []app.Option{
		app.WithSessionOptions(session.WithProviderName(providerName)),
		app.WithReadinessCheck(health.Checker{
			Name: "control_fifo",
			Check: func(context.Context) error {
				return control.EnsureFIFO(cfg.Control.FIFOPath)
			},
		}),
	}
	for _, c := range closers {
		appOpts = append(appOpts, app.WithCloser(c))
	}

	application, err := app.New(cfg, capture, provider, sink, appOpts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("daemon ready, echo START/STOP into the FIFO to dictate")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildProvider assembles the transcription backend from config: local
// whisper when a model path is set, the OpenAI API when a key is set, and a
// circuit-breaking failover chain when both are available.
func buildProvider(cfg *config.Config) (stt.Provider, string, []func() error, error) {
	var closers []func() error

	var native *whisper.Provider
	if cfg.Whisper.Model != "" {
		p, err := whisper.New(cfg.Whisper.Model,
			whisper.WithLanguage(cfg.Whisper.Language),
			whisper.WithBeamSize(cfg.Whisper.BeamSize),
		)
		if err != nil {
			return nil, "", nil, fmt.Errorf("load whisper model %q: %w", cfg.Whisper.Model, err)
		}
		native = p
		closers = append(closers, p.Close)
		slog.Info("whisper model loaded",
			"model", cfg.Whisper.Model,
			"device", cfg.Whisper.Device,
			"compute", cfg.Whisper.Compute,
			"language", cfg.Whisper.Language,
			"beam_size", cfg.Whisper.BeamSize,
		)
	}

	var cloud *openaistt.Provider
	if cfg.OpenAI.APIKey != "" {
		var opts []openaistt.Option
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openaistt.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, openaistt.WithModel(cfg.OpenAI.Model))
		}
		p, err := openaistt.New(cfg.OpenAI.APIKey, cfg.Audio.SampleRate, opts...)
		if err != nil {
			return nil, "", nil, fmt.Errorf("create openai provider: %w", err)
		}
		cloud = p
		slog.Info("openai transcription configured", "model", cfg.OpenAI.Model)
	}

	switch {
	case native != nil && cloud != nil:
		chain := resilience.NewSTTChain("whisper", native, resilience.BreakerConfig{Name: "stt"})
		chain.AddFallback("openai", cloud)
		return chain, "whisper+openai", closers, nil
	case native != nil:
		return native, "whisper", closers, nil
	case cloud != nil:
		return cloud, "openai", closers, nil
	default:
		return nil, "", nil, errors.New("no transcription backend configured")
	}
}

// buildSink assembles the output path. Keyboard mode degrades to stdout
// when no virtual keyboard is available (headless session, missing uinput
// permissions) so dictation still produces visible text.
func buildSink(cfg *config.Config) output.Sink {
	stdout := output.NewWriter(os.Stdout)
	if cfg.Output.Mode == config.OutputStdout {
		return stdout
	}

	kb, err := output.NewKeyboard()
	if err != nil {
		slog.Warn("virtual keyboard unavailable, falling back to stdout", "err", err)
		return output.NewFallback(nil, stdout)
	}
	return output.NewFallback(kb, stdout)
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, providerName string) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║    fifo-whisper-ptt startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("STT backend", providerName)
	printRow("Control FIFO", cfg.Control.FIFOPath)
	printRow("Sample rate", fmt.Sprintf("%d Hz / %d ms", cfg.Audio.SampleRate, cfg.Audio.BlockMs))
	printRow("Output", string(cfg.Output.Mode))
	printRow("Dictionary", fmt.Sprintf("%d terms", len(cfg.Transcript.Dictionary)))
	if cfg.Server.ListenAddr != "" {
		printRow("Listen addr", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	fmt.Printf("║  %-12s : %-22s ║\n", label, truncateValue(value, 22))
}

// truncateValue shortens s to at most max runes, marking the cut with an
// ellipsis. Cutting on a rune boundary keeps multi-byte paths intact.
func truncateValue(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "…"
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
