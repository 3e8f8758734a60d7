// Package session implements the push-to-talk dictation state machine.
//
// A [Controller] owns the microphone, the session audio buffer and the
// transcription pipeline. It consumes control commands (START, STOP, QUIT)
// from whatever transport delivers them and drives one dictation session at
// a time: START arms the capture, STOP drains the buffered audio through
// speech-to-text and delivers the recognised text to the output sink, QUIT
// discards any partial session and shuts the controller down.
//
// Commands may arrive from several transports at once (the FIFO loop plus
// one goroutine per WebSocket client); [Controller.HandleCommand] serialises
// them internally, so sessions are strictly ordered: a new session cannot
// start while the previous transcript is still being produced.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hummat/fifo-whisper-ptt/internal/control"
	"github.com/hummat/fifo-whisper-ptt/internal/health"
	"github.com/hummat/fifo-whisper-ptt/internal/notify"
	"github.com/hummat/fifo-whisper-ptt/internal/observe"
	"github.com/hummat/fifo-whisper-ptt/internal/output"
	"github.com/hummat/fifo-whisper-ptt/internal/transcript"
	"github.com/hummat/fifo-whisper-ptt/pkg/audio"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// State is the controller's capture state.
type State int

const (
	// StateIdle means no session is in progress.
	StateIdle State = iota

	// StateListening means the microphone is live and audio is accumulating
	// in the session buffer.
	StateListening
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	default:
		return "idle"
	}
}

var _ control.Handler = (*Controller)(nil)

// Controller is the dictation session state machine. Create one with [New].
type Controller struct {
	capture  audio.Capture
	provider stt.Provider
	sink     output.Sink

	corrector    transcript.Corrector
	notifier     notify.Notifier
	metrics      *observe.Metrics
	language     string
	beamSize     int
	sampleRate   int
	providerName string
	dumpWAVPath  string

	buffer   audio.SessionBuffer
	sessions atomic.Uint64

	// dispatchMu serialises command handling across transports. A STOP
	// holds it through drain and transcription, which keeps sessions
	// strictly ordered.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	state     State
	sessionID string
	startedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// Option customises a [Controller].
type Option func(*Controller)

// WithLanguage sets the transcription language hint. Default "en".
func WithLanguage(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithBeamSize sets the decoder beam size passed to the provider.
func WithBeamSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.beamSize = n
		}
	}
}

// WithSampleRate sets the capture sample rate, used when dumping session
// audio to disk. Default 16000.
func WithSampleRate(hz int) Option {
	return func(c *Controller) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithCorrector applies dictionary-based correction to every transcript
// before delivery.
func WithCorrector(tc transcript.Corrector) Option {
	return func(c *Controller) { c.corrector = tc }
}

// WithNotifier announces session transitions through n.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithMetrics records session metrics to m instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithProviderName labels transcription metrics with the given provider
// name.
func WithProviderName(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.providerName = name
		}
	}
}

// WithWAVDump writes each session's raw audio to path before transcription.
// Meant for debugging capture problems; the file is overwritten per session.
func WithWAVDump(path string) Option {
	return func(c *Controller) { c.dumpWAVPath = path }
}

// New creates a Controller over the given capture device, transcription
// provider and output sink.
func New(capture audio.Capture, provider stt.Provider, sink output.Sink, opts ...Option) *Controller {
	c := &Controller{
		capture:      capture,
		provider:     provider,
		sink:         sink,
		notifier:     notify.Nop{},
		language:     "en",
		beamSize:     5,
		sampleRate:   16000,
		providerName: "whisper",
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	return c
}

// HandleCommand applies one control command. Commands are processed one at
// a time regardless of which transport delivered them; callers block until
// the command (including transcription, for STOP) has completed. Commands
// arriving after shutdown are dropped. Unknown commands are logged and
// ignored so a typo in the control channel cannot kill the daemon.
func (c *Controller) HandleCommand(ctx context.Context, cmd control.Command) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	select {
	case <-c.done:
		slog.Debug("session: command after shutdown ignored", "command", string(cmd))
		return
	default:
	}

	c.metrics.RecordCommand(ctx, string(cmd))

	switch cmd {
	case control.CommandStart:
		c.start(ctx)
	case control.CommandStop:
		c.stop(ctx)
	case control.CommandQuit:
		slog.Info("session: quit requested")
		c.shutdown(ctx)
	default:
		slog.Warn("session: unknown command ignored", "command", string(cmd))
	}
}

// Done is closed once the controller has shut down.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Status returns a snapshot for the /statusz endpoint.
func (c *Controller) Status() health.Status {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	return health.Status{
		State:           state.String(),
		BufferedSamples: c.buffer.Len(),
		Sessions:        c.sessions.Load(),
	}
}

// Shutdown stops any live capture, discards buffered audio and marks the
// controller done. Safe to call more than once; waits for an in-flight
// command to finish first.
func (c *Controller) Shutdown(ctx context.Context) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	c.shutdown(ctx)
}

func (c *Controller) shutdown(ctx context.Context) {
	c.mu.Lock()
	wasListening := c.state == StateListening
	c.state = StateIdle
	c.mu.Unlock()

	if wasListening {
		if err := c.capture.Stop(); err != nil {
			slog.Warn("session: capture stop during shutdown", "err", err)
		}
		c.metrics.Listening.Add(ctx, -1)
		if n := c.buffer.Len(); n > 0 {
			slog.Info("session: discarding partial session", "samples", n)
		}
	}
	c.buffer.Reset()

	c.doneOnce.Do(func() { close(c.done) })
}

// ── state transitions ──

func (c *Controller) start(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateListening {
		c.mu.Unlock()
		slog.Debug("session: already listening, START ignored")
		return
	}
	c.state = StateListening
	c.sessionID = uuid.NewString()
	c.startedAt = time.Now()
	id := c.sessionID
	c.mu.Unlock()

	c.buffer.Reset()
	if err := c.capture.Start(c.onBlock); err != nil {
		slog.Error("session: capture start failed", "session", id, "err", err)
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.metrics.RecordSession(ctx, "error", 0)
		return
	}

	c.metrics.Listening.Add(ctx, 1)
	c.notifier.SessionStarted()
	slog.Info("session: listening", "session", id)
}

func (c *Controller) stop(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateListening {
		c.mu.Unlock()
		slog.Debug("session: STOP while idle, ignoring")
		return
	}
	c.state = StateIdle
	id := c.sessionID
	duration := time.Since(c.startedAt)
	c.mu.Unlock()

	if err := c.capture.Stop(); err != nil {
		slog.Warn("session: capture stop failed", "session", id, "err", err)
	}
	c.metrics.Listening.Add(ctx, -1)

	status, text := c.finishSession(ctx, id, duration)
	c.metrics.RecordSession(ctx, status, duration)
	c.notifier.SessionStopped(text)
}

// finishSession drains the buffer, transcribes it and delivers the text.
// It returns the session's final status and the delivered text (without the
// trailing space).
func (c *Controller) finishSession(ctx context.Context, id string, duration time.Duration) (status, text string) {
	samples := c.buffer.Drain()
	if samples == nil {
		slog.Info("session: nothing captured", "session", id)
		return "empty", ""
	}

	log := slog.With(
		"session", id,
		"samples", len(samples),
		"audio_seconds", float64(len(samples))/float64(c.sampleRate),
	)
	log.Debug("session: draining", "rms", audio.RMS(samples))

	if c.dumpWAVPath != "" {
		if err := audio.WriteWAVFile(c.dumpWAVPath, samples, c.sampleRate); err != nil {
			log.Warn("session: wav dump failed", "path", c.dumpWAVPath, "err", err)
		} else {
			log.Debug("session: wav dump written", "path", c.dumpWAVPath)
		}
	}

	ctx, span := observe.StartSpan(ctx, "dictation.session")
	defer span.End()

	sttStart := time.Now()
	res, err := c.provider.Transcribe(ctx, samples, stt.Options{
		Language: c.language,
		BeamSize: c.beamSize,
	})
	sttDuration := time.Since(sttStart)
	if err != nil {
		c.metrics.RecordSTT(ctx, c.providerName, "error", sttDuration)
		log.Error("session: transcription failed", "err", err)
		return "error", ""
	}
	c.metrics.RecordSTT(ctx, c.providerName, "ok", sttDuration)

	text = res.Text()
	if c.corrector != nil {
		corrected, corrections := c.corrector.Correct(text)
		if len(corrections) > 0 {
			c.metrics.Corrections.Add(ctx, int64(len(corrections)))
			for _, cor := range corrections {
				log.Debug("session: correction applied",
					"from", cor.Original, "to", cor.Corrected, "confidence", cor.Confidence)
			}
		}
		text = corrected
	}
	text = strings.TrimSpace(text)

	if text == "" {
		log.Info("session: empty transcript, nothing to deliver")
		return "empty", ""
	}

	// One trailing space so consecutive dictations join naturally.
	if err := c.sink.Type(text + " "); err != nil {
		log.Error("session: text delivery failed", "err", err)
		return "error", text
	}

	c.sessions.Add(1)
	log.Info("session: completed",
		"chars", len(text),
		"duration", duration,
		"stt_duration", sttDuration,
	)
	return "completed", text
}

func (c *Controller) onBlock(block []float32) {
	c.buffer.Append(block)
	c.metrics.AudioBlocks.Add(context.Background(), 1)
}
