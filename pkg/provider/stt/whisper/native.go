package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the whisper.cpp Go bindings. The
// model is loaded once at construction and shared across all calls; each
// Transcribe call creates its own whisper context, so the provider is safe
// for concurrent use.
type Provider struct {
	model    whisperlib.Model
	language string
	beamSize int
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default language hint for transcription (e.g., "en",
// "de"). Overridden per call by a non-empty stt.Options.Language.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithBeamSize sets the default decoding beam width. Values below 5 are
// raised to 5. Overridden per call by a positive stt.Options.BeamSize.
func WithBeamSize(n int) Option {
	return func(p *Provider) { p.beamSize = n }
}

// New loads the whisper.cpp model from modelPath. The caller must call Close
// when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: defaultLanguage,
		beamSize: defaultBeamSize,
	}
	for _, o := range opts {
		o(p)
	}
	if p.beamSize < defaultBeamSize {
		p.beamSize = defaultBeamSize
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp inference over the full sample sequence and
// returns the recognised segments in order.
func (p *Provider) Transcribe(ctx context.Context, samples []float32, opts stt.Options) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(samples) == 0 {
		return stt.Result{}, errors.New("whisper: empty sample buffer")
	}

	lang := opts.Language
	if lang == "" {
		lang = p.language
	}
	beam := opts.BeamSize
	if beam < defaultBeamSize {
		beam = p.beamSize
	}

	// Each whisper context is single-use and NOT thread-safe; the model
	// itself can be shared across goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using model default", "language", lang, "err", err)
	}
	wctx.SetBeamSize(beam)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: process audio: %w", err)
	}

	var segments []stt.Segment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stt.Result{}, fmt.Errorf("whisper: read segment: %w", err)
		}
		segments = append(segments, stt.Segment{
			Text:  segment.Text,
			Start: segment.Start,
			End:   segment.End,
		})
	}

	return stt.Result{Segments: segments}, nil
}
