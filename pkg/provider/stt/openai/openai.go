// Package openai provides an stt.Provider backed by the OpenAI audio
// transcription API. It is intended as a cloud fallback for the local
// whisper.cpp provider: the session buffer is encoded as a 16-bit WAV and
// uploaded in one request.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hummat/fifo-whisper-ptt/pkg/audio"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the OpenAI API.
type Provider struct {
	client     oai.Client
	model      string
	sampleRate int
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	model   string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel selects the transcription model. Defaults to whisper-1.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New constructs an OpenAI transcription Provider. sampleRate must match the
// sample rate of the buffers later passed to Transcribe.
func New(apiKey string, sampleRate int, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}
	if sampleRate <= 0 {
		return nil, errors.New("openai: sampleRate must be positive")
	}

	cfg := &config{model: string(oai.AudioModelWhisper1)}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &Provider{
		client:     oai.NewClient(reqOpts...),
		model:      cfg.model,
		sampleRate: sampleRate,
	}, nil
}

// Transcribe encodes samples as WAV and uploads them to the transcription
// endpoint. The response carries no segment timings, so the result holds a
// single segment with the full text.
func (p *Provider) Transcribe(ctx context.Context, samples []float32, opts stt.Options) (stt.Result, error) {
	if len(samples) == 0 {
		return stt.Result{}, errors.New("openai: empty sample buffer")
	}

	// The WAV encoder needs an io.WriteSeeker for header fix-up, so the
	// upload goes through a temp file.
	f, err := os.CreateTemp("", "ptt-upload-*.wav")
	if err != nil {
		return stt.Result{}, fmt.Errorf("openai: create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := audio.EncodeWAV(f, samples, p.sampleRate); err != nil {
		return stt.Result{}, fmt.Errorf("openai: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return stt.Result{}, fmt.Errorf("openai: rewind temp wav: %w", err)
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(f, "session.wav", "audio/wav"),
		Model: oai.AudioModel(p.model),
	}
	if opts.Language != "" {
		params.Language = oai.String(opts.Language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return stt.Result{}, fmt.Errorf("openai: transcription request: %w", err)
	}
	if resp.Text == "" {
		return stt.Result{}, nil
	}
	return stt.Result{Segments: []stt.Segment{{Text: resp.Text}}}, nil
}
