// Package stt defines the Provider interface for speech-to-text backends.
//
// Unlike streaming dictation systems, fifo-whisper-ptt transcribes one
// complete session buffer at a time: the caller hands over the full mono
// float32 sample sequence for a session and blocks until the provider
// returns its segments. Providers must treat every call as independent;
// no session state is carried between calls.
//
// Implementations must be safe for concurrent use, although the session
// controller serialises calls by construction.
package stt

import (
	"context"
	"strings"
	"time"
)

// Options carries the static decoding parameters for a transcription call.
type Options struct {
	// Language is the language hint (e.g., "en"). Empty lets the provider
	// auto-detect where supported.
	Language string

	// BeamSize is the decoding beam width. Callers are expected to pass a
	// value of at least 5; providers may ignore it when the backend has no
	// beam-search knob.
	BeamSize int
}

// Segment is one recognised span of speech.
type Segment struct {
	// Text is the recognised text with surrounding whitespace preserved as
	// produced by the backend.
	Text string

	// Start and End bound the segment within the session audio. Zero when
	// the backend does not report timings.
	Start time.Duration
	End   time.Duration
}

// Result is the outcome of one transcription call.
type Result struct {
	// Segments holds the recognised segments in their produced order.
	Segments []Segment
}

// Text returns the concatenation of all segment texts in order, each
// individually trimmed, joined by single spaces, with surrounding whitespace
// removed. An all-silence result yields "".
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Provider is the abstraction over any batch speech-to-text backend.
type Provider interface {
	// Transcribe recognises speech in samples, a contiguous mono float32
	// sequence at the sample rate fixed at provider construction. Callers
	// must not invoke Transcribe with an empty slice; providers may reject
	// it with an error.
	//
	// Engine-level failures are returned as errors and must be treated by
	// callers as "no transcript produced"; they are never fatal to the
	// dictation loop.
	Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error)
}
