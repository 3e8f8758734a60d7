// Package output delivers recognised text to the environment.
//
// The primary sink synthesises keystrokes so the text lands in whatever
// application holds focus; a writer sink prints it instead. [Fallback]
// composes the two so that injection failures degrade to visible output
// without ever surfacing an error to the session controller.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Sink delivers one piece of recognised text. Implementations must be safe
// for concurrent use, although the session controller serialises calls.
type Sink interface {
	Type(text string) error
}

// Compile-time assertions.
var (
	_ Sink = (*Writer)(nil)
	_ Sink = (*Fallback)(nil)
)

// Writer is a Sink that writes raw text to an io.Writer (normally stdout).
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer sink over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Type writes text to the underlying writer without any decoration, so the
// output can be piped onwards.
func (s *Writer) Type(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, text); err != nil {
		return fmt.Errorf("output: write: %w", err)
	}
	return nil
}

// Fallback tries a primary sink and degrades to a secondary one when the
// primary fails. Type never returns an error: a failing secondary is logged
// and swallowed, because output delivery must not take down the session
// loop.
type Fallback struct {
	primary   Sink
	secondary Sink
}

// NewFallback composes primary and secondary. primary may be nil, in which
// case every delivery goes straight to secondary.
func NewFallback(primary, secondary Sink) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Type delivers text through the first sink that accepts it.
func (s *Fallback) Type(text string) error {
	if s.primary != nil {
		err := s.primary.Type(text)
		if err == nil {
			return nil
		}
		slog.Warn("output: primary sink failed, falling back", "err", err)
	}
	if err := s.secondary.Type(text); err != nil {
		slog.Warn("output: fallback sink failed, text dropped", "err", err)
	}
	return nil
}
