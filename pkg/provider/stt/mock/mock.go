// Package mock provides a test double for the stt package.
package mock

import (
	"context"
	"sync"

	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// TranscribeCall records the arguments of one Transcribe invocation.
type TranscribeCall struct {
	Samples []float32
	Opts    stt.Options
}

// Provider is a mock stt.Provider that records calls and returns canned
// results.
type Provider struct {
	mu sync.Mutex

	// Result and Err are returned by every Transcribe call.
	Result stt.Result
	Err    error

	// Calls records every Transcribe invocation in order.
	Calls []TranscribeCall
}

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(_ context.Context, samples []float32, opts stt.Options) (stt.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, TranscribeCall{Samples: samples, Opts: opts})
	return p.Result, p.Err
}

// CallCount returns the number of Transcribe invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
