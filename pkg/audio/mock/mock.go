// Package mock provides test doubles for the audio package.
package mock

import (
	"sync"

	"github.com/hummat/fifo-whisper-ptt/pkg/audio"
)

// Compile-time assertion that Capture satisfies audio.Capture.
var _ audio.Capture = (*Capture)(nil)

// Capture is a mock audio.Capture that records calls and lets tests deliver
// blocks to the registered handler via Emit.
type Capture struct {
	mu      sync.Mutex
	active  bool
	handler audio.BlockHandler

	// StartErr, when non-nil, is returned by Start (and the channel stays
	// inactive, matching the device-open failure contract).
	StartErr error

	// StopErr, when non-nil, is returned by Stop.
	StopErr error

	// CallCountStart and CallCountStop count calls that actually opened or
	// closed the device; idempotent no-op calls are not counted.
	CallCountStart int
	CallCountStop  int
}

// Start records the handler and marks the channel active.
func (c *Capture) Start(h audio.BlockHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return nil
	}
	if c.StartErr != nil {
		return c.StartErr
	}
	c.CallCountStart++
	c.active = true
	c.handler = h
	return nil
}

// Stop marks the channel inactive.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	c.CallCountStop++
	c.active = false
	c.handler = nil
	return c.StopErr
}

// Active reports whether Start has been called without a matching Stop.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Emit delivers a block to the registered handler, as the device callback
// would. Blocks emitted while inactive are dropped.
func (c *Capture) Emit(block []float32) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(block)
	}
}
