// Package audio provides the capture-side audio primitives for
// fifo-whisper-ptt: the capture channel abstraction, the mutex-guarded
// session buffer, sample-format conversion helpers, and WAV encoding.
//
// All audio in this project is mono float32 at a fixed sample rate chosen at
// startup. The capture subsystem delivers fixed-size blocks of samples; one
// dictation session is the ordered concatenation of all blocks delivered
// between a start and a stop boundary.
package audio

// BlockHandler receives one fixed-size block of mono float32 samples. It is
// invoked on the capture subsystem's own thread and must not block or perform
// unbounded-latency work; appending to a [SessionBuffer] is the intended
// amount of work.
type BlockHandler func(block []float32)

// Capture is a push-to-talk capture channel: a start/stop wrapper around an
// audio input device that delivers fixed-size sample blocks to a handler
// while active.
//
// Start and Stop are idempotent. Start on an active channel and Stop on an
// inactive one return nil without touching the device. Implementations must
// be safe for concurrent use.
type Capture interface {
	// Start opens the underlying input device and begins delivering blocks
	// to h. If the channel is already active, Start returns nil immediately
	// and the original handler keeps receiving blocks.
	Start(h BlockHandler) error

	// Stop halts block delivery and releases the device. If the channel is
	// inactive, Stop returns nil immediately.
	Stop() error

	// Active reports whether the channel is currently delivering blocks.
	Active() bool
}
