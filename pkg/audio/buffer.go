package audio

import "sync"

// SessionBuffer accumulates the sample blocks of the current dictation
// session. Append runs on the capture callback thread while Drain and Reset
// run on the control-dispatch goroutine, so all access goes through one
// mutex.
//
// The zero value is ready to use.
type SessionBuffer struct {
	mu     sync.Mutex
	blocks [][]float32
	n      int
}

// Append adds block to the tail of the buffer. The buffer takes ownership of
// block; callers must not modify it afterwards.
func (b *SessionBuffer) Append(block []float32) {
	if len(block) == 0 {
		return
	}
	b.mu.Lock()
	b.blocks = append(b.blocks, block)
	b.n += len(block)
	b.mu.Unlock()
}

// Drain atomically returns the ordered concatenation of all appended blocks
// as one contiguous sample slice and resets the buffer to empty. Blocks
// appended concurrently with a Drain call are either fully included or begin
// the next session; no block is lost or returned twice.
//
// Drain returns nil when the buffer is empty.
func (b *SessionBuffer) Drain() []float32 {
	b.mu.Lock()
	blocks := b.blocks
	n := b.n
	b.blocks = nil
	b.n = 0
	b.mu.Unlock()

	if n == 0 {
		return nil
	}
	out := make([]float32, 0, n)
	for _, block := range blocks {
		out = append(out, block...)
	}
	return out
}

// Reset discards all buffered blocks.
func (b *SessionBuffer) Reset() {
	b.mu.Lock()
	b.blocks = nil
	b.n = 0
	b.mu.Unlock()
}

// Len returns the number of samples currently held.
func (b *SessionBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}
