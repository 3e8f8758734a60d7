package control_test

import (
	"context"
	"sync"
	"testing"

	"github.com/hummat/fifo-whisper-ptt/internal/control"
)

// recordingHandler is a control.Handler that records dispatched commands and
// can be marked done by tests (or automatically on QUIT).
type recordingHandler struct {
	mu       sync.Mutex
	commands []control.Command
	done     chan struct{}
	doneOnce sync.Once
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{})}
}

func (h *recordingHandler) HandleCommand(_ context.Context, cmd control.Command) {
	h.mu.Lock()
	h.commands = append(h.commands, cmd)
	h.mu.Unlock()
	if cmd == control.CommandQuit {
		h.finish()
	}
}

func (h *recordingHandler) Done() <-chan struct{} { return h.done }

func (h *recordingHandler) finish() {
	h.doneOnce.Do(func() { close(h.done) })
}

func (h *recordingHandler) recorded() []control.Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]control.Command(nil), h.commands...)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want control.Command
		ok   bool
	}{
		{"START", control.CommandStart, true},
		{"start", control.CommandStart, true},
		{"  Stop \n", control.CommandStop, true},
		{"quit", control.CommandQuit, true},
		{"FOO", control.Command("FOO"), true},
		{"", "", false},
		{"   \t ", "", false},
	}

	for _, tc := range tests {
		got, ok := control.Parse(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCommand_Known(t *testing.T) {
	t.Parallel()

	for _, cmd := range []control.Command{control.CommandStart, control.CommandStop, control.CommandQuit} {
		if !cmd.Known() {
			t.Errorf("%q should be known", cmd)
		}
	}
	if control.Command("FOO").Known() {
		t.Error("FOO should not be known")
	}
}
