package control

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"
)

// DefaultFIFOPath is the well-known control pipe location, kept compatible
// with existing tooling that echoes commands into it.
const DefaultFIFOPath = "/tmp/dictation_ctl"

// fifoMode is the access mode for a freshly created control pipe. Restricted
// to the owner: anyone who can write the pipe can type into the user's
// focused window.
const fifoMode = 0o600

// readDeadline bounds each blocking read so the loop can observe shutdown.
// Command latency is unaffected; a written line wakes the read immediately.
const readDeadline = 100 * time.Millisecond

// idleBackoff is how long the loop sleeps after a spurious EOF or EAGAIN,
// short enough to keep worst-case command latency well under readDeadline.
const idleBackoff = 20 * time.Millisecond

// EnsureFIFO makes sure a named pipe exists at path, creating it with
// [fifoMode] when absent. A pre-existing object that is not a FIFO is an
// error: silently reusing a regular file would swallow commands.
func EnsureFIFO(path string) error {
	info, err := os.Lstat(path)
	switch {
	case err == nil:
		if info.Mode()&os.ModeNamedPipe == 0 {
			return fmt.Errorf("control: %q exists but is not a FIFO", path)
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		if err := syscall.Mkfifo(path, fifoMode); err != nil {
			return fmt.Errorf("control: mkfifo %q: %w", path, err)
		}
		slog.Info("created control FIFO", "path", path)
		return nil
	default:
		return fmt.Errorf("control: stat %q: %w", path, err)
	}
}

// FIFOReader reads newline-terminated commands from a named pipe and
// dispatches them to a [Handler].
//
// The reader keeps its own write handle on the pipe open for the lifetime of
// the loop, so the read side never observes permanent EOF when external
// writers come and go.
type FIFOReader struct {
	path string
}

// NewFIFOReader creates a reader for the pipe at path.
func NewFIFOReader(path string) *FIFOReader {
	if path == "" {
		path = DefaultFIFOPath
	}
	return &FIFOReader{path: path}
}

// Path returns the control pipe location.
func (r *FIFOReader) Path() string { return r.path }

// Run ensures the pipe exists, then reads and dispatches commands until ctx
// is cancelled or the handler reports done. Commands are dispatched
// synchronously: a STOP blocks the loop for the duration of transcription,
// which serialises sessions by construction.
func (r *FIFOReader) Run(ctx context.Context, h Handler) error {
	if err := EnsureFIFO(r.path); err != nil {
		return err
	}

	// Open the read end non-blocking first; a plain O_RDONLY open would
	// block until the first writer appears.
	rf, err := os.OpenFile(r.path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("control: open %q for reading: %w", r.path, err)
	}
	defer rf.Close()

	// Idle writer handle: keeps at least one writer attached so reads block
	// instead of returning EOF between external writer connections.
	wf, err := os.OpenFile(r.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("control: open %q keep-alive writer: %w", r.path, err)
	}
	defer wf.Close()

	slog.Info("control reader waiting on FIFO", "path", r.path)

	var pending []byte
	buf := make([]byte, 512)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.Done():
			return nil
		default:
		}

		if err := rf.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return fmt.Errorf("control: set read deadline: %w", err)
		}

		n, err := rf.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			pending = r.dispatchLines(ctx, h, pending)
		}
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				// No command pending, the expected steady state.
			case errors.Is(err, io.EOF), errors.Is(err, syscall.EAGAIN):
				time.Sleep(idleBackoff)
			default:
				return fmt.Errorf("control: read %q: %w", r.path, err)
			}
		}
	}
}

// dispatchLines dispatches complete lines from pending and returns the
// unterminated remainder. Lines buffered behind a QUIT are never dispatched:
// once the handler reports done, no command may start a new session.
func (r *FIFOReader) dispatchLines(ctx context.Context, h Handler, pending []byte) []byte {
	for {
		select {
		case <-h.Done():
			return pending
		default:
		}

		idx := bytes.IndexByte(pending, '\n')
		if idx < 0 {
			return pending
		}
		line := string(pending[:idx])
		pending = pending[idx+1:]

		cmd, ok := Parse(line)
		if !ok {
			continue
		}
		h.HandleCommand(ctx, cmd)
	}
}
