package control_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/hummat/fifo-whisper-ptt/internal/control"
)

func TestEnsureFIFO_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	if err := control.EnsureFIFO(path); err != nil {
		t.Fatalf("EnsureFIFO: %v", err)
	}

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Error("created object is not a FIFO")
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestEnsureFIFO_ExistingFIFOIsFine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	if err := syscall.Mkfifo(path, 0o600); err != nil {
		t.Fatalf("mkfifo: %v", err)
	}
	if err := control.EnsureFIFO(path); err != nil {
		t.Errorf("EnsureFIFO on existing FIFO: %v", err)
	}
}

func TestEnsureFIFO_RejectsNonFIFO(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	if err := os.WriteFile(path, []byte("not a pipe"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := control.EnsureFIFO(path); err == nil {
		t.Fatal("EnsureFIFO should reject a regular file")
	}
}

func TestFIFOReader_DispatchesCommands(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	h := newRecordingHandler()
	reader := control.NewFIFOReader(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- reader.Run(ctx, h) }()

	// Wait for the reader to create the pipe, then connect a writer.
	var w *os.File
	for {
		var err error
		w, err = os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("pipe never became writable: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer w.Close()

	if _, err := w.WriteString("start\n  stop \nignored-empty:\n\nQUIT\n"); err != nil {
		t.Fatalf("write commands: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("reader did not exit after QUIT")
	}

	got := h.recorded()
	want := []control.Command{
		control.CommandStart,
		control.CommandStop,
		control.Command("IGNORED-EMPTY:"),
		control.CommandQuit,
	}
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFIFOReader_SurvivesWriterDisconnect(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	h := newRecordingHandler()
	reader := control.NewFIFOReader(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- reader.Run(ctx, h) }()

	writeOnce := func(s string) {
		t.Helper()
		var w *os.File
		for {
			var err error
			w, err = os.OpenFile(path, os.O_WRONLY, 0)
			if err == nil {
				break
			}
			select {
			case <-ctx.Done():
				t.Fatalf("pipe never became writable: %v", err)
			case <-time.After(10 * time.Millisecond):
			}
		}
		if _, err := w.WriteString(s); err != nil {
			t.Fatalf("write: %v", err)
		}
		w.Close()
	}

	// Two separate writer connections; the reader must not treat the EOF
	// between them as channel closure.
	writeOnce("START\n")
	writeOnce("QUIT\n")

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("reader did not exit after QUIT")
	}

	got := h.recorded()
	if len(got) != 2 || got[0] != control.CommandStart || got[1] != control.CommandQuit {
		t.Errorf("commands = %v, want [START QUIT]", got)
	}
}

func TestFIFOReader_DropsCommandsBufferedBehindQuit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	h := newRecordingHandler()
	reader := control.NewFIFOReader(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- reader.Run(ctx, h) }()

	var w *os.File
	for {
		var err error
		w, err = os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("pipe never became writable: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer w.Close()

	// Both lines land in one read; the START behind the QUIT must never
	// reach the handler.
	if _, err := w.WriteString("QUIT\nSTART\n"); err != nil {
		t.Fatalf("write commands: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("reader did not exit after QUIT")
	}

	got := h.recorded()
	if len(got) != 1 || got[0] != control.CommandQuit {
		t.Errorf("commands = %v, want [QUIT]", got)
	}
}

func TestFIFOReader_FatalOnNonFIFOPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctl")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	h := newRecordingHandler()
	if err := control.NewFIFOReader(path).Run(context.Background(), h); err == nil {
		t.Fatal("Run should fail fast on a non-FIFO control path")
	}
}
