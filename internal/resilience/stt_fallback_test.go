package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hummat/fifo-whisper-ptt/internal/resilience"
	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
	sttmock "github.com/hummat/fifo-whisper-ptt/pkg/provider/stt/mock"
)

func TestSTTChain_PrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Result: stt.Result{Segments: []stt.Segment{{Text: "hello"}}}}
	fallback := &sttmock.Provider{}

	chain := resilience.NewSTTChain("native", primary, resilience.BreakerConfig{})
	chain.AddFallback("cloud", fallback)

	res, err := chain.Transcribe(context.Background(), []float32{0.1}, stt.Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got := res.Text(); got != "hello" {
		t.Errorf("Text() = %q, want %q", got, "hello")
	}
	if fallback.CallCount() != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.CallCount())
	}
}

func TestSTTChain_FailsOverToFallback(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errors.New("model crashed")}
	fallback := &sttmock.Provider{Result: stt.Result{Segments: []stt.Segment{{Text: "from cloud"}}}}

	chain := resilience.NewSTTChain("native", primary, resilience.BreakerConfig{})
	chain.AddFallback("cloud", fallback)

	res, err := chain.Transcribe(context.Background(), []float32{0.1}, stt.Options{})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got := res.Text(); got != "from cloud" {
		t.Errorf("Text() = %q, want %q", got, "from cloud")
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
}

func TestSTTChain_AllFail(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errors.New("down")}
	chain := resilience.NewSTTChain("native", primary, resilience.BreakerConfig{})

	_, err := chain.Transcribe(context.Background(), []float32{0.1}, stt.Options{})
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestSTTChain_BreakerSkipsFailingBackend(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errors.New("down")}
	fallback := &sttmock.Provider{Result: stt.Result{Segments: []stt.Segment{{Text: "ok"}}}}

	chain := resilience.NewSTTChain("native", primary, resilience.BreakerConfig{
		MaxFailures: 2,
		Cooldown:    time.Hour,
	})
	chain.AddFallback("cloud", fallback)

	ctx := context.Background()
	for range 4 {
		if _, err := chain.Transcribe(ctx, []float32{0.1}, stt.Options{}); err != nil {
			t.Fatalf("Transcribe: %v", err)
		}
	}

	// After two failures the primary breaker opens; the remaining two calls
	// must go straight to the fallback.
	if got := primary.CallCount(); got != 2 {
		t.Errorf("primary called %d times, want 2", got)
	}
	if got := fallback.CallCount(); got != 4 {
		t.Errorf("fallback called %d times, want 4", got)
	}
}

func TestBreaker_ClosesAfterSuccessfulProbe(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "test",
		MaxFailures: 1,
		Cooldown:    time.Nanosecond,
	})

	if err := b.Execute(func() error { return errors.New("boom") }); err == nil {
		t.Fatal("expected failure")
	}

	time.Sleep(time.Millisecond)

	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("post-probe call: %v", err)
	}
}
