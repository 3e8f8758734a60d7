package output_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hummat/fifo-whisper-ptt/internal/output"
)

type fakeSink struct {
	err   error
	texts []string
}

func (s *fakeSink) Type(text string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}

func TestWriter_WritesRawText(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sink := output.NewWriter(&sb)

	if err := sink.Type("hello world "); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if err := sink.Type("again "); err != nil {
		t.Fatalf("Type: %v", err)
	}

	if got, want := sb.String(), "hello world again "; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFallback_PrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := &fakeSink{}
	secondary := &fakeSink{}
	sink := output.NewFallback(primary, secondary)

	if err := sink.Type("text "); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if len(primary.texts) != 1 || primary.texts[0] != "text " {
		t.Errorf("primary texts = %v, want [text ]", primary.texts)
	}
	if len(secondary.texts) != 0 {
		t.Errorf("secondary should be untouched, got %v", secondary.texts)
	}
}

func TestFallback_DegradesOnPrimaryFailure(t *testing.T) {
	t.Parallel()

	primary := &fakeSink{err: errors.New("no display")}
	secondary := &fakeSink{}
	sink := output.NewFallback(primary, secondary)

	if err := sink.Type("text "); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if len(secondary.texts) != 1 || secondary.texts[0] != "text " {
		t.Errorf("secondary texts = %v, want [text ]", secondary.texts)
	}
}

func TestFallback_NilPrimaryGoesStraightToSecondary(t *testing.T) {
	t.Parallel()

	secondary := &fakeSink{}
	sink := output.NewFallback(nil, secondary)

	if err := sink.Type("text "); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if len(secondary.texts) != 1 {
		t.Errorf("secondary texts = %v, want one entry", secondary.texts)
	}
}

func TestFallback_SwallowsSecondaryFailure(t *testing.T) {
	t.Parallel()

	sink := output.NewFallback(nil, &fakeSink{err: errors.New("closed")})
	if err := sink.Type("text "); err != nil {
		t.Errorf("Type should never error, got %v", err)
	}
}
