package phonetic_test

import (
	"testing"

	"github.com/hummat/fifo-whisper-ptt/internal/transcript/phonetic"
)

func TestMatch_PhoneticHit(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	terms := []string{"Kubernetes", "Grafana", "Postgres"}

	corrected, confidence, matched := m.Match("cooper netties", terms)
	if !matched {
		t.Fatal("expected a match for 'cooper netties'")
	}
	if corrected != "Kubernetes" {
		t.Errorf("corrected = %q, want %q", corrected, "Kubernetes")
	}
	if confidence <= 0 {
		t.Errorf("confidence = %v, want > 0", confidence)
	}
}

func TestMatch_NoMatchReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	corrected, confidence, matched := m.Match("banana", []string{"Kubernetes"})
	if matched {
		t.Fatal("'banana' should not match 'Kubernetes'")
	}
	if corrected != "banana" {
		t.Errorf("corrected = %q, want input unchanged", corrected)
	}
	if confidence != 0 {
		t.Errorf("confidence = %v, want 0", confidence)
	}
}

func TestMatch_EmptyInputs(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	if _, _, matched := m.Match("", []string{"term"}); matched {
		t.Error("empty word should not match")
	}
	if _, _, matched := m.Match("word", nil); matched {
		t.Error("empty term list should not match")
	}
}

func TestMatch_MultiWordTerm(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	corrected, _, matched := m.Match("pool request", []string{"pull request"})
	if !matched {
		t.Fatal("expected a match for 'pool request'")
	}
	if corrected != "pull request" {
		t.Errorf("corrected = %q, want %q", corrected, "pull request")
	}
}

func TestMatch_ThresholdRejectsWeakCandidates(t *testing.T) {
	t.Parallel()

	m := phonetic.New(phonetic.WithPhoneticThreshold(0.99))
	if _, _, matched := m.Match("cooper netties", []string{"Kubernetes"}); matched {
		t.Error("a 0.99 threshold should reject the candidate")
	}
}
