package stt_test

import (
	"testing"

	"github.com/hummat/fifo-whisper-ptt/pkg/provider/stt"
)

func TestResult_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		segments []stt.Segment
		want     string
	}{
		{
			name: "joins trimmed segments",
			segments: []stt.Segment{
				{Text: " hello"},
				{Text: " world "},
			},
			want: "hello world",
		},
		{
			name:     "empty result",
			segments: nil,
			want:     "",
		},
		{
			name: "skips whitespace-only segments",
			segments: []stt.Segment{
				{Text: "  "},
				{Text: " okay "},
				{Text: ""},
			},
			want: "okay",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := stt.Result{Segments: tc.segments}.Text()
			if got != tc.want {
				t.Errorf("Text() = %q, want %q", got, tc.want)
			}
		})
	}
}
