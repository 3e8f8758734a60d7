package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short unchanged", "/tmp/dictation_ctl", "/tmp/dictation_ctl"},
		{"exactly max", strings.Repeat("a", 22), strings.Repeat("a", 22)},
		{"long ascii", strings.Repeat("a", 30), strings.Repeat("a", 19) + "…"},
		{"long multibyte", strings.Repeat("ü", 30), strings.Repeat("ü", 19) + "…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := truncateValue(tc.in, 22)
			if !utf8.ValidString(got) {
				t.Fatalf("truncateValue produced invalid UTF-8: %q", got)
			}
			if got != tc.want {
				t.Errorf("truncateValue = %q, want %q", got, tc.want)
			}
		})
	}
}
