// Package notify surfaces session transitions to the user.
//
// Dictation is a background process with no window of its own, so the only
// feedback that recording has actually started is a desktop notification.
// Delivery is best-effort: a broken notification daemon must never block a
// session.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier announces session lifecycle events.
type Notifier interface {
	SessionStarted()
	SessionStopped(text string)
}

var (
	_ Notifier = (*Desktop)(nil)
	_ Notifier = Nop{}
)

const appTitle = "Dictation"

// Desktop sends notifications through the platform notification daemon.
type Desktop struct{}

// NewDesktop creates a desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// SessionStarted announces that the microphone is live.
func (d *Desktop) SessionStarted() {
	if err := beeep.Notify(appTitle, "Listening...", ""); err != nil {
		slog.Debug("notify: session start notification failed", "err", err)
	}
}

// SessionStopped announces the recognised text, truncated so long
// transcripts do not overflow the notification bubble.
func (d *Desktop) SessionStopped(text string) {
	text = preview(text)
	if text == "" {
		text = "(nothing recognised)"
	}
	if err := beeep.Notify(appTitle, text, ""); err != nil {
		slog.Debug("notify: session stop notification failed", "err", err)
	}
}

// preview shortens text to notification-bubble size, cutting on a rune
// boundary so multi-byte characters are never split.
func preview(text string) string {
	const maxPreview = 120
	runes := []rune(text)
	if len(runes) <= maxPreview {
		return text
	}
	return string(runes[:maxPreview]) + "..."
}

// Nop discards all events. Used when notifications are disabled.
type Nop struct{}

func (Nop) SessionStarted()            {}
func (Nop) SessionStopped(text string) {}
