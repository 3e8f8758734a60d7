// Package control delivers dictation commands to the session controller.
//
// The primary control channel is a named pipe carrying newline-terminated
// ASCII tokens (START, STOP, QUIT, case-insensitive); a WebSocket endpoint
// on the HTTP server feeds the same dispatcher for GUI front-ends. Commands
// are fire-and-forget: no result travels back over the channel.
package control

import (
	"context"
	"strings"
)

// Command is one normalised control token.
type Command string

const (
	// CommandStart begins a recording session.
	CommandStart Command = "START"

	// CommandStop ends the session and triggers transcription.
	CommandStop Command = "STOP"

	// CommandQuit shuts the daemon down.
	CommandQuit Command = "QUIT"
)

// Known reports whether c is part of the command vocabulary. Unknown
// commands are still dispatched so the handler can log them.
func (c Command) Known() bool {
	switch c {
	case CommandStart, CommandStop, CommandQuit:
		return true
	}
	return false
}

// Parse normalises one line (trim whitespace, uppercase) into a Command.
// Empty lines are not commands; ok is false for them.
func Parse(line string) (cmd Command, ok bool) {
	token := normalize(line)
	if token == "" {
		return "", false
	}
	return Command(token), true
}

// normalize trims whitespace and uppercases one raw command line.
func normalize(line string) string {
	return strings.ToUpper(strings.TrimSpace(line))
}

// Handler consumes dispatched commands. Implemented by the session
// controller.
type Handler interface {
	// HandleCommand processes one command synchronously. For STOP this
	// includes the full drain → transcribe → output sequence, so the call
	// may take as long as a transcription.
	HandleCommand(ctx context.Context, cmd Command)

	// Done returns a channel closed when the handler has reached its
	// terminal state and no further commands will be accepted.
	Done() <-chan struct{}
}
