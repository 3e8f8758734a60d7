package control

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// WSHandler accepts WebSocket connections and feeds each text message
// through the same parse-and-dispatch path as the FIFO reader. One message
// may carry several newline-separated commands.
//
// The endpoint exists for GUI front-ends that cannot comfortably write to a
// named pipe; the protocol is identical.
type WSHandler struct {
	handler Handler
}

// NewWSHandler creates a WebSocket control endpoint dispatching to h.
func NewWSHandler(h Handler) *WSHandler {
	return &WSHandler{handler: h}
}

// ServeHTTP upgrades the connection and reads commands until the client
// disconnects or the handler reports done.
func (ws *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("control: websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Unblock the read when the controller reaches its terminal state.
	go func() {
		select {
		case <-ws.handler.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Debug("control: websocket client connected", "remote", r.RemoteAddr)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			slog.Debug("control: websocket client disconnected", "remote", r.RemoteAddr, "err", err)
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			select {
			case <-ws.handler.Done():
				return
			default:
			}
			cmd, ok := Parse(line)
			if !ok {
				continue
			}
			ws.handler.HandleCommand(ctx, cmd)
		}
	}
}
