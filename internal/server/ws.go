package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/morph"
)

const (
	writeWait = time.Second
	// stateInterval paces the JSON state messages sent alongside frames.
	stateInterval = 250 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSource fans out simulated frames.
type FrameSource interface {
	Subscribe() (<-chan morph.Frame, func())
}

// SnapshotSource reports the latest simulation state.
type SnapshotSource interface {
	Snapshot() app.Snapshot
}

// FramesHandler streams every simulated frame to a websocket client as a
// binary message (see EncodeFrame), interleaved with JSON state snapshots
// as text messages.
type FramesHandler struct {
	frames FrameSource
	state  SnapshotSource
	logger zerolog.Logger
}

// NewFramesHandler creates a FramesHandler.
func NewFramesHandler(frames FrameSource, state SnapshotSource, logger zerolog.Logger) *FramesHandler {
	return &FramesHandler{frames: frames, state: state, logger: logger}
}

// ServeHTTP upgrades the connection and streams until either side closes.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	frames, cancel := h.frames.Subscribe()
	defer cancel()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("frame client connected")
	defer h.logger.Debug().Str("remote", r.RemoteAddr).Msg("frame client disconnected")

	ticker := time.NewTicker(stateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(f)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(h.state.Snapshot()); err != nil {
				return
			}
		}
	}
}
