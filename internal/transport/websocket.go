package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alfredjeanlab/realtime-event-server/internal/dispatch"
	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var errPongTimeout = errors.New("ws: pong deadline exceeded")

// wsWriteWait bounds every WriteJSON call. Without it a stalled client
// never returns a write error, so it would never get evicted from the
// fan-out's ws registry.
const wsWriteWait = 10 * time.Second

// controlFrame is the small {"type": ...} form used for ping/pong, distinct
// from a full Event JSON body.
type controlFrame struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
}

// wsSink adapts a gorilla/websocket connection to eventbus.WSSink. Writes
// are serialized by mu since the fan-out path and the writer goroutine's
// own ping frames both call into the same connection concurrently.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Send(e eventbus.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(e)
}

func (s *wsSink) sendControl(c controlFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(c)
}

// WebSocketHandler serves GET /ws/connect, upgrading the connection and
// running a reader and a writer goroutine per client.
type WebSocketHandler struct {
	Manager           *eventbus.Manager
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
	Logger            *slog.Logger
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}

	id := clientID(r)
	sink := &wsSink{conn: conn}
	h.Manager.ConnectWS(id, sink)

	ctx, cancel := context.WithCancel(r.Context())

	// pongArrived is armed by the reader whenever a {"type":"pong"} frame
	// is received; the heartbeat callback below consumes it to clear the
	// liveness deadline it just started.
	pongArrived := make(chan struct{}, 1)
	armPong := func() {
		select {
		case pongArrived <- struct{}{}:
		default:
		}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			cancel()
			h.Manager.DisconnectWS(id)
			_ = conn.Close()
			logger.Info("ws disconnected", "client_id", id)
		})
	}
	defer cleanup()

	go func() {
		h.readPump(ctx, conn, armPong, logger, id)
		cancel()
	}()
	h.writePump(ctx, sink, pongArrived, logger, id)
}

// readPump accepts client frames. {"type":"pong"} arms the liveness timer;
// {"action":"subscribe",...} is accepted as a no-op, and no reply frame is
// sent for it; anything else is logged and ignored. Returns (and its caller tears the
// connection down) on read error or client close.
func (h *WebSocketHandler) readPump(ctx context.Context, conn *websocket.Conn, armPong func(), logger *slog.Logger, id string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame controlFrame
		if jsonErr := json.Unmarshal(data, &frame); jsonErr != nil {
			logger.Warn("ws unknown frame", "client_id", id, "error", jsonErr)
			continue
		}
		switch {
		case frame.Type == "pong":
			armPong()
		case frame.Action == "subscribe":
			// Accepted, no-op for this core; no reply is sent.
		default:
			logger.Warn("ws unrecognized frame", "client_id", id, "frame", frame)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// writePump is the Shared Dispatch Loop for this connection. Its source is
// empty — WebSocket pushes arrive directly through eventbus.WSSink.Send
// from the fan-out path, not by pulling a per-client queue — so the loop
// exists here purely to drive the ping/pong liveness check on a timer.
// Each heartbeat tick sends {"type":"ping"} and blocks for PongTimeout
// waiting for the corresponding pong; a missed pong ends the loop and the
// connection is torn down as a zombie.
func (h *WebSocketHandler) writePump(ctx context.Context, sink *wsSink, pongArrived <-chan struct{}, logger *slog.Logger, id string) {
	source := make(chan eventbus.Event) // never written; closed on return
	defer close(source)

	heartbeat := func() error {
		if err := sink.sendControl(controlFrame{Type: "ping"}); err != nil {
			return err
		}
		timer := time.NewTimer(h.PongTimeout)
		defer timer.Stop()
		select {
		case <-pongArrived:
			return nil
		case <-timer.C:
			logger.Warn("ws pong deadline exceeded, closing zombie connection", "client_id", id)
			return errPongTimeout
		case <-ctx.Done():
			return nil
		}
	}

	_ = dispatch.Run(ctx, source, sink.Send, h.HeartbeatInterval, heartbeat)
}
