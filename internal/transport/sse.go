package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alfredjeanlab/realtime-event-server/internal/dispatch"
	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// SSEHandler serves GET /sse/stream, running the Shared Dispatch Loop over
// a bounded per-client queue.
type SSEHandler struct {
	Manager           *eventbus.Manager
	HeartbeatInterval time.Duration
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	id := clientID(r)
	queue := h.Manager.SubscribeSSE(id)
	defer h.Manager.UnsubscribeSSE(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	send := func(e eventbus.Event) error {
		writeSSEEvent(w, e)
		flusher.Flush()
		return nil
	}

	_ = dispatch.Run(r.Context(), queue, send, h.HeartbeatInterval, dispatch.EventHeartbeat(send, eventbus.ProtocolSSE))
}

func writeSSEEvent(w http.ResponseWriter, e eventbus.Event) {
	var data []byte
	if e.EventType == eventbus.EventHeartbeat {
		data = []byte(`{"ping":"pong"}`)
	} else {
		data, _ = json.Marshal(e)
	}
	fmt.Fprintf(w, "event: %s\n", e.EventType)
	fmt.Fprintf(w, "id: %s\n", e.EventID)
	fmt.Fprintf(w, "data: %s\n\n", data)
}
