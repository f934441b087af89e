package transport

import (
	"net/http"
	"strings"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// WSSSENegotiateHandler serves GET /hybrid/ws-sse/negotiate.
func WSSSENegotiateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, eventbus.NegotiationResponse{
		Preferred: "websocket",
		Fallback:  []string{"sse"},
		URLs: map[string]string{
			"websocket": "/hybrid/ws-sse/ws",
			"sse":       "/hybrid/ws-sse/stream",
		},
	})
}

// SSELongPollHandler serves GET /hybrid/sse-lp/stream: a single URL that
// content-negotiates on Accept, with no shared state between the two
// branches.
type SSELongPollHandler struct {
	SSE      *SSEHandler
	LongPoll *LongPollHandler
}

func (h *SSELongPollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		h.SSE.ServeHTTP(w, r)
		return
	}
	h.LongPoll.ServeHTTP(w, r)
}

// WSHealthCheckHandler serves GET /hybrid/ws-health/check, a plain REST
// health summary for a client running a WebSocket data connection plus a
// separate polling health loop.
type WSHealthCheckHandler struct {
	Manager *eventbus.Manager
}

func (h *WSHealthCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.Manager.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"active_connections": stats.ActiveWS,
		"is_alive":           true,
	})
}

// TripleNegotiateHandler serves GET /hybrid/triple/negotiate.
func TripleNegotiateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, eventbus.NegotiationResponse{
		Preferred: "websocket",
		Fallback:  []string{"sse", "long_poll"},
		URLs: map[string]string{
			"websocket": "/hybrid/triple/ws",
			"sse":       "/hybrid/triple/stream",
			"long_poll": "/hybrid/triple/poll",
		},
		Reason: "client attempts transports in order until one succeeds",
	})
}
