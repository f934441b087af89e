package transport

import (
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/realtime-event-server/internal/config"
	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// NewRouter registers every route from the external interface table and
// wraps the whole mux in the CORS + timing middleware.
func NewRouter(manager *eventbus.Manager, cfg *config.Config, logger *slog.Logger) http.Handler {
	shortPoll := &ShortPollHandler{Manager: manager, PollInterval: cfg.ShortPollInterval}
	longPoll := &LongPollHandler{Manager: manager, DefaultTimeout: cfg.LongPollTimeout}
	sse := &SSEHandler{Manager: manager, HeartbeatInterval: cfg.SSEHeartbeat}
	ws := &WebSocketHandler{
		Manager:           manager,
		HeartbeatInterval: cfg.WSHeartbeat,
		PongTimeout:       cfg.WSPongTimeout,
		Logger:            logger,
	}
	sseLongPoll := &SSELongPollHandler{SSE: sse, LongPoll: longPoll}
	wsHealth := &WSHealthCheckHandler{Manager: manager}
	stats := &StatsHandler{Manager: manager}

	mux := http.NewServeMux()

	mux.Handle("GET /poll/short", shortPoll)
	mux.Handle("GET /poll/long", longPoll)
	mux.Handle("GET /sse/stream", sse)
	mux.Handle("GET /ws/connect", ws)

	mux.HandleFunc("GET /hybrid/ws-sse/negotiate", WSSSENegotiateHandler)
	mux.Handle("GET /hybrid/ws-sse/ws", ws)
	mux.Handle("GET /hybrid/ws-sse/stream", sse)

	mux.Handle("GET /hybrid/sse-lp/stream", sseLongPoll)

	mux.Handle("GET /hybrid/ws-health/ws", ws)
	mux.Handle("GET /hybrid/ws-health/check", wsHealth)

	mux.HandleFunc("GET /hybrid/triple/negotiate", TripleNegotiateHandler)
	mux.Handle("GET /hybrid/triple/ws", ws)
	mux.Handle("GET /hybrid/triple/stream", sse)
	mux.Handle("GET /hybrid/triple/poll", longPoll)

	mux.HandleFunc("GET /healthz", HealthHandler)
	mux.Handle("GET /stats", stats)

	return withCORS(withTiming(mux))
}
