// Package eventbus implements the Connection Manager and Fan-Out Engine:
// the in-memory ring buffer, the three subscriber registries (WebSocket
// sinks, SSE bounded queues, long-poll waiters), and the push_event
// algorithm that fans a single Event out to all of them.
package eventbus

import "time"

// EventType enumerates the kinds of events the bus carries. Real producer
// content is illustrative. Of the non-producer values, only heartbeat is
// emitted by the core (the idle heartbeat Event); WebSocket ping/pong travel
// as small control frames, not as Events, and error/control are not emitted.
type EventType string

const (
	EventStockTick    EventType = "stock_tick"
	EventScoreUpdate  EventType = "score_update"
	EventMetric       EventType = "metric"
	EventNotification EventType = "notification"
	EventWeather      EventType = "weather"
	EventHeartbeat    EventType = "heartbeat"
	EventPing         EventType = "ping"
	EventPong         EventType = "pong"
	EventError        EventType = "error"
	EventControl      EventType = "control"
)

// Protocol tags the transport an Event was delivered over. It is the only
// field push_event mutates, and only on a per-transport copy.
type Protocol string

const (
	ProtocolShortPoll Protocol = "short_poll"
	ProtocolLongPoll  Protocol = "long_poll"
	ProtocolSSE       Protocol = "sse"
	ProtocolWebSocket Protocol = "websocket"
	ProtocolSystem    Protocol = "system"
)

// Event is an immutable value once produced; delivery paths only ever copy
// it to stamp Protocol, never mutate the original.
type Event struct {
	EventID     string         `json:"event_id"`
	EventType   EventType      `json:"event_type"`
	Payload     map[string]any `json:"payload"`
	GeneratedAt time.Time      `json:"generated_at"`
	Source      string         `json:"source"`
	Protocol    Protocol       `json:"protocol,omitempty"`
}

// WithProtocol returns a shallow copy of e stamped with protocol. Payload is
// shared (read-only, pass-through per the "accept-anything" contract) but
// the Event value itself is distinct, so mutating one subscriber's stamp
// never leaks to another's.
func (e Event) WithProtocol(p Protocol) Event {
	e.Protocol = p
	return e
}

// PollStatus is the status field of a PollResponse.
type PollStatus string

const (
	StatusOK      PollStatus = "ok"
	StatusTimeout PollStatus = "timeout"
	StatusEmpty   PollStatus = "empty"
)

// PollResponse is returned by the short-poll and long-poll routes.
type PollResponse struct {
	Events     []Event    `json:"events"`
	Status     PollStatus `json:"status"`
	NextPollMs int        `json:"next_poll_ms"`
	ServerTime time.Time  `json:"server_time"`
}

// NegotiationResponse is returned by the hybrid negotiate endpoints.
type NegotiationResponse struct {
	Preferred string            `json:"preferred"`
	Fallback  []string          `json:"fallback"`
	URLs      map[string]string `json:"urls,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

// ConnectionStats is a point-in-time snapshot of Manager state.
type ConnectionStats struct {
	ActiveWS               int       `json:"active_ws"`
	ActiveSSE              int       `json:"active_sse"`
	PendingLongPolls       int       `json:"pending_long_polls"`
	TotalEventsDispatched  int64     `json:"total_events_dispatched"`
	UptimeSeconds          float64   `json:"uptime_seconds"`
	ServerTime             time.Time `json:"server_time"`
}
