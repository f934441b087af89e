package eventbus

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// sseQueueCapacity is the bounded mailbox size for each SSE subscriber.
// Overflow drops the newest arrival; slow consumers must never
// back-pressure the fan-out.
const sseQueueCapacity = 100

// WSSink is the write side of a registered WebSocket connection. Send
// returning an error marks the client for removal; marked clients are
// removed together at the end of the same push_event pass ("collect then
// remove").
type WSSink interface {
	Send(e Event) error
}

// Waiter is a one-shot long-poll signal. Arm is idempotent: arming an
// already-armed waiter is a no-op, matching the "signal already set"
// failure mode in the fan-out contract.
type Waiter struct {
	ch chan struct{}
}

func newWaiter() *Waiter {
	return &Waiter{ch: make(chan struct{}, 1)}
}

// Arm wakes the waiter. Safe to call more than once; only the first call
// has any effect.
func (w *Waiter) Arm() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until Arm is called or until done fires (e.g. a timeout
// timer), returning true if the waiter was armed.
func (w *Waiter) Wait(done <-chan time.Time) bool {
	select {
	case <-w.ch:
		return true
	case <-done:
		return false
	}
}

type sseClient struct {
	queue chan Event
}

// Manager owns the ring buffer and the three subscriber registries, and
// exposes PushEvent as the single fan-out entry point. All registry
// mutations are serialized by mu; the ring buffer has its own internal
// lock so reads of it never block registry mutations.
type Manager struct {
	mu sync.RWMutex

	ws       map[string]WSSink
	sse      map[string]*sseClient
	waiters  map[string]*Waiter

	ring *ringBuffer

	totalDispatched atomic.Int64
	startedAt       time.Time

	logger *slog.Logger
}

// NewManager constructs an empty Manager ready to accept registrations.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ws:        make(map[string]WSSink),
		sse:       make(map[string]*sseClient),
		waiters:   make(map[string]*Waiter),
		ring:      &ringBuffer{},
		startedAt: time.Now(),
		logger:    logger,
	}
}

// ConnectWS registers a WebSocket sink under clientID.
func (m *Manager) ConnectWS(clientID string, sink WSSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ws[clientID] = sink
}

// DisconnectWS removes a WebSocket sink.
func (m *Manager) DisconnectWS(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ws, clientID)
}

// SubscribeSSE registers a bounded event queue under clientID and returns
// it. UnsubscribeSSE must be called when the subscriber disconnects.
func (m *Manager) SubscribeSSE(clientID string) <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &sseClient{queue: make(chan Event, sseQueueCapacity)}
	m.sse[clientID] = c
	return c.queue
}

// UnsubscribeSSE removes the SSE registration; its queue is dropped with it.
func (m *Manager) UnsubscribeSSE(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sse, clientID)
}

// RegisterLongPoll creates a fresh one-shot waiter under clientID.
func (m *Manager) RegisterLongPoll(clientID string) *Waiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := newWaiter()
	m.waiters[clientID] = w
	return w
}

// UnregisterLongPoll removes the waiter. Called in the long-poll route's
// cleanup path on both wake and timeout; waiters are never reused.
func (m *Manager) UnregisterLongPoll(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.waiters, clientID)
}

// Snapshot returns the buffered events, oldest first.
func (m *Manager) Snapshot() []Event { return m.ring.snapshot() }

// LastN returns up to n of the most recent buffered events, oldest first.
func (m *Manager) LastN(n int) []Event { return m.ring.lastN(n) }

// Latest returns the single most recently pushed event.
func (m *Manager) Latest() (Event, bool) { return m.ring.latest() }

// After returns events strictly after lastSeenID, and whether it was found.
func (m *Manager) After(lastSeenID string) ([]Event, bool) { return m.ring.after(lastSeenID) }

// PushEvent runs the fixed fan-out algorithm: ring append, long-poll wake,
// SSE enqueue, WS send — in that order. It never fails; transport errors
// are converted to deregistration, never propagated to the caller.
func (m *Manager) PushEvent(e Event) {
	m.totalDispatched.Add(1)
	m.ring.push(e)

	m.mu.RLock()
	for _, w := range m.waiters {
		w.Arm()
	}

	sseCopy := e.WithProtocol(ProtocolSSE)
	for id, c := range m.sse {
		select {
		case c.queue <- sseCopy:
		default:
			m.logger.Warn("sse queue full, dropping event", "client_id", id, "event_id", e.EventID)
		}
	}

	// Snapshot the WS sinks while holding the lock, then send after
	// releasing it: WriteJSON can block on a stalled client, and that must
	// never hold up ConnectWS/DisconnectWS/SubscribeSSE/RegisterLongPoll
	// elsewhere in the server.
	wsSinks := make(map[string]WSSink, len(m.ws))
	for id, sink := range m.ws {
		wsSinks[id] = sink
	}
	m.mu.RUnlock()

	wsCopy := e.WithProtocol(ProtocolWebSocket)
	var failed []string
	for id, sink := range wsSinks {
		if err := sink.Send(wsCopy); err != nil {
			failed = append(failed, id)
		}
	}

	if len(failed) > 0 {
		m.mu.Lock()
		for _, id := range failed {
			delete(m.ws, id)
		}
		m.mu.Unlock()
		for _, id := range failed {
			m.logger.Warn("ws send failed, removing client", "client_id", id)
		}
	}
}

// Stats returns a point-in-time ConnectionStats snapshot.
func (m *Manager) Stats() ConnectionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ConnectionStats{
		ActiveWS:              len(m.ws),
		ActiveSSE:             len(m.sse),
		PendingLongPolls:      len(m.waiters),
		TotalEventsDispatched: m.totalDispatched.Load(),
		UptimeSeconds:         time.Since(m.startedAt).Seconds(),
		ServerTime:            time.Now().UTC(),
	}
}
