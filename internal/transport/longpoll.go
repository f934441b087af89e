package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// LongPollHandler serves GET /poll/long. It blocks until an event arrives
// or the timeout elapses.
type LongPollHandler struct {
	Manager        *eventbus.Manager
	DefaultTimeout time.Duration
}

func (h *LongPollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := clientID(r)

	timeout := h.DefaultTimeout
	if v := r.URL.Query().Get("timeout_s"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	waiter := h.Manager.RegisterLongPoll(id)
	defer h.Manager.UnregisterLongPoll(id)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	woke := waiter.Wait(deadline.C)

	if !woke {
		writeJSON(w, http.StatusOK, eventbus.PollResponse{
			Events:     []eventbus.Event{},
			Status:     eventbus.StatusTimeout,
			NextPollMs: 500,
			ServerTime: time.Now().UTC(),
		})
		return
	}

	var events []eventbus.Event
	if latest, ok := h.Manager.Latest(); ok {
		events = []eventbus.Event{latest.WithProtocol(eventbus.ProtocolLongPoll)}
	}

	writeJSON(w, http.StatusOK, eventbus.PollResponse{
		Events:     events,
		Status:     eventbus.StatusOK,
		NextPollMs: 50,
		ServerTime: time.Now().UTC(),
	})
}
