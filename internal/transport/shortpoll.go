package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// ShortPollHandler serves GET /poll/short. It never blocks: snapshot the
// ring buffer, resolve last_seen_id if present, and respond immediately.
type ShortPollHandler struct {
	Manager      *eventbus.Manager
	PollInterval time.Duration
}

func (h *ShortPollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lastSeen := r.URL.Query().Get("last_seen_id")

	var events []eventbus.Event
	status := eventbus.StatusEmpty
	if lastSeen == "" {
		events = h.Manager.LastN(10)
	} else {
		after, found := h.Manager.After(lastSeen)
		if found {
			events = after
		} else {
			// Cursor fell off the ring (evicted). This is not an error: the
			// client resumes from "now", and the response is explicitly
			// status=ok even though events is empty.
			status = eventbus.StatusOK
		}
	}

	stamped := make([]eventbus.Event, len(events))
	for i, e := range events {
		stamped[i] = e.WithProtocol(eventbus.ProtocolShortPoll)
	}

	if len(stamped) > 0 {
		status = eventbus.StatusOK
	}

	nextPollMs := int(h.PollInterval.Milliseconds())
	w.Header().Set("X-Poll-Interval", strconv.Itoa(nextPollMs))
	writeJSON(w, http.StatusOK, eventbus.PollResponse{
		Events:     stamped,
		Status:     status,
		NextPollMs: nextPollMs,
		ServerTime: time.Now().UTC(),
	})
}
