package transport

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	HealthHandler(w, req)

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ok", resp["status"])
}

func TestStatsHandler(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	mgr.PushEvent(eventbus.Event{EventID: "e1", EventType: eventbus.EventMetric})
	h := &StatsHandler{Manager: mgr}

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp eventbus.ConnectionStats
	decodeJSON(t, w, &resp)
	assert.EqualValues(t, 1, resp.TotalEventsDispatched)
}
