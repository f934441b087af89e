package transport

import (
	"net/http"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// HealthHandler serves GET /healthz.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	Manager *eventbus.Manager
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Manager.Stats())
}
