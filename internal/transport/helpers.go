// Package transport wires the Connection Manager and Shared Dispatch Loop
// to HTTP: the four base route handlers, their hybrid/negotiation
// combinators, stats/health, and the CORS + timing middleware.
package transport

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// writeJSON encodes data as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a small JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// clientID resolves the client_id query parameter, generating a short
// random one when the caller omits it rather than rejecting the request.
func clientID(r *http.Request) string {
	if id := r.URL.Query().Get("client_id"); id != "" {
		return id
	}
	return "client-" + uuid.NewString()[:8]
}
