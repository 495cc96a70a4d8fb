package httpapi

import (
	"encoding/json"
	"net/http"

	"tressette-client/internal/client"
)

// State returns the current projected view model. The projection is pure,
// so this endpoint can never disturb the session.
func State(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := c.Snapshot(r.Context())
		if err != nil {
			http.Error(w, "session not available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
