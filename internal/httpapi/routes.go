package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tressette-client/internal/client"
)

// SetupRoutes builds the local debug router: read-only snapshot inspection
// while a session is live.
func SetupRoutes(c *client.Client) http.Handler {
	r := chi.NewRouter()

	r.Get("/state", State(c))
	r.Get("/healthz", Healthz)
	return r
}
