package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds the handlers the router wires up.
type RouterDeps struct {
	Match           *MatchHandlers
	Recommendations *RecommendationHandlers
	Digests         *DigestHandlers
	Health          *HealthHandlers
	Registry        *prometheus.Registry
}

// NewRouter builds the service mux. Middleware is applied by the caller.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /internal/events/{id}/matches", deps.Match.RunMatch)
	mux.HandleFunc("GET /users/{id}/recommendations", deps.Recommendations.GetRecommendations)
	mux.HandleFunc("GET /internal/digests", deps.Digests.GetDigests)
	mux.HandleFunc("GET /health", deps.Health.GetHealth)

	if deps.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "the requested resource was not found")
			return
		}
		WriteJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": "marquee-match",
			"version": "0.1.0",
		})
	})

	return mux
}
