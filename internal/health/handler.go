// Package health serves the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks a dependency. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers {"status":"ok"} when every pinger responds, 503 otherwise.
func Handler(pingers ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, p := range pingers {
			if err := p.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
