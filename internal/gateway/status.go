package gateway

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status  string   `json:"status"`
	Uptime  float64  `json:"uptime_seconds"`
	Sources []string `json:"webhook_sources"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sources := g.dispatcher.Sources()
		slices.Sort(sources)

		resp := StatusResponse{
			Status:  "ok",
			Uptime:  time.Since(g.startedAt).Truncate(time.Second).Seconds(),
			Sources: sources,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
