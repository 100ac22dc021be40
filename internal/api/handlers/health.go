package handlers

import (
	"net/http"

	"github.com/Tbsheff/notion-clone/internal/feed"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status         string `json:"status"`
	DBConnected    bool   `json:"db_connected"`
	WSClients      int    `json:"ws_clients"`
	ScheduledFeeds int    `json:"scheduled_feeds"`
}

// HealthCheck returns a handler that performs a health check. hub and
// scheduler may be nil.
func HealthCheck(db *storage.DB, hub *websocket.Hub, scheduler *feed.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}
		if hub != nil {
			response.WSClients = hub.ClientCount()
		}
		if scheduler != nil {
			response.ScheduledFeeds = len(scheduler.ScheduledFeeds())
		}

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, response)
	}
}
