package handlers

import (
	"net/http"

	"github.com/Tbsheff/notion-clone/internal/config"
)

// SettingsResponse is the client-visible part of the configuration.
type SettingsResponse struct {
	Timezone               string `json:"timezone"`
	DefaultSyncIntervalMin int    `json:"default_sync_interval_min"`
	MonthCellOrder         string `json:"month_cell_order"`
	MonthCellCapacity      int    `json:"month_cell_capacity"`
}

// GetSettings returns the calendar settings the server runs with.
func GetSettings(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tz := cfg.Timezone
		if tz == "" {
			tz = cfg.Location().String()
		}
		writeJSON(w, http.StatusOK, SettingsResponse{
			Timezone:               tz,
			DefaultSyncIntervalMin: cfg.Feeds.DefaultSyncIntervalMin,
			MonthCellOrder:         cfg.Calendar.MonthCellOrder,
			MonthCellCapacity:      cfg.Calendar.MonthCellCapacity,
		})
	}
}
