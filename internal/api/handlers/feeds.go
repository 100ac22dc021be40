package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/api/middleware"
	"github.com/Tbsheff/notion-clone/internal/feed"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// minSyncIntervalMin is the shortest accepted polling interval.
const minSyncIntervalMin = 5

// FeedRequest creates or updates an ICS subscription.
type FeedRequest struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	CourseID        *string `json:"course_id,omitempty"`
	SyncIntervalMin int     `json:"sync_interval_min"`
	Enabled         *bool   `json:"enabled,omitempty"`
}

func (req FeedRequest) apply(f *models.Feed, defaultInterval int) {
	f.Name = req.Name
	f.URL = req.URL
	f.CourseID = req.CourseID
	f.SyncIntervalMin = req.SyncIntervalMin
	if f.SyncIntervalMin < minSyncIntervalMin {
		f.SyncIntervalMin = defaultInterval
	}
	f.Enabled = req.Enabled == nil || *req.Enabled
}

// ListFeeds returns the owner's subscriptions.
func ListFeeds(repo *storage.FeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		feeds, err := repo.List(r.Context(), ownerID)
		if err != nil {
			writeStoreError(w, err, "feed")
			return
		}
		if feeds == nil {
			feeds = []models.Feed{}
		}
		writeJSON(w, http.StatusOK, feeds)
	}
}

// CreateFeed adds a subscription and schedules it when enabled.
func CreateFeed(repo *storage.FeedRepository, scheduler *feed.Scheduler, defaultInterval int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var req FeedRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		f := models.Feed{OwnerID: ownerID}
		req.apply(&f, defaultInterval)
		if err := repo.Create(r.Context(), &f); err != nil {
			writeStoreError(w, err, "feed")
			return
		}

		if scheduler != nil && f.Enabled {
			scheduler.ScheduleFeed(f)
			scheduler.TriggerSync(f)
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

// GetFeed returns a single subscription.
func GetFeed(repo *storage.FeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		f, err := repo.GetByID(r.Context(), ownerID, mux.Vars(r)["id"])
		if err != nil {
			writeStoreError(w, err, "feed")
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

// UpdateFeed edits a subscription and reschedules it.
func UpdateFeed(repo *storage.FeedRepository, scheduler *feed.Scheduler, defaultInterval int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var req FeedRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		f := models.Feed{ID: mux.Vars(r)["id"], OwnerID: ownerID}
		req.apply(&f, defaultInterval)
		if err := repo.Update(r.Context(), &f); err != nil {
			writeStoreError(w, err, "feed")
			return
		}

		if scheduler != nil {
			if f.Enabled {
				scheduler.ScheduleFeed(f)
			} else {
				scheduler.UnscheduleFeed(f.ID)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteFeed removes a subscription together with its imported events.
func DeleteFeed(repo *storage.FeedRepository, scheduler *feed.Scheduler, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Delete(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "feed")
			return
		}

		if scheduler != nil {
			scheduler.UnscheduleFeed(id)
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityFeed, websocket.ActionDeleted, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncFeed triggers a manual sync. By default it returns at once and the
// outcome is pushed over the websocket; with wait=true it syncs inline and
// returns the result.
func SyncFeed(repo *storage.FeedRepository, scheduler *feed.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		f, err := repo.GetByID(r.Context(), ownerID, mux.Vars(r)["id"])
		if err != nil {
			writeStoreError(w, err, "feed")
			return
		}
		if scheduler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrInternalError, "Feed sync is not available")
			return
		}

		wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
		if !wait {
			scheduler.TriggerSync(*f)
			writeJSON(w, http.StatusAccepted, map[string]string{"status": models.SyncStatusSyncing})
			return
		}

		result, err := scheduler.SyncNow(r.Context(), *f)
		if err != nil {
			middleware.WriteErrorWithDetails(w, http.StatusBadGateway, middleware.ErrSyncFailed, "Feed sync failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
