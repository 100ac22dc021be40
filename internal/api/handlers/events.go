package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/api/middleware"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// ListEvents returns native events. With start and end (RFC 3339) only
// events starting inside [start, end] are returned.
func ListEvents(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		courseID := q.Get("course_id")

		var (
			events []models.CalendarEvent
			err    error
		)
		if q.Get("start") == "" && q.Get("end") == "" {
			events, err = repo.ListAll(r.Context(), ownerID, courseID)
		} else {
			start, perr := time.Parse(time.RFC3339, q.Get("start"))
			end, perr2 := time.Parse(time.RFC3339, q.Get("end"))
			if perr != nil || perr2 != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end must be RFC 3339 timestamps")
				return
			}
			events, err = repo.ListInRange(r.Context(), ownerID, start, end, courseID)
		}
		if err != nil {
			writeStoreError(w, err, "event")
			return
		}
		if events == nil {
			events = []models.CalendarEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// CreateEvent adds a manual event.
func CreateEvent(repo *storage.EventRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var e models.CalendarEvent
		if !decodeJSON(w, r, &e) {
			return
		}
		e.OwnerID = ownerID
		e.FeedID = nil
		if e.Source == models.SourceICS {
			e.Source = models.SourceManual
		}
		if err := repo.Create(r.Context(), &e); err != nil {
			writeStoreError(w, err, "event")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityEvent, websocket.ActionCreated, e.ID)
		writeJSON(w, http.StatusCreated, e)
	}
}

// GetEvent returns a single native event.
func GetEvent(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		e, err := repo.GetByID(r.Context(), ownerID, mux.Vars(r)["id"])
		if err != nil {
			writeStoreError(w, err, "event")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// UpdateEvent overwrites an event's editable fields.
func UpdateEvent(repo *storage.EventRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var e models.CalendarEvent
		if !decodeJSON(w, r, &e) {
			return
		}
		e.ID = mux.Vars(r)["id"]
		e.OwnerID = ownerID
		if err := repo.Update(r.Context(), &e); err != nil {
			writeStoreError(w, err, "event")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityEvent, websocket.ActionUpdated, e.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteEvent removes an event.
func DeleteEvent(repo *storage.EventRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Delete(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "event")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityEvent, websocket.ActionDeleted, id)
		w.WriteHeader(http.StatusNoContent)
	}
}
