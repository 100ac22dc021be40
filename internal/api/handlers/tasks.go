package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// ListTasks returns the owner's tasks, filtered by the status, course_id
// and priority query parameters.
func ListTasks(repo *storage.TaskRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		filter := models.TaskFilter{
			Status:   models.TaskStatus(q.Get("status")),
			CourseID: q.Get("course_id"),
			Priority: models.TaskPriority(q.Get("priority")),
		}
		tasks, err := repo.List(r.Context(), ownerID, filter)
		if err != nil {
			writeStoreError(w, err, "task")
			return
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

// CreateTask adds a task.
func CreateTask(repo *storage.TaskRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var t models.Task
		if !decodeJSON(w, r, &t) {
			return
		}
		t.OwnerID = ownerID
		if err := repo.Create(r.Context(), &t); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityTask, websocket.ActionCreated, t.ID)
		writeJSON(w, http.StatusCreated, t)
	}
}

// GetTask returns a single task.
func GetTask(repo *storage.TaskRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		t, err := repo.GetByID(r.Context(), ownerID, mux.Vars(r)["id"])
		if err != nil {
			writeStoreError(w, err, "task")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// UpdateTask overwrites a task's editable fields.
func UpdateTask(repo *storage.TaskRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var t models.Task
		if !decodeJSON(w, r, &t) {
			return
		}
		t.ID = mux.Vars(r)["id"]
		t.OwnerID = ownerID
		if err := repo.Update(r.Context(), &t); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityTask, websocket.ActionUpdated, t.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ArchiveTask hides a task from listings and the calendar.
func ArchiveTask(repo *storage.TaskRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Archive(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityTask, websocket.ActionArchived, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteTask removes a task.
func DeleteTask(repo *storage.TaskRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Delete(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityTask, websocket.ActionDeleted, id)
		w.WriteHeader(http.StatusNoContent)
	}
}
