package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// ListCourses returns the owner's active courses.
func ListCourses(repo *storage.CourseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		courses, err := repo.List(r.Context(), ownerID)
		if err != nil {
			writeStoreError(w, err, "course")
			return
		}
		if courses == nil {
			courses = []models.Course{}
		}
		writeJSON(w, http.StatusOK, courses)
	}
}

// CreateCourse adds a course.
func CreateCourse(repo *storage.CourseRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var c models.Course
		if !decodeJSON(w, r, &c) {
			return
		}
		c.OwnerID = ownerID
		if err := repo.Create(r.Context(), &c); err != nil {
			writeStoreError(w, err, "course")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityCourse, websocket.ActionCreated, c.ID)
		writeJSON(w, http.StatusCreated, c)
	}
}

// GetCourse returns a single course.
func GetCourse(repo *storage.CourseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		c, err := repo.GetByID(r.Context(), ownerID, mux.Vars(r)["id"])
		if err != nil {
			writeStoreError(w, err, "course")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// UpdateCourse overwrites a course's name, description and color.
func UpdateCourse(repo *storage.CourseRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		var c models.Course
		if !decodeJSON(w, r, &c) {
			return
		}
		c.ID = mux.Vars(r)["id"]
		c.OwnerID = ownerID
		if err := repo.Update(r.Context(), &c); err != nil {
			writeStoreError(w, err, "course")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityCourse, websocket.ActionUpdated, c.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ArchiveCourse hides a course from listings.
func ArchiveCourse(repo *storage.CourseRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Archive(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "course")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityCourse, websocket.ActionArchived, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteCourse removes a course.
func DeleteCourse(repo *storage.CourseRepository, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		if err := repo.Delete(r.Context(), ownerID, id); err != nil {
			writeStoreError(w, err, "course")
			return
		}
		events.BroadcastCalendarChanged(ownerID, websocket.EntityCourse, websocket.ActionDeleted, id)
		w.WriteHeader(http.StatusNoContent)
	}
}
