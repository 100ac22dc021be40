// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/api/handlers"
	"github.com/Tbsheff/notion-clone/internal/api/middleware"
	"github.com/Tbsheff/notion-clone/internal/calendar"
	"github.com/Tbsheff/notion-clone/internal/config"
	"github.com/Tbsheff/notion-clone/internal/feed"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// Services are the long-lived dependencies of the router. Hub and
// Scheduler may be nil.
type Services struct {
	DB        *storage.DB
	Config    *config.Config
	Calendar  *calendar.Service
	Hub       *websocket.Hub
	Scheduler *feed.Scheduler
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	courses := storage.NewCourseRepository(s.DB)
	tasks := storage.NewTaskRepository(s.DB)
	events := storage.NewEventRepository(s.DB)
	feeds := storage.NewFeedRepository(s.DB)

	var broadcaster *websocket.EventBroadcaster
	if s.Hub != nil {
		broadcaster = websocket.NewEventBroadcaster(s.Hub)
	}
	defaultInterval := s.Config.Feeds.DefaultSyncIntervalMin

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", handlers.HealthCheck(s.DB, s.Hub, s.Scheduler)).Methods("GET")

	// Everything else is owner-scoped
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Auth([]byte(s.Config.Auth.JWTSecret)))

	if s.Hub != nil {
		authed.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")
	}
	authed.HandleFunc("/settings", handlers.GetSettings(s.Config)).Methods("GET")

	// Course endpoints
	authed.HandleFunc("/courses", handlers.ListCourses(courses)).Methods("GET")
	authed.HandleFunc("/courses", handlers.CreateCourse(courses, broadcaster)).Methods("POST")
	authed.HandleFunc("/courses/{id}", handlers.GetCourse(courses)).Methods("GET")
	authed.HandleFunc("/courses/{id}", handlers.UpdateCourse(courses, broadcaster)).Methods("PUT")
	authed.HandleFunc("/courses/{id}", handlers.DeleteCourse(courses, broadcaster)).Methods("DELETE")
	authed.HandleFunc("/courses/{id}/archive", handlers.ArchiveCourse(courses, broadcaster)).Methods("POST")

	// Task endpoints
	authed.HandleFunc("/tasks", handlers.ListTasks(tasks)).Methods("GET")
	authed.HandleFunc("/tasks", handlers.CreateTask(tasks, broadcaster)).Methods("POST")
	authed.HandleFunc("/tasks/{id}", handlers.GetTask(tasks)).Methods("GET")
	authed.HandleFunc("/tasks/{id}", handlers.UpdateTask(tasks, broadcaster)).Methods("PUT")
	authed.HandleFunc("/tasks/{id}", handlers.DeleteTask(tasks, broadcaster)).Methods("DELETE")
	authed.HandleFunc("/tasks/{id}/archive", handlers.ArchiveTask(tasks, broadcaster)).Methods("POST")

	// Event endpoints
	authed.HandleFunc("/events", handlers.ListEvents(events)).Methods("GET")
	authed.HandleFunc("/events", handlers.CreateEvent(events, broadcaster)).Methods("POST")
	authed.HandleFunc("/events/{id}", handlers.GetEvent(events)).Methods("GET")
	authed.HandleFunc("/events/{id}", handlers.UpdateEvent(events, broadcaster)).Methods("PUT")
	authed.HandleFunc("/events/{id}", handlers.DeleteEvent(events, broadcaster)).Methods("DELETE")

	// Calendar view endpoints
	authed.HandleFunc("/calendar", handlers.GetCalendar(s.Calendar)).Methods("GET")
	authed.HandleFunc("/calendar/range", handlers.GetCalendarRange(s.Calendar)).Methods("GET")
	authed.HandleFunc("/calendar/navigate", handlers.Navigate(s.Calendar)).Methods("POST")
	authed.HandleFunc("/calendar/events/{id}", handlers.GetEventDetail(s.Calendar, events, tasks, courses)).Methods("GET")
	authed.HandleFunc("/calendar/export.ics", handlers.ExportCalendar(s.Calendar)).Methods("GET")

	// Feed endpoints
	authed.HandleFunc("/feeds", handlers.ListFeeds(feeds)).Methods("GET")
	authed.HandleFunc("/feeds", handlers.CreateFeed(feeds, s.Scheduler, defaultInterval)).Methods("POST")
	authed.HandleFunc("/feeds/{id}", handlers.GetFeed(feeds)).Methods("GET")
	authed.HandleFunc("/feeds/{id}", handlers.UpdateFeed(feeds, s.Scheduler, defaultInterval)).Methods("PUT")
	authed.HandleFunc("/feeds/{id}", handlers.DeleteFeed(feeds, s.Scheduler, broadcaster)).Methods("DELETE")
	authed.HandleFunc("/feeds/{id}/sync", handlers.SyncFeed(feeds, s.Scheduler)).Methods("POST")

	// Serve static frontend files
	if s.Config.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.Config.StaticDir)))
	}

	return r
}
