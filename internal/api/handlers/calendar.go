package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Tbsheff/notion-clone/internal/api/middleware"
	"github.com/Tbsheff/notion-clone/internal/calendar"
	"github.com/Tbsheff/notion-clone/internal/feed"
	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage"
)

// parseViewQuery reads view and anchor from the query string.
func parseViewQuery(w http.ResponseWriter, r *http.Request, svc *calendar.Service) (calendar.View, time.Time, bool) {
	q := r.URL.Query()
	view, err := calendar.ParseView(q.Get("view"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return "", time.Time{}, false
	}
	anchor, err := calendar.ParseAnchor(q.Get("anchor"), svc.Location(), svc.Now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return "", time.Time{}, false
	}
	return view, anchor, true
}

// CalendarResponse is a rendered view.
type CalendarResponse struct {
	calendar.Result
	Title string `json:"title"`
}

// GetCalendar renders one view for the owner.
func GetCalendar(svc *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		view, anchor, ok := parseViewQuery(w, r, svc)
		if !ok {
			return
		}
		res, err := svc.Render(r.Context(), ownerID, view, anchor, r.URL.Query().Get("course_id"))
		if err != nil {
			appLog.Error("calendar render failed", err, "view", string(view))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}
		writeJSON(w, http.StatusOK, CalendarResponse{Result: res, Title: res.Projection.Title})
	}
}

// RangeResponse is the fetch window of a view.
type RangeResponse struct {
	View   calendar.View  `json:"view"`
	Anchor string         `json:"anchor"`
	Range  calendar.Range `json:"range"`
}

// GetCalendarRange resolves the fetch window of a view without loading data.
func GetCalendarRange(svc *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, anchor, ok := parseViewQuery(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, RangeResponse{
			View:   view,
			Anchor: anchor.Format(calendar.AnchorLayout),
			Range:  calendar.ResolveRange(view, anchor),
		})
	}
}

// NavigateRequest is one navigation transition from a given state.
type NavigateRequest struct {
	View       string          `json:"view"`
	Anchor     string          `json:"anchor"`
	Action     calendar.Action `json:"action"`
	TargetView string          `json:"target_view,omitempty"`
}

// NavigateResponse is the state after a transition.
type NavigateResponse struct {
	View   calendar.View  `json:"view"`
	Anchor string         `json:"anchor"`
	Range  calendar.Range `json:"range"`
	Title  string         `json:"title"`
}

// Navigate applies previous, next, today or set_view to a view state.
func Navigate(svc *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NavigateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		view, err := calendar.ParseView(req.View)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}
		anchor, err := calendar.ParseAnchor(req.Anchor, svc.Location(), svc.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}
		var target calendar.View
		if req.Action == calendar.ActionSetView {
			if req.TargetView == "" {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "target_view is required for set_view")
				return
			}
			if target, err = calendar.ParseView(req.TargetView); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
				return
			}
		}

		next, err := calendar.Step(calendar.State{View: view, Anchor: anchor}, req.Action, target, svc.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, NavigateResponse{
			View:   next.View,
			Anchor: next.Anchor.Format(calendar.AnchorLayout),
			Range:  next.Range(),
			Title:  calendar.Title(next.View, next.Anchor),
		})
	}
}

// GetEventDetail returns the popover shape of a native or task-derived
// display event.
func GetEventDetail(svc *calendar.Service, events *storage.EventRepository, tasks *storage.TaskRepository, courses *storage.CourseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		var display calendar.DisplayEvent
		e, err := events.GetByID(ctx, ownerID, id)
		switch {
		case err == nil:
			display = calendar.FromEvent(*e)
		case errors.Is(err, storage.ErrNotFound):
			t, terr := tasks.GetByID(ctx, ownerID, id)
			if terr != nil {
				writeStoreError(w, terr, "event")
				return
			}
			var shown bool
			if display, shown = calendar.FromTask(*t); !shown {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Task has no due date")
				return
			}
		default:
			writeStoreError(w, err, "event")
			return
		}

		list, err := courses.List(ctx, ownerID)
		if err != nil {
			writeStoreError(w, err, "course")
			return
		}
		writeJSON(w, http.StatusOK, calendar.Describe(display, list, svc.Location()))
	}
}

// ExportCalendar serves the display events of a view's range as ICS.
func ExportCalendar(svc *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := owner(w, r)
		if !ok {
			return
		}
		view, anchor, ok := parseViewQuery(w, r, svc)
		if !ok {
			return
		}
		snap, err := svc.Load(r.Context(), ownerID, view, anchor, r.URL.Query().Get("course_id"))
		if err != nil {
			appLog.Error("calendar export failed", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		rng := calendar.ResolveRange(view, anchor)
		var inRange []calendar.DisplayEvent
		for _, ev := range calendar.Normalize(snap.Events, snap.Tasks) {
			if rng.Contains(ev.Start) {
				inRange = append(inRange, ev)
			}
		}

		body := feed.Export(calendar.Title(view, anchor), inRange, svc.Now())
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
		w.Write([]byte(body))
	}
}
