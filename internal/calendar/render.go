package calendar

import (
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// Snapshot is one read of the three source collections.
type Snapshot struct {
	Events  []models.CalendarEvent
	Tasks   []models.Task
	Courses []models.Course
}

// Options control a render.
type Options struct {
	Index IndexOptions
	// Now marks today in the layout. Zero marks nothing.
	Now time.Time
}

// Result is everything a client needs to draw one view.
type Result struct {
	State      State      `json:"state"`
	Range      Range      `json:"range"`
	Index      Index      `json:"-"`
	Projection Projection `json:"projection"`
}

// Render recomputes a view from scratch. It is deterministic in its
// arguments and keeps no state between calls.
func Render(view View, anchor time.Time, snap Snapshot, opts Options) Result {
	events := Normalize(snap.Events, snap.Tasks)
	ix := IndexForView(view, anchor, events, opts.Index)
	return Result{
		State:      State{View: ix.View, Anchor: anchor},
		Range:      ResolveRange(ix.View, anchor),
		Index:      ix,
		Projection: Project(ix, snap.Courses, opts.Now),
	}
}
