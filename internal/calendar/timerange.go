package calendar

import "time"

// Range is a fetch window; both bounds are inclusive.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ResolveRange computes the window of native events to fetch for a view.
//
// The agenda window spans the anchor's month and the following one so the
// list has forward content; the grid views cover exactly what they show.
func ResolveRange(view View, anchor time.Time) Range {
	switch view {
	case ViewWeek:
		return Range{Start: startOfWeek(anchor), End: endOfWeek(anchor)}
	case ViewDay:
		return Range{Start: startOfDay(anchor), End: endOfDay(anchor)}
	case ViewAgenda:
		return Range{Start: startOfMonth(anchor), End: endOfMonth(addMonths(startOfMonth(anchor), 1))}
	default:
		return Range{Start: startOfMonth(anchor), End: endOfMonth(anchor)}
	}
}
