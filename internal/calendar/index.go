package calendar

import (
	"sort"
	"time"
)

// DefaultMonthCapacity is the number of entries shown in a month cell
// before the rest collapse into an overflow count.
const DefaultMonthCapacity = 3

// WholeDay is the Hour of a cell that covers an entire day.
const WholeDay = -1

// IndexOptions tunes month-cell shaping.
type IndexOptions struct {
	// MonthCapacity caps entries per month cell. Zero or less selects
	// DefaultMonthCapacity.
	MonthCapacity int
	// Chronological orders month cells by start time before truncating.
	// Otherwise cells keep the merged collection's order.
	Chronological bool
}

func (o IndexOptions) capacity() int {
	if o.MonthCapacity <= 0 {
		return DefaultMonthCapacity
	}
	return o.MonthCapacity
}

// Cell is a day or (day, hour) region of a grid.
type Cell struct {
	Date     time.Time      `json:"date"`
	Hour     int            `json:"hour"`
	Events   []DisplayEvent `json:"events"`
	Overflow int            `json:"overflow"`
}

// AgendaDay is one date-headed section of the agenda.
type AgendaDay struct {
	Date   time.Time      `json:"date"`
	Events []DisplayEvent `json:"events"`
}

// Index is the cell-keyed partition of a collection for one view.
//
// Month indexes hold one WholeDay cell per day of the padded grid. Week and
// day indexes hold 24 hour cells per day, day-major. Agenda indexes hold
// sections only.
type Index struct {
	View   View        `json:"view"`
	Anchor time.Time   `json:"anchor"`
	Days   []time.Time `json:"days"`
	Cells  []Cell      `json:"cells,omitempty"`
	Agenda []AgendaDay `json:"agenda,omitempty"`
}

// Cell returns the cell for day and hour. Month cells are addressed with
// WholeDay.
func (ix Index) Cell(day time.Time, hour int) (Cell, bool) {
	key := dayKey(day.In(ix.Anchor.Location()))
	for i, d := range ix.Days {
		if dayKey(d) != key {
			continue
		}
		switch {
		case ix.View == ViewMonth && hour == WholeDay:
			return ix.Cells[i], true
		case (ix.View == ViewWeek || ix.View == ViewDay) && hour >= 0 && hour < 24:
			return ix.Cells[i*24+hour], true
		}
		return Cell{}, false
	}
	return Cell{}, false
}

// Weeks splits a month index into rows of seven cells.
func (ix Index) Weeks() [][]Cell {
	if ix.View != ViewMonth {
		return nil
	}
	rows := make([][]Cell, 0, len(ix.Cells)/7)
	for i := 0; i+7 <= len(ix.Cells); i += 7 {
		rows = append(rows, ix.Cells[i:i+7])
	}
	return rows
}

// IndexForView partitions events into the cells of view around anchor.
// Days and hours are taken from wall-clock time in anchor's location. The
// input slice is not modified.
func IndexForView(view View, anchor time.Time, events []DisplayEvent, opts IndexOptions) Index {
	ix := Index{View: view, Anchor: anchor}
	switch view {
	case ViewWeek:
		ix.Days = daySpan(startOfWeek(anchor), 7)
		ix.Cells = indexHours(ix.Days, events)
	case ViewDay:
		ix.Days = daySpan(startOfDay(anchor), 1)
		ix.Cells = indexHours(ix.Days, events)
	case ViewAgenda:
		ix.Agenda = indexAgenda(anchor, events)
		ix.Days = make([]time.Time, len(ix.Agenda))
		for i, d := range ix.Agenda {
			ix.Days[i] = d.Date
		}
	default:
		ix.View = ViewMonth
		first := startOfWeek(startOfMonth(anchor))
		last := startOfWeek(endOfMonth(anchor)).AddDate(0, 0, 6)
		ix.Days = daySpan(first, int(last.Sub(first).Hours()/24+0.5)+1)
		ix.Cells = indexMonth(ix.Days, events, opts)
	}
	return ix
}

func daySpan(first time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

func dayPositions(days []time.Time) map[string]int {
	pos := make(map[string]int, len(days))
	for i, d := range days {
		pos[dayKey(d)] = i
	}
	return pos
}

// indexMonth attributes each event to the day it starts on only.
func indexMonth(days []time.Time, events []DisplayEvent, opts IndexOptions) []Cell {
	loc := days[0].Location()
	pos := dayPositions(days)
	cells := make([]Cell, len(days))
	for i, d := range days {
		cells[i] = Cell{Date: d, Hour: WholeDay}
	}
	for _, ev := range events {
		if i, ok := pos[dayKey(ev.Start.In(loc))]; ok {
			cells[i].Events = append(cells[i].Events, ev)
		}
	}

	limit := opts.capacity()
	for i := range cells {
		c := &cells[i]
		if opts.Chronological {
			sortByStart(c.Events)
		}
		if n := len(c.Events); n > limit {
			c.Overflow = n - limit
			c.Events = c.Events[:limit:limit]
		}
	}
	return cells
}

// indexHours places each event in every hour cell of its start day that
// it occupies. See hourSpan.
func indexHours(days []time.Time, events []DisplayEvent) []Cell {
	loc := days[0].Location()
	pos := dayPositions(days)
	cells := make([]Cell, len(days)*24)
	for i, d := range days {
		for h := 0; h < 24; h++ {
			cells[i*24+h] = Cell{Date: d, Hour: h}
		}
	}
	for _, ev := range events {
		start, end := ev.Start.In(loc), ev.End.In(loc)
		i, ok := pos[dayKey(start)]
		if !ok {
			continue
		}
		from, to := hourSpan(start, end)
		for h := from; h < to; h++ {
			cells[i*24+h].Events = append(cells[i*24+h].Events, ev)
		}
	}
	return cells
}

// hourSpan returns the half-open range of wall-clock hours an event covers
// on its start day. An event ending on a later day runs to midnight. An
// event that starts and ends within the same hour still takes that hour.
func hourSpan(start, end time.Time) (from, to int) {
	from = start.Hour()
	if end.Before(start) {
		end = start
	}
	if !sameDay(start, end) {
		return from, 24
	}
	to = end.Hour()
	if to <= from {
		to = from + 1
	}
	return from, to
}

// indexAgenda groups events by start day, keeping days on or after the
// anchor's day, in ascending order with events sorted by start.
func indexAgenda(anchor time.Time, events []DisplayEvent) []AgendaDay {
	loc := anchor.Location()
	floor := startOfDay(anchor)
	byDay := make(map[string]int)
	var days []AgendaDay
	for _, ev := range events {
		day := startOfDay(ev.Start.In(loc))
		if day.Before(floor) {
			continue
		}
		key := dayKey(day)
		i, ok := byDay[key]
		if !ok {
			i = len(days)
			byDay[key] = i
			days = append(days, AgendaDay{Date: day})
		}
		days[i].Events = append(days[i].Events, ev)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	for i := range days {
		sortByStart(days[i].Events)
	}
	return days
}

func sortByStart(events []DisplayEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
}
