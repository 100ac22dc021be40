package calendar

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func ev(id string, start, end time.Time) DisplayEvent {
	return DisplayEvent{ID: id, Title: id, Start: start, End: end}
}

func eventIDs(events []DisplayEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func TestIndexMonthGridPadding(t *testing.T) {
	tests := []struct {
		anchor      time.Time
		first, last time.Time
		rows        int
	}{
		{at(2024, 2, 15, 0, 0), at(2024, 1, 28, 0, 0), at(2024, 3, 2, 0, 0), 5},
		{at(2025, 3, 1, 0, 0), at(2025, 2, 23, 0, 0), at(2025, 4, 5, 0, 0), 6},
		{at(2026, 2, 10, 0, 0), at(2026, 2, 1, 0, 0), at(2026, 2, 28, 0, 0), 4},
	}
	for _, tt := range tests {
		ix := IndexForView(ViewMonth, tt.anchor, nil, IndexOptions{})
		if got := ix.Days[0]; !got.Equal(tt.first) {
			t.Errorf("%s: first day %s, want %s", tt.anchor, got, tt.first)
		}
		if got := ix.Days[len(ix.Days)-1]; !got.Equal(tt.last) {
			t.Errorf("%s: last day %s, want %s", tt.anchor, got, tt.last)
		}
		if got := len(ix.Weeks()); got != tt.rows {
			t.Errorf("%s: %d rows, want %d", tt.anchor, got, tt.rows)
		}
		if len(ix.Cells) != len(ix.Days) {
			t.Errorf("%s: %d cells for %d days", tt.anchor, len(ix.Cells), len(ix.Days))
		}
	}
}

func TestIndexMonthCapacityAndOverflow(t *testing.T) {
	day := at(2024, 3, 12, 0, 0)
	var events []DisplayEvent
	for i := 5; i > 0; i-- {
		start := day.Add(time.Duration(i) * time.Hour)
		events = append(events, ev(fmt.Sprintf("e%d", i), start, start.Add(time.Hour)))
	}

	ix := IndexForView(ViewMonth, day, events, IndexOptions{})
	cell, ok := ix.Cell(day, WholeDay)
	if !ok {
		t.Fatal("cell not found")
	}
	if got := eventIDs(cell.Events); !reflect.DeepEqual(got, []string{"e5", "e4", "e3"}) {
		t.Errorf("insertion order cell = %v", got)
	}
	if cell.Overflow != 2 {
		t.Errorf("Overflow = %d, want 2", cell.Overflow)
	}

	ix = IndexForView(ViewMonth, day, events, IndexOptions{Chronological: true, MonthCapacity: 4})
	cell, _ = ix.Cell(day, WholeDay)
	if got := eventIDs(cell.Events); !reflect.DeepEqual(got, []string{"e1", "e2", "e3", "e4"}) {
		t.Errorf("chronological cell = %v", got)
	}
	if cell.Overflow != 1 {
		t.Errorf("Overflow = %d, want 1", cell.Overflow)
	}
	if events[0].ID != "e5" {
		t.Error("input slice was reordered")
	}
}

func TestIndexMonthNeverExceedsCapacity(t *testing.T) {
	day := at(2024, 3, 12, 8, 0)
	for n := 0; n <= 7; n++ {
		events := make([]DisplayEvent, n)
		for i := range events {
			events[i] = ev(fmt.Sprint(i), day, day)
		}
		cell, _ := IndexForView(ViewMonth, day, events, IndexOptions{}).Cell(day, WholeDay)
		wantShown, wantOverflow := n, 0
		if n > 3 {
			wantShown, wantOverflow = 3, n-3
		}
		if len(cell.Events) != wantShown || cell.Overflow != wantOverflow {
			t.Errorf("n=%d: shown %d overflow %d", n, len(cell.Events), cell.Overflow)
		}
	}
}

func TestIndexMonthStartDayOnly(t *testing.T) {
	events := []DisplayEvent{
		ev("trip", at(2024, 2, 27, 9, 0), at(2024, 3, 1, 17, 0)),
		ev("leading", at(2024, 1, 30, 9, 0), at(2024, 1, 30, 10, 0)),
		ev("outside", at(2024, 4, 30, 9, 0), at(2024, 4, 30, 10, 0)),
	}
	ix := IndexForView(ViewMonth, at(2024, 2, 1, 0, 0), events, IndexOptions{})

	placed := map[string][]string{}
	for _, c := range ix.Cells {
		for _, e := range c.Events {
			placed[e.ID] = append(placed[e.ID], dayKey(c.Date))
		}
	}
	want := map[string][]string{
		"trip":    {"2024-02-27"},
		"leading": {"2024-01-30"},
	}
	if !reflect.DeepEqual(placed, want) {
		t.Errorf("placements = %v, want %v", placed, want)
	}
}

func TestIndexHoursMidnightCrossing(t *testing.T) {
	events := []DisplayEvent{ev("late", at(2024, 3, 5, 23, 0), at(2024, 3, 6, 1, 0))}
	for _, view := range []View{ViewWeek, ViewDay} {
		ix := IndexForView(view, at(2024, 3, 5, 0, 0), events, IndexOptions{})
		var hits []string
		for _, c := range ix.Cells {
			if len(c.Events) > 0 {
				hits = append(hits, fmt.Sprintf("%s@%d", dayKey(c.Date), c.Hour))
			}
		}
		if !reflect.DeepEqual(hits, []string{"2024-03-05@23"}) {
			t.Errorf("%s: hits = %v", view, hits)
		}
	}
}

func TestIndexHoursMembership(t *testing.T) {
	day := at(2024, 3, 5, 0, 0)
	events := []DisplayEvent{
		ev("lecture", at(2024, 3, 5, 10, 0), at(2024, 3, 5, 12, 0)),
		ev("quiz", at(2024, 3, 5, 10, 15), at(2024, 3, 5, 10, 45)),
		ev("task", at(2024, 3, 5, 11, 30), at(2024, 3, 5, 12, 0)),
		ev("other-week", at(2024, 3, 12, 10, 0), at(2024, 3, 12, 11, 0)),
	}
	ix := IndexForView(ViewWeek, day, events, IndexOptions{})
	if len(ix.Cells) != 7*24 {
		t.Fatalf("%d cells, want %d", len(ix.Cells), 7*24)
	}

	tests := []struct {
		hour int
		want []string
	}{
		{9, nil},
		{10, []string{"lecture", "quiz"}},
		{11, []string{"lecture", "task"}},
		{12, nil},
	}
	for _, tt := range tests {
		cell, ok := ix.Cell(day, tt.hour)
		if !ok {
			t.Fatalf("no cell for hour %d", tt.hour)
		}
		if got := eventIDs(cell.Events); len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
			t.Errorf("hour %d = %v, want %v", tt.hour, got, tt.want)
		}
	}
	for _, c := range ix.Cells {
		for _, e := range c.Events {
			if e.ID == "other-week" {
				t.Errorf("event outside the week placed at %s %d", c.Date, c.Hour)
			}
		}
	}
}

func TestIndexHoursNoCap(t *testing.T) {
	day := at(2024, 3, 5, 0, 0)
	var events []DisplayEvent
	for i := 0; i < 6; i++ {
		events = append(events, ev(fmt.Sprint(i), day.Add(9*time.Hour), day.Add(10*time.Hour)))
	}
	cell, _ := IndexForView(ViewDay, day, events, IndexOptions{}).Cell(day, 9)
	if len(cell.Events) != 6 || cell.Overflow != 0 {
		t.Errorf("hour cell holds %d (overflow %d), want 6", len(cell.Events), cell.Overflow)
	}
}

func TestIndexUsesAnchorLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on the 6th is 22:00 on the 5th in loc.
	events := []DisplayEvent{ev("evening", at(2024, 3, 6, 3, 0), at(2024, 3, 6, 4, 0))}
	anchor := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	cell, _ := IndexForView(ViewDay, anchor, events, IndexOptions{}).Cell(anchor, 22)
	if len(cell.Events) != 1 {
		t.Errorf("event not placed at local 22:00")
	}
}

func TestIndexAgenda(t *testing.T) {
	anchor := at(2024, 3, 5, 15, 0)
	events := []DisplayEvent{
		ev("past", at(2024, 3, 1, 9, 0), at(2024, 3, 1, 10, 0)),
		ev("b", at(2024, 3, 10, 14, 0), at(2024, 3, 10, 15, 0)),
		ev("a", at(2024, 3, 10, 8, 0), at(2024, 3, 10, 9, 0)),
		ev("morning", at(2024, 3, 5, 8, 0), at(2024, 3, 5, 9, 0)),
	}
	ix := IndexForView(ViewAgenda, anchor, events, IndexOptions{})

	if len(ix.Agenda) != 2 {
		t.Fatalf("%d sections, want 2", len(ix.Agenda))
	}
	if d := dayKey(ix.Agenda[0].Date); d != "2024-03-05" {
		t.Errorf("first section %s", d)
	}
	if got := eventIDs(ix.Agenda[0].Events); !reflect.DeepEqual(got, []string{"morning"}) {
		t.Errorf("anchor day = %v", got)
	}
	if d := dayKey(ix.Agenda[1].Date); d != "2024-03-10" {
		t.Errorf("second section %s", d)
	}
	if got := eventIDs(ix.Agenda[1].Events); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("2024-03-10 = %v, want [a b]", got)
	}
	if !anchor.Equal(at(2024, 3, 5, 15, 0)) {
		t.Error("anchor changed")
	}
}

func TestIndexAgendaOnlyFuture(t *testing.T) {
	events := []DisplayEvent{
		ev("past", at(2024, 3, 1, 9, 0), at(2024, 3, 1, 10, 0)),
		ev("future", at(2024, 3, 10, 9, 0), at(2024, 3, 10, 10, 0)),
	}
	ix := IndexForView(ViewAgenda, at(2024, 3, 5, 0, 0), events, IndexOptions{})
	if len(ix.Agenda) != 1 || dayKey(ix.Agenda[0].Date) != "2024-03-10" {
		t.Errorf("agenda = %+v", ix.Agenda)
	}
}

func TestIndexIsIdempotent(t *testing.T) {
	anchor := at(2024, 3, 5, 0, 0)
	events := []DisplayEvent{
		ev("x", at(2024, 3, 5, 9, 0), at(2024, 3, 5, 11, 0)),
		ev("y", at(2024, 3, 5, 9, 0), at(2024, 3, 5, 9, 30)),
		ev("z", at(2024, 3, 7, 23, 0), at(2024, 3, 8, 2, 0)),
		ev("w", at(2024, 3, 5, 1, 0), at(2024, 3, 5, 2, 0)),
		ev("v", at(2024, 3, 5, 3, 0), at(2024, 3, 5, 4, 0)),
	}
	for _, view := range []View{ViewMonth, ViewWeek, ViewDay, ViewAgenda} {
		for _, opts := range []IndexOptions{{}, {Chronological: true}} {
			a := IndexForView(view, anchor, events, opts)
			b := IndexForView(view, anchor, events, opts)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("%s %+v: repeated indexing differs", view, opts)
			}
		}
	}
}

func TestIndexCellLookupMisses(t *testing.T) {
	ix := IndexForView(ViewDay, at(2024, 3, 5, 0, 0), nil, IndexOptions{})
	if _, ok := ix.Cell(at(2024, 3, 6, 0, 0), 3); ok {
		t.Error("found cell for a day outside the index")
	}
	if _, ok := ix.Cell(at(2024, 3, 5, 0, 0), 24); ok {
		t.Error("found cell for hour 24")
	}
	if _, ok := ix.Cell(at(2024, 3, 5, 0, 0), WholeDay); ok {
		t.Error("found whole-day cell in an hour index")
	}
}
