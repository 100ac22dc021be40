package calendar

import (
	"fmt"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// Alpha suffixes appended to a course color for chip backgrounds.
const (
	gridAlpha   = "33"
	agendaAlpha = "15"
)

// Tone selects chip styling.
type Tone string

const (
	ToneCourse  Tone = "course"
	ToneDefault Tone = "default"
)

// EmptyAgendaMessage is shown when the agenda has no sections.
const EmptyAgendaMessage = "No upcoming events"

// Chip is one rendered entry inside a cell or agenda section.
type Chip struct {
	EventID     string `json:"event_id"`
	Title       string `json:"title"`
	IsTask      bool   `json:"is_task"`
	Completed   bool   `json:"completed"`
	Tone        Tone   `json:"tone"`
	Color       string `json:"color,omitempty"`
	Background  string `json:"background,omitempty"`
	TimeLabel   string `json:"time_label,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// MonthCell is a day square of the month grid.
type MonthCell struct {
	Date          time.Time `json:"date"`
	Label         string    `json:"label"`
	InMonth       bool      `json:"in_month"`
	Today         bool      `json:"today"`
	Chips         []Chip    `json:"chips"`
	Overflow      int       `json:"overflow"`
	OverflowLabel string    `json:"overflow_label,omitempty"`
}

// MonthLayout is a seven-column grid of weeks.
type MonthLayout struct {
	Weekdays []string      `json:"weekdays"`
	Rows     [][]MonthCell `json:"rows"`
}

// DayColumn heads one content column of an hour grid.
type DayColumn struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Today bool      `json:"today"`
}

// HourRow is one hour across every column. Cells align with Columns.
type HourRow struct {
	Hour  int      `json:"hour"`
	Label string   `json:"label"`
	Cells [][]Chip `json:"cells"`
}

// GridLayout is a time gutter beside one or more day columns, 24 rows tall.
type GridLayout struct {
	Gutter  string      `json:"gutter"`
	Columns []DayColumn `json:"columns"`
	Rows    []HourRow   `json:"rows"`
}

// AgendaSection lists the entries of one day.
type AgendaSection struct {
	Date    time.Time `json:"date"`
	Heading string    `json:"heading"`
	Items   []Chip    `json:"items"`
}

// AgendaLayout is a flat list of date-headed sections.
type AgendaLayout struct {
	Sections []AgendaSection `json:"sections"`
	Empty    string          `json:"empty,omitempty"`
}

// Projection is the layout of a single view. Exactly one layout field is set.
type Projection struct {
	View   View          `json:"view"`
	Title  string        `json:"title"`
	Month  *MonthLayout  `json:"month,omitempty"`
	Week   *GridLayout   `json:"week,omitempty"`
	Day    *GridLayout   `json:"day,omitempty"`
	Agenda *AgendaLayout `json:"agenda,omitempty"`
}

// Detail carries what the event popover shows.
type Detail struct {
	EventID     string              `json:"event_id"`
	Title       string              `json:"title"`
	Kind        string              `json:"kind"`
	DateLabel   string              `json:"date_label"`
	TimeLabel   string              `json:"time_label"`
	Description string              `json:"description,omitempty"`
	Location    string              `json:"location,omitempty"`
	CourseID    string              `json:"course_id,omitempty"`
	CourseName  string              `json:"course_name,omitempty"`
	CourseColor string              `json:"course_color,omitempty"`
	Status      models.TaskStatus   `json:"status,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	Completed   bool                `json:"completed"`
}

// Title is the header text for a view at anchor.
func Title(view View, anchor time.Time) string {
	switch view {
	case ViewWeek:
		return "Week of " + anchor.Format("Jan 2, 2006")
	case ViewDay:
		return anchor.Format("Monday, January 2, 2006")
	default:
		return anchor.Format("January 2006")
	}
}

// Project lays out an index. now marks today's cells; a zero now marks none.
func Project(ix Index, courses []models.Course, now time.Time) Projection {
	p := Projection{View: ix.View, Title: Title(ix.View, ix.Anchor)}
	loc := ix.Anchor.Location()
	var today string
	if !now.IsZero() {
		today = dayKey(now.In(loc))
	}

	switch ix.View {
	case ViewWeek:
		p.Week = projectGrid(ix, courses, today, "Time", func(d time.Time) string { return d.Format("Mon 02") })
	case ViewDay:
		p.Day = projectGrid(ix, courses, today, "", func(d time.Time) string { return d.Format("Monday, January 2") })
	case ViewAgenda:
		p.Agenda = projectAgenda(ix, courses)
	default:
		p.Month = projectMonth(ix, courses, today)
	}
	return p
}

func projectMonth(ix Index, courses []models.Course, today string) *MonthLayout {
	layout := &MonthLayout{Weekdays: []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}}
	month := ix.Anchor.Month()
	for _, week := range ix.Weeks() {
		row := make([]MonthCell, len(week))
		for i, c := range week {
			mc := MonthCell{
				Date:     c.Date,
				Label:    fmt.Sprint(c.Date.Day()),
				InMonth:  c.Date.Month() == month,
				Today:    dayKey(c.Date) == today,
				Chips:    make([]Chip, 0, len(c.Events)),
				Overflow: c.Overflow,
			}
			for _, ev := range c.Events {
				mc.Chips = append(mc.Chips, newChip(ev, courses, gridAlpha))
			}
			if c.Overflow > 0 {
				mc.OverflowLabel = fmt.Sprintf("+%d more", c.Overflow)
			}
			row[i] = mc
		}
		layout.Rows = append(layout.Rows, row)
	}
	return layout
}

func projectGrid(ix Index, courses []models.Course, today, gutter string, header func(time.Time) string) *GridLayout {
	loc := ix.Anchor.Location()
	layout := &GridLayout{Gutter: gutter, Columns: make([]DayColumn, len(ix.Days)), Rows: make([]HourRow, 24)}
	for i, d := range ix.Days {
		layout.Columns[i] = DayColumn{Date: d, Label: header(d), Today: dayKey(d) == today}
	}
	for h := 0; h < 24; h++ {
		row := HourRow{Hour: h, Label: HourLabel(h), Cells: make([][]Chip, len(ix.Days))}
		for i := range ix.Days {
			cell := ix.Cells[i*24+h]
			chips := make([]Chip, 0, len(cell.Events))
			for _, ev := range cell.Events {
				chip := newChip(ev, courses, gridAlpha)
				if ix.View == ViewDay {
					chip.TimeLabel = TimeRangeLabel(ev, loc)
					chip.Description = ev.Description
				}
				chips = append(chips, chip)
			}
			row.Cells[i] = chips
		}
		layout.Rows[h] = row
	}
	return layout
}

func projectAgenda(ix Index, courses []models.Course) *AgendaLayout {
	loc := ix.Anchor.Location()
	layout := &AgendaLayout{Sections: make([]AgendaSection, 0, len(ix.Agenda))}
	for _, day := range ix.Agenda {
		sec := AgendaSection{
			Date:    day.Date,
			Heading: day.Date.Format("Monday, January 2, 2006"),
			Items:   make([]Chip, 0, len(day.Events)),
		}
		for _, ev := range day.Events {
			chip := newChip(ev, courses, agendaAlpha)
			chip.TimeLabel = TimeRangeLabel(ev, loc)
			chip.Description = ev.Description
			if c, ok := findCourse(courses, ev.CourseID); ok {
				chip.CourseName = c.Name
			}
			sec.Items = append(sec.Items, chip)
		}
		layout.Sections = append(layout.Sections, sec)
	}
	if len(layout.Sections) == 0 {
		layout.Empty = EmptyAgendaMessage
	}
	return layout
}

func newChip(ev DisplayEvent, courses []models.Course, alpha string) Chip {
	chip := Chip{
		EventID:   ev.ID,
		Title:     ev.Title,
		IsTask:    ev.IsTask,
		Completed: ev.Completed(),
		Tone:      ToneDefault,
	}
	if c, ok := findCourse(courses, ev.CourseID); ok && c.Color != "" {
		chip.Tone = ToneCourse
		chip.Color = c.Color
		chip.Background = c.Color + alpha
	}
	return chip
}

// findCourse scans courses for id. Course lists are small.
func findCourse(courses []models.Course, id string) (models.Course, bool) {
	if id == "" {
		return models.Course{}, false
	}
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// Describe builds the popover content for ev. An unknown course is left
// blank rather than reported.
func Describe(ev DisplayEvent, courses []models.Course, loc *time.Location) Detail {
	if loc == nil {
		loc = time.Local
	}
	d := Detail{
		EventID:     ev.ID,
		Title:       ev.Title,
		Kind:        "event",
		DateLabel:   ev.Start.In(loc).Format("Monday, January 2, 2006"),
		TimeLabel:   TimeRangeLabel(ev, loc),
		Description: ev.Description,
		Location:    ev.Location,
		CourseID:    ev.CourseID,
	}
	if ev.IsTask {
		d.Kind = "task"
		d.Status = ev.Status
		d.Priority = ev.Priority
		d.Completed = ev.Completed()
	}
	if c, ok := findCourse(courses, ev.CourseID); ok {
		d.CourseName = c.Name
		d.CourseColor = c.Color
	}
	return d
}

// HourLabel formats an hour of the day as "12 AM" through "11 PM".
func HourLabel(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM")
}

// TimeRangeLabel formats the span of ev in loc, or "All day".
func TimeRangeLabel(ev DisplayEvent, loc *time.Location) string {
	if ev.AllDay {
		return "All day"
	}
	return ev.Start.In(loc).Format("3:04 PM") + " - " + ev.End.In(loc).Format("3:04 PM")
}
