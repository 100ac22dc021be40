package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Registrar//Term Calendar//EN
BEGIN:VEVENT
UID:lecture-1
DTSTAMP:20240301T000000Z
DTSTART:20240305T140000Z
DTEND:20240305T153000Z
SUMMARY:Bio 101\, Lecture
DESCRIPTION:Bring notes\nand a pen
LOCATION:Hall A
END:VEVENT
BEGIN:VEVENT
UID:holiday-1
DTSTAMP:20240301T000000Z
DTSTART;VALUE=DATE:20240311
DTEND;VALUE=DATE:20240312
SUMMARY:Spring break
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
DTSTAMP:20240301T000000Z
DTSTART:20240306T090000Z
DTEND:20240306T100000Z
RRULE:FREQ=WEEKLY
SUMMARY:Lab
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
DTSTAMP:20240301T000000Z
RECURRENCE-ID:20240313T090000Z
DTSTART:20240313T110000Z
DTEND:20240313T120000Z
SUMMARY:Lab (moved)
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20240301T000000Z
DTSTART:20240307T090000Z
SUMMARY:No uid
END:VEVENT
BEGIN:VEVENT
UID:no-end
DTSTAMP:20240301T000000Z
DTSTART:20240308T090000Z
SUMMARY:Deadline
END:VEVENT
END:VCALENDAR
`

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParse(t *testing.T) {
	course := "c1"
	feed := models.Feed{ID: "f1", OwnerID: "alice", CourseID: &course}

	events, err := NewParser().Parse(feed, crlf(sampleICS))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(events), events)
	}

	byID := map[string]models.CalendarEvent{}
	for _, e := range events {
		if e.OwnerID != "alice" || e.Source != models.SourceICS || e.FeedID == nil || *e.FeedID != "f1" {
			t.Errorf("event not tagged with feed: %+v", e)
		}
		if e.CourseID == nil || *e.CourseID != "c1" {
			t.Errorf("course not inherited: %+v", e)
		}
		byID[*e.SourceID] = e
	}

	lecture, ok := byID["f1/lecture-1"]
	if !ok {
		t.Fatalf("lecture missing; have %v", byID)
	}
	if lecture.Title != "Bio 101, Lecture" {
		t.Errorf("Title = %q", lecture.Title)
	}
	if lecture.Description == nil || *lecture.Description != "Bring notes\nand a pen" {
		t.Errorf("Description = %v", lecture.Description)
	}
	if lecture.Location == nil || *lecture.Location != "Hall A" {
		t.Errorf("Location = %v", lecture.Location)
	}
	if want := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC); !lecture.StartTime.Equal(want) || lecture.EndTime.Sub(lecture.StartTime) != 90*time.Minute {
		t.Errorf("span = %s - %s", lecture.StartTime, lecture.EndTime)
	}

	holiday := byID["f1/holiday-1"]
	if !holiday.AllDay || holiday.StartTime.Format("2006-01-02") != "2024-03-11" {
		t.Errorf("holiday = %+v", holiday)
	}

	if lab := byID["f1/weekly-1"]; lab.Title != "Lab" {
		t.Errorf("recurring master = %q, want the master not the override", lab.Title)
	}

	deadline := byID["f1/no-end"]
	if !deadline.EndTime.Equal(deadline.StartTime) {
		t.Errorf("missing DTEND should collapse to start: %s - %s", deadline.StartTime, deadline.EndTime)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	p := NewParser()
	if _, err := p.Parse(models.Feed{ID: "f"}, nil); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write(crlf(sampleICS))
	}))
	defer srv.Close()

	p := NewParserWithClient(srv.Client())
	events, err := p.FetchAndParse(context.Background(), models.Feed{ID: "f1", URL: srv.URL + "/cal.ics"})
	if err != nil {
		t.Fatalf("FetchAndParse: %v", err)
	}
	if len(events) != 4 {
		t.Errorf("got %d events", len(events))
	}

	if _, err := p.Fetch(context.Background(), srv.URL+"/missing.ics"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Fetch 404 err = %v", err)
	}
}
