package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/Tbsheff/notion-clone/internal/calendar"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

func TestExportRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	events := []calendar.DisplayEvent{
		{ID: "e1", Title: "Seminar, room change", Location: "Hall B", Start: start, End: start.Add(time.Hour)},
		{ID: "e2", Title: "Break", AllDay: true, Start: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "t1", Title: "Essay", IsTask: true, Status: models.StatusCompleted, Start: start, End: start.Add(30 * time.Minute)},
	}

	out := Export("Planner", events, start)
	if !strings.Contains(out, "X-WR-CALNAME:Planner") || !strings.Contains(out, productID) {
		t.Errorf("calendar header missing:\n%s", out)
	}

	parsed, err := NewParser().Parse(models.Feed{ID: "x", OwnerID: "alice"}, []byte(out))
	if err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	got := map[string]models.CalendarEvent{}
	for _, e := range parsed {
		got[*e.SourceID] = e
	}
	if len(got) != 3 {
		t.Fatalf("round trip kept %d events: %v", len(got), got)
	}
	if e := got["x/event-e1"]; e.Title != "Seminar, room change" || !e.StartTime.Equal(start) || e.Location == nil {
		t.Errorf("e1 = %+v", e)
	}
	if e := got["x/event-e2"]; !e.AllDay || e.EndTime.Sub(e.StartTime) != 24*time.Hour {
		t.Errorf("e2 = %+v", e)
	}
	if e := got["x/task-t1"]; e.EndTime.Sub(e.StartTime) != 30*time.Minute {
		t.Errorf("t1 = %+v", e)
	}
}
