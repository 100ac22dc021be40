package calendar

import (
	"testing"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeTaskDuration(t *testing.T) {
	due := at(2024, 3, 10, 9, 0)
	tests := []struct {
		name      string
		estimated *int
		want      time.Duration
	}{
		{"estimate", ptr(90), 90 * time.Minute},
		{"no estimate", nil, 30 * time.Minute},
		{"zero estimate", ptr(0), 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := models.Task{ID: "t1", Title: "Essay", DueDate: &due, EstimatedTime: tt.estimated,
				Status: models.StatusTodo, Priority: models.PriorityHigh}
			got := Normalize(nil, []models.Task{task})
			if len(got) != 1 {
				t.Fatalf("got %d entries, want 1", len(got))
			}
			de := got[0]
			if !de.Start.Equal(due) || de.End.Sub(de.Start) != tt.want {
				t.Errorf("span = [%s, %s], want %s long from %s", de.Start, de.End, tt.want, due)
			}
			if !de.IsTask || de.AllDay {
				t.Errorf("IsTask = %v, AllDay = %v", de.IsTask, de.AllDay)
			}
			if de.Status != models.StatusTodo || de.Priority != models.PriorityHigh {
				t.Errorf("status/priority not carried: %q %q", de.Status, de.Priority)
			}
		})
	}
}

func TestNormalizeSkipsTasksWithoutDueDate(t *testing.T) {
	got := Normalize(nil, []models.Task{{ID: "t1", Title: "Someday"}})
	if len(got) != 0 {
		t.Fatalf("got %d entries, want 0", len(got))
	}
}

func TestNormalizeOrderAndNoWindow(t *testing.T) {
	farFuture := at(2031, 6, 1, 12, 0)
	events := []models.CalendarEvent{
		{ID: "e2", Title: "Lab", StartTime: at(2024, 3, 6, 9, 0), EndTime: at(2024, 3, 6, 10, 0)},
		{ID: "e1", Title: "Lecture", StartTime: at(2024, 3, 5, 9, 0), EndTime: at(2024, 3, 5, 10, 0), CourseID: ptr("c1")},
	}
	tasks := []models.Task{
		{ID: "t1", Title: "Later", DueDate: &farFuture},
		{ID: "t2", Title: "No date"},
		{ID: "t3", Title: "Soon", DueDate: ptr(at(2024, 3, 4, 8, 0))},
	}

	got := Normalize(events, tasks)
	var ids []string
	for _, de := range got {
		ids = append(ids, de.ID)
	}
	want := []string{"e2", "e1", "t1", "t3"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if got[1].CourseID != "c1" || got[0].IsTask {
		t.Errorf("native event fields not carried: %+v", got[1])
	}
}

func TestNormalizeClampsInvertedEvent(t *testing.T) {
	start := at(2024, 3, 5, 10, 0)
	got := Normalize([]models.CalendarEvent{{ID: "e1", StartTime: start, EndTime: start.Add(-time.Hour)}}, nil)
	if !got[0].End.Equal(start) {
		t.Errorf("End = %s, want clamp to %s", got[0].End, start)
	}
}
