package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

type fixture struct {
	feeds  *storage.FeedRepository
	events *storage.EventRepository
	sync   *SyncService
	srv    *httptest.Server

	mu     sync.Mutex
	body   string
	status int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "feed.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	f := &fixture{
		feeds:  storage.NewFeedRepository(db),
		events: storage.NewEventRepository(db),
		body:   sampleICS,
		status: http.StatusOK,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		w.Write(crlf(f.body))
	}))
	t.Cleanup(f.srv.Close)
	f.sync = NewSyncService(f.feeds, f.events, NewParserWithClient(f.srv.Client()))
	return f
}

func (f *fixture) serve(body string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body, f.status = body, status
}

func (f *fixture) createFeed(t *testing.T, owner, name string) models.Feed {
	t.Helper()
	feed := models.Feed{OwnerID: owner, Name: name, URL: f.srv.URL + "/" + name + ".ics", SyncIntervalMin: 30, Enabled: true}
	if err := f.feeds.Create(context.Background(), &feed); err != nil {
		t.Fatalf("creating feed: %v", err)
	}
	return feed
}

func TestSyncFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	feed := f.createFeed(t, "alice", "registrar")

	result, err := f.sync.SyncFeed(ctx, feed)
	if err != nil {
		t.Fatalf("SyncFeed: %v", err)
	}
	if result.EventsFound != 4 || result.EventsUpdated != 4 || result.EventsRemoved != 0 || result.OwnerID != "alice" {
		t.Errorf("first result = %+v", result)
	}

	// Drop everything but the lecture.
	end := strings.Index(sampleICS, "BEGIN:VEVENT\nUID:holiday-1")
	f.serve(sampleICS[:end]+"END:VCALENDAR\n", http.StatusOK)
	result, err = f.sync.SyncFeed(ctx, feed)
	if err != nil {
		t.Fatalf("second SyncFeed: %v", err)
	}
	if result.EventsFound != 1 || result.EventsRemoved != 3 {
		t.Errorf("second result = %+v", result)
	}

	events, _ := f.events.ListAll(ctx, "alice", "")
	if len(events) != 1 || events[0].Title != "Bio 101, Lecture" {
		t.Errorf("events after resync = %+v", events)
	}
	got, _ := f.feeds.GetByID(ctx, "alice", feed.ID)
	if got.SyncStatus != models.SyncStatusSuccess || got.LastSyncAt == nil {
		t.Errorf("feed after sync = %+v", got)
	}
}

func TestSyncFeedFailureKeepsEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	feed := f.createFeed(t, "alice", "registrar")
	if _, err := f.sync.SyncFeed(ctx, feed); err != nil {
		t.Fatalf("SyncFeed: %v", err)
	}

	f.serve("", http.StatusBadGateway)
	if _, err := f.sync.SyncFeed(ctx, feed); err == nil {
		t.Fatal("expected error from failing feed")
	}

	got, _ := f.feeds.GetByID(ctx, "alice", feed.ID)
	if got.SyncStatus != models.SyncStatusError || got.SyncError == nil || !strings.Contains(*got.SyncError, "502") {
		t.Errorf("feed after failure = %+v", got)
	}
	if events, _ := f.events.ListAll(ctx, "alice", ""); len(events) != 4 {
		t.Errorf("%d events left after failed sync, want 4", len(events))
	}
}

func TestSyncAllEnabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createFeed(t, "alice", "a")
	f.createFeed(t, "bob", "b")
	off := f.createFeed(t, "bob", "off")
	off.Enabled = false
	if err := f.feeds.Update(ctx, &off); err != nil {
		t.Fatal(err)
	}

	results, err := f.sync.SyncAllEnabled(ctx)
	if err != nil {
		t.Fatalf("SyncAllEnabled: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, owner := range []string{"alice", "bob"} {
		if events, _ := f.events.ListAll(ctx, owner, ""); len(events) != 4 {
			t.Errorf("%s has %d events", owner, len(events))
		}
	}
}

func TestSchedulerJobs(t *testing.T) {
	f := newFixture(t)
	s := NewScheduler(f.sync, f.feeds, nil, 0)
	feed := f.createFeed(t, "alice", "registrar")

	s.ScheduleFeed(feed)
	first := s.jobs[feed.ID].entry
	s.ScheduleFeed(feed)
	if s.jobs[feed.ID].entry != first {
		t.Error("unchanged feed was rescheduled")
	}

	feed.SyncIntervalMin = 60
	s.ScheduleFeed(feed)
	if s.jobs[feed.ID].entry == first || s.jobs[feed.ID].minutes != 60 {
		t.Errorf("interval change not applied: %+v", s.jobs[feed.ID])
	}
	if ids := s.ScheduledFeeds(); len(ids) != 1 || ids[0] != feed.ID {
		t.Errorf("ScheduledFeeds = %v", ids)
	}

	feed.Enabled = false
	s.ScheduleFeed(feed)
	if len(s.ScheduledFeeds()) != 0 {
		t.Error("disabled feed still scheduled")
	}
}

func TestSchedulerSyncNowBroadcasts(t *testing.T) {
	f := newFixture(t)
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	client := websocket.NewClient(hub, "alice")
	hub.Register(client)

	s := NewScheduler(f.sync, f.feeds, hub, 15)
	feed := f.createFeed(t, "alice", "registrar")
	if _, err := s.SyncNow(context.Background(), feed); err != nil {
		t.Fatalf("SyncNow: %v", err)
	}

	select {
	case data := <-client.Send():
		if !strings.Contains(string(data), string(websocket.TypeFeedSyncCompleted)) {
			t.Errorf("message = %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no sync message broadcast")
	}
}

func TestMinutesToCronSpec(t *testing.T) {
	for in, want := range map[int]string{0: "@every 15m0s", 5: "@every 5m0s", 90: "@every 1h30m0s"} {
		if got := minutesToCronSpec(in); got != want {
			t.Errorf("minutesToCronSpec(%d) = %q, want %q", in, got, want)
		}
	}
}
