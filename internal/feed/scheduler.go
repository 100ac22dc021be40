package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// refreshSpec reloads feed schedules from the database.
const refreshSpec = "@every 5m"

// Scheduler runs periodic feed syncs.
type Scheduler struct {
	cron        *cron.Cron
	syncService *SyncService
	feedRepo    *storage.FeedRepository
	broadcaster *websocket.EventBroadcaster

	jobs   map[string]job
	jobsMu sync.RWMutex

	defaultInterval int
}

type job struct {
	entry   cron.EntryID
	minutes int
}

// NewScheduler creates a new feed sync scheduler. hub may be nil.
func NewScheduler(
	syncService *SyncService,
	feedRepo *storage.FeedRepository,
	hub *websocket.Hub,
	defaultIntervalMin int,
) *Scheduler {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = 15
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		syncService:     syncService,
		feedRepo:        feedRepo,
		broadcaster:     broadcaster,
		jobs:            make(map[string]job),
		defaultInterval: defaultIntervalMin,
	}
}

// Start schedules all enabled feeds and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	feeds, err := s.feedRepo.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, f := range feeds {
		s.ScheduleFeed(f)
	}

	// Catch feeds added or changed outside the API.
	if _, err := s.cron.AddFunc(refreshSpec, func() {
		s.refreshSchedules(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	appLog.Info("feed scheduler started", "feeds", len(feeds))
	return nil
}

// Stop waits for running syncs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	appLog.Info("feed scheduler stopped")
}

// ScheduleFeed adds or replaces a feed's job. Disabled feeds are removed.
func (s *Scheduler) ScheduleFeed(f models.Feed) {
	if !f.Enabled {
		s.UnscheduleFeed(f.ID)
		return
	}

	minutes := f.SyncIntervalMin
	if minutes < 1 {
		minutes = s.defaultInterval
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if existing, exists := s.jobs[f.ID]; exists {
		// Re-adding an unchanged job would restart its interval.
		if existing.minutes == minutes {
			return
		}
		s.cron.Remove(existing.entry)
		delete(s.jobs, f.ID)
	}

	ownerID, feedID := f.OwnerID, f.ID
	entryID, err := s.cron.AddFunc(minutesToCronSpec(minutes), func() {
		s.runScheduled(ownerID, feedID)
	})
	if err != nil {
		appLog.Error("failed to schedule feed", err, "feed_id", f.ID)
		return
	}

	s.jobs[f.ID] = job{entry: entryID, minutes: minutes}
	appLog.Debug("feed scheduled", "feed_id", f.ID, "interval_min", minutes)
}

// UnscheduleFeed removes a feed's job if present.
func (s *Scheduler) UnscheduleFeed(feedID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if j, exists := s.jobs[feedID]; exists {
		s.cron.Remove(j.entry)
		delete(s.jobs, feedID)
		appLog.Debug("feed unscheduled", "feed_id", feedID)
	}
}

// SyncNow syncs a feed immediately and broadcasts the outcome.
func (s *Scheduler) SyncNow(ctx context.Context, f models.Feed) (*models.FeedSyncResult, error) {
	result, err := s.syncService.SyncFeed(ctx, f)
	if err != nil {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastFeedSyncError(f, err)
		}
		return result, err
	}

	appLog.Info("feed sync completed", "feed_id", f.ID, "found", result.EventsFound,
		"updated", result.EventsUpdated, "removed", result.EventsRemoved)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastFeedSyncCompleted(*result, s.NextRun(f.ID))
	}
	return result, nil
}

// TriggerSync starts a sync in the background.
func (s *Scheduler) TriggerSync(f models.Feed) {
	go func() {
		if _, err := s.SyncNow(context.Background(), f); err != nil {
			appLog.Error("triggered feed sync failed", err, "feed_id", f.ID)
		}
	}()
}

// runScheduled reloads the feed so edits since scheduling take effect.
func (s *Scheduler) runScheduled(ownerID, feedID string) {
	ctx := context.Background()
	f, err := s.feedRepo.GetByID(ctx, ownerID, feedID)
	if errors.Is(err, storage.ErrNotFound) {
		s.UnscheduleFeed(feedID)
		return
	}
	if err != nil {
		appLog.Error("loading scheduled feed", err, "feed_id", feedID)
		return
	}
	if _, err := s.SyncNow(ctx, *f); err != nil {
		appLog.Error("scheduled feed sync failed", err, "feed_id", feedID)
	}
}

// refreshSchedules reloads feed schedules from the database.
func (s *Scheduler) refreshSchedules(ctx context.Context) {
	feeds, err := s.feedRepo.ListEnabled(ctx)
	if err != nil {
		appLog.Error("failed to refresh feed schedules", err)
		return
	}

	current := make(map[string]bool, len(feeds))
	for _, f := range feeds {
		current[f.ID] = true
		s.ScheduleFeed(f)
	}

	s.jobsMu.Lock()
	for id, j := range s.jobs {
		if !current[id] {
			s.cron.Remove(j.entry)
			delete(s.jobs, id)
		}
	}
	s.jobsMu.Unlock()
}

// minutesToCronSpec converts minutes to a cron spec.
func minutesToCronSpec(minutes int) string {
	if minutes <= 0 {
		minutes = 15
	}
	return "@every " + (time.Duration(minutes) * time.Minute).String()
}

// ScheduledFeeds returns the IDs of feeds with a job.
func (s *Scheduler) ScheduledFeeds() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}

// NextRun returns the next scheduled sync of a feed, if any.
func (s *Scheduler) NextRun(feedID string) *time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	if j, exists := s.jobs[feedID]; exists {
		entry := s.cron.Entry(j.entry)
		if !entry.Next.IsZero() {
			return &entry.Next
		}
	}
	return nil
}
