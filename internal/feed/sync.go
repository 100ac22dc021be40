package feed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// maxParallelSyncs bounds concurrent downloads in SyncAllEnabled.
const maxParallelSyncs = 4

// SyncService imports feed events into the owner's calendar.
type SyncService struct {
	feeds  *storage.FeedRepository
	events *storage.EventRepository
	parser *Parser
}

// NewSyncService creates a new feed sync service.
func NewSyncService(feeds *storage.FeedRepository, events *storage.EventRepository, parser *Parser) *SyncService {
	if parser == nil {
		parser = NewParser()
	}
	return &SyncService{
		feeds:  feeds,
		events: events,
		parser: parser,
	}
}

// SyncFeed downloads a feed and makes its imported events match the feed.
// The feed's sync status is updated either way.
func (s *SyncService) SyncFeed(ctx context.Context, feed models.Feed) (*models.FeedSyncResult, error) {
	result := &models.FeedSyncResult{
		FeedID:   feed.ID,
		FeedName: feed.Name,
		OwnerID:  feed.OwnerID,
		SyncedAt: time.Now().UTC(),
	}

	if err := s.feeds.UpdateSyncStatus(ctx, feed.ID, models.SyncStatusSyncing, nil); err != nil {
		appLog.Error("failed to update sync status", err, "feed_id", feed.ID)
	}

	events, err := s.parser.FetchAndParse(ctx, feed)
	if err != nil {
		return result, s.fail(ctx, feed, err)
	}
	result.EventsFound = len(events)

	updated, removed, err := s.events.ReplaceFeedEvents(ctx, feed, events)
	if err != nil {
		return result, s.fail(ctx, feed, err)
	}
	result.EventsUpdated = updated
	result.EventsRemoved = removed

	if err := s.feeds.UpdateSyncStatus(ctx, feed.ID, models.SyncStatusSuccess, nil); err != nil {
		appLog.Error("failed to update sync status", err, "feed_id", feed.ID)
	}
	return result, nil
}

func (s *SyncService) fail(ctx context.Context, feed models.Feed, err error) error {
	msg := err.Error()
	if uerr := s.feeds.UpdateSyncStatus(ctx, feed.ID, models.SyncStatusError, &msg); uerr != nil {
		appLog.Error("failed to update sync status", uerr, "feed_id", feed.ID)
	}
	return fmt.Errorf("syncing feed %s: %w", feed.ID, err)
}

// SyncAllEnabled syncs every enabled feed of every owner. A failing feed
// does not stop the others; its result is still returned.
func (s *SyncService) SyncAllEnabled(ctx context.Context) ([]models.FeedSyncResult, error) {
	feeds, err := s.feeds.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled feeds: %w", err)
	}

	results := make([]models.FeedSyncResult, len(feeds))
	var g errgroup.Group
	g.SetLimit(maxParallelSyncs)
	for i, feed := range feeds {
		i, feed := i, feed
		g.Go(func() error {
			result, err := s.SyncFeed(ctx, feed)
			if err != nil {
				appLog.Error("feed sync failed", err, "feed_id", feed.ID)
			}
			results[i] = *result
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}
