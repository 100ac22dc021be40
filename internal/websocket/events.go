package websocket

import (
	"time"

	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// EventBroadcaster encodes and routes server events through a Hub.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastCalendarChanged tells the owner's clients that an entity shown
// on the calendar changed.
func (b *EventBroadcaster) BroadcastCalendarChanged(ownerID, entity, action, id string) {
	b.send(ownerID, NewMessage(TypeCalendarChanged, CalendarChangedPayload{
		Entity: entity,
		Action: action,
		ID:     id,
	}))
}

// BroadcastFeedSyncCompleted reports a successful feed sync.
func (b *EventBroadcaster) BroadcastFeedSyncCompleted(result models.FeedSyncResult, nextSyncAt *time.Time) {
	b.send(result.OwnerID, NewMessage(TypeFeedSyncCompleted, FeedSyncPayload{
		FeedID:        result.FeedID,
		FeedName:      result.FeedName,
		Status:        models.SyncStatusSuccess,
		EventsFound:   result.EventsFound,
		EventsUpdated: result.EventsUpdated,
		EventsRemoved: result.EventsRemoved,
		NextSyncAt:    nextSyncAt,
	}))
}

// BroadcastFeedSyncError reports a failed feed sync.
func (b *EventBroadcaster) BroadcastFeedSyncError(feed models.Feed, err error) {
	b.send(feed.OwnerID, NewMessage(TypeFeedSyncError, FeedSyncErrorPayload{
		FeedID:   feed.ID,
		FeedName: feed.Name,
		Error:    "sync_error",
		Message:  err.Error(),
	}))
}

// BroadcastNotification sends a notification to the owner's clients, or to
// every client when ownerID is empty.
func (b *EventBroadcaster) BroadcastNotification(ownerID, level, title, message string) {
	b.send(ownerID, NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) send(ownerID string, msg Message) {
	if b == nil || b.hub == nil {
		return
	}
	data, err := msg.JSON()
	if err != nil {
		appLog.Error("encoding websocket message", err, "type", string(msg.Type))
		return
	}
	if ownerID == "" {
		b.hub.Broadcast(data)
		return
	}
	b.hub.BroadcastTo(ownerID, data)
}
