package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send():
		if !ok {
			t.Fatal("client channel closed")
		}
		var msg struct {
			Type    MessageType     `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		return Message{Type: msg.Type, Payload: msg.Payload}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestBroadcastToRoutesByOwner(t *testing.T) {
	hub := runHub(t)
	alice := NewClient(hub, "alice")
	bob := NewClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	b := NewEventBroadcaster(hub)
	b.BroadcastCalendarChanged("alice", EntityTask, ActionUpdated, "t1")
	b.BroadcastNotification("bob", "info", "Hi", "bob only")

	msg := receive(t, alice)
	if msg.Type != TypeCalendarChanged {
		t.Fatalf("alice got %q", msg.Type)
	}
	var p CalendarChangedPayload
	if err := json.Unmarshal(msg.Payload.(json.RawMessage), &p); err != nil {
		t.Fatal(err)
	}
	if p.Entity != EntityTask || p.Action != ActionUpdated || p.ID != "t1" {
		t.Errorf("payload = %+v", p)
	}

	if msg := receive(t, bob); msg.Type != TypeNotification {
		t.Errorf("bob got %q, want notification only", msg.Type)
	}
	select {
	case data := <-alice.Send():
		t.Errorf("alice received bob's message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedSyncMessages(t *testing.T) {
	hub := runHub(t)
	c := NewClient(hub, "alice")
	hub.Register(c)
	b := NewEventBroadcaster(hub)

	next := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	b.BroadcastFeedSyncCompleted(models.FeedSyncResult{FeedID: "f1", FeedName: "Canvas", OwnerID: "alice", EventsFound: 3}, &next)
	b.BroadcastFeedSyncError(models.Feed{ID: "f1", Name: "Canvas", OwnerID: "alice"}, errors.New("timeout"))

	msg := receive(t, c)
	var done FeedSyncPayload
	json.Unmarshal(msg.Payload.(json.RawMessage), &done)
	if msg.Type != TypeFeedSyncCompleted || done.EventsFound != 3 || done.NextSyncAt == nil || !done.NextSyncAt.Equal(next) {
		t.Errorf("completed message = %q %+v", msg.Type, done)
	}

	msg = receive(t, c)
	var failed FeedSyncErrorPayload
	json.Unmarshal(msg.Payload.(json.RawMessage), &failed)
	if msg.Type != TypeFeedSyncError || failed.Message != "timeout" {
		t.Errorf("error message = %q %+v", msg.Type, failed)
	}
}

func TestUnregisterClosesClient(t *testing.T) {
	hub := runHub(t)
	c := NewClient(hub, "alice")
	hub.Register(c)
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Unregister(c)
	if _, ok := <-c.Send(); ok {
		t.Error("send channel still open")
	}
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d after unregister", n)
	}
}

func TestNilBroadcasterIsNoop(t *testing.T) {
	var b *EventBroadcaster
	b.BroadcastCalendarChanged("alice", EntityEvent, ActionDeleted, "e1")
}

func TestNotificationWithoutOwnerReachesEveryone(t *testing.T) {
	hub := runHub(t)
	alice := NewClient(hub, "alice")
	bob := NewClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 2", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	NewEventBroadcaster(hub).BroadcastNotification("", "warning", "Server restarting", "back soon")

	for _, c := range []*Client{alice, bob} {
		msg := receive(t, c)
		var p NotificationPayload
		json.Unmarshal(msg.Payload.(json.RawMessage), &p)
		if msg.Type != TypeNotification || p.Title != "Server restarting" {
			t.Errorf("%s got %q %+v", c.OwnerID(), msg.Type, p)
		}
	}
}

func TestReplyAfterSlowConsumerDropped(t *testing.T) {
	hub := runHub(t)
	c := NewClient(hub, "u1")
	hub.Register(c)
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	for i := 0; i < sendBuffer; i++ {
		if !c.Reply([]byte("fill")) {
			t.Fatalf("Reply %d failed before buffer was full", i)
		}
	}
	hub.BroadcastTo("u1", []byte("overflow"))
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	for range c.Send() {
	}

	if c.Reply([]byte(`{"type":"pong"}`)) {
		t.Error("Reply succeeded on a dropped client")
	}
}

func TestRegisterAndUnregisterAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(hub, "alice")
	finished := make(chan struct{})
	go func() {
		hub.Register(c)
		hub.Unregister(c)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Register/Unregister blocked after Run returned")
	}
	if _, ok := <-c.Send(); ok {
		t.Error("client registered after stop should be closed")
	}
	if c.Reply([]byte("late")) {
		t.Error("Reply succeeded on a closed client")
	}
}
