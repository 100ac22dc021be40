package handlers

import (
	"encoding/json"
	"testing"

	ws "github.com/Tbsheff/notion-clone/internal/websocket"
)

func replyTo(t *testing.T, in string) ws.Message {
	t.Helper()
	client := ws.NewClient(nil, "owner-1")
	handleClientMessage([]byte(in), client)

	select {
	case data := <-client.Send():
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("reply is not JSON: %v", err)
		}
		return msg
	default:
		t.Fatalf("no reply to %s", in)
		return ws.Message{}
	}
}

func TestHandleClientMessage(t *testing.T) {
	tests := []struct {
		in   string
		want ws.MessageType
	}{
		{`{"type":"ping"}`, ws.TypePong},
		{`{"type":"subscribe"}`, ws.TypeError},
		{`not json`, ws.TypeError},
	}
	for _, tt := range tests {
		if got := replyTo(t, tt.in).Type; got != tt.want {
			t.Errorf("%s: reply type = %q, want %q", tt.in, got, tt.want)
		}
	}
}
