package dashboard

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubClientCountStartsAtZero(t *testing.T) {
	h := NewHub()
	if h.ClientCount() != 0 {
		t.Errorf("got %d, want 0", h.ClientCount())
	}
}

func TestHubBroadcastDoesNotBlockWithoutRunner(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Broadcast(LocationEvent{Phone: "13800001111", Latitude: 1, Longitude: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no Run loop draining the channel")
	}
}

func TestHubDeliversBroadcastToWebsocketClient(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never observed the websocket client register")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ev := LocationEvent{Phone: "13800002222", Latitude: 31.0, Longitude: 121.0, Speed: 40}
	h.Broadcast(ev)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var got LocationEvent
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Phone != ev.Phone || got.Latitude != ev.Latitude || got.Longitude != ev.Longitude {
		t.Errorf("got %+v, want %+v", got, ev)
	}
}

func TestHubUnregistersClientOnDisconnect(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never observed the websocket client register")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never observed the websocket client disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
