package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *Hub, topic string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, topic)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial test server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "ab12")

	// Registration races the publish; retry briefly
	deadline := time.Now().Add(time.Second)
	go func() {
		for time.Now().Before(deadline) {
			hub.Publish("ab12", EventTurnPlayed, map[string]int{"position": 7})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	conn.SetReadDeadline(deadline)
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	// Multiple messages may share a frame, newline separated
	first := strings.SplitN(string(data), "\n", 2)[0]
	var msg Message
	if err := json.Unmarshal([]byte(first), &msg); err != nil {
		t.Fatalf("Failed to unmarshal broadcast: %v", err)
	}
	if msg.Topic != "ab12" || msg.Event != EventTurnPlayed {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "ab12")

	// Publish only on an unrelated topic
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			hub.Publish("cd34", EventGameWon, nil)
			time.Sleep(5 * time.Millisecond)
		}
	}()
	<-done

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, data, err := conn.ReadMessage(); err == nil {
		t.Errorf("Expected no message on an unrelated topic, got %s", data)
	}
}
