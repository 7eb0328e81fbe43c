package websocket

import (
	"testing"
	"time"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func registeredCount(h *Hub, clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientID])
}

func waitForCount(t *testing.T, h *Hub, clientID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registeredCount(h, clientID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d registered connections for %s, got %d", want, clientID, registeredCount(h, clientID))
}

func TestHubDeliversToRegisteredClient(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	client := &Client{Hub: h, ClientID: "client-1", Send: make(chan []byte, 4)}
	h.register <- client
	waitForCount(t, h, "client-1", 1)

	h.Send("client-1", AnswerNotice{AnswerId: "a1", QuestionId: "q1", Status: "answered"})

	select {
	case msg := <-client.Send:
		if len(msg) == 0 {
			t.Fatal("expected a non-empty notice payload")
		}
	case <-time.After(time.Second):
		t.Fatal("notice never delivered")
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	// Buffer of one, already full: delivery cannot succeed.
	client := &Client{Hub: h, ClientID: "client-2", Send: make(chan []byte, 1)}
	client.Send <- []byte("stale")
	h.register <- client
	waitForCount(t, h, "client-2", 1)

	h.Send("client-2", AnswerNotice{AnswerId: "a1", QuestionId: "q1", Status: "answered"})
	waitForCount(t, h, "client-2", 0)

	// The hub must close Send exactly once. Drain the buffered message,
	// then the channel should report closed.
	<-client.Send
	select {
	case _, open := <-client.Send:
		if open {
			t.Fatal("expected Send to be closed after the client was dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("Send was never closed")
	}

	// A second notice to the same id must not panic the hub goroutine.
	h.Send("client-2", AnswerNotice{AnswerId: "a2", QuestionId: "q2", Status: "answered"})

	healthy := &Client{Hub: h, ClientID: "client-3", Send: make(chan []byte, 4)}
	h.register <- healthy
	waitForCount(t, h, "client-3", 1)
}

func TestHubKeepsOtherConnectionsWhenOneIsSlow(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	slow := &Client{Hub: h, ClientID: "client-4", Send: make(chan []byte, 1)}
	slow.Send <- []byte("stale")
	fast := &Client{Hub: h, ClientID: "client-4", Send: make(chan []byte, 4)}
	h.register <- slow
	h.register <- fast
	waitForCount(t, h, "client-4", 2)

	h.Send("client-4", AnswerNotice{AnswerId: "a1", QuestionId: "q1", Status: "answered"})
	waitForCount(t, h, "client-4", 1)

	select {
	case <-fast.Send:
	case <-time.After(time.Second):
		t.Fatal("healthy connection never received the notice")
	}
}
