package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSecureUpgrader_ValidOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000,http://example.com", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_InvalidOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://malicious.com")

	assert.False(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_EmptyOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000", nil)

	// Same-origin requests have empty Origin header
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_DefaultOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader("", nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_MultipleOrigins(t *testing.T) {
	upgrader := NewSecureUpgrader("http://localhost:3000, http://example.com, http://app.example.com", nil)

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost:3000", true},
		{"http://example.com", true},
		{"http://app.example.com", true},
		{"http://other.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Origin", tt.origin)

			assert.Equal(t, tt.expected, upgrader.CheckOrigin(req))
		})
	}
}

func TestNewSecureUpgrader_CommaOnlyOrigins(t *testing.T) {
	upgrader := NewSecureUpgrader(",,,", nil)

	// Falls back to the default when every entry is empty
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestDefaultUpgrader_AllowsAll(t *testing.T) {
	upgrader := DefaultUpgrader()

	origins := []string{
		"http://localhost:3000",
		"http://malicious.com",
		"",
	}

	for _, origin := range origins {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}

		assert.True(t, upgrader.CheckOrigin(req), "Origin: %s", origin)
	}
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub(nil)

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.subscriptions)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_BroadcastNewMessage_NoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	payload := &NewMessagePayload{
		ID:          1,
		ChannelID:   200,
		ChannelName: "general",
		AuthorName:  "alice",
		Content:     "hello",
		CreatedAt:   "2025-03-01T12:00:00Z",
	}

	// Must not panic or block with no subscribers
	hub.BroadcastNewMessage(200, payload)
}

func TestHub_BroadcastDeleted_NoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	hub.BroadcastDeleted(200, &DeletedPayload{ID: 1, Bulk: false})
}

func TestHub_SubscriberReceivesBroadcast(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 8)}
	hub.Register(client)
	hub.Subscribe(client, 200)

	hub.BroadcastNewMessage(200, &NewMessagePayload{ID: 1, ChannelID: 200})

	frame := <-client.send
	assert.Contains(t, string(frame), `"type":"new_message"`)
	assert.Contains(t, string(frame), `"channel_id":200`)
}

func TestHub_UnsubscribedClientGetsNothing(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 8)}
	hub.Register(client)
	hub.Subscribe(client, 200)
	hub.Unsubscribe(client, 200)

	hub.BroadcastNewMessage(200, &NewMessagePayload{ID: 1, ChannelID: 200})
	time.Sleep(50 * time.Millisecond)

	select {
	case frame := <-client.send:
		t.Fatalf("unexpected frame after unsubscribe: %s", frame)
	default:
	}
}
