package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeNewMessage  MessageType = "new_message"
	MessageTypeDeleted     MessageType = "message_deleted"
	MessageTypeError       MessageType = "error"
)

// WSMessage represents a WebSocket frame exchanged with admin UI clients
type WSMessage struct {
	Type      MessageType `json:"type"`
	ChannelID int64       `json:"channel_id,omitempty"`
	Message   interface{} `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewMessagePayload is pushed to subscribers when a message is recorded
type NewMessagePayload struct {
	ID          int64  `json:"id"`
	ChannelID   int64  `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	AuthorName  string `json:"author_name"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

// DeletedPayload is pushed to subscribers when a message is marked deleted
type DeletedPayload struct {
	ID   int64 `json:"id"`
	Bulk bool  `json:"bulk"`
}

// Hub maintains the set of active clients and fans events out to
// channel-scoped subscribers
type Hub struct {
	clients map[*Client]bool

	// Channel subscriptions: channel snowflake -> set of clients
	subscriptions map[int64]map[*Client]bool

	register           chan *Client
	unregister         chan *Client
	subscribe          chan *subscriptionRequest
	unsubscribeChannel chan *subscriptionRequest
	broadcast          chan *broadcastMessage

	mu sync.RWMutex

	logger *slog.Logger
}

type subscriptionRequest struct {
	client    *Client
	channelID int64
}

type broadcastMessage struct {
	channelID int64
	message   []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:            make(map[*Client]bool),
		subscriptions:      make(map[int64]map[*Client]bool),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		subscribe:          make(chan *subscriptionRequest),
		unsubscribeChannel: make(chan *subscriptionRequest),
		broadcast:          make(chan *broadcastMessage, 256),
		logger:             logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for channelID, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, channelID)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.channelID] == nil {
				h.subscriptions[req.channelID] = make(map[*Client]bool)
			}
			h.subscriptions[req.channelID][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to channel", slog.Int64("channel_id", req.channelID))
			}

		case req := <-h.unsubscribeChannel:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.channelID]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.channelID)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from channel", slog.Int64("channel_id", req.channelID))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.channelID]
			for client := range subscribers {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a channel
func (h *Hub) Subscribe(client *Client, channelID int64) {
	h.subscribe <- &subscriptionRequest{client: client, channelID: channelID}
}

// Unsubscribe unsubscribes a client from a channel
func (h *Hub) Unsubscribe(client *Client, channelID int64) {
	h.unsubscribeChannel <- &subscriptionRequest{client: client, channelID: channelID}
}

// BroadcastNewMessage notifies channel subscribers of a freshly recorded message
func (h *Hub) BroadcastNewMessage(channelID int64, payload *NewMessagePayload) {
	h.send(channelID, WSMessage{
		Type:      MessageTypeNewMessage,
		ChannelID: channelID,
		Message:   payload,
	})
}

// BroadcastDeleted notifies channel subscribers of a deletion marking
func (h *Hub) BroadcastDeleted(channelID int64, payload *DeletedPayload) {
	h.send(channelID, WSMessage{
		Type:      MessageTypeDeleted,
		ChannelID: channelID,
		Message:   payload,
	})
}

func (h *Hub) send(channelID int64, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{
		channelID: channelID,
		message:   data,
	}
}
