package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "note_events"

// Hub fans note lifecycle events out to an owner's connected clients so
// their note caches can re-sync the affected note.
type Hub struct {
	// UserID -> connected clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery; nil for single-instance
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a note event to every connection the owner has, locally and
// via Redis to any other instance holding a connection for them.
func (h *Hub) Send(userID uuid.UUID, event dto.NoteEventMessage) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "note_event",
		"data": event,
	})

	// With Redis wired, the shared channel is the single delivery path:
	// every instance, this one included, delivers from its subscription.
	// Sending directly as well would hand local clients the event twice.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		if err := h.rdb.Publish(context.Background(), clusterChannel, jsonPayload).Err(); err == nil {
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"user_id": userID})
	}

	h.deliverLocal(userID, data)
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Unregister closes the channel; closing here too would
			// double-close on a slow client.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers only
	// to users it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.deliverLocal(uid, payload.Message)
	}
}
