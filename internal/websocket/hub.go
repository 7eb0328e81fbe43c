package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"qna-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AnswerNotice is the payload pushed to a waiting client when its answer is
// ready.
type AnswerNotice struct {
	AnswerId       string `json:"answer_id"`
	QuestionId     string `json:"question_id"`
	ConversationId string `json:"conversation_id"`
	Status         string `json:"status"`
}

type Hub struct {
	// Registered clients map: ClientID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
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
			h.clients[client.ClientID] = append(h.clients[client.ClientID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ClientID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ClientID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ClientID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ClientID]) == 0 {
					delete(h.clients, client.ClientID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"client_id": client.ClientID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes an answer notice to every open connection of one client, and
// relays it through Redis so other instances can reach connections they own.
func (h *Hub) Send(clientID string, notice AnswerNotice) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "answer",
		"data": notice,
	})

	h.deliverLocal(clientID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_client_id": clientID,
			"message":          json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

func (h *Hub) deliverLocal(clientID string, data []byte) {
	// Sends happen under the read lock so the unregister branch, which
	// closes Send under the write lock, cannot close it mid-delivery.
	// The unregister branch in Run is the only place that closes Send.
	h.mu.RLock()
	var slow []*Client
	for _, client := range h.clients[clientID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"client_id": clientID})
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetClientID string          `json:"target_client_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		h.deliverLocal(payload.TargetClientID, payload.Message)
	}
}
