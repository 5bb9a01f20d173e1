// Package live pushes reload notifications to open timeline pages over
// websockets.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/narvanalabs/timeline/pkg/logger"
)

// ReloadMessage is sent to every subscriber when the timeline data changes.
const ReloadMessage = "reload"

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// Subscriber represents one connected page.
type Subscriber struct {
	ID        string
	Ch        chan string
	CreatedAt time.Time
}

// Hub manages reload subscriptions and broadcasting.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	closed      bool
	upgrader    websocket.Upgrader
	logger      *logger.Logger
}

// NewHub creates a new reload hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Default()
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  256,
			WriteBufferSize: 256,
		},
		logger: log.WithComponent("live"),
	}
}

// Subscribe registers a new subscriber. It returns nil once the hub is closed.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	sub := &Subscriber{
		ID:        uuid.New().String(),
		Ch:        make(chan string, 4),
		CreatedAt: time.Now(),
	}
	h.subscribers[sub.ID] = sub
	h.logger.Debug("reload subscriber added", "subscriber_id", sub.ID)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subscribers[sub.ID]; exists {
		close(sub.Ch)
		delete(h.subscribers, sub.ID)
		h.logger.Debug("reload subscriber removed", "subscriber_id", sub.ID)
	}
}

// Broadcast sends msg to all subscribers. Subscribers with a full buffer
// already have a pending message and are skipped.
func (h *Hub) Broadcast(msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.Ch <- msg:
		default:
			h.logger.Warn("reload subscriber channel full, dropping message",
				"subscriber_id", sub.ID,
			)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes everyone. Open websocket handlers return once their
// channel is closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, sub := range h.subscribers {
		close(sub.Ch)
		delete(h.subscribers, id)
	}
}

// ServeWS upgrades the request and forwards broadcasts until the client
// disconnects or the hub closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("failed to upgrade reload websocket", "error", err)
		return
	}
	defer conn.Close()

	sub := h.Subscribe()
	if sub == nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		return
	}
	defer h.Unsubscribe(sub)

	// The client never sends anything meaningful; reading detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("reload websocket read ended", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
