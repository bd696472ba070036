package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"auction_go/internal/domain"
	"auction_go/internal/event"
	"auction_go/internal/infra"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	maxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// subscribeRequest is the only message clients send.
type subscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// Hub keeps the connected feed clients and fans clearing events out to them.
type Hub struct {
	logger     *slog.Logger
	metrics    *infra.Metrics
	sendBuffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	seq atomic.Uint64
}

// NewHub creates a hub. sendBuffer bounds the per-client queue; a client
// whose queue is full is dropped.
func NewHub(logger *slog.Logger, metrics *infra.Metrics, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{
		logger:     logger.With(slog.String("component", "feed_hub")),
		metrics:    metrics,
		sendBuffer: sendBuffer,
		clients:    make(map[*client]struct{}),
	}
}

// Publish implements domain.ClearingPublisher.
func (h *Hub) Publish(rec *domain.ClearingRecord) {
	ev := event.NewClearingEvent(h.seq.Add(1), rec)
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal clearing event", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.isSubscribed(ev.Channel) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("Feed client too slow, dropping", slog.String("client", c.id))
			h.removeLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		id:            uuid.NewString(),
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, h.sendBuffer),
		subscriptions: make(map[string]bool),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.IncrementFeedClients()
	h.logger.Info("Feed client connected", slog.String("client", c.id))

	go c.writePump()
	go c.readPump()
}

// Run blocks until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.logger.Info("Feed hub stopped")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.DecrementFeedClients()
	h.logger.Info("Feed client disconnected", slog.String("client", c.id))
}

// reply queues a direct message to one client. Returns false if the client is gone
// or its queue is full.
func (h *Hub) reply(c *client, ev event.Event) bool {
	msg, err := json.Marshal(ev)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

var _ domain.ClearingPublisher = (*Hub)(nil)
