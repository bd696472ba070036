package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"auction_go/internal/event"

	"github.com/gorilla/websocket"
)

// client is one websocket connection attached to the hub.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subsMu        sync.RWMutex
	subscriptions map[string]bool
}

func (c *client) isSubscribed(channel string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subscriptions[channel] || c.subscriptions[event.AllChannel]
}

func (c *client) setSubscribed(channel string, on bool) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if on {
		c.subscriptions[channel] = true
	} else {
		delete(c.subscriptions, channel)
	}
}

// readPump handles subscription requests until the connection fails.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Feed read error", slog.String("client", c.id), slog.Any("error", err))
			}
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.hub.reply(c, event.NewErrorEvent("invalid message"))
			continue
		}
		c.handle(req)
	}
}

func (c *client) handle(req subscribeRequest) {
	var on bool
	switch req.Op {
	case "subscribe":
		on = true
	case "unsubscribe":
		on = false
	default:
		c.hub.reply(c, event.NewErrorEvent("unknown op "+req.Op))
		return
	}

	accepted := make([]string, 0, len(req.Channels))
	for _, name := range req.Channels {
		channel, err := event.ParseChannel(name)
		if err != nil {
			c.hub.reply(c, event.NewErrorEvent(err.Error()))
			continue
		}
		c.setSubscribed(channel, on)
		accepted = append(accepted, channel)
	}
	c.hub.reply(c, event.NewSubscribedEvent(accepted))
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
