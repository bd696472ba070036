package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"auction_go/internal/domain"
	"auction_go/internal/event"

	"github.com/gorilla/websocket"
)

const (
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// backoff returns the reconnect delay for the given attempt, doubling from
// baseDelay up to maxDelay.
func backoff(attempt int) time.Duration {
	delay := baseDelay
	for i := 0; i < attempt && delay < maxDelay; i++ {
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// Subscriber is a reconnecting feed client. It subscribes to a set of channels
// and hands every clearing event to the handler.
type Subscriber struct {
	url      string
	channels []string
	handler  func(event.Event)
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewSubscriber creates a subscriber for the feed at feedURL (ws://host/ws).
func NewSubscriber(feedURL string, channels []string, handler func(event.Event), logger *slog.Logger) *Subscriber {
	if len(channels) == 0 {
		channels = []string{event.AllChannel}
	}
	return &Subscriber{
		url:      feedURL,
		channels: channels,
		handler:  handler,
		logger:   logger.With(slog.String("component", "feed_subscriber")),
	}
}

// Run connects and reconnects until ctx is done. It returns nil on
// cancellation and the error when a connection attempt fails for good
// (malformed URL, handshake rejected by the server).
func (s *Subscriber) Run(ctx context.Context) error {
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			s.closeConnection()
			return nil
		default:
		}

		if err := s.connect(ctx); err != nil {
			if !domain.IsRetriable(err) {
				s.logger.Error("Feed connection failed permanently", slog.Any("error", err))
				return err
			}
			delay := backoff(retryCount)
			s.logger.Warn("Feed connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
				slog.Duration("delay", delay))
			retryCount++
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		s.readLoop(ctx)
	}
}

func (s *Subscriber) connect(ctx context.Context) error {
	u, err := url.Parse(s.url)
	if err != nil {
		return domain.NewFatalNetworkError("connect", err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return domain.NewFatalNetworkError("connect", fmt.Errorf("malformed feed URL %q", s.url))
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		// 4xx: the endpoint refuses to upgrade this client.
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil &&
			resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return domain.NewFatalNetworkError("handshake", fmt.Errorf("%w: status %d", err, resp.StatusCode))
		}
		return domain.NewNetworkError("connect", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	b, err := json.Marshal(subscribeRequest{Op: "subscribe", Channels: s.channels})
	if err != nil {
		s.closeConnection()
		return domain.NewFatalNetworkError("subscribe", err)
	}
	if err := s.write(b); err != nil {
		s.closeConnection()
		return domain.NewNetworkError("subscribe", err)
	}

	s.logger.Info("Feed connected", slog.String("url", s.url), slog.Any("channels", s.channels))
	return nil
}

func (s *Subscriber) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no conn")
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Subscriber) readLoop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.closeConnection()
		case <-done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("Feed read failed", slog.Any("error", err))
			}
			s.closeConnection()
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var ev event.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.logger.Warn("Undecodable feed message", slog.Any("error", err))
			continue
		}
		switch ev.Type {
		case event.TypeClearing:
			s.handler(ev)
		case event.TypeError:
			s.logger.Warn("Feed reported an error", slog.String("message", ev.Message))
		}
	}
}

func (s *Subscriber) closeConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
