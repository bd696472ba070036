package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"auction_go/internal/infra"
)

// Server exposes the hub over HTTP: /ws for subscribers and /metrics for a
// JSON view of the clearing counters.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	logger     *slog.Logger
}

// NewServer wires the hub and metrics into an HTTP server listening on addr.
func NewServer(addr string, hub *Hub, metrics *infra.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics.Snapshot())
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		hub:    hub,
		logger: logger.With(slog.String("component", "feed_server")),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Feed server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
