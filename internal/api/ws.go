package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/pkg/logger"
)

const (
	defaultStreamInterval = 30 * time.Second
	minStreamInterval     = 1 * time.Second
	streamWriteWait       = 10 * time.Second
)

// CurrencyStream pushes currency report snapshots over a websocket
// ⭐ SSOT: 실시간 리포트 스트림은 이 핸들러에서만
type CurrencyStream struct {
	registry        *freshness.Registry
	resolverTimeout time.Duration
	logger          *logger.Logger
	upgrader        websocket.Upgrader
}

// NewCurrencyStream creates the websocket stream handler
func NewCurrencyStream(registry *freshness.Registry, resolverTimeout time.Duration, log *logger.Logger) *CurrencyStream {
	return &CurrencyStream{
		registry:        registry,
		resolverTimeout: resolverTimeout,
		logger:          log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Internal dashboard endpoint, origin checks are left to the proxy
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// streamError is sent in place of a report when a snapshot fails
type streamError struct {
	Error string `json:"error"`
}

// ServeHTTP upgrades the connection and streams report snapshots for the
// requested group until the client disconnects
// GET /ws/currency?group=G&interval=30s
func (s *CurrencyStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if group == "" {
		http.Error(w, "query parameter 'group' is required", http.StatusBadRequest)
		return
	}

	interval := defaultStreamInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < minStreamInterval {
			http.Error(w, "invalid 'interval' (minimum 1s)", http.StatusBadRequest)
			return
		}
		interval = parsed
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.WithFields(map[string]interface{}{
		"group":    group,
		"interval": interval,
		"remote":   conn.RemoteAddr().String(),
	}).Info("Currency stream opened")

	// Read pump: we never expect client messages, but reading is required
	// to detect the close frame
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.writeSnapshot(conn, group); err != nil {
			s.logger.WithError(err).WithField("group", group).Debug("Currency stream closed")
			return
		}

		select {
		case <-done:
			s.logger.WithField("group", group).Info("Currency stream client disconnected")
			return
		case <-ticker.C:
		}
	}
}

// writeSnapshot computes one report and writes it to the connection.
// Resolver failures are reported in-band so the stream survives a flaky
// contract store; write failures end the stream.
func (s *CurrencyStream) writeSnapshot(conn *websocket.Conn, group string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.resolverTimeout)
	report, err := s.registry.CurrencyReport(ctx, group, time.Now())
	cancel()

	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err != nil {
		s.logger.WithError(err).WithField("group", group).Warn("Currency snapshot failed")
		return conn.WriteJSON(streamError{Error: err.Error()})
	}
	return conn.WriteJSON(report)
}
