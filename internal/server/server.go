package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/beamdrop/beamdrop/internal/config"
	"github.com/beamdrop/beamdrop/internal/metrics"
	"github.com/beamdrop/beamdrop/internal/router"
)

// Stats provides transport statistics for the health endpoint.
type Stats struct {
	Connections int
}

// Server upgrades inbound HTTP requests to device connections and
// implements router.Sender for outbound delivery.
type Server struct {
	cfg     config.TransportConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
	router   router.Router

	mu    sync.RWMutex
	conns map[string]*conn
}

// NewServer creates the WebSocket transport. SetRouter must be called
// before the server accepts connections.
func NewServer(cfg config.TransportConfig, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Devices on a LAN reach the relay under whatever origin the
			// hosting page used; origin enforcement adds nothing here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*conn),
	}
}

// SetRouter wires the event router. Resolves the construction cycle: the
// router sends through this server, this server dispatches into the router.
func (s *Server) SetRouter(rt router.Router) {
	s.router = rt
}

// ServeHTTP handles one device connection for its whole lifetime.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := uuid.NewString()
	address := peerAddress(r)
	c := newConn(id, ws, s.cfg.SendBufferSize, s.logger.With("conn_id", id))

	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()

	go c.writePump(s.cfg.PingInterval, s.cfg.WriteTimeout)

	s.router.HandleConnect(id, address)
	s.readPump(c)

	// Terminal for this connection id: registry removal, leave notice,
	// and transport teardown. Idempotent against the sweeper.
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()

	s.router.HandleDisconnect(id)
	c.close()
}

// Send queues one envelope for a connection. Returns false when the
// connection is gone or its buffer is full; nobody retries either way.
func (s *Server) Send(id string, data []byte) bool {
	s.mu.RLock()
	c, ok := s.conns[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		s.logger.Warn("send buffer full, dropping message", "conn_id", id)
		s.metrics.RecordDroppedSend()
		return false
	}
}

// Stats returns current transport statistics.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Connections: len(s.conns)}
}

// Shutdown closes every connection. In-flight handlers observe the close
// and run their normal disconnect path.
func (s *Server) Shutdown() {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// readPump consumes inbound envelopes until the connection dies.
func (s *Server) readPump(c *conn) {
	c.ws.SetReadLimit(s.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.router.Dispatch(c.id, data)
	}
}

// peerAddress extracts the client's network address for group
// classification. Behind a proxy the first X-Forwarded-For hop is the
// device; otherwise the socket address is.
func peerAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	return r.RemoteAddr
}
