package events

import (
	"encoding/base64"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/siphonelee/walavie/internal/fstree"
	"github.com/siphonelee/walavie/internal/infrastructure/monitoring"
	"github.com/siphonelee/walavie/internal/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // indexers connect from anywhere
	},
}

const queueSize = 256

// Envelope is the JSON frame delivered to subscribers. Payload is the
// base64 BCS event body; the JSON fields duplicate it for convenience.
type Envelope struct {
	ID      string            `json:"id"`
	Type    fstree.EventKind  `json:"type"`
	Path    string            `json:"path"`
	Entry   *fstree.ListEntry `json:"entry,omitempty"`
	Payload string            `json:"payload"`
}

// Hub broadcasts events to WebSocket subscribers.
type Hub struct {
	log     *zap.Logger
	metrics *monitoring.Metrics

	queue chan Envelope

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub(log *zap.Logger, metrics *monitoring.Metrics) *Hub {
	h := &Hub{
		log:     log,
		metrics: metrics,
		queue:   make(chan Envelope, queueSize),
		conns:   make(map[*websocket.Conn]struct{}),
	}
	go h.run()
	return h
}

// Sink returns the function installed as the root's event sink. It runs
// inside the mutating operation, so it only encodes and enqueues; the
// broadcast happens on the hub's own goroutine.
func (h *Hub) Sink() fstree.Sink {
	return func(e fstree.Event) {
		payload, err := wire.EncodeEvent(e)
		if err != nil {
			h.log.Error("encode event", zap.String("type", string(e.Kind)), zap.Error(err))
			return
		}
		env := Envelope{
			ID:      ulid.Make().String(),
			Type:    e.Kind,
			Path:    e.Path,
			Entry:   e.Entry,
			Payload: base64.StdEncoding.EncodeToString(payload),
		}
		if h.metrics != nil {
			h.metrics.RecordEvent(string(e.Kind))
		}
		select {
		case h.queue <- env:
		default:
			h.log.Warn("event queue full, dropping",
				zap.String("type", string(e.Kind)),
				zap.String("path", e.Path))
		}
	}
}

func (h *Hub) run() {
	for env := range h.queue {
		h.mu.Lock()
		for conn := range h.conns {
			if err := conn.WriteJSON(env); err != nil {
				h.log.Debug("subscriber write failed, dropping connection", zap.Error(err))
				conn.Close()
				delete(h.conns, conn)
				if h.metrics != nil {
					h.metrics.DecWSConnections()
				}
			}
		}
		h.mu.Unlock()
	}
}

// HandleConnection upgrades the request and subscribes the connection
// until the peer goes away.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}

	// Drain (and discard) client frames so pings and close frames are
	// processed; broadcast is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
	}
	h.mu.Unlock()
	conn.Close()
}
